package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/core"
	"wellness/internal/storage/memory"
)

func TestMentalWellnessService_RoundTripsNulls(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{}
	svc := NewMentalWellnessService(memory.New(), pub)

	full, err := svc.RecordEntry(ctx, ptr(int64(4)), ptr(int64(15)), ptr(7.5), ptr("good day"))
	require.NoError(t, err)
	empty, err := svc.RecordEntry(ctx, nil, nil, nil, nil)
	require.NoError(t, err)

	assert.Nil(t, empty.MoodRating)
	assert.Nil(t, empty.Notes)
	assert.Equal(t, int64(4), *full.MoodRating)

	items, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, empty, items[0])
	assert.Equal(t, full, items[1])

	assert.Equal(t, []published{{core.KindMental, full.ID}, {core.KindMental, empty.ID}}, pub.sent)
}

func TestIntellectualWellnessService_DefaultsProgress(t *testing.T) {
	ctx := context.Background()
	svc := NewIntellectualWellnessService(memory.New(), nil)

	e, err := svc.RecordEntry(ctx, ptr("Read more"), nil, ptr("SICP"), nil)
	require.NoError(t, err)
	assert.Zero(t, e.ProgressPercentage)
	assert.Nil(t, e.ReadingTime)

	e2, err := svc.RecordEntry(ctx, nil, ptr(int64(30)), nil, ptr(int64(55)))
	require.NoError(t, err)
	assert.Equal(t, int64(55), e2.ProgressPercentage)

	items, err := svc.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, e2.ID, items[0].ID)
	assert.Equal(t, "SICP", *items[1].CurrentBook)
}

func TestWellnessServices_EmptyListsAreNotNil(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	mental, err := NewMentalWellnessService(store, nil).ListEntries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, mental)

	intellectual, err := NewIntellectualWellnessService(store, nil).ListEntries(ctx)
	require.NoError(t, err)
	assert.NotNil(t, intellectual)
}
