package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"object", `{"monthly_budget":100}`, false},
		{"empty body", ``, false},
		{"unknown fields ignored", `{"monthly_budget":100,"currency":"EUR"}`, false},
		{"truncated", `{"monthly_budget":`, true},
		{"trailing data", `{"monthly_budget":1}{"monthly_budget":2}`, true},
		{"array", `[1,2]`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/budget", strings.NewReader(tt.body))
			var dst budgetRequest
			err := decodeJSON(httptest.NewRecorder(), req, &dst)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestDecodeJSON_FractionalInteger(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/mental-wellness-entries", strings.NewReader(`{"mood_rating":4.5}`))
	var dst mentalRequest
	err := decodeJSON(httptest.NewRecorder(), req, &dst)
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
	assert.Equal(t, "mood_rating must be a whole number", err.Error())

	req = httptest.NewRequest(http.MethodPost, "/api/mental-wellness-entries", strings.NewReader(`{"mood_rating":"four"}`))
	err = decodeJSON(httptest.NewRecorder(), req, &dst)
	require.Error(t, err)
	assert.False(t, core.IsValidation(err))
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"notes":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/mental-wellness-entries", strings.NewReader(body))
	var dst mentalRequest
	assert.Error(t, decodeJSON(httptest.NewRecorder(), req, &dst))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "  Coffee ", sanitizeInput("  Coffee\x00 "))
	assert.Equal(t, "line1\nline2", sanitizeInput("line1\nline2\x07"))
	assert.Equal(t, "\tindented\r\n", sanitizeInput("\tindented\r\n"))
}

func TestJSONResponseBuilder(t *testing.T) {
	rec := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("X-Test", "1").Body(map[string]int{"id": 7}).Write(rec)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("X-Test"))
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":7}`, rec.Body.String())

	rec = httptest.NewRecorder()
	BadRequestError("invalid request body").Write(rec)
	assert.JSONEq(t, `{"error":"invalid request body"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(rec)
	assert.Empty(t, rec.Body.String())
}
