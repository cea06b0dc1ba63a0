package cli

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wellness/internal/log"
)

func TestSetupLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	prev := slog.Default()
	defer slog.SetDefault(prev)

	logger := SetupLogger(log.ComponentWorker)
	assert.Equal(t, log.ComponentWorker, logger.Component())
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WELLNESS_TEST_VALUE=from-dotenv\n"), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	t.Setenv("WELLNESS_TEST_VALUE", "")
	os.Unsetenv("WELLNESS_TEST_VALUE")
	LoadEnvFile()
	assert.Equal(t, "from-dotenv", os.Getenv("WELLNESS_TEST_VALUE"))
}

func TestGracefulShutdown_RunsCleanupOnSignal(t *testing.T) {
	logger := log.New(log.Config{Output: os.Stderr, Level: slog.LevelError})
	cleaned := make(chan struct{})

	ctx, done := GracefulShutdown(logger, time.Second, func(context.Context) { close(cleaned) })
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	assert.Error(t, ctx.Err())
	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup not called")
	}
}
