package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paymonth/internal/config"
	applog "paymonth/internal/log"
	"paymonth/internal/sheets/memory"
)

func TestSetupLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	logger := SetupLogger(applog.ComponentCLI)
	assert.Equal(t, applog.ComponentCLI, logger.Component())
	assert.True(t, logger.Enabled(context.Background(), -4))
}

func TestInitSQLite(t *testing.T) {
	cfg := &config.Config{
		SQLiteDBPath:     filepath.Join(t.TempDir(), "nested", "cli.db"),
		DefaultSalaryDay: 15,
		DefaultLocale:    "en-US",
	}
	repo := InitSQLite(applog.New(applog.DefaultConfig()), cfg)
	defer repo.Close()

	settings, err := repo.GetUserSettings(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 15, settings.SalaryDay)
	assert.Equal(t, "en-US", settings.Locale)
}

func TestGracefulShutdown_ParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	cleaned := make(chan struct{})

	ctx, done := GracefulShutdown(parent, applog.New(applog.DefaultConfig()), time.Second, func(context.Context) {
		close(cleaned)
	})
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not finish")
	}
	assert.Error(t, ctx.Err())
	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup was not called")
	}
}

func TestNewExporter(t *testing.T) {
	logger := applog.New(applog.DefaultConfig())

	exp, err := NewExporter(context.Background(), logger, &config.Config{})
	require.NoError(t, err)
	_, ok := exp.(*memory.Store)
	assert.True(t, ok, "expected the in-memory exporter, got %T", exp)

	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err = NewExporter(context.Background(), logger, &config.Config{GoogleSpreadsheetID: "sheet-1"})
	assert.Error(t, err)
}
