package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/nfe-converter/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 2*time.Minute, cfg.HTTP.WriteTimeout)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxBodyBytes)
	assert.Equal(t, "output", cfg.Convert.OutputDir)
	assert.Equal(t, "notas.xlsx", cfg.Convert.WorkbookName)
	assert.True(t, cfg.Convert.Normalize)
	assert.Equal(t, 12, cfg.Convert.PreviewLimit)
	assert.Equal(t, int64(10<<20), cfg.Convert.ZipMaxEntryBytes)
	assert.Equal(t, int64(100<<20), cfg.Convert.ZipMaxTotalBytes)

	assert.Equal(t, "info", cfg.Logger().Level)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("NFE_LOG_LEVEL", "debug")
	t.Setenv("NFE_HTTP_ADDRESS", "127.0.0.1:9090")
	t.Setenv("NFE_HTTP_READ_TIMEOUT", "5s")
	t.Setenv("NFE_HTTP_MAX_BODY", "1024")
	t.Setenv("NFE_NORMALIZE", "false")
	t.Setenv("NFE_PREVIEW_LIMIT", "20")
	t.Setenv("NFE_WORKBOOK_NAME", "lote.xlsx")
	t.Setenv("NFE_ZIP_MAX_ENTRY", "2048")

	cfg, err := config.LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.Address)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, int64(1024), cfg.HTTP.MaxBodyBytes)
	assert.False(t, cfg.Convert.Normalize)
	assert.Equal(t, 20, cfg.Convert.PreviewLimit)
	assert.Equal(t, "lote.xlsx", cfg.Convert.WorkbookName)
	assert.Equal(t, int64(2048), cfg.Convert.ZipMaxEntryBytes)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	content := []byte("log:\n  format: json\noutput:\n  dir: /tmp/notas\npreview:\n  limit: 5\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0o644))

	t.Setenv("NFE_PREVIEW_LIMIT", "7")

	cfg, err := config.LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "/tmp/notas", cfg.Convert.OutputDir)
	assert.Equal(t, 7, cfg.Convert.PreviewLimit, "environment overrides the file")
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("NFE_PREVIEW_LIMIT", "0")

	_, err := config.LoadFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preview.limit")
}

func TestLoad_InvalidZipLimit(t *testing.T) {
	t.Setenv("NFE_ZIP_MAX_TOTAL", "-1")

	_, err := config.LoadFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip.max_total")
}

func TestLoad_BrokenFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0o644))

	_, err := config.LoadFrom(dir)
	require.Error(t, err)
}
