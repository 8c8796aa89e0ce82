package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/table-planner/backend/internal/models"
	"github.com/table-planner/backend/internal/storage"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TablePlanner.config")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Equal(t, 8090, cfg.Server.Port)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.GetDataDir())
	assert.Equal(t, filepath.Join(dir, "data", "plans"), cfg.GetPlansDir())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<TablePlanner>")
	assert.Contains(t, string(raw), "<HistoryLimit>50</HistoryLimit>")
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "TablePlanner.config")

	cfg := DefaultConfig()
	cfg.Server.Port = 9100
	cfg.Storage.Driver = "bolt"
	cfg.Storage.DataDirectory = "/var/lib/planner"
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, loaded.Server.Port)
	assert.Equal(t, "/var/lib/planner", loaded.GetDataDir())

	opts := loaded.StorageOptions()
	assert.Equal(t, storage.DriverBolt, opts.Driver)
	assert.Equal(t, "/var/lib/planner/plans", opts.Dir)
}

func TestLoadConfigEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("HISTORY_LIMIT", "10")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "TablePlanner.config"))
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 3, cfg.Storage.RedisDB)
	assert.Equal(t, 10, cfg.Planner.HistoryLimit)
}

func TestLoadConfigDotEnv(t *testing.T) {
	dir := t.TempDir()
	// Registered so the variable is restored after the test.
	t.Setenv("REDIS_ADDR", "")
	os.Unsetenv("REDIS_ADDR")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("REDIS_ADDR=cache:6380\n"), 0644))

	cfg, err := LoadConfig(filepath.Join(dir, "TablePlanner.config"))
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", cfg.StorageOptions().Redis.Addr)
}

func TestLoadConfigRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "tape")
	_, err := LoadConfig(filepath.Join(t.TempDir(), "TablePlanner.config"))
	assert.Error(t, err)
}

func TestLoadConfigMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "TablePlanner.config")
	require.NoError(t, os.WriteFile(path, []byte("<TablePlanner><Server>"), 0644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadDocumentDefaults(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		d, err := LoadDocumentDefaults(filepath.Join(t.TempDir(), "defaults.yaml"))
		require.NoError(t, err)
		assert.Equal(t, models.NewDocument(), d.NewDocument())
	})

	t.Run("applies values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "defaults.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
language: en
grid: 16
snap: true
showGrid: false
pixelsPerMeter: 50
guestSort: name
colorLegend:
  "#ff0000": Family
  "#00ff00": Friends
`), 0644))

		d, err := LoadDocumentDefaults(path)
		require.NoError(t, err)
		doc := d.NewDocument()
		assert.Equal(t, "en", doc.UI.Language)
		assert.Equal(t, 16, doc.UI.Grid)
		assert.True(t, doc.UI.Snap)
		assert.False(t, doc.UI.ShowGrid)
		assert.Equal(t, 50.0, doc.UI.PixelsPerMeter)
		assert.Equal(t, models.SortName, doc.UI.GuestSort)
		assert.Equal(t, "Family", doc.ColorLegend["#ff0000"])

		doc.ColorLegend["#0000ff"] = "Work"
		assert.NotContains(t, d.NewDocument().ColorLegend, "#0000ff")
	})

	t.Run("rejects bad values", func(t *testing.T) {
		for _, body := range []string{"grid: 100", "pixelsPerMeter: 5", "guestSort: age", "grid: [1"} {
			path := filepath.Join(t.TempDir(), "defaults.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
			_, err := LoadDocumentDefaults(path)
			assert.Error(t, err, body)
		}
	})
}
