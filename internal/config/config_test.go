package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motorsportcal/internal/model"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "./calendar", cfg.Output)
	assert.Equal(t, MergeNotEnded, cfg.MergeStrategy)
	assert.Equal(t, FetchHTTP, cfg.FetchMode)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	require.Len(t, cfg.Series, 3)
	assert.True(t, cfg.SeriesFor(model.SeriesWRC).ConfirmByRecency)
	assert.False(t, cfg.SeriesFor(model.SeriesFormula1).ConfirmByRecency)
}

func TestLoadPartialFileNormalized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"output: /data/cal\nmerge_strategy: bogus\nyear: 2025\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data/cal", cfg.Output)
	// Unrecognized strategy falls back to the default.
	assert.Equal(t, MergeNotEnded, cfg.MergeStrategy)
	assert.Equal(t, 2025, cfg.Year)
	assert.Len(t, cfg.Series, 3)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Year = 2025
	cfg.MergeStrategy = MergeMissedEvents
	cfg.Series = []SeriesConfig{
		{Name: "wrc", Provider: "results", ConfirmByRecency: true},
	}
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2025, loaded.Year)
	assert.Equal(t, MergeMissedEvents, loaded.MergeStrategy)

	wrc := loaded.SeriesFor(model.SeriesWRC)
	assert.Equal(t, "results", wrc.Provider)
	assert.True(t, wrc.ConfirmByRecency)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSaveRejectsEmptyPathAndNilConfig(t *testing.T) {
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save(filepath.Join(t.TempDir(), "c.yaml"), nil))
}

func TestTargetYear(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)

	cfg := &Config{}
	assert.Equal(t, 2026, cfg.TargetYear(now))

	cfg.Year = 2024
	assert.Equal(t, 2024, cfg.TargetYear(now))
}

func TestSeriesForUnlistedSeries(t *testing.T) {
	cfg := &Config{Series: []SeriesConfig{{Name: "formula1"}}}
	got := cfg.SeriesFor(model.SeriesWEC)
	assert.Equal(t, "wec", got.Name)
	assert.False(t, got.Disabled)
}
