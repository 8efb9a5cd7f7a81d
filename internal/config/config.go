package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"motorsportcal/internal/model"
)

// Merge strategy names accepted in MergeStrategy.
const (
	MergeNotEnded     = "not-ended"
	MergeMissedEvents = "missed-events"
)

// Fetch mode names accepted in FetchMode.
const (
	FetchHTTP     = "http"
	FetchRendered = "rendered"
)

// SeriesConfig holds per-series pipeline options.
type SeriesConfig struct {
	// Name is the series identifier ("formula1", "wrc", "wec").
	Name string `yaml:"name"`
	// Disabled removes the series from update runs.
	Disabled bool `yaml:"disabled"`
	// ConfirmByRecency treats an event whose end date has already passed
	// as confirmed even when detail stages are incomplete.
	ConfirmByRecency bool `yaml:"confirm_by_recency"`
	// Provider selects the source generation for series that have more
	// than one: for wrc, "api" (default) or "results".
	Provider string `yaml:"provider"`
}

// Config is the top-level application configuration.
type Config struct {
	// Output is the directory holding per-series snapshot files and the
	// update ledger.
	Output string `yaml:"output"`

	// Year is the target season. Zero means the current year.
	Year int `yaml:"year"`

	// Formula1CalendarURL is the iCal feed for the Formula 1 season.
	Formula1CalendarURL string `yaml:"formula1_calendar_url"`

	// MergeStrategy selects how fresh events are combined with the stored
	// snapshot: "not-ended" (default) or "missed-events" (compatibility
	// behavior of the older feed provider).
	MergeStrategy string `yaml:"merge_strategy"`

	// FetchMode selects how scraped HTML sources are retrieved: "http"
	// (default) or "rendered" (headless browser, for script-gated pages).
	FetchMode string `yaml:"fetch_mode"`

	// FetchTimeout bounds a single document retrieval.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// ScrapeTimezone is the IANA zone sent as the timezone cookie to the
	// rally results site so timetable pages render in a known zone.
	ScrapeTimezone string `yaml:"scrape_timezone"`

	// RefreshCron is the cron schedule used by serve mode.
	RefreshCron string `yaml:"refresh"`

	// Series lists per-series options. Missing series get defaults.
	Series []SeriesConfig `yaml:"series"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Output:         "./calendar",
		MergeStrategy:  MergeNotEnded,
		FetchMode:      FetchHTTP,
		FetchTimeout:   30 * time.Second,
		ScrapeTimezone: "Europe/Warsaw",
		RefreshCron:    "0 */6 * * *",
		Series: []SeriesConfig{
			{Name: string(model.SeriesFormula1)},
			{Name: string(model.SeriesWRC), ConfirmByRecency: true},
			{Name: string(model.SeriesWEC)},
		},
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *Config) Normalize() {
	if c.Output == "" {
		c.Output = "./calendar"
	}
	switch c.MergeStrategy {
	case MergeNotEnded, MergeMissedEvents:
	default:
		c.MergeStrategy = MergeNotEnded
	}
	switch c.FetchMode {
	case FetchHTTP, FetchRendered:
	default:
		c.FetchMode = FetchHTTP
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 30 * time.Second
	}
	if c.ScrapeTimezone == "" {
		c.ScrapeTimezone = "Europe/Warsaw"
	}
	if c.RefreshCron == "" {
		c.RefreshCron = "0 */6 * * *"
	}
	if len(c.Series) == 0 {
		c.Series = DefaultConfig().Series
	}
}

// SeriesFor returns the options for the given series, applying defaults
// when the series is not listed in the config.
func (c *Config) SeriesFor(series model.Series) SeriesConfig {
	for _, sc := range c.Series {
		if sc.Name == string(series) {
			return sc
		}
	}
	return SeriesConfig{Name: string(series)}
}

// TargetYear resolves the effective season year.
func (c *Config) TargetYear(now time.Time) int {
	if c.Year > 0 {
		return c.Year
	}
	return now.Year()
}

// Load loads configuration from the given YAML path. A missing file yields
// the defaults; an empty path skips file loading entirely.
func Load(path string) (*Config, error) {
	if path == "" {
		cfg := DefaultConfig()
		cfg.Normalize()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.Normalize()
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the configuration atomically via a temp file + rename.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".motorsportcal-config-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
