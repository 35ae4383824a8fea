package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"

	"github.com/sadopc/timesheet/internal/parser"
	"github.com/sadopc/timesheet/internal/store"
)

const envPrefix = "timesheet"

type Config struct {
	// DBPath is the SQLite database file. Empty means ~/.config/timesheet/timesheet.db.
	DBPath string `split_words:"true"`

	// DevMode lowers the log level to debug and mirrors logs to stderr outside the TUI.
	DevMode bool `split_words:"true"`

	// LogFile receives every log line. Empty means timesheet.log next to the database.
	LogFile string `split_words:"true"`

	// Collaborator is stamped on imported activities when the settings table has none.
	Collaborator string

	// PDFFallbackYear and PDFFallbackMonth date PDF reports whose header has no period.
	PDFFallbackYear  int `split_words:"true" default:"2025"`
	PDFFallbackMonth int `split_words:"true" default:"9"`
}

// Parse loads an optional .env from the working directory, then reads
// TIMESHEET_* variables.
func Parse() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) resolve() error {
	if c.PDFFallbackMonth < 1 || c.PDFFallbackMonth > 12 {
		return errors.Errorf("TIMESHEET_PDF_FALLBACK_MONTH must be 1-12, got %d", c.PDFFallbackMonth)
	}
	if c.DBPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return errors.Wrap(err, "resolve database path")
		}
		c.DBPath = p
	}
	if c.LogFile == "" {
		dir := filepath.Dir(c.DBPath)
		if c.DBPath == ":memory:" {
			dir = os.TempDir()
		}
		c.LogFile = filepath.Join(dir, "timesheet.log")
	}
	return nil
}

// FallbackPeriod is the period assumed for PDF reports without a header.
func (c *Config) FallbackPeriod() parser.Period {
	return parser.Period{Year: c.PDFFallbackYear, Month: time.Month(c.PDFFallbackMonth)}
}

// Usage writes the recognised environment variables to w.
func Usage(w io.Writer) error {
	var cfg Config
	return envconfig.Usagef(envPrefix, &cfg, w, envconfig.DefaultTableFormat)
}
