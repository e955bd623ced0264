// Package config resolves run settings from defaults, an optional .env file,
// HOSPI_* environment variables and command-line flags, in increasing order
// of precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/pfrederiksen/hospi-calendar/internal/calendar"
	"github.com/pfrederiksen/hospi-calendar/internal/extract"
	"github.com/pfrederiksen/hospi-calendar/internal/logger"
	"github.com/pfrederiksen/hospi-calendar/internal/scraper"
	"github.com/pfrederiksen/hospi-calendar/internal/series"
)

const EnvPrefix = "HOSPI"

// Keys
const (
	KeyHomeURL    = "home_url"
	KeyTrendURL   = "trend_url"
	KeyUserAgent  = "user_agent"
	KeyTimeout    = "timeout"
	KeyDataFile   = "data_file"
	KeyStartDate  = "start_date"
	KeyMetricKey  = "metric_key"
	KeyMarkerTrim = "marker_trim"
	KeyFillValue  = "fill_value"
	KeyPercentile = "percentile"
	KeyTickCount  = "tick_count"
	KeyLogLevel   = "log_level"
	KeyRetries    = "retries"
)

// Config holds validated settings for a run
type Config struct {
	HomeURL    string
	TrendURL   string
	UserAgent  string
	Timeout    time.Duration
	DataFile   string
	StartDate  time.Time
	MetricKey  string
	MarkerTrim int
	FillValue  int
	Percentile float64
	TickCount  int
	LogLevel   logger.Level
	Retries    int
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetDefault(KeyHomeURL, scraper.HomeURL)
	v.SetDefault(KeyTrendURL, scraper.TrendURL)
	v.SetDefault(KeyUserAgent, scraper.UserAgent)
	v.SetDefault(KeyTimeout, scraper.Timeout)
	v.SetDefault(KeyDataFile, "./data.csv")
	v.SetDefault(KeyStartDate, series.HistoryStart.Format(time.DateOnly))
	v.SetDefault(KeyMetricKey, extract.DefaultKey)
	v.SetDefault(KeyMarkerTrim, extract.DefaultTrim)
	v.SetDefault(KeyFillValue, 0)
	v.SetDefault(KeyPercentile, calendar.DefaultPercentile)
	v.SetDefault(KeyTickCount, calendar.DefaultTicks)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyRetries, 0)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// LoadDotEnv loads the first existing file among paths into the process
// environment. Variables already set are not overridden. Missing files are
// not an error.
func LoadDotEnv(paths ...string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("loading %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// Load reads and validates settings from v
func Load(v *viper.Viper) (*Config, error) {
	start, err := series.ParseDate(v.GetString(KeyStartDate))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyStartDate, err)
	}

	level, err := logger.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyLogLevel, err)
	}

	cfg := &Config{
		HomeURL:    v.GetString(KeyHomeURL),
		TrendURL:   v.GetString(KeyTrendURL),
		UserAgent:  v.GetString(KeyUserAgent),
		Timeout:    v.GetDuration(KeyTimeout),
		DataFile:   v.GetString(KeyDataFile),
		StartDate:  start,
		MetricKey:  v.GetString(KeyMetricKey),
		MarkerTrim: v.GetInt(KeyMarkerTrim),
		FillValue:  v.GetInt(KeyFillValue),
		Percentile: v.GetFloat64(KeyPercentile),
		TickCount:  v.GetInt(KeyTickCount),
		LogLevel:   level,
		Retries:    v.GetInt(KeyRetries),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if c.HomeURL == "" || c.TrendURL == "" {
		return fmt.Errorf("%s and %s are required", KeyHomeURL, KeyTrendURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyTimeout, c.Timeout)
	}
	if strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("%s is required", KeyDataFile)
	}
	if err := c.Marker().Validate(); err != nil {
		return err
	}
	if c.Percentile <= 0 || c.Percentile > 100 {
		return fmt.Errorf("%s must be in (0, 100], got %v", KeyPercentile, c.Percentile)
	}
	if c.TickCount < 2 {
		return fmt.Errorf("%s must be at least 2, got %d", KeyTickCount, c.TickCount)
	}
	if c.Retries < 0 {
		return fmt.Errorf("%s must be >= 0, got %d", KeyRetries, c.Retries)
	}
	return nil
}

// Marker returns the extraction marker
func (c *Config) Marker() extract.Marker {
	return extract.Marker{
		Key:        c.MetricKey,
		Terminator: extract.DefaultTerminator,
		Trim:       c.MarkerTrim,
	}
}

// ScraperOptions returns the upstream endpoint settings
func (c *Config) ScraperOptions() scraper.Options {
	return scraper.Options{
		HomeURL:   c.HomeURL,
		TrendURL:  c.TrendURL,
		UserAgent: c.UserAgent,
		Timeout:   c.Timeout,
	}
}

// ScaleOptions returns the color-scale settings
func (c *Config) ScaleOptions() calendar.ScaleOptions {
	return calendar.ScaleOptions{
		Percentile: c.Percentile,
		Ticks:      c.TickCount,
	}
}
