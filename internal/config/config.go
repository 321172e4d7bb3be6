// Package config handles application configuration from a YAML file and
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when HEISENBERG_CONFIG is not set.
const DefaultPath = "./config.yml"

// DefaultHTTPTimeout applies when the config file has no http.timeout.
const DefaultHTTPTimeout = 10 * time.Second

// Transit provider names
const (
	ProviderMBTA   = "mbta"
	ProviderGTFSRT = "gtfsrt"
	ProviderSIRI   = "siri"
)

// Config holds all application configuration. It is loaded once before any
// producer starts and is never modified afterwards.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	HTTP    HTTPConfig    `yaml:"http"`
	Status  StatusConfig  `yaml:"status"`
	Weather WeatherConfig `yaml:"weather"`
	Transit TransitConfig `yaml:"transit"`
}

// LogConfig controls where diagnostics go. The terminal belongs to the
// display, so logs are written to a file.
type LogConfig struct {
	File  string `yaml:"file" validate:"required"`
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
}

// HTTPConfig is shared by every provider request.
type HTTPConfig struct {
	// Timeout of zero disables the client timeout
	Timeout   time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent string        `yaml:"user_agent" validate:"required"`
}

// StatusConfig enables the diagnostics HTTP server when Addr is set.
type StatusConfig struct {
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// WeatherConfig identifies the forecast location. Either Office+GridX+GridY
// or Latitude+Longitude must be present.
type WeatherConfig struct {
	Office    string        `yaml:"office" validate:"omitempty,alpha,len=3"`
	GridX     int           `yaml:"grid_x" validate:"gte=0"`
	GridY     int           `yaml:"grid_y" validate:"gte=0"`
	Latitude  *float64      `yaml:"latitude" validate:"omitempty,latitude"`
	Longitude *float64      `yaml:"longitude" validate:"omitempty,longitude"`
	Interval  time.Duration `yaml:"interval" validate:"gt=0"`
}

// TransitConfig selects the prediction provider and the lines to show.
type TransitConfig struct {
	Provider string        `yaml:"provider" validate:"required,oneof=mbta gtfsrt siri"`
	APIKey   string        `yaml:"api_key"`
	FeedURLs []string      `yaml:"feed_urls" validate:"dive,url"`
	Interval time.Duration `yaml:"interval" validate:"gt=0"`
	Lines    []Line        `yaml:"lines" validate:"required,min=1,unique=Name,dive"`
}

// Line is a transit line to show predictions for. Order is display order.
type Line struct {
	Name string `yaml:"name" validate:"required"`
	// Route is the provider's route ID, when it differs from Name
	Route string `yaml:"route"`
	Stops []Stop `yaml:"stops" validate:"required,min=1,unique=ID,dive"`
}

// Stop is one stop on a line. Order is display order.
type Stop struct {
	Name string `yaml:"name" validate:"required"`
	ID   string `yaml:"id" validate:"required"`
}

// RouteID returns the identifier providers use for this line.
func (l Line) RouteID() string {
	if l.Route != "" {
		return l.Route
	}
	return l.Name
}

// StopIDs returns every configured stop ID across all lines, without
// duplicates, in configuration order.
func (c TransitConfig) StopIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, line := range c.Lines {
		for _, stop := range line.Stops {
			if !seen[stop.ID] {
				seen[stop.ID] = true
				ids = append(ids, stop.ID)
			}
		}
	}
	return ids
}

// HasGridpoint reports whether the NWS office/grid is configured directly.
func (w WeatherConfig) HasGridpoint() bool {
	return w.Office != ""
}

// Path returns the config file path from HEISENBERG_CONFIG or the default.
func Path() string {
	return getEnv("HEISENBERG_CONFIG", DefaultPath)
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML config data. Environment overrides and defaults are
// applied before validation.
func Parse(data []byte) (*Config, error) {
	// Keys missing from the file keep these values; an explicit zero wins
	cfg := &Config{HTTP: HTTPConfig{Timeout: DefaultHTTPTimeout}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Log.File = getEnv("LOG_FILE", c.Log.File)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Status.Addr = getEnv("STATUS_ADDR", c.Status.Addr)
	c.Transit.APIKey = getEnv("TRANSIT_API_KEY", getEnv("MTA_API_KEY", c.Transit.APIKey))
	if timeout := getDurationEnv("HTTP_TIMEOUT_SECONDS", -1); timeout >= 0 {
		c.HTTP.Timeout = timeout * time.Second
	}
}

func (c *Config) applyDefaults() {
	if c.Log.File == "" {
		c.Log.File = "./heisenberg.log"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.HTTP.UserAgent == "" {
		c.HTTP.UserAgent = "heisenberg"
	}
	if c.Weather.Interval == 0 {
		c.Weather.Interval = 60 * time.Second
	}
	if c.Transit.Interval == 0 {
		c.Transit.Interval = 30 * time.Second
	}
}

// Validate checks that required configuration is present and consistent.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	w := c.Weather
	hasPoint := w.Latitude != nil && w.Longitude != nil
	if !w.HasGridpoint() && !hasPoint {
		return errors.New("invalid config: weather needs office/grid_x/grid_y or latitude/longitude")
	}
	if (w.Latitude == nil) != (w.Longitude == nil) {
		return errors.New("invalid config: weather latitude and longitude must be set together")
	}

	if c.Transit.Provider == ProviderGTFSRT && len(c.Transit.FeedURLs) == 0 {
		return errors.New("invalid config: gtfsrt provider needs at least one feed_urls entry")
	}
	if c.Transit.Provider == ProviderSIRI && c.Transit.APIKey == "" {
		return errors.New("invalid config: siri provider needs api_key")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds)
		}
	}
	return time.Duration(defaultSeconds)
}
