// Package config collects the credentials and settings the adapter servers
// need. Everything comes from environment variables; an optional YAML file
// can override non-secret settings and reference variables with ${VAR}.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete toolbridge configuration
type Config struct {
	// GoogleMapsAPIKey authorizes the Maps, Places, Routes and Geocoding
	// integrations.
	GoogleMapsAPIKey string `yaml:"google_maps_api_key"`

	// PerplexityAPIKey authorizes the Perplexity search integration.
	PerplexityAPIKey string `yaml:"perplexity_api_key"`

	// AsanaAccessToken is a personal access token for the Asana API.
	AsanaAccessToken string `yaml:"asana_access_token"`

	// AsanaDefaultWorkspace is used when a tool call omits workspace_gid.
	AsanaDefaultWorkspace string `yaml:"asana_default_workspace"`

	// CalendarAccessToken is an OAuth bearer token for Google Calendar.
	CalendarAccessToken string `yaml:"calendar_access_token"`

	// CalendarID selects the calendar to operate on, default "primary".
	CalendarID string `yaml:"calendar_id"`

	// HTTPTimeout bounds each upstream call. In YAML it is written as a
	// Go duration string, e.g. "45s"; see Load.
	HTTPTimeout time.Duration `yaml:"-"`
}

// Environment variable names, one per credential.
const (
	EnvGoogleMapsAPIKey      = "GOOGLE_MAPS_API_KEY"
	EnvPerplexityAPIKey      = "PERPLEXITY_API_KEY"
	EnvAsanaAccessToken      = "ASANA_ACCESS_TOKEN"
	EnvAsanaDefaultWorkspace = "ASANA_DEFAULT_WORKSPACE_GID"
	EnvCalendarAccessToken   = "GOOGLE_CALENDAR_ACCESS_TOKEN"
	EnvCalendarID            = "GOOGLE_CALENDAR_ID"
)

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	return &Config{
		GoogleMapsAPIKey:      os.Getenv(EnvGoogleMapsAPIKey),
		PerplexityAPIKey:      os.Getenv(EnvPerplexityAPIKey),
		AsanaAccessToken:      os.Getenv(EnvAsanaAccessToken),
		AsanaDefaultWorkspace: os.Getenv(EnvAsanaDefaultWorkspace),
		CalendarAccessToken:   os.Getenv(EnvCalendarAccessToken),
		CalendarID:            os.Getenv(EnvCalendarID),
		HTTPTimeout:           30 * time.Second,
	}
}

// Load reads a YAML file and overlays it on the environment config.
// String values in the file may reference environment variables as ${VAR}.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := []byte(ExpandEnv(string(data)))

	var file Config
	if err := yaml.Unmarshal(expanded, &file); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	// The timeout is a duration string in YAML; decode it separately since
	// yaml has no native time.Duration support.
	var extra struct {
		HTTPTimeout string `yaml:"http_timeout"`
	}
	if err := yaml.Unmarshal(expanded, &extra); err == nil && extra.HTTPTimeout != "" {
		d, err := time.ParseDuration(extra.HTTPTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid http_timeout %q: %w", extra.HTTPTimeout, err)
		}
		file.HTTPTimeout = d
	}

	cfg := FromEnv()
	cfg.overlay(&file)
	return cfg, nil
}

// LoadWithDefaults loads config with fallback to default locations.
// Checks: ./toolbridge.yaml, ~/.config/toolbridge/toolbridge.yaml.
// No file found is not an error; the environment alone is enough.
func LoadWithDefaults() (*Config, error) {
	locations := []string{"./toolbridge.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(home, ".config", "toolbridge", "toolbridge.yaml"))
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return Load(loc)
		}
	}

	return FromEnv(), nil
}

func (c *Config) overlay(o *Config) {
	if o.GoogleMapsAPIKey != "" {
		c.GoogleMapsAPIKey = o.GoogleMapsAPIKey
	}
	if o.PerplexityAPIKey != "" {
		c.PerplexityAPIKey = o.PerplexityAPIKey
	}
	if o.AsanaAccessToken != "" {
		c.AsanaAccessToken = o.AsanaAccessToken
	}
	if o.AsanaDefaultWorkspace != "" {
		c.AsanaDefaultWorkspace = o.AsanaDefaultWorkspace
	}
	if o.CalendarAccessToken != "" {
		c.CalendarAccessToken = o.CalendarAccessToken
	}
	if o.CalendarID != "" {
		c.CalendarID = o.CalendarID
	}
	if o.HTTPTimeout > 0 {
		c.HTTPTimeout = o.HTTPTimeout
	}
}
