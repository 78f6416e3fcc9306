package catalog

import (
	"strings"
	"time"
)

// Config holds configuration for the catalog feature.
type Config struct {
	// Enabled toggles the /catalog routes.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Validate checks every composite update and reports broken ones through
	// the logger's DPanic.
	Validate bool `mapstructure:"validate" default:"false"`
	// ReleaseIntervalSeconds is how often strongly cached entries are released
	// to the weak tier. Zero disables releasing.
	ReleaseIntervalSeconds int `mapstructure:"release_interval_seconds" default:"60"`
	// StatTimeoutSeconds bounds each object stat made to materialize an entry.
	StatTimeoutSeconds int `mapstructure:"stat_timeout_seconds" default:"5"`
	// Prefixes is a comma separated list of storage prefixes attached at startup.
	Prefixes string `mapstructure:"prefixes" default:""`
	// Tables is a comma separated list of persisted lists attached at startup.
	Tables string `mapstructure:"tables" default:""`
}

// ReleaseInterval returns the release period, zero when disabled.
func (c Config) ReleaseInterval() time.Duration {
	if c.ReleaseIntervalSeconds <= 0 {
		return 0
	}
	return time.Duration(c.ReleaseIntervalSeconds) * time.Second
}

// StatTimeout returns the per-entry stat timeout.
func (c Config) StatTimeout() time.Duration {
	return time.Duration(c.StatTimeoutSeconds) * time.Second
}

// PrefixList returns the configured startup prefixes.
func (c Config) PrefixList() []string {
	return splitList(c.Prefixes)
}

// TableList returns the configured startup tables.
func (c Config) TableList() []string {
	return splitList(c.Tables)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
