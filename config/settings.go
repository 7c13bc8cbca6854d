// Package config provides runtime configuration for the search subsystem:
// scoring thresholds, option paging, and worker sizing.
package config

import "fmt"

// Settings contains all runtime configuration options.
type Settings struct {
	DBPath         string  `json:"db_path"`          // SQLite database path, ":memory:" for ephemeral
	Port           string  `json:"port"`             // HTTP listen port
	MinimumScore   float64 `json:"minimum_score"`    // aggregate scores below this are excluded from results entirely
	OptionPageSize int     `json:"option_page_size"` // fixed page size at which option listings are truncated
	IndexWorkers   int     `json:"index_workers"`    // concurrent background reindex passes
}

// DefaultSettings returns the settings used when no overrides are provided.
func DefaultSettings() Settings {
	return Settings{
		DBPath:         "reliquary.db",
		Port:           "8080",
		MinimumScore:   0.1,
		OptionPageSize: 100,
		IndexWorkers:   4,
	}
}

// Validate checks settings for basic requirements.
func (s *Settings) Validate() error {
	if s.MinimumScore < 0 {
		return fmt.Errorf("minimum score must not be negative, got %v", s.MinimumScore)
	}
	if s.OptionPageSize <= 0 {
		return fmt.Errorf("option page size must be positive, got %d", s.OptionPageSize)
	}
	if s.IndexWorkers <= 0 {
		return fmt.Errorf("index workers must be positive, got %d", s.IndexWorkers)
	}
	if s.DBPath == "" {
		return fmt.Errorf("database path is required")
	}
	return nil
}
