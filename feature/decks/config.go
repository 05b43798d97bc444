package decks

import (
	"fmt"
	"time"

	"deck-sync/core/record"
)

// SourceConfig is one configured source.
type SourceConfig struct {
	// SourceID is the page id or page URL of the source.
	SourceID string `mapstructure:"source_id" json:"source_id"`
	// TargetCollection is the local collection. Defaults to SourceID as configured.
	TargetCollection string `mapstructure:"target_collection" json:"target_collection"`
	// Recursive includes nested pages.
	Recursive bool `mapstructure:"recursive" json:"recursive"`
}

// Config holds configuration for synchronization.
type Config struct {
	// Sources lists the sources to sync.
	Sources []SourceConfig `mapstructure:"sources"`
	// Namespace is the workspace segment of provenance links.
	Namespace string `mapstructure:"namespace" default:""`
	// IntervalMinutes is the automatic sync period. Zero disables the timer.
	// A running scheduler picks up a new value after its next tick.
	IntervalMinutes int `mapstructure:"interval_minutes" default:"30"`
	// SyncOnStart runs an automatic round right after start-up.
	SyncOnStart bool `mapstructure:"sync_on_start" default:"true"`
	// Workers bounds concurrent extractions. Zero or less means unbounded.
	Workers int `mapstructure:"workers" default:"4"`
	// ExportPrefix is the bucket prefix holding export archives.
	ExportPrefix string `mapstructure:"export_prefix" default:"exports"`
	// MediaPrefix is the bucket prefix media is uploaded under.
	MediaPrefix string `mapstructure:"media_prefix" default:"media"`
}

// Settings is the validated, per-round view of the configuration.
type Settings struct {
	Sources   []record.SourceSpec
	Namespace string
}

// Collections returns the distinct target collections in configuration order.
func (s *Settings) Collections() []string {
	seen := make(map[string]bool)
	var out []string
	for _, spec := range s.Sources {
		if !seen[spec.TargetCollection] {
			seen[spec.TargetCollection] = true
			out = append(out, spec.TargetCollection)
		}
	}
	return out
}

// Settings validates the configuration and normalizes its sources.
// An empty source list is valid and yields empty rounds.
func (c Config) Settings() (*Settings, error) {
	settings := &Settings{Namespace: c.Namespace}
	for i, src := range c.Sources {
		spec, err := record.NewSourceSpec(src.SourceID, src.TargetCollection, src.Recursive)
		if err != nil {
			return nil, fmt.Errorf("sync.sources[%d]: %w", i, err)
		}
		settings.Sources = append(settings.Sources, spec)
	}
	return settings, nil
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.IntervalMinutes < 0 {
		return fmt.Errorf("sync.interval_minutes must not be negative")
	}
	_, err := c.Settings()
	return err
}

// Interval returns the automatic sync period.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}
