package decks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	rawID       = "0123456789abcdef0123456789abcdef"
	canonicalID = "01234567-89ab-cdef-0123-456789abcdef"
)

func TestConfig_Settings(t *testing.T) {
	cfg := Config{
		Namespace: "team",
		Sources: []SourceConfig{
			{SourceID: rawID},
			{SourceID: "https://www.notion.so/team/Biology-fedcba9876543210fedcba9876543210?pvs=4", TargetCollection: "Biology", Recursive: true},
			{SourceID: rawID, TargetCollection: "Biology"},
		},
	}

	settings, err := cfg.Settings()
	require.NoError(t, err)
	require.Len(t, settings.Sources, 3)

	assert.Equal(t, "team", settings.Namespace)
	assert.Equal(t, canonicalID, settings.Sources[0].SourceID)
	assert.Equal(t, rawID, settings.Sources[0].TargetCollection, "target defaults to the id as configured")
	assert.Equal(t, "fedcba98-7654-3210-fedc-ba9876543210", settings.Sources[1].SourceID)
	assert.True(t, settings.Sources[1].Recursive)
	assert.Equal(t, []string{rawID, "Biology"}, settings.Collections())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"NoSources", Config{}, ""},
		{"Valid", Config{Sources: []SourceConfig{{SourceID: rawID}}}, ""},
		{"EmptyID", Config{Sources: []SourceConfig{{SourceID: rawID}, {SourceID: "  "}}}, "sync.sources[1]"},
		{"BadID", Config{Sources: []SourceConfig{{SourceID: "not-an-id"}}}, "sync.sources[0]"},
		{"NegativeInterval", Config{IntervalMinutes: -1}, "interval_minutes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_Interval(t *testing.T) {
	assert.Equal(t, 30*time.Minute, Config{IntervalMinutes: 30}.Interval())
	assert.Equal(t, time.Duration(0), Config{}.Interval())
}
