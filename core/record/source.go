package record

import (
	"fmt"
	"strings"

	"deck-sync/core/utils"
)

// SourceSpec maps one remote source onto one local collection.
type SourceSpec struct {
	// SourceID is the canonical id of the source.
	SourceID string `json:"source_id"`
	// TargetCollection is the local collection records are merged into.
	TargetCollection string `json:"target_collection"`
	// Recursive includes nested pages of the source.
	Recursive bool `json:"recursive"`
}

// NewSourceSpec builds a SourceSpec from configured values.
// The id is normalized; an empty target falls back to the id as configured.
func NewSourceSpec(rawID, target string, recursive bool) (SourceSpec, error) {
	rawID = strings.TrimSpace(rawID)
	id, err := utils.NormalizeID(rawID)
	if err != nil {
		return SourceSpec{}, fmt.Errorf("source %q: %w", rawID, err)
	}
	target = strings.TrimSpace(target)
	if target == "" {
		target = rawID
	}
	return SourceSpec{SourceID: id, TargetCollection: target, Recursive: recursive}, nil
}
