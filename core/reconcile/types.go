package reconcile

import (
	"sort"
)

// IDSet is a set of local record ids.
type IDSet map[int64]struct{}

// NewIDSet returns a set holding ids.
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts ids into the set.
func (s IDSet) Add(ids ...int64) {
	for _, id := range ids {
		s[id] = struct{}{}
	}
}

// Has reports whether id is in the set.
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of ids in the set.
func (s IDSet) Len() int {
	return len(s)
}

// Merge adds every id of other to the set.
func (s IDSet) Merge(other IDSet) {
	for id := range other {
		s[id] = struct{}{}
	}
}

// Difference returns the ids in s that are not in other.
func (s IDSet) Difference(other IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if !other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in ascending order.
func (s IDSet) Sorted() []int64 {
	ids := make([]int64, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// CollectionState tracks one collection across a sync round.
type CollectionState struct {
	// Existing is the snapshot of ids present before the round.
	Existing IDSet
	// Synced accumulates the ids the round created or updated.
	Synced IDSet
}

// NewCollectionState returns a state whose snapshot is existing.
func NewCollectionState(existing IDSet) *CollectionState {
	if existing == nil {
		existing = NewIDSet()
	}
	return &CollectionState{Existing: existing, Synced: NewIDSet()}
}

// Snapshot replaces the pre-round snapshot.
func (c *CollectionState) Snapshot(existing IDSet) {
	if existing == nil {
		existing = NewIDSet()
	}
	c.Existing = existing
}

// Reset clears the ids touched by the previous round.
func (c *CollectionState) Reset() {
	c.Synced = NewIDSet()
}

// Touch records ids as confirmed by the current round.
func (c *CollectionState) Touch(ids IDSet) {
	c.Synced.Merge(ids)
}

// Obsolete returns the ids present before the round that the round did not touch.
func (c *CollectionState) Obsolete() IDSet {
	return c.Existing.Difference(c.Synced)
}

// Outcome is the result of reconciling one collection.
type Outcome struct {
	// Touched holds every id created or updated.
	Touched IDSet
	// Processed counts records handled without error.
	Processed int
	// Created counts new records.
	Created int
	// Updated counts existing records whose content changed.
	Updated int
	// Errors describes records that failed.
	Errors []string
}

// SyncRoundStats aggregates outcomes across one round.
type SyncRoundStats struct {
	Processed int      `json:"processed"`
	Created   int      `json:"created"`
	Updated   int      `json:"updated"`
	Deleted   int      `json:"deleted"`
	Errors    []string `json:"errors"`
}

// Add accumulates an outcome.
func (s *SyncRoundStats) Add(o Outcome) {
	s.Processed += o.Processed
	s.Created += o.Created
	s.Updated += o.Updated
	s.Errors = append(s.Errors, o.Errors...)
}

// AddError appends an error description.
func (s *SyncRoundStats) AddError(msg string) {
	s.Errors = append(s.Errors, msg)
}

// Failed reports whether any error was recorded.
func (s *SyncRoundStats) Failed() bool {
	return len(s.Errors) > 0
}

// ActionType represents the type of mutation action.
type ActionType string

const (
	// ActionDeleteRecord deletes an obsolete record from its collection.
	ActionDeleteRecord ActionType = "delete_record"
)

// Action represents a planned mutation operation.
type Action struct {
	// Type specifies the action to perform.
	Type ActionType `json:"type"`

	// Collection is the collection the record belongs to.
	Collection string `json:"collection"`

	// ID is the local record id.
	ID int64 `json:"id"`
}

// ObsoletePlan contains planned deletions.
type ObsoletePlan struct {
	// Actions contains planned mutation operations, ordered by collection then id.
	Actions []Action `json:"actions"`

	// Summary provides aggregate counts.
	Summary PlanSummary `json:"summary"`
}

// Empty reports whether the plan has nothing to delete.
func (p *ObsoletePlan) Empty() bool {
	return p == nil || len(p.Actions) == 0
}

// PlanSummary provides aggregate statistics for an obsolete plan.
type PlanSummary struct {
	// Collections maps each affected collection to its obsolete count.
	Collections map[string]int `json:"collections"`

	// Obsolete is the total number of records planned for deletion.
	Obsolete int `json:"obsolete"`
}

// Options controls plan execution.
type Options struct {
	// DryRun prevents execution of any mutations if true.
	DryRun bool

	// Confirmed indicates the user has confirmed the deletion.
	// If false, nothing is deleted regardless of DryRun.
	Confirmed bool
}
