package decks

import (
	"time"

	"deck-sync/core/reconcile"
)

// RoundReport describes a finished round.
type RoundReport struct {
	ID             string                   `json:"id"`
	Automatic      bool                     `json:"automatic"`
	RemoveObsolete bool                     `json:"remove_obsolete"`
	Sources        int                      `json:"sources"`
	Stats          reconcile.SyncRoundStats `json:"stats"`
	// PendingDeletions is the number of obsolete records found.
	PendingDeletions int `json:"pending_deletions"`
	// Confirmed reports whether deleting them was confirmed.
	Confirmed  bool      `json:"confirmed"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// Err is set when the round failed.
	Err string `json:"error,omitempty"`
}

// Succeeded reports whether the round finished without any error.
func (r RoundReport) Succeeded() bool {
	return r.Err == ""
}

// Round is a handle on a dispatched round.
type Round struct {
	ID       string
	finished chan struct{}
	report   RoundReport
}

// Done is closed once the round is finalized.
func (r *Round) Done() <-chan struct{} {
	return r.finished
}

// Wait blocks until the round is finalized and returns its report.
func (r *Round) Wait() RoundReport {
	<-r.finished
	return r.report
}
