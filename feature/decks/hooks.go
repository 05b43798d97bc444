package decks

import (
	"context"

	"go.uber.org/zap"
)

// Notifier receives the outcome of manual rounds.
type Notifier interface {
	RoundSucceeded(report RoundReport)
	RoundFailed(report RoundReport)
}

// Confirmer decides whether count obsolete records may be deleted.
type Confirmer interface {
	ConfirmDeletion(ctx context.Context, count int) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, count int) bool

// ConfirmDeletion calls f.
func (f ConfirmFunc) ConfirmDeletion(ctx context.Context, count int) bool {
	return f(ctx, count)
}

// StaticConfirmer answers every confirmation request with the same decision.
type StaticConfirmer bool

// ConfirmDeletion returns the static decision.
func (s StaticConfirmer) ConfirmDeletion(ctx context.Context, count int) bool {
	return bool(s)
}

type nopNotifier struct{}

func (nopNotifier) RoundSucceeded(RoundReport) {}
func (nopNotifier) RoundFailed(RoundReport)    {}

// LogNotifier logs round outcomes.
type LogNotifier struct {
	Logger *zap.Logger
}

// RoundSucceeded logs the round statistics.
func (n LogNotifier) RoundSucceeded(r RoundReport) {
	n.Logger.Info("Sync finished",
		zap.String("round_id", r.ID),
		zap.Int("processed", r.Stats.Processed),
		zap.Int("created", r.Stats.Created),
		zap.Int("updated", r.Stats.Updated),
		zap.Int("deleted", r.Stats.Deleted),
	)
}

// RoundFailed logs the round errors.
func (n LogNotifier) RoundFailed(r RoundReport) {
	n.Logger.Error("Sync failed",
		zap.String("round_id", r.ID),
		zap.String("error", r.Err),
		zap.Strings("errors", r.Stats.Errors),
	)
}
