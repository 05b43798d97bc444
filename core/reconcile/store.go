package reconcile

import (
	"context"

	"deck-sync/core/record"
)

// Store is the local collection store the reconciler works against.
// Implementations are only ever called from one goroutine at a time.
type Store interface {
	// ExistingIDs returns the ids of every record currently in the collection.
	ExistingIDs(ctx context.Context, collection string) (IDSet, error)

	// Find returns the id of a stored record with the same identity as rec.
	Find(ctx context.Context, collection string, rec record.Record) (id int64, found bool, err error)

	// Create stores rec and returns its new id.
	Create(ctx context.Context, collection string, rec record.Record) (int64, error)

	// Update overwrites the stored record with rec.
	// It reports whether the stored content actually changed.
	Update(ctx context.Context, collection string, id int64, rec record.Record) (bool, error)

	// Delete removes the given ids from the collection and returns how many were removed.
	Delete(ctx context.Context, collection string, ids []int64) (int, error)

	// Persist makes the round's changes to the given collections durable.
	Persist(ctx context.Context, collections []string) error
}
