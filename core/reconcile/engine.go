package reconcile

import (
	"context"
	"fmt"

	"deck-sync/core/record"

	"go.uber.org/zap"
)

// Reconciler merges extracted records into a Store.
type Reconciler struct {
	store  Store
	logger *zap.Logger
}

// NewReconciler creates a reconciler over store.
func NewReconciler(store Store, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{store: store, logger: logger}
}

// Reconcile creates or updates every processable record in the collection.
// Records with a blank front are skipped and not counted. A failing record is
// recorded in Outcome.Errors and does not stop the remaining records.
func (r *Reconciler) Reconcile(ctx context.Context, collection string, records []record.Record) Outcome {
	out := Outcome{Touched: NewIDSet()}

	for _, rec := range records {
		if !rec.Processable() {
			r.logger.Warn("Record front is empty, skipping",
				zap.String("collection", collection),
				zap.String("back", rec.Preview()),
			)
			continue
		}

		id, created, updated, err := r.reconcileOne(ctx, collection, rec)
		if err != nil {
			r.logger.Error("Record reconciliation failed",
				zap.String("collection", collection),
				zap.String("front", rec.Preview()),
				zap.Error(err),
			)
			out.Errors = append(out.Errors, fmt.Sprintf("%s: record %q: %v", collection, rec.Preview(), err))
			continue
		}

		out.Processed++
		if created {
			out.Created++
		}
		if updated {
			out.Updated++
		}
		out.Touched.Add(id)
	}

	return out
}

// reconcileOne handles a single record. Panics from the store are turned into errors.
func (r *Reconciler) reconcileOne(ctx context.Context, collection string, rec record.Record) (id int64, created, updated bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	id, found, err := r.store.Find(ctx, collection, rec)
	if err != nil {
		return 0, false, false, fmt.Errorf("find: %w", err)
	}

	if found {
		changed, err := r.store.Update(ctx, collection, id, rec)
		if err != nil {
			return 0, false, false, fmt.Errorf("update %d: %w", id, err)
		}
		return id, false, changed, nil
	}

	id, err = r.store.Create(ctx, collection, rec)
	if err != nil {
		return 0, false, false, fmt.Errorf("create: %w", err)
	}
	return id, true, false, nil
}
