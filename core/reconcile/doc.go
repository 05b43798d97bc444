// Package reconcile merges extracted records into local collections and plans the
// removal of records a sync round no longer confirms.
//
// # Architecture
//
// The reconcile system consists of three parts:
//
// 1. Reconciler: for every record with front content it looks up an existing local
// record with the same identity, updates it when found and creates it otherwise. Every
// id it creates or updates is reported as "touched".
//
// 2. CollectionState: per collection, the ids that existed before the round and the ids
// the round touched. Their difference is the obsolete set.
//
// 3. Plan/Apply: PlanObsolete turns the obsolete sets into delete actions, ApplyPlan
// executes them only when the caller confirmed and the plan is not a dry run.
//
// # Error policy
//
// A failure on one record never aborts the others. Failures are collected into the
// Outcome and later into SyncRoundStats, and only surface at the end of the round.
//
// # Usage Example
//
//	r := reconcile.NewReconciler(store, logger)
//	out := r.Reconcile(ctx, "Deck A", records)
//	state.Touch(out.Touched)
//
//	plan := reconcile.PlanObsolete(states)
//	deleted, err := reconcile.ApplyPlan(ctx, store, plan, reconcile.Options{Confirmed: true})
package reconcile
