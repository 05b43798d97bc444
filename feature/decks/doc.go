// Package decks synchronizes configured sources into local collections.
//
// A Coordinator runs one round at a time. A round fans out one extraction task
// per source, reconciles each task's records into its collection from a single
// consumer goroutine, and finalizes once every task has finished. Finalization
// reports failure when any source or record failed. Otherwise it optionally
// deletes obsolete records after confirmation, then persists the store.
//
// Rounds are started manually (HTTP, CLI) or by the Scheduler. A manual start
// while a round is in flight returns ErrSyncInProgress; an automatic start is
// silently skipped.
//
// # Usage
//
//	coord := decks.NewCoordinator(cfg.Sync.Settings, st, ex, runner.New(4, log), decks.Options{Logger: log})
//	round, err := coord.StartManual(ctx)
//	if err != nil {
//	    return err
//	}
//	report := round.Wait()
package decks
