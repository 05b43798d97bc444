package decks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"deck-sync/core/logger"
	"deck-sync/core/reconcile"
	"deck-sync/core/record"
	"deck-sync/core/runner"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSyncInProgress is returned when a manual round is requested while one is running.
	ErrSyncInProgress = errors.New("sync already in progress")
	// ErrNotSeeded is returned when collection state cannot be initialized from the store.
	ErrNotSeeded = errors.New("collection store not seeded")
)

// SettingsLoader returns the configuration for the next round.
type SettingsLoader func() (*Settings, error)

// Extractor produces the records of one source.
type Extractor interface {
	Extract(ctx context.Context, spec record.SourceSpec, namespace string) ([]record.Record, error)
}

// Options holds the optional collaborators of a Coordinator.
type Options struct {
	Notifier Notifier
	Clock    Clock
	Logger   *zap.Logger
}

// Coordinator runs sync rounds.
type Coordinator struct {
	load       SettingsLoader
	store      reconcile.Store
	reconciler *reconcile.Reconciler
	extractor  Extractor
	runner     *runner.Runner
	notifier   Notifier
	clock      Clock
	logger     *zap.Logger

	mu    sync.Mutex
	round *roundState
	last  *RoundReport

	// Owned by the round in flight.
	states map[string]*reconcile.CollectionState
	seeded bool
}

type roundState struct {
	report    RoundReport
	settings  *Settings
	confirmer Confirmer
	stats     reconcile.SyncRoundStats
	logger    *zap.Logger
}

// NewCoordinator creates a coordinator.
func NewCoordinator(load SettingsLoader, store reconcile.Store, extractor Extractor, run *runner.Runner, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	return &Coordinator{
		load:       load,
		store:      store,
		reconciler: reconcile.NewReconciler(store, opts.Logger),
		extractor:  extractor,
		runner:     run,
		notifier:   opts.Notifier,
		clock:      opts.Clock,
		logger:     opts.Logger,
		states:     make(map[string]*reconcile.CollectionState),
	}
}

// StartManual starts a user requested round.
func (c *Coordinator) StartManual(ctx context.Context) (*Round, error) {
	return c.start(ctx, false, false, nil)
}

// StartManualWithCleanup starts a user requested round that deletes obsolete
// records once confirm agrees. A nil confirm denies every deletion.
func (c *Coordinator) StartManualWithCleanup(ctx context.Context, confirm Confirmer) (*Round, error) {
	if confirm == nil {
		confirm = StaticConfirmer(false)
	}
	return c.start(ctx, false, true, confirm)
}

// StartAutomatic starts a timer triggered round.
// It returns a nil round and no error when a round is already in flight.
func (c *Coordinator) StartAutomatic(ctx context.Context) (*Round, error) {
	return c.start(ctx, true, false, nil)
}

// Running reports whether a round is in flight.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.round != nil
}

// LastReport returns the report of the last finalized round.
func (c *Coordinator) LastReport() (RoundReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return RoundReport{}, false
	}
	return *c.last, true
}

func (c *Coordinator) start(ctx context.Context, automatic, removeObsolete bool, confirm Confirmer) (*Round, error) {
	id := uuid.NewString()
	round := &roundState{
		report: RoundReport{
			ID:             id,
			Automatic:      automatic,
			RemoveObsolete: removeObsolete,
			StartedAt:      c.clock.Now(),
		},
		confirmer: confirm,
		logger:    logger.ForRound(c.logger, id, automatic),
	}

	c.mu.Lock()
	if c.round != nil {
		c.mu.Unlock()
		if automatic {
			c.logger.Debug("Sync already in progress, skipping automatic round")
			return nil, nil
		}
		return nil, ErrSyncInProgress
	}
	c.round = round
	c.mu.Unlock()

	// The round outlives the request that started it.
	ctx = context.WithoutCancel(ctx)

	settings, err := c.load()
	if err != nil {
		c.abort()
		round.logger.Error("Invalid sync configuration", zap.Error(err))
		return nil, fmt.Errorf("invalid sync configuration: %w", err)
	}
	round.settings = settings
	round.report.Sources = len(settings.Sources)

	if err := c.seed(ctx, settings); err != nil {
		c.abort()
		round.logger.Error("Failed to seed collections", zap.Error(err))
		return nil, err
	}

	msgs := make(chan runner.Message, 2*len(settings.Sources))
	for _, spec := range settings.Sources {
		spec := spec
		c.runner.Submit(ctx, runner.Task{
			Collection: spec.TargetCollection,
			Name:       spec.SourceID,
			Run: func(ctx context.Context) ([]record.Record, error) {
				return c.extractor.Extract(ctx, spec, settings.Namespace)
			},
		}, msgs)
	}

	round.logger.Info("Sync started",
		zap.Int("sources", len(settings.Sources)),
		zap.Bool("remove_obsolete", removeObsolete),
	)

	handle := &Round{ID: id, finished: make(chan struct{})}
	go c.consume(ctx, round, msgs, len(settings.Sources), handle)
	return handle, nil
}

// seed snapshots the ids of every configured collection and resets what the
// previous round touched.
func (c *Coordinator) seed(ctx context.Context, settings *Settings) error {
	if !c.seeded {
		c.logger.Info("Seeding collection state", zap.Int("collections", len(settings.Collections())))
	}
	states := make(map[string]*reconcile.CollectionState)
	for _, collection := range settings.Collections() {
		existing, err := c.store.ExistingIDs(ctx, collection)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNotSeeded, err)
		}
		states[collection] = reconcile.NewCollectionState(existing)
	}
	c.states = states
	c.seeded = true
	return nil
}

func (c *Coordinator) abort() {
	c.mu.Lock()
	c.round = nil
	c.mu.Unlock()
}

// consume is the only place the round state and the store are mutated.
func (c *Coordinator) consume(ctx context.Context, round *roundState, msgs <-chan runner.Message, pending int, handle *Round) {
	for pending > 0 {
		msg := <-msgs
		switch msg.Kind {
		case runner.MessageResult:
			c.handleResult(ctx, round, msg)
		case runner.MessageError:
			round.logger.Warn("Source failed", zap.String("collection", msg.Collection), zap.String("error", msg.Err))
			round.stats.AddError(msg.Err)
		case runner.MessageFinished:
			pending--
		}
	}

	report := c.finalize(ctx, round)

	c.mu.Lock()
	c.last = &report
	c.round = nil
	c.mu.Unlock()

	handle.report = report
	close(handle.finished)
}

func (c *Coordinator) handleResult(ctx context.Context, round *roundState, msg runner.Message) {
	state, ok := c.states[msg.Collection]
	if !ok {
		state = reconcile.NewCollectionState(nil)
		c.states[msg.Collection] = state
	}

	out := c.reconciler.Reconcile(ctx, msg.Collection, msg.Records)
	round.stats.Add(out)
	state.Touch(out.Touched)

	round.logger.Debug("Collection reconciled",
		zap.String("collection", msg.Collection),
		zap.Int("records", len(msg.Records)),
		zap.Int("created", out.Created),
		zap.Int("updated", out.Updated),
		zap.Int("errors", len(out.Errors)),
	)
}

func (c *Coordinator) finalize(ctx context.Context, round *roundState) RoundReport {
	report := round.report

	if round.stats.Failed() {
		report.Stats = round.stats
		report.Err = fmt.Sprintf("sync finished with %d error(s)", len(round.stats.Errors))
		report.FinishedAt = c.clock.Now()
		c.fail(round, report)
		return report
	}

	var finalizeErr error
	if report.RemoveObsolete {
		plan := reconcile.PlanObsolete(c.states)
		report.PendingDeletions = plan.Summary.Obsolete
		if !plan.Empty() {
			report.Confirmed = round.confirmer.ConfirmDeletion(ctx, plan.Summary.Obsolete)
			deleted, err := reconcile.ApplyPlan(ctx, c.store, plan, reconcile.Options{Confirmed: report.Confirmed})
			round.stats.Deleted = deleted
			if err != nil {
				finalizeErr = err
			}
			round.logger.Info("Obsolete records handled",
				zap.Int("obsolete", plan.Summary.Obsolete),
				zap.Bool("confirmed", report.Confirmed),
				zap.Int("deleted", deleted),
			)
		}
	}

	if err := c.store.Persist(ctx, round.settings.Collections()); err != nil {
		finalizeErr = errors.Join(finalizeErr, err)
	}

	report.Stats = round.stats
	report.FinishedAt = c.clock.Now()
	if finalizeErr != nil {
		report.Stats.AddError(finalizeErr.Error())
		report.Err = fmt.Sprintf("failed to finalize sync: %v", finalizeErr)
		c.fail(round, report)
		return report
	}

	c.resnapshot(ctx, round)

	if report.Automatic {
		round.logger.Info("Automatic sync finished",
			zap.Int("processed", report.Stats.Processed),
			zap.Int("created", report.Stats.Created),
			zap.Int("updated", report.Stats.Updated),
		)
	} else {
		c.notifier.RoundSucceeded(report)
	}
	return report
}

// fail surfaces a failed round. Automatic rounds are only logged.
func (c *Coordinator) fail(round *roundState, report RoundReport) {
	if report.Automatic {
		round.logger.Warn("Automatic sync failed",
			zap.String("error", report.Err),
			zap.Strings("errors", report.Stats.Errors),
		)
		return
	}
	c.notifier.RoundFailed(report)
}

// resnapshot refreshes existing ids so the next round starts from the persisted store.
func (c *Coordinator) resnapshot(ctx context.Context, round *roundState) {
	for collection, state := range c.states {
		existing, err := c.store.ExistingIDs(ctx, collection)
		if err != nil {
			round.logger.Warn("Failed to refresh collection snapshot",
				zap.String("collection", collection), zap.Error(err))
			continue
		}
		state.Snapshot(existing)
	}
}

// ObsoleteIDs returns the ids of a collection that existed before the last
// round and were not touched by it.
func (c *Coordinator) ObsoleteIDs(collection string) (reconcile.IDSet, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.round != nil {
		return nil, false
	}
	state, ok := c.states[collection]
	if !ok {
		return nil, false
	}
	return state.Obsolete(), true
}
