package decks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"deck-sync/core/reconcile"
	"deck-sync/core/record"
	"deck-sync/core/runner"

	"github.com/stretchr/testify/require"
)

// fakeExtractor returns canned records per source id.
type fakeExtractor struct {
	mu      sync.Mutex
	results map[string][]record.Record
	errs    map[string]error
	panics  map[string]bool
	gate    chan struct{}
	calls   map[string]int
}

func newFakeExtractor() *fakeExtractor {
	return &fakeExtractor{
		results: make(map[string][]record.Record),
		errs:    make(map[string]error),
		panics:  make(map[string]bool),
		calls:   make(map[string]int),
	}
}

func (f *fakeExtractor) Extract(ctx context.Context, spec record.SourceSpec, namespace string) ([]record.Record, error) {
	f.mu.Lock()
	f.calls[spec.SourceID]++
	gate := f.gate
	recs := append([]record.Record(nil), f.results[spec.SourceID]...)
	err := f.errs[spec.SourceID]
	shouldPanic := f.panics[spec.SourceID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if shouldPanic {
		panic("extractor crashed")
	}
	return recs, err
}

func (f *fakeExtractor) set(sourceID string, recs ...record.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[sourceID] = recs
}

func (f *fakeExtractor) fail(sourceID string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[sourceID] = err
}

func (f *fakeExtractor) callCount(sourceID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sourceID]
}

// memStore is an in-memory reconcile.Store.
type memStore struct {
	mu           sync.Mutex
	next         int64
	notes        map[string]map[int64]record.Record
	deleteCalls  int
	persistCalls int
	persisted    []string
	persistErr   error
	existingErr  error
}

func newMemStore() *memStore {
	return &memStore{notes: make(map[string]map[int64]record.Record)}
}

func (m *memStore) seed(collection string, recs ...record.Record) []int64 {
	var ids []int64
	for _, rec := range recs {
		id, _ := m.Create(context.Background(), collection, rec)
		ids = append(ids, id)
	}
	return ids
}

func (m *memStore) ids(collection string) reconcile.IDSet {
	m.mu.Lock()
	defer m.mu.Unlock()
	set := reconcile.NewIDSet()
	for id := range m.notes[collection] {
		set.Add(id)
	}
	return set
}

func (m *memStore) get(collection string, id int64) record.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notes[collection][id]
}

func (m *memStore) ExistingIDs(ctx context.Context, collection string) (reconcile.IDSet, error) {
	if m.existingErr != nil {
		return nil, m.existingErr
	}
	return m.ids(collection), nil
}

func (m *memStore) Find(ctx context.Context, collection string, rec record.Record) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, stored := range m.notes[collection] {
		if rec.Source != "" && stored.Source == rec.Source {
			return id, true, nil
		}
		if rec.Source == "" && stored.Front == rec.Front {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (m *memStore) Create(ctx context.Context, collection string, rec record.Record) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.notes[collection] == nil {
		m.notes[collection] = make(map[int64]record.Record)
	}
	m.next++
	m.notes[collection][m.next] = rec
	return m.next, nil
}

func (m *memStore) Update(ctx context.Context, collection string, id int64, rec record.Record) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.notes[collection][id]
	if !ok {
		return false, errors.New("not found")
	}
	if stored.Checksum() == rec.Checksum() {
		return false, nil
	}
	m.notes[collection][id] = rec
	return true, nil
}

func (m *memStore) Delete(ctx context.Context, collection string, ids []int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	n := 0
	for _, id := range ids {
		if _, ok := m.notes[collection][id]; ok {
			delete(m.notes[collection], id)
			n++
		}
	}
	return n, nil
}

func (m *memStore) Persist(ctx context.Context, collections []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.persistCalls++
	m.persisted = collections
	return m.persistErr
}

func (m *memStore) counts() (deletes, persists int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.deleteCalls, m.persistCalls
}

// recordingNotifier keeps every notification.
type recordingNotifier struct {
	mu        sync.Mutex
	succeeded []RoundReport
	failed    []RoundReport
}

func (n *recordingNotifier) RoundSucceeded(r RoundReport) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.succeeded = append(n.succeeded, r)
}

func (n *recordingNotifier) RoundFailed(r RoundReport) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, r)
}

func (n *recordingNotifier) counts() (succeeded, failed int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.succeeded), len(n.failed)
}

// fakeClock hands out manually driven tickers.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	tickers chan *fakeTicker
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		tickers: make(chan *fakeTicker, 1),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	t := &fakeTicker{ch: make(chan time.Time), interval: d}
	c.tickers <- t
	return t
}

type fakeTicker struct {
	ch       chan time.Time
	interval time.Duration

	mu      sync.Mutex
	stopped bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *fakeTicker) isStopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

func staticSettings(specs ...record.SourceSpec) SettingsLoader {
	return func() (*Settings, error) {
		return &Settings{Sources: specs}, nil
	}
}

func spec(id, collection string) record.SourceSpec {
	return record.SourceSpec{SourceID: id, TargetCollection: collection}
}

type testEnv struct {
	coord     *Coordinator
	store     *memStore
	extractor *fakeExtractor
	notifier  *recordingNotifier
	clock     *fakeClock
}

func newTestEnv(t *testing.T, load SettingsLoader) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     newMemStore(),
		extractor: newFakeExtractor(),
		notifier:  &recordingNotifier{},
		clock:     newFakeClock(),
	}
	env.coord = NewCoordinator(load, env.store, env.extractor, runner.New(3, nil), Options{
		Notifier: env.notifier,
		Clock:    env.clock,
	})
	return env
}

// wait returns the report of round or fails the test after a timeout.
func wait(t *testing.T, round *Round) RoundReport {
	t.Helper()
	require.NotNil(t, round)
	select {
	case <-round.Done():
		return round.Wait()
	case <-time.After(5 * time.Second):
		t.Fatal("round did not finish")
		return RoundReport{}
	}
}
