package reconcile

import (
	"context"
	"fmt"
	"testing"

	"deck-sync/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore is a simple in-memory test store keyed by collection.
type mockStore struct {
	nextID     int64
	records    map[string]map[int64]record.Record
	findFunc   func(collection string, rec record.Record) (int64, bool, error)
	createFunc func(collection string, rec record.Record) (int64, error)
	updateFunc func(collection string, id int64, rec record.Record) (bool, error)
	deleteFunc func(collection string, ids []int64) (int, error)
	deletes    map[string][]int64
	persisted  [][]string
}

func newMockStore() *mockStore {
	return &mockStore{
		records: make(map[string]map[int64]record.Record),
		deletes: make(map[string][]int64),
	}
}

func (m *mockStore) seed(collection string, recs ...record.Record) []int64 {
	var ids []int64
	for _, rec := range recs {
		id, _ := m.Create(context.Background(), collection, rec)
		ids = append(ids, id)
	}
	return ids
}

func (m *mockStore) ExistingIDs(ctx context.Context, collection string) (IDSet, error) {
	ids := NewIDSet()
	for id := range m.records[collection] {
		ids.Add(id)
	}
	return ids, nil
}

func (m *mockStore) Find(ctx context.Context, collection string, rec record.Record) (int64, bool, error) {
	if m.findFunc != nil {
		return m.findFunc(collection, rec)
	}
	for id, stored := range m.records[collection] {
		if stored.Front == rec.Front {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (m *mockStore) Create(ctx context.Context, collection string, rec record.Record) (int64, error) {
	if m.createFunc != nil {
		return m.createFunc(collection, rec)
	}
	if m.records[collection] == nil {
		m.records[collection] = make(map[int64]record.Record)
	}
	m.nextID++
	m.records[collection][m.nextID] = rec
	return m.nextID, nil
}

func (m *mockStore) Update(ctx context.Context, collection string, id int64, rec record.Record) (bool, error) {
	if m.updateFunc != nil {
		return m.updateFunc(collection, id, rec)
	}
	stored := m.records[collection][id]
	if stored.Checksum() == rec.Checksum() {
		return false, nil
	}
	m.records[collection][id] = rec
	return true, nil
}

func (m *mockStore) Delete(ctx context.Context, collection string, ids []int64) (int, error) {
	if m.deleteFunc != nil {
		return m.deleteFunc(collection, ids)
	}
	m.deletes[collection] = append(m.deletes[collection], ids...)
	n := 0
	for _, id := range ids {
		if _, ok := m.records[collection][id]; ok {
			delete(m.records[collection], id)
			n++
		}
	}
	return n, nil
}

func (m *mockStore) Persist(ctx context.Context, collections []string) error {
	m.persisted = append(m.persisted, collections)
	return nil
}

func TestReconcile_CreateUpdateSkip(t *testing.T) {
	store := newMockStore()
	ids := store.seed("Deck A", record.Record{Front: "existing", Back: "old"})

	r := NewReconciler(store, nil)
	out := r.Reconcile(context.Background(), "Deck A", []record.Record{
		{Front: "new 1", Back: "a"},
		{Front: "new 2", Back: "b"},
		{Front: "existing", Back: "new"},
	})

	assert.Empty(t, out.Errors)
	assert.Equal(t, 3, out.Processed)
	assert.Equal(t, 2, out.Created)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, 3, out.Touched.Len())
	assert.True(t, out.Touched.Has(ids[0]))
	assert.Equal(t, "new", store.records["Deck A"][ids[0]].Back)
}

func TestReconcile_UnchangedUpdateNotCounted(t *testing.T) {
	store := newMockStore()
	ids := store.seed("Deck A", record.Record{Front: "q", Back: "a"})

	out := NewReconciler(store, nil).Reconcile(context.Background(), "Deck A", []record.Record{{Front: "q", Back: "a"}})

	assert.Equal(t, 1, out.Processed)
	assert.Equal(t, 0, out.Created)
	assert.Equal(t, 0, out.Updated)
	assert.True(t, out.Touched.Has(ids[0]), "unchanged records are still touched")
}

func TestReconcile_BlankFrontSkipped(t *testing.T) {
	store := newMockStore()
	store.createFunc = func(collection string, rec record.Record) (int64, error) {
		t.Fatalf("create must not be called for %q", rec.Back)
		return 0, nil
	}

	out := NewReconciler(store, nil).Reconcile(context.Background(), "Deck A", []record.Record{
		{Front: "", Back: "orphan back"},
		{Front: "   ", Back: "whitespace"},
	})

	assert.Equal(t, 0, out.Processed)
	assert.Equal(t, 0, out.Created)
	assert.Equal(t, 0, out.Touched.Len())
	assert.Empty(t, out.Errors)
}

func TestReconcile_ErrorIsolation(t *testing.T) {
	store := newMockStore()
	store.findFunc = func(collection string, rec record.Record) (int64, bool, error) {
		if rec.Front == "bad" {
			return 0, false, fmt.Errorf("lookup exploded")
		}
		return 0, false, nil
	}

	out := NewReconciler(store, nil).Reconcile(context.Background(), "Deck A", []record.Record{
		{Front: "good 1"},
		{Front: "bad"},
		{Front: "good 2"},
	})

	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "lookup exploded")
	assert.Contains(t, out.Errors[0], "Deck A")
	assert.Equal(t, 2, out.Processed)
	assert.Equal(t, 2, out.Created)
	assert.Equal(t, 2, out.Touched.Len())
}

func TestReconcile_PanicIsRecorded(t *testing.T) {
	store := newMockStore()
	store.createFunc = func(collection string, rec record.Record) (int64, error) {
		if rec.Front == "boom" {
			panic("driver crashed")
		}
		return 7, nil
	}

	out := NewReconciler(store, nil).Reconcile(context.Background(), "Deck A", []record.Record{
		{Front: "boom"},
		{Front: "fine"},
	})

	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "driver crashed")
	assert.Equal(t, 1, out.Created)
	assert.True(t, out.Touched.Has(7))
}

func TestReconcile_Idempotent(t *testing.T) {
	store := newMockStore()
	records := []record.Record{{Front: "a", Back: "1"}, {Front: "b", Back: "2"}}
	r := NewReconciler(store, nil)

	first := r.Reconcile(context.Background(), "Deck A", records)
	second := r.Reconcile(context.Background(), "Deck A", records)

	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 0, second.Updated)
	assert.Equal(t, first.Touched, second.Touched)
}

func TestSyncRoundStats_Add(t *testing.T) {
	var stats SyncRoundStats
	stats.Add(Outcome{Processed: 3, Created: 2, Updated: 1})
	stats.Add(Outcome{Processed: 1, Created: 1, Errors: []string{"x"}})
	stats.AddError("source failed")

	assert.Equal(t, 4, stats.Processed)
	assert.Equal(t, 3, stats.Created)
	assert.Equal(t, 1, stats.Updated)
	assert.Equal(t, []string{"x", "source failed"}, stats.Errors)
	assert.True(t, stats.Failed())
}

func TestCollectionState_Obsolete(t *testing.T) {
	state := NewCollectionState(NewIDSet(1, 2, 3, 4))
	state.Touch(NewIDSet(2, 4, 9))

	assert.Equal(t, []int64{1, 3}, state.Obsolete().Sorted())

	state.Reset()
	assert.Equal(t, 0, state.Synced.Len())
	assert.Equal(t, []int64{1, 2, 3, 4}, state.Obsolete().Sorted())

	state.Snapshot(nil)
	assert.Equal(t, 0, state.Obsolete().Len())
}
