package reconcile

import (
	"context"
	"fmt"
	"testing"

	"deck-sync/core/record"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPlanObsolete tests that only untouched pre-round ids are planned for deletion.
func TestPlanObsolete(t *testing.T) {
	deckA := NewCollectionState(NewIDSet(1, 2, 3))
	deckA.Touch(NewIDSet(2))
	deckB := NewCollectionState(NewIDSet(10, 11))
	deckC := NewCollectionState(NewIDSet(20))
	deckC.Touch(NewIDSet(20, 21))

	plan := PlanObsolete(map[string]*CollectionState{
		"Deck B": deckB,
		"Deck A": deckA,
		"Deck C": deckC,
	})

	assert.Equal(t, 4, plan.Summary.Obsolete)
	assert.Equal(t, map[string]int{"Deck A": 2, "Deck B": 2}, plan.Summary.Collections)
	require.Len(t, plan.Actions, 4)

	// Deterministic order: collection, then id
	assert.Equal(t, Action{Type: ActionDeleteRecord, Collection: "Deck A", ID: 1}, plan.Actions[0])
	assert.Equal(t, Action{Type: ActionDeleteRecord, Collection: "Deck A", ID: 3}, plan.Actions[1])
	assert.Equal(t, Action{Type: ActionDeleteRecord, Collection: "Deck B", ID: 10}, plan.Actions[2])
	assert.Equal(t, Action{Type: ActionDeleteRecord, Collection: "Deck B", ID: 11}, plan.Actions[3])
}

func TestPlanObsolete_Empty(t *testing.T) {
	state := NewCollectionState(NewIDSet(1))
	state.Touch(NewIDSet(1))

	plan := PlanObsolete(map[string]*CollectionState{"Deck A": state})
	assert.True(t, plan.Empty())
	assert.Equal(t, 0, plan.Summary.Obsolete)
}

// TestApplyPlan_SumsAcrossCollections tests that the deleted count covers every collection.
func TestApplyPlan_SumsAcrossCollections(t *testing.T) {
	store := newMockStore()
	a := store.seed("Deck A", mkRecords("a", 3)...)
	b := store.seed("Deck B", mkRecords("b", 2)...)

	plan := &ObsoletePlan{Actions: []Action{
		{Type: ActionDeleteRecord, Collection: "Deck A", ID: a[0]},
		{Type: ActionDeleteRecord, Collection: "Deck A", ID: a[2]},
		{Type: ActionDeleteRecord, Collection: "Deck B", ID: b[0]},
		{Type: ActionDeleteRecord, Collection: "Deck B", ID: b[1]},
	}}

	deleted, err := ApplyPlan(context.Background(), store, plan, Options{Confirmed: true})
	assert.NoError(t, err)
	assert.Equal(t, 4, deleted)

	// One batch per collection
	assert.Equal(t, []int64{a[0], a[2]}, store.deletes["Deck A"])
	assert.Equal(t, []int64{b[0], b[1]}, store.deletes["Deck B"])
	assert.Len(t, store.records["Deck A"], 1)
	assert.Len(t, store.records["Deck B"], 0)
}

func TestApplyPlan_RequiresConfirmation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"NotConfirmed", Options{Confirmed: false}},
		{"DryRun", Options{Confirmed: true, DryRun: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMockStore()
			ids := store.seed("Deck A", mkRecords("a", 1)...)
			plan := &ObsoletePlan{Actions: []Action{{Type: ActionDeleteRecord, Collection: "Deck A", ID: ids[0]}}}

			deleted, err := ApplyPlan(context.Background(), store, plan, tt.opts)
			assert.NoError(t, err)
			assert.Equal(t, 0, deleted)
			assert.Empty(t, store.deletes)
		})
	}
}

func TestApplyPlan_StopsOnError(t *testing.T) {
	store := newMockStore()
	store.deleteFunc = func(collection string, ids []int64) (int, error) {
		if collection == "Deck B" {
			return 0, fmt.Errorf("locked")
		}
		return len(ids), nil
	}

	plan := &ObsoletePlan{Actions: []Action{
		{Type: ActionDeleteRecord, Collection: "Deck A", ID: 1},
		{Type: ActionDeleteRecord, Collection: "Deck B", ID: 2},
	}}

	deleted, err := ApplyPlan(context.Background(), store, plan, Options{Confirmed: true})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Deck B")
	assert.Equal(t, 1, deleted)
}

func mkRecords(prefix string, n int) []record.Record {
	out := make([]record.Record, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, record.Record{Front: fmt.Sprintf("%s-%d", prefix, i)})
	}
	return out
}
