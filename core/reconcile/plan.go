package reconcile

import (
	"context"
	"fmt"
	"sort"
)

// PlanObsolete builds the deletion plan for every collection whose pre-round snapshot
// holds ids the round did not touch. It does NOT execute anything; use ApplyPlan.
func PlanObsolete(states map[string]*CollectionState) *ObsoletePlan {
	plan := &ObsoletePlan{
		Summary: PlanSummary{Collections: make(map[string]int)},
	}

	names := make([]string, 0, len(states))
	for name := range states {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		obsolete := states[name].Obsolete()
		if obsolete.Len() == 0 {
			continue
		}
		for _, id := range obsolete.Sorted() {
			plan.Actions = append(plan.Actions, Action{
				Type:       ActionDeleteRecord,
				Collection: name,
				ID:         id,
			})
		}
		plan.Summary.Collections[name] = obsolete.Len()
		plan.Summary.Obsolete += obsolete.Len()
	}

	return plan
}

// ApplyPlan executes the actions in an obsolete plan.
// Returns the number of records deleted across all collections and any error encountered.
// Requires opts.Confirmed=true and opts.DryRun=false to actually execute.
func ApplyPlan(ctx context.Context, store Store, plan *ObsoletePlan, opts Options) (deleted int, err error) {
	// Safety check: do not execute if not confirmed or dry-run
	if !opts.Confirmed || opts.DryRun || plan.Empty() {
		return 0, nil
	}

	// Group actions by collection, one batch delete per collection
	var order []string
	byCollection := make(map[string][]int64)
	for _, action := range plan.Actions {
		if action.Type != ActionDeleteRecord {
			continue
		}
		if _, ok := byCollection[action.Collection]; !ok {
			order = append(order, action.Collection)
		}
		byCollection[action.Collection] = append(byCollection[action.Collection], action.ID)
	}

	for _, collection := range order {
		n, err := store.Delete(ctx, collection, byCollection[collection])
		if err != nil {
			return deleted, fmt.Errorf("failed to delete obsolete records in %s: %w", collection, err)
		}
		deleted += n
	}

	return deleted, nil
}
