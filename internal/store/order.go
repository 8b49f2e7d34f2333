package store

import (
	"sort"

	"outreach/internal/core"
	"outreach/internal/stats"
)

// The helpers below give backends without server-side ordering the same
// list order the database backends produce. Inputs are expected in
// creation order and are sorted in place.

// SortOrganizations orders newest created first.
func SortOrganizations(orgs []core.Organization) {
	sort.SliceStable(orgs, func(i, j int) bool { return orgs[i].CreatedAt.After(orgs[j].CreatedAt) })
}

// SortPerformances orders newest session date first, dateless last.
func SortPerformances(perfs []core.PerformanceRecord) {
	stats.SortNewestFirst(perfs)
}

// SortBudgetItems orders by the manual order, keeping creation order for
// ties.
func SortBudgetItems(items []core.BudgetItem) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].OrderValue() < items[j].OrderValue() })
}
