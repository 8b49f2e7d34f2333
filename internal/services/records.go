// Package services holds the write paths and view models that sit
// between the HTTP handlers and the store.
package services

import (
	"context"
	"fmt"

	"outreach/internal/budget"
	"outreach/internal/core"
	"outreach/internal/log"
	"outreach/internal/store"
)

// Records applies the creation rules that need more than one collection.
type Records struct {
	live   *store.Live
	logger *log.Logger
}

func NewRecords(live *store.Live, logger *log.Logger) *Records {
	return &Records{live: live, logger: logger.WithComponent(log.ComponentStore)}
}

// CreatePerformance stores p. A record without a city takes the city of
// the first directory entry with the same organization name.
func (r *Records) CreatePerformance(ctx context.Context, p core.PerformanceRecord) (core.PerformanceRecord, error) {
	if p.City == "" && p.OrganizationName != "" {
		orgs, err := r.live.ListOrganizations(ctx)
		if err != nil {
			return core.PerformanceRecord{}, fmt.Errorf("load directory: %w", err)
		}
		p.City = cityOf(orgs, p.OrganizationName)
	}
	return r.live.AddPerformance(ctx, p)
}

func cityOf(orgs []core.Organization, name string) string {
	for _, o := range orgs {
		if o.Name == name {
			return o.City
		}
	}
	return ""
}

// AddBudgetItem creates an empty line for inline editing.
func (r *Records) AddBudgetItem(ctx context.Context) (core.BudgetItem, error) {
	return r.live.AddBudgetItem(ctx, core.BudgetItem{})
}

// AddExpenditure stores e. Without a budget item it is attached to the
// first item in display order; with no items at all it is rejected.
func (r *Records) AddExpenditure(ctx context.Context, e core.Expenditure) (core.Expenditure, error) {
	if e.BudgetItemID == "" {
		items, err := r.live.ListBudgetItems(ctx)
		if err != nil {
			return core.Expenditure{}, fmt.Errorf("load budget items: %w", err)
		}
		if len(items) == 0 {
			return core.Expenditure{}, fmt.Errorf("%w: %w", core.ErrNoBudgetItems,
				core.NewValidationError("budgetItemId", "예산 항목을 먼저 추가해주세요"))
		}
		e.BudgetItemID = budget.SortItems(items)[0].ID
	}
	return r.live.AddExpenditure(ctx, e)
}

// ReorderBudgetItems gives each id its position in ids as its order.
func (r *Records) ReorderBudgetItems(ctx context.Context, ids []string) error {
	items, err := r.live.ListBudgetItems(ctx)
	if err != nil {
		return fmt.Errorf("load budget items: %w", err)
	}
	orders := budget.Reorder(items, ids)
	if len(orders) == 0 {
		return nil
	}
	if err := r.live.SetBudgetOrder(ctx, orders); err != nil {
		return err
	}
	r.logger.InfoContext(ctx, "Budget items reordered",
		log.FieldOperation, log.OpReorder, log.FieldCount, len(orders))
	return nil
}

// MoveBudgetItem moves the item at display position from to position to
// and renumbers every item.
func (r *Records) MoveBudgetItem(ctx context.Context, from, to int) error {
	items, err := r.live.ListBudgetItems(ctx)
	if err != nil {
		return fmt.Errorf("load budget items: %w", err)
	}
	sorted := budget.SortItems(items)
	ids := make([]string, len(sorted))
	for i, it := range sorted {
		ids[i] = it.ID
	}
	return r.ReorderBudgetItems(ctx, budget.Move(ids, from, to))
}
