// Package store defines the persistence ports for the dashboard and the
// Live decorator that turns any backend into a push-based data source.
package store

import (
	"context"

	"outreach/internal/core"
)

// Collection names shared by every backend, the change feed and the
// websocket endpoint.
const (
	CollectionOrganizations = "organizations"
	CollectionPerformances  = "performances"
	CollectionBudgetItems   = "budget_items"
	CollectionExpenditures  = "budget_expenditures"
)

// Collections lists every subscribable collection.
func Collections() []string {
	return []string{CollectionOrganizations, CollectionPerformances, CollectionBudgetItems, CollectionExpenditures}
}

// OrganizationStore lists newest created first.
type OrganizationStore interface {
	ListOrganizations(ctx context.Context) ([]core.Organization, error)
	GetOrganization(ctx context.Context, id string) (core.Organization, error)
	AddOrganization(ctx context.Context, o core.Organization) (core.Organization, error)
	UpdateOrganization(ctx context.Context, id string, p core.OrganizationPatch) (core.Organization, error)
	DeleteOrganization(ctx context.Context, id string) error
}

// PerformanceStore lists newest date first.
type PerformanceStore interface {
	ListPerformances(ctx context.Context) ([]core.PerformanceRecord, error)
	GetPerformance(ctx context.Context, id string) (core.PerformanceRecord, error)
	AddPerformance(ctx context.Context, p core.PerformanceRecord) (core.PerformanceRecord, error)
	UpdatePerformance(ctx context.Context, id string, p core.PerformancePatch) (core.PerformanceRecord, error)
	DeletePerformance(ctx context.Context, id string) error
}

// BudgetItemStore lists by order, then creation.
type BudgetItemStore interface {
	ListBudgetItems(ctx context.Context) ([]core.BudgetItem, error)
	GetBudgetItem(ctx context.Context, id string) (core.BudgetItem, error)
	AddBudgetItem(ctx context.Context, b core.BudgetItem) (core.BudgetItem, error)
	UpdateBudgetItem(ctx context.Context, id string, p core.BudgetItemPatch) (core.BudgetItem, error)
	DeleteBudgetItem(ctx context.Context, id string) error
	SetBudgetOrder(ctx context.Context, orders map[string]int) error
}

// ExpenditureStore lists by creation.
type ExpenditureStore interface {
	ListExpenditures(ctx context.Context) ([]core.Expenditure, error)
	GetExpenditure(ctx context.Context, id string) (core.Expenditure, error)
	AddExpenditure(ctx context.Context, e core.Expenditure) (core.Expenditure, error)
	UpdateExpenditure(ctx context.Context, id string, p core.ExpenditurePatch) (core.Expenditure, error)
	DeleteExpenditure(ctx context.Context, id string) error
}

// CredentialStore holds the single admin login. Get returns nil, nil
// when nothing has been saved yet.
type CredentialStore interface {
	GetAdminCredential(ctx context.Context) (*core.AdminCredential, error)
	SaveAdminCredential(ctx context.Context, c core.AdminCredential) error
}

// Backend is a complete persistence implementation.
type Backend interface {
	OrganizationStore
	PerformanceStore
	BudgetItemStore
	ExpenditureStore
	CredentialStore
	Close() error
}
