package services

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"outreach/internal/budget"
	"outreach/internal/cache"
	"outreach/internal/core"
	"outreach/internal/region"
	"outreach/internal/stats"
	"outreach/internal/store"
)

// Source is the read side the view models are built from.
type Source interface {
	ListOrganizations(ctx context.Context) ([]core.Organization, error)
	ListPerformances(ctx context.Context) ([]core.PerformanceRecord, error)
	ListBudgetItems(ctx context.Context) ([]core.BudgetItem, error)
	ListExpenditures(ctx context.Context) ([]core.Expenditure, error)
}

// DashboardQuery selects the date window, the city board region and an
// optional city drill-down.
type DashboardQuery struct {
	Start  *core.Date
	End    *core.Date
	Region string
	City   string
}

func (q DashboardQuery) key() string {
	return fmt.Sprintf("%s|%s|%s|%s", dateKey(q.Start), dateKey(q.End), q.Region, q.City)
}

func dateKey(d *core.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// DashboardView is everything the dashboard screen renders.
type DashboardView struct {
	stats.Snapshot
	RegisteredOrganizations int                     `json:"registeredOrganizations"`
	Sessions                int                     `json:"sessions"`
	AverageParticipants     int                     `json:"averageParticipants"`
	Region                  string                  `json:"region"`
	Cities                  []stats.CityRow         `json:"cities"`
	SelectedCity            string                  `json:"selectedCity,omitempty"`
	CityOrganizations       []stats.OrganizationRow `json:"cityOrganizations,omitempty"`
}

// Dashboard builds and caches the dashboard and budget views.
type Dashboard struct {
	src     Source
	views   cache.Cache[DashboardView]
	budgets cache.Cache[budget.Summary]
	now     func() time.Time

	// mu orders Invalidate against the final Set of a build. A build only
	// caches its result if no invalidation happened since it started
	// reading.
	mu        sync.Mutex
	viewGen   uint64
	budgetGen uint64
}

func NewDashboard(src Source, views cache.Cache[DashboardView], budgets cache.Cache[budget.Summary]) *Dashboard {
	return &Dashboard{src: src, views: views, budgets: budgets, now: time.Now}
}

// Invalidate drops the cached views that depend on collection.
func (d *Dashboard) Invalidate(collection string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	switch collection {
	case store.CollectionOrganizations, store.CollectionPerformances:
		d.viewGen++
		d.views.Purge()
	case store.CollectionBudgetItems, store.CollectionExpenditures:
		d.budgetGen++
		d.budgets.Purge()
	}
}

func (d *Dashboard) generations() (views, budgets uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewGen, d.budgetGen
}

func (d *Dashboard) Build(ctx context.Context, q DashboardQuery) (DashboardView, error) {
	key := q.key()
	if v, ok := d.views.Get(key); ok {
		return v, nil
	}
	gen, _ := d.generations()

	orgs, err := d.src.ListOrganizations(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("load organizations: %w", err)
	}
	perfs, err := d.src.ListPerformances(ctx)
	if err != nil {
		return DashboardView{}, fmt.Errorf("load performances: %w", err)
	}

	filtered := stats.InRange(perfs, q.Start, q.End)
	snap := stats.Aggregate(filtered, orgs, d.now())

	regionFilter := q.Region
	if regionFilter == "" {
		regionFilter = region.All
	}
	v := DashboardView{
		Snapshot:                snap,
		RegisteredOrganizations: len(orgs),
		Sessions:                len(filtered),
		Region:                  regionFilter,
		Cities:                  stats.FilterCities(snap.Cities, regionFilter),
	}
	if v.Sessions > 0 {
		v.AverageParticipants = int(math.Round(float64(snap.TotalPeople) / float64(v.Sessions)))
	}
	if q.City != "" {
		v.SelectedCity = q.City
		v.CityOrganizations = stats.CityOrganizations(snap, q.City)
	}

	d.mu.Lock()
	if d.viewGen == gen {
		d.views.Set(key, v)
	}
	d.mu.Unlock()
	return v, nil
}

// BudgetSummary builds the budget table for rng and the explicit region
// filter.
func (d *Dashboard) BudgetSummary(ctx context.Context, rng budget.DateRange, regionFilter string) (budget.Summary, error) {
	key := fmt.Sprintf("%s|%s|%s", dateKey(rng.Start), dateKey(rng.End), regionFilter)
	if s, ok := d.budgets.Get(key); ok {
		return s, nil
	}
	_, gen := d.generations()

	items, err := d.src.ListBudgetItems(ctx)
	if err != nil {
		return budget.Summary{}, fmt.Errorf("load budget items: %w", err)
	}
	exps, err := d.src.ListExpenditures(ctx)
	if err != nil {
		return budget.Summary{}, fmt.Errorf("load expenditures: %w", err)
	}

	s := budget.Summarize(items, exps, rng, regionFilter)
	d.mu.Lock()
	if d.budgetGen == gen {
		d.budgets.Set(key, s)
	}
	d.mu.Unlock()
	return s, nil
}
