// Package memory is the in-process backend. Data lives for the lifetime
// of the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"outreach/internal/core"
	"outreach/internal/store"
)

type Store struct {
	mu    sync.Mutex
	now   func() time.Time
	orgs  []core.Organization
	perfs []core.PerformanceRecord
	items []core.BudgetItem
	exps  []core.Expenditure
	cred  *core.AdminCredential
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	return &Store{now: time.Now}
}

// NewWithClock is New with a fixed time source, for tests.
func NewWithClock(now func() time.Time) *Store {
	return &Store{now: now}
}

func (s *Store) Close() error { return nil }

func indexOf[T any](list []T, id string, idOf func(T) string) int {
	for i, v := range list {
		if idOf(v) == id {
			return i
		}
	}
	return -1
}

func remove[T any](list []T, i int) []T {
	return append(list[:i], list[i+1:]...)
}

func orgID(o core.Organization) string { return o.ID }
func perfID(p core.PerformanceRecord) string { return p.ID }
func itemID(b core.BudgetItem) string { return b.ID }
func expID(e core.Expenditure) string { return e.ID }

func (s *Store) ListOrganizations(_ context.Context) ([]core.Organization, error) {
	s.mu.Lock()
	out := append([]core.Organization(nil), s.orgs...)
	s.mu.Unlock()
	store.SortOrganizations(out)
	return out, nil
}

func (s *Store) GetOrganization(_ context.Context, id string) (core.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.orgs, id, orgID)
	if i < 0 {
		return core.Organization{}, core.ErrNotFound
	}
	return s.orgs[i], nil
}

func (s *Store) AddOrganization(_ context.Context, o core.Organization) (core.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	o.ID = uuid.NewString()
	o.CreatedAt, o.UpdatedAt = now, now
	s.orgs = append(s.orgs, o)
	return o, nil
}

func (s *Store) UpdateOrganization(_ context.Context, id string, p core.OrganizationPatch) (core.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.orgs, id, orgID)
	if i < 0 {
		return core.Organization{}, core.ErrNotFound
	}
	p.Apply(&s.orgs[i])
	s.orgs[i].UpdatedAt = s.now()
	return s.orgs[i], nil
}

func (s *Store) DeleteOrganization(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.orgs, id, orgID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.orgs = remove(s.orgs, i)
	return nil
}

func (s *Store) ListPerformances(_ context.Context) ([]core.PerformanceRecord, error) {
	s.mu.Lock()
	out := append([]core.PerformanceRecord(nil), s.perfs...)
	s.mu.Unlock()
	store.SortPerformances(out)
	return out, nil
}

func (s *Store) GetPerformance(_ context.Context, id string) (core.PerformanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.perfs, id, perfID)
	if i < 0 {
		return core.PerformanceRecord{}, core.ErrNotFound
	}
	return s.perfs[i], nil
}

func (s *Store) AddPerformance(_ context.Context, p core.PerformanceRecord) (core.PerformanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	s.perfs = append(s.perfs, p)
	return p, nil
}

func (s *Store) UpdatePerformance(_ context.Context, id string, p core.PerformancePatch) (core.PerformanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.perfs, id, perfID)
	if i < 0 {
		return core.PerformanceRecord{}, core.ErrNotFound
	}
	p.Apply(&s.perfs[i])
	s.perfs[i].UpdatedAt = s.now()
	return s.perfs[i], nil
}

func (s *Store) DeletePerformance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.perfs, id, perfID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.perfs = remove(s.perfs, i)
	return nil
}

func (s *Store) ListBudgetItems(_ context.Context) ([]core.BudgetItem, error) {
	s.mu.Lock()
	out := make([]core.BudgetItem, len(s.items))
	for i, it := range s.items {
		out[i] = cloneItem(it)
	}
	s.mu.Unlock()
	store.SortBudgetItems(out)
	return out, nil
}

func (s *Store) GetBudgetItem(_ context.Context, id string) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, id, itemID)
	if i < 0 {
		return core.BudgetItem{}, core.ErrNotFound
	}
	return cloneItem(s.items[i]), nil
}

func (s *Store) AddBudgetItem(_ context.Context, b core.BudgetItem) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	b = cloneItem(b)
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	s.items = append(s.items, b)
	return cloneItem(b), nil
}

func (s *Store) UpdateBudgetItem(_ context.Context, id string, p core.BudgetItemPatch) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, id, itemID)
	if i < 0 {
		return core.BudgetItem{}, core.ErrNotFound
	}
	p.Apply(&s.items[i])
	s.items[i].UpdatedAt = s.now()
	return cloneItem(s.items[i]), nil
}

func (s *Store) DeleteBudgetItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.items, id, itemID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.items = remove(s.items, i)
	return nil
}

// SetBudgetOrder rewrites the order of every listed item. Unknown ids
// are ignored.
func (s *Store) SetBudgetOrder(_ context.Context, orders map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for i := range s.items {
		if v, ok := orders[s.items[i].ID]; ok {
			v := v
			s.items[i].Order = &v
			s.items[i].UpdatedAt = now
		}
	}
	return nil
}

func cloneItem(b core.BudgetItem) core.BudgetItem {
	if b.Order != nil {
		v := *b.Order
		b.Order = &v
	}
	return b
}

func (s *Store) ListExpenditures(_ context.Context) ([]core.Expenditure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Expenditure(nil), s.exps...), nil
}

func (s *Store) GetExpenditure(_ context.Context, id string) (core.Expenditure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.exps, id, expID)
	if i < 0 {
		return core.Expenditure{}, core.ErrNotFound
	}
	return s.exps[i], nil
}

func (s *Store) AddExpenditure(_ context.Context, e core.Expenditure) (core.Expenditure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	e.ID = uuid.NewString()
	e.CreatedAt, e.UpdatedAt = now, now
	s.exps = append(s.exps, e)
	return e, nil
}

func (s *Store) UpdateExpenditure(_ context.Context, id string, p core.ExpenditurePatch) (core.Expenditure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.exps, id, expID)
	if i < 0 {
		return core.Expenditure{}, core.ErrNotFound
	}
	p.Apply(&s.exps[i])
	s.exps[i].UpdatedAt = s.now()
	return s.exps[i], nil
}

func (s *Store) DeleteExpenditure(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := indexOf(s.exps, id, expID)
	if i < 0 {
		return core.ErrNotFound
	}
	s.exps = remove(s.exps, i)
	return nil
}

func (s *Store) GetAdminCredential(_ context.Context) (*core.AdminCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cred == nil {
		return nil, nil
	}
	c := *s.cred
	return &c, nil
}

func (s *Store) SaveAdminCredential(_ context.Context, c core.AdminCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.UpdatedAt = s.now()
	s.cred = &c
	return nil
}
