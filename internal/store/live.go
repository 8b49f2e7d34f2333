package store

import (
	"context"
	"fmt"
	"sync"

	"outreach/internal/core"
	"outreach/internal/log"
)

// Change describes a committed write. Origin identifies the process that
// made it so an instance can ignore its own events.
type Change struct {
	Collection string `json:"collection"`
	Op         string `json:"op"`
	ID         string `json:"id,omitempty"`
	Origin     string `json:"origin"`
}

// ChangePublisher forwards changes to other processes.
type ChangePublisher interface {
	PublishChange(ctx context.Context, c Change) error
}

// feed fans a collection snapshot out to its subscribers. deliver is held
// from the backend read until every subscriber has the result.
type feed[T any] struct {
	deliver sync.Mutex

	mu   sync.Mutex
	next uint64
	subs map[uint64]func([]T)
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{subs: make(map[uint64]func([]T))}
}

func (f *feed[T]) add(fn func([]T)) func() {
	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = fn
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		})
	}
}

func (f *feed[T]) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *feed[T]) push(items []T) {
	f.mu.Lock()
	fns := make([]func([]T), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.mu.Unlock()

	for _, fn := range fns {
		fn(items)
	}
}

// Live wraps a Backend and pushes the full collection to subscribers
// after every write that goes through it. Records are validated before
// they reach the backend.
type Live struct {
	Backend

	logger    *log.Logger
	origin    string
	publisher ChangePublisher

	orgs  *feed[core.Organization]
	perfs *feed[core.PerformanceRecord]
	items *feed[core.BudgetItem]
	exps  *feed[core.Expenditure]

	mu        sync.Mutex
	listeners []func(collection string)
}

// NewLive decorates backend. origin is stamped on published changes.
func NewLive(backend Backend, logger *log.Logger, origin string) *Live {
	return &Live{
		Backend: backend,
		logger:  logger.WithComponent(log.ComponentLive),
		origin:  origin,
		orgs:    newFeed[core.Organization](),
		perfs:   newFeed[core.PerformanceRecord](),
		items:   newFeed[core.BudgetItem](),
		exps:    newFeed[core.Expenditure](),
	}
}

// Origin returns the id stamped on changes made through this instance.
func (l *Live) Origin() string { return l.origin }

// SetPublisher attaches the cross-process change feed.
func (l *Live) SetPublisher(p ChangePublisher) {
	l.mu.Lock()
	l.publisher = p
	l.mu.Unlock()
}

// OnChange registers fn to run after any collection changes, locally or
// through Refresh.
func (l *Live) OnChange(fn func(collection string)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Subscribers returns the number of active subscriptions on collection.
func (l *Live) Subscribers(collection string) int {
	switch collection {
	case CollectionOrganizations:
		return l.orgs.len()
	case CollectionPerformances:
		return l.perfs.len()
	case CollectionBudgetItems:
		return l.items.len()
	case CollectionExpenditures:
		return l.exps.len()
	}
	return 0
}

func subscribe[T any](ctx context.Context, f *feed[T], load func(context.Context) ([]T, error), fn func([]T)) (func(), error) {
	f.deliver.Lock()
	defer f.deliver.Unlock()
	items, err := load(ctx)
	if err != nil {
		return nil, err
	}
	fn(items)
	return f.add(fn), nil
}

// SubscribeOrganizations delivers the current list to fn and then every
// later version. The returned func stops delivery and may be called more
// than once. fn must not write through l.
func (l *Live) SubscribeOrganizations(ctx context.Context, fn func([]core.Organization)) (func(), error) {
	return subscribe(ctx, l.orgs, l.Backend.ListOrganizations, fn)
}

func (l *Live) SubscribePerformances(ctx context.Context, fn func([]core.PerformanceRecord)) (func(), error) {
	return subscribe(ctx, l.perfs, l.Backend.ListPerformances, fn)
}

func (l *Live) SubscribeBudgetItems(ctx context.Context, fn func([]core.BudgetItem)) (func(), error) {
	return subscribe(ctx, l.items, l.Backend.ListBudgetItems, fn)
}

func (l *Live) SubscribeExpenditures(ctx context.Context, fn func([]core.Expenditure)) (func(), error) {
	return subscribe(ctx, l.exps, l.Backend.ListExpenditures, fn)
}

// Refresh re-reads collection and pushes it to local subscribers without
// publishing. It is how changes made by other processes arrive.
func (l *Live) Refresh(ctx context.Context, collection string) error {
	if err := l.push(ctx, collection); err != nil {
		return err
	}
	l.notify(collection)
	return nil
}

func (l *Live) push(ctx context.Context, collection string) error {
	switch collection {
	case CollectionOrganizations:
		return pushFeed(ctx, l.orgs, l.Backend.ListOrganizations)
	case CollectionPerformances:
		return pushFeed(ctx, l.perfs, l.Backend.ListPerformances)
	case CollectionBudgetItems:
		return pushFeed(ctx, l.items, l.Backend.ListBudgetItems)
	case CollectionExpenditures:
		return pushFeed(ctx, l.exps, l.Backend.ListExpenditures)
	}
	return fmt.Errorf("unknown collection %q", collection)
}

func pushFeed[T any](ctx context.Context, f *feed[T], load func(context.Context) ([]T, error)) error {
	f.deliver.Lock()
	defer f.deliver.Unlock()
	if f.len() == 0 {
		return nil
	}
	items, err := load(ctx)
	if err != nil {
		return err
	}
	f.push(items)
	return nil
}

func (l *Live) notify(collection string) {
	l.mu.Lock()
	fns := make([]func(string), len(l.listeners))
	copy(fns, l.listeners)
	l.mu.Unlock()

	for _, fn := range fns {
		fn(collection)
	}
}

// changed runs after a successful write: local push, listeners, then the
// cross-process publish. None of these fail the write.
func (l *Live) changed(ctx context.Context, collection, op, id string) {
	if err := l.push(ctx, collection); err != nil {
		l.logger.WarnContext(ctx, "Failed to push snapshot",
			log.FieldCollection, collection, log.FieldError, err)
	}
	l.notify(collection)

	l.mu.Lock()
	p := l.publisher
	l.mu.Unlock()
	if p == nil {
		return
	}
	c := Change{Collection: collection, Op: op, ID: id, Origin: l.origin}
	if err := p.PublishChange(ctx, c); err != nil {
		l.logger.WarnContext(ctx, "Failed to publish change",
			log.FieldCollection, collection, log.FieldOperation, op, log.FieldError, err)
	}
}

func (l *Live) AddOrganization(ctx context.Context, o core.Organization) (core.Organization, error) {
	if err := o.Validate(); err != nil {
		return core.Organization{}, err
	}
	out, err := l.Backend.AddOrganization(ctx, o)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionOrganizations, log.OpCreate, out.ID)
	return out, nil
}

func (l *Live) UpdateOrganization(ctx context.Context, id string, p core.OrganizationPatch) (core.Organization, error) {
	cur, err := l.Backend.GetOrganization(ctx, id)
	if err != nil {
		return cur, err
	}
	p.Apply(&cur)
	if err := cur.Validate(); err != nil {
		return core.Organization{}, err
	}
	out, err := l.Backend.UpdateOrganization(ctx, id, p)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionOrganizations, log.OpUpdate, id)
	return out, nil
}

func (l *Live) DeleteOrganization(ctx context.Context, id string) error {
	if err := l.Backend.DeleteOrganization(ctx, id); err != nil {
		return err
	}
	l.changed(ctx, CollectionOrganizations, log.OpDelete, id)
	return nil
}

func (l *Live) AddPerformance(ctx context.Context, p core.PerformanceRecord) (core.PerformanceRecord, error) {
	if err := p.Validate(); err != nil {
		return core.PerformanceRecord{}, err
	}
	out, err := l.Backend.AddPerformance(ctx, p)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionPerformances, log.OpCreate, out.ID)
	return out, nil
}

func (l *Live) UpdatePerformance(ctx context.Context, id string, p core.PerformancePatch) (core.PerformanceRecord, error) {
	cur, err := l.Backend.GetPerformance(ctx, id)
	if err != nil {
		return cur, err
	}
	p.Apply(&cur)
	if err := cur.Validate(); err != nil {
		return core.PerformanceRecord{}, err
	}
	out, err := l.Backend.UpdatePerformance(ctx, id, p)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionPerformances, log.OpUpdate, id)
	return out, nil
}

func (l *Live) DeletePerformance(ctx context.Context, id string) error {
	if err := l.Backend.DeletePerformance(ctx, id); err != nil {
		return err
	}
	l.changed(ctx, CollectionPerformances, log.OpDelete, id)
	return nil
}

func (l *Live) AddBudgetItem(ctx context.Context, b core.BudgetItem) (core.BudgetItem, error) {
	if err := b.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	out, err := l.Backend.AddBudgetItem(ctx, b)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionBudgetItems, log.OpCreate, out.ID)
	return out, nil
}

func (l *Live) UpdateBudgetItem(ctx context.Context, id string, p core.BudgetItemPatch) (core.BudgetItem, error) {
	cur, err := l.Backend.GetBudgetItem(ctx, id)
	if err != nil {
		return cur, err
	}
	p.Apply(&cur)
	if err := cur.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	out, err := l.Backend.UpdateBudgetItem(ctx, id, p)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionBudgetItems, log.OpUpdate, id)
	return out, nil
}

func (l *Live) DeleteBudgetItem(ctx context.Context, id string) error {
	if err := l.Backend.DeleteBudgetItem(ctx, id); err != nil {
		return err
	}
	l.changed(ctx, CollectionBudgetItems, log.OpDelete, id)
	return nil
}

func (l *Live) SetBudgetOrder(ctx context.Context, orders map[string]int) error {
	if err := l.Backend.SetBudgetOrder(ctx, orders); err != nil {
		return err
	}
	l.changed(ctx, CollectionBudgetItems, log.OpReorder, "")
	return nil
}

func (l *Live) AddExpenditure(ctx context.Context, e core.Expenditure) (core.Expenditure, error) {
	if err := e.Validate(); err != nil {
		return core.Expenditure{}, err
	}
	out, err := l.Backend.AddExpenditure(ctx, e)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionExpenditures, log.OpCreate, out.ID)
	return out, nil
}

func (l *Live) UpdateExpenditure(ctx context.Context, id string, p core.ExpenditurePatch) (core.Expenditure, error) {
	cur, err := l.Backend.GetExpenditure(ctx, id)
	if err != nil {
		return cur, err
	}
	p.Apply(&cur)
	if err := cur.Validate(); err != nil {
		return core.Expenditure{}, err
	}
	out, err := l.Backend.UpdateExpenditure(ctx, id, p)
	if err != nil {
		return out, err
	}
	l.changed(ctx, CollectionExpenditures, log.OpUpdate, id)
	return out, nil
}

func (l *Live) DeleteExpenditure(ctx context.Context, id string) error {
	if err := l.Backend.DeleteExpenditure(ctx, id); err != nil {
		return err
	}
	l.changed(ctx, CollectionExpenditures, log.OpDelete, id)
	return nil
}
