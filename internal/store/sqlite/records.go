package sqlite

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"outreach/internal/core"
)

func newID() string { return uuid.NewString() }

func (s *Store) ListOrganizations(ctx context.Context) ([]core.Organization, error) {
	var rows []orgRow
	q := builder().Select(orgColumns...).From(tableOrganizations).OrderBy("created_at DESC", "rowid ASC")
	if err := selectAll(ctx, s.db, &rows, q); err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	out := make([]core.Organization, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out, nil
}

func getOrganization(ctx context.Context, q sqlx.QueryerContext, id string) (core.Organization, error) {
	var row orgRow
	err := selectOne(ctx, q, &row, builder().Select(orgColumns...).From(tableOrganizations).Where(sq.Eq{"id": id}))
	if err != nil {
		return core.Organization{}, err
	}
	return row.domain(), nil
}

func (s *Store) GetOrganization(ctx context.Context, id string) (core.Organization, error) {
	return getOrganization(ctx, s.db, id)
}

func (s *Store) AddOrganization(ctx context.Context, o core.Organization) (core.Organization, error) {
	now := s.now()
	o.ID = s.ids()
	o.CreatedAt, o.UpdatedAt = now, now
	ins := builder().Insert(tableOrganizations).SetMap(withIdentity(orgValues(o), o.ID, o.CreatedAt))
	if err := exec(ctx, s.db, ins, false); err != nil {
		return core.Organization{}, fmt.Errorf("insert organization: %w", err)
	}
	return o, nil
}

func (s *Store) UpdateOrganization(ctx context.Context, id string, p core.OrganizationPatch) (core.Organization, error) {
	var out core.Organization
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := getOrganization(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		cur.UpdatedAt = s.now()
		out = cur
		return exec(ctx, tx, builder().Update(tableOrganizations).SetMap(orgValues(cur)).Where(sq.Eq{"id": id}), true)
	})
	return out, err
}

func (s *Store) DeleteOrganization(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableOrganizations, id)
}

func (s *Store) ListPerformances(ctx context.Context) ([]core.PerformanceRecord, error) {
	var rows []perfRow
	q := builder().Select(perfColumns...).From(tablePerformances).
		OrderBy("date = '' ASC", "date DESC", "rowid ASC")
	if err := selectAll(ctx, s.db, &rows, q); err != nil {
		return nil, fmt.Errorf("list performances: %w", err)
	}
	out := make([]core.PerformanceRecord, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out, nil
}

func getPerformance(ctx context.Context, q sqlx.QueryerContext, id string) (core.PerformanceRecord, error) {
	var row perfRow
	err := selectOne(ctx, q, &row, builder().Select(perfColumns...).From(tablePerformances).Where(sq.Eq{"id": id}))
	if err != nil {
		return core.PerformanceRecord{}, err
	}
	return row.domain(), nil
}

func (s *Store) GetPerformance(ctx context.Context, id string) (core.PerformanceRecord, error) {
	return getPerformance(ctx, s.db, id)
}

func (s *Store) AddPerformance(ctx context.Context, p core.PerformanceRecord) (core.PerformanceRecord, error) {
	now := s.now()
	p.ID = s.ids()
	p.CreatedAt, p.UpdatedAt = now, now
	ins := builder().Insert(tablePerformances).SetMap(withIdentity(perfValues(p), p.ID, p.CreatedAt))
	if err := exec(ctx, s.db, ins, false); err != nil {
		return core.PerformanceRecord{}, fmt.Errorf("insert performance: %w", err)
	}
	return p, nil
}

func (s *Store) UpdatePerformance(ctx context.Context, id string, patch core.PerformancePatch) (core.PerformanceRecord, error) {
	var out core.PerformanceRecord
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := getPerformance(ctx, tx, id)
		if err != nil {
			return err
		}
		patch.Apply(&cur)
		cur.UpdatedAt = s.now()
		out = cur
		return exec(ctx, tx, builder().Update(tablePerformances).SetMap(perfValues(cur)).Where(sq.Eq{"id": id}), true)
	})
	return out, err
}

func (s *Store) DeletePerformance(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tablePerformances, id)
}

func (s *Store) ListBudgetItems(ctx context.Context) ([]core.BudgetItem, error) {
	var rows []itemRow
	q := builder().Select(itemColumns...).From(tableBudgetItems).
		OrderBy("COALESCE(sort_order, 0) ASC", "created_at ASC", "rowid ASC")
	if err := selectAll(ctx, s.db, &rows, q); err != nil {
		return nil, fmt.Errorf("list budget items: %w", err)
	}
	out := make([]core.BudgetItem, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out, nil
}

func getBudgetItem(ctx context.Context, q sqlx.QueryerContext, id string) (core.BudgetItem, error) {
	var row itemRow
	err := selectOne(ctx, q, &row, builder().Select(itemColumns...).From(tableBudgetItems).Where(sq.Eq{"id": id}))
	if err != nil {
		return core.BudgetItem{}, err
	}
	return row.domain(), nil
}

func (s *Store) GetBudgetItem(ctx context.Context, id string) (core.BudgetItem, error) {
	return getBudgetItem(ctx, s.db, id)
}

func (s *Store) AddBudgetItem(ctx context.Context, b core.BudgetItem) (core.BudgetItem, error) {
	now := s.now()
	b.ID = s.ids()
	b.CreatedAt, b.UpdatedAt = now, now
	ins := builder().Insert(tableBudgetItems).SetMap(withIdentity(itemValues(b), b.ID, b.CreatedAt))
	if err := exec(ctx, s.db, ins, false); err != nil {
		return core.BudgetItem{}, fmt.Errorf("insert budget item: %w", err)
	}
	return b, nil
}

func (s *Store) UpdateBudgetItem(ctx context.Context, id string, p core.BudgetItemPatch) (core.BudgetItem, error) {
	var out core.BudgetItem
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := getBudgetItem(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		cur.UpdatedAt = s.now()
		out = cur
		return exec(ctx, tx, builder().Update(tableBudgetItems).SetMap(itemValues(cur)).Where(sq.Eq{"id": id}), true)
	})
	return out, err
}

func (s *Store) DeleteBudgetItem(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableBudgetItems, id)
}

// SetBudgetOrder rewrites sort_order for every listed id in one
// transaction. Unknown ids are ignored.
func (s *Store) SetBudgetOrder(ctx context.Context, orders map[string]int) error {
	now := s.now().UnixNano()
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		for id, order := range orders {
			upd := builder().Update(tableBudgetItems).
				Set("sort_order", order).
				Set("updated_at", now).
				Where(sq.Eq{"id": id})
			if err := exec(ctx, tx, upd, false); err != nil {
				return fmt.Errorf("set order of %s: %w", id, err)
			}
		}
		return nil
	})
}

func (s *Store) ListExpenditures(ctx context.Context) ([]core.Expenditure, error) {
	var rows []expRow
	q := builder().Select(expColumns...).From(tableExpenditures).OrderBy("created_at ASC", "rowid ASC")
	if err := selectAll(ctx, s.db, &rows, q); err != nil {
		return nil, fmt.Errorf("list expenditures: %w", err)
	}
	out := make([]core.Expenditure, len(rows))
	for i, r := range rows {
		out[i] = r.domain()
	}
	return out, nil
}

func getExpenditure(ctx context.Context, q sqlx.QueryerContext, id string) (core.Expenditure, error) {
	var row expRow
	err := selectOne(ctx, q, &row, builder().Select(expColumns...).From(tableExpenditures).Where(sq.Eq{"id": id}))
	if err != nil {
		return core.Expenditure{}, err
	}
	return row.domain(), nil
}

func (s *Store) GetExpenditure(ctx context.Context, id string) (core.Expenditure, error) {
	return getExpenditure(ctx, s.db, id)
}

func (s *Store) AddExpenditure(ctx context.Context, e core.Expenditure) (core.Expenditure, error) {
	now := s.now()
	e.ID = s.ids()
	e.CreatedAt, e.UpdatedAt = now, now
	ins := builder().Insert(tableExpenditures).SetMap(withIdentity(expValues(e), e.ID, e.CreatedAt))
	if err := exec(ctx, s.db, ins, false); err != nil {
		return core.Expenditure{}, fmt.Errorf("insert expenditure: %w", err)
	}
	return e, nil
}

func (s *Store) UpdateExpenditure(ctx context.Context, id string, p core.ExpenditurePatch) (core.Expenditure, error) {
	var out core.Expenditure
	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := getExpenditure(ctx, tx, id)
		if err != nil {
			return err
		}
		p.Apply(&cur)
		cur.UpdatedAt = s.now()
		out = cur
		return exec(ctx, tx, builder().Update(tableExpenditures).SetMap(expValues(cur)).Where(sq.Eq{"id": id}), true)
	})
	return out, err
}

func (s *Store) DeleteExpenditure(ctx context.Context, id string) error {
	return s.deleteByID(ctx, tableExpenditures, id)
}

func (s *Store) GetAdminCredential(ctx context.Context) (*core.AdminCredential, error) {
	var row credRow
	q := builder().Select("username", "password_hash", "updated_at").From(tableCredentials).
		Where(sq.Eq{"username": core.AdminUsername})
	if err := selectOne(ctx, s.db, &row, q); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get admin credential: %w", err)
	}
	return &core.AdminCredential{Username: row.Username, PasswordHash: row.PasswordHash, UpdatedAt: toTime(row.UpdatedAt)}, nil
}

func (s *Store) SaveAdminCredential(ctx context.Context, c core.AdminCredential) error {
	if c.Username == "" {
		c.Username = core.AdminUsername
	}
	ins := builder().Insert(tableCredentials).
		Columns("username", "password_hash", "updated_at").
		Values(c.Username, c.PasswordHash, s.now().UnixNano()).
		Suffix("ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash, updated_at = excluded.updated_at")
	if err := exec(ctx, s.db, ins, false); err != nil {
		return fmt.Errorf("save admin credential: %w", err)
	}
	return nil
}
