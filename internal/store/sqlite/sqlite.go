// Package sqlite is the single-file database backend.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"outreach/internal/core"
	"outreach/internal/store"
)

const (
	tableOrganizations = "organizations"
	tablePerformances  = "performances"
	tableBudgetItems   = "budget_items"
	tableExpenditures  = "budget_expenditures"
	tableCredentials   = "admin_credentials"
)

var (
	orgColumns  = []string{"id", "city", "organization_name", "contact_person", "phone_number", "email", "created_at", "updated_at"}
	perfColumns = []string{"id", "date", "organization_name", "city", "program", "male_count", "female_count", "promotion_count", "notes", "created_at", "updated_at"}
	itemColumns = []string{"id", "name", "amount", "region", "sort_order", "created_at", "updated_at"}
	expColumns  = []string{"id", "budget_item_id", "description", "vendor", "amount", "date", "payment_method", "note", "created_at", "updated_at"}
)

type Store struct {
	db  *sqlx.DB
	now func() time.Time
	ids func() string
}

var _ store.Backend = (*Store)(nil)

// Open creates the database file if needed, applies migrations and
// returns a ready store.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// sqlite has a single writer
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now, ids: newID}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func selectAll(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func selectOne(ctx context.Context, q sqlx.QueryerContext, dest any, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}
	if err := sqlx.GetContext(ctx, q, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrNotFound
		}
		return err
	}
	return nil
}

// exec runs b and returns core.ErrNotFound when mustAffect is set and no
// row changed.
func exec(ctx context.Context, e sqlx.ExecerContext, b sq.Sqlizer, mustAffect bool) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build statement: %w", err)
	}
	res, err := e.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if mustAffect {
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return core.ErrNotFound
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	return exec(ctx, s.db, builder().Delete(table).Where(sq.Eq{"id": id}), true)
}
