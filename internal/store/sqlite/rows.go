package sqlite

import (
	"database/sql"
	"time"

	"outreach/internal/core"
	"outreach/internal/region"
)

// Timestamps are stored as unix nanoseconds and dates as YYYY-MM-DD text
// with '' for an absent date.

type orgRow struct {
	ID            string `db:"id"`
	City          string `db:"city"`
	Name          string `db:"organization_name"`
	ContactPerson string `db:"contact_person"`
	Phone         string `db:"phone_number"`
	Email         string `db:"email"`
	CreatedAt     int64  `db:"created_at"`
	UpdatedAt     int64  `db:"updated_at"`
}

type perfRow struct {
	ID               string `db:"id"`
	Date             string `db:"date"`
	OrganizationName string `db:"organization_name"`
	City             string `db:"city"`
	Program          string `db:"program"`
	Male             int    `db:"male_count"`
	Female           int    `db:"female_count"`
	Promotions       int    `db:"promotion_count"`
	Notes            string `db:"notes"`
	CreatedAt        int64  `db:"created_at"`
	UpdatedAt        int64  `db:"updated_at"`
}

type itemRow struct {
	ID        string        `db:"id"`
	Name      string        `db:"name"`
	Amount    int64         `db:"amount"`
	Region    string        `db:"region"`
	Order     sql.NullInt64 `db:"sort_order"`
	CreatedAt int64         `db:"created_at"`
	UpdatedAt int64         `db:"updated_at"`
}

type expRow struct {
	ID            string `db:"id"`
	BudgetItemID  string `db:"budget_item_id"`
	Description   string `db:"description"`
	Vendor        string `db:"vendor"`
	Amount        int64  `db:"amount"`
	Date          string `db:"date"`
	PaymentMethod string `db:"payment_method"`
	Note          string `db:"note"`
	CreatedAt     int64  `db:"created_at"`
	UpdatedAt     int64  `db:"updated_at"`
}

type credRow struct {
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	UpdatedAt    int64  `db:"updated_at"`
}

func toTime(n int64) time.Time { return time.Unix(0, n).UTC() }

func toDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func (r orgRow) domain() core.Organization {
	return core.Organization{
		ID: r.ID, City: r.City, Name: r.Name, ContactPerson: r.ContactPerson,
		Phone: r.Phone, Email: r.Email,
		CreatedAt: toTime(r.CreatedAt), UpdatedAt: toTime(r.UpdatedAt),
	}
}

func orgValues(o core.Organization) map[string]any {
	return map[string]any{
		"city":              o.City,
		"organization_name": o.Name,
		"contact_person":    o.ContactPerson,
		"phone_number":      o.Phone,
		"email":             o.Email,
		"updated_at":        o.UpdatedAt.UnixNano(),
	}
}

func (r perfRow) domain() core.PerformanceRecord {
	return core.PerformanceRecord{
		ID: r.ID, Date: toDate(r.Date), OrganizationName: r.OrganizationName, City: r.City,
		Program: core.Program(r.Program), Male: r.Male, Female: r.Female, Promotions: r.Promotions,
		Notes: r.Notes, CreatedAt: toTime(r.CreatedAt), UpdatedAt: toTime(r.UpdatedAt),
	}
}

func perfValues(p core.PerformanceRecord) map[string]any {
	return map[string]any{
		"date":              p.Date.String(),
		"organization_name": p.OrganizationName,
		"city":              p.City,
		"program":           string(p.Program),
		"male_count":        p.Male,
		"female_count":      p.Female,
		"promotion_count":   p.Promotions,
		"notes":             p.Notes,
		"updated_at":        p.UpdatedAt.UnixNano(),
	}
}

func (r itemRow) domain() core.BudgetItem {
	b := core.BudgetItem{
		ID: r.ID, Name: r.Name, Amount: r.Amount, Region: region.Region(r.Region),
		CreatedAt: toTime(r.CreatedAt), UpdatedAt: toTime(r.UpdatedAt),
	}
	if r.Order.Valid {
		v := int(r.Order.Int64)
		b.Order = &v
	}
	return b
}

func itemValues(b core.BudgetItem) map[string]any {
	var order sql.NullInt64
	if b.Order != nil {
		order = sql.NullInt64{Int64: int64(*b.Order), Valid: true}
	}
	return map[string]any{
		"name":       b.Name,
		"amount":     b.Amount,
		"region":     string(b.Region),
		"sort_order": order,
		"updated_at": b.UpdatedAt.UnixNano(),
	}
}

func (r expRow) domain() core.Expenditure {
	return core.Expenditure{
		ID: r.ID, BudgetItemID: r.BudgetItemID, Description: r.Description, Vendor: r.Vendor,
		Amount: r.Amount, Date: toDate(r.Date), PaymentMethod: r.PaymentMethod, Note: r.Note,
		CreatedAt: toTime(r.CreatedAt), UpdatedAt: toTime(r.UpdatedAt),
	}
}

func expValues(e core.Expenditure) map[string]any {
	return map[string]any{
		"budget_item_id": e.BudgetItemID,
		"description":    e.Description,
		"vendor":         e.Vendor,
		"amount":         e.Amount,
		"date":           e.Date.String(),
		"payment_method": e.PaymentMethod,
		"note":           e.Note,
		"updated_at":     e.UpdatedAt.UnixNano(),
	}
}

// withIdentity adds the columns only written on insert.
func withIdentity(values map[string]any, id string, createdAt time.Time) map[string]any {
	values["id"] = id
	values["created_at"] = createdAt.UnixNano()
	return values
}
