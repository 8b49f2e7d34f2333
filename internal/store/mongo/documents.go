package mongo

import (
	"time"

	"outreach/internal/core"
	"outreach/internal/region"
)

type orgDoc struct {
	ID            string    `bson:"_id"`
	City          string    `bson:"city"`
	Name          string    `bson:"organization_name"`
	ContactPerson string    `bson:"contact_person"`
	Phone         string    `bson:"phone_number"`
	Email         string    `bson:"email,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

type perfDoc struct {
	ID               string    `bson:"_id"`
	Date             string    `bson:"date"`
	OrganizationName string    `bson:"organization_name"`
	City             string    `bson:"city"`
	Program          string    `bson:"program"`
	Male             int       `bson:"male_count"`
	Female           int       `bson:"female_count"`
	Promotions       int       `bson:"promotion_count"`
	Notes            string    `bson:"notes,omitempty"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

type itemDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Amount    int64     `bson:"amount"`
	Region    string    `bson:"region,omitempty"`
	Order     *int      `bson:"order,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type expDoc struct {
	ID            string    `bson:"_id"`
	BudgetItemID  string    `bson:"budget_item_id"`
	Description   string    `bson:"description"`
	Vendor        string    `bson:"vendor"`
	Amount        int64     `bson:"amount"`
	Date          string    `bson:"date"`
	PaymentMethod string    `bson:"payment_method"`
	Note          string    `bson:"note,omitempty"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

type credDoc struct {
	Username     string    `bson:"_id"`
	PasswordHash string    `bson:"password_hash"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

func toDate(s string) core.Date {
	d, err := core.ParseDate(s)
	if err != nil {
		return core.Date{}
	}
	return d
}

func fromOrg(o core.Organization) orgDoc {
	return orgDoc{o.ID, o.City, o.Name, o.ContactPerson, o.Phone, o.Email, o.CreatedAt, o.UpdatedAt}
}

func (d orgDoc) domain() core.Organization {
	return core.Organization{
		ID: d.ID, City: d.City, Name: d.Name, ContactPerson: d.ContactPerson, Phone: d.Phone,
		Email: d.Email, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func fromPerf(p core.PerformanceRecord) perfDoc {
	return perfDoc{
		ID: p.ID, Date: p.Date.String(), OrganizationName: p.OrganizationName, City: p.City,
		Program: string(p.Program), Male: p.Male, Female: p.Female, Promotions: p.Promotions,
		Notes: p.Notes, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt,
	}
}

func (d perfDoc) domain() core.PerformanceRecord {
	return core.PerformanceRecord{
		ID: d.ID, Date: toDate(d.Date), OrganizationName: d.OrganizationName, City: d.City,
		Program: core.Program(d.Program), Male: d.Male, Female: d.Female, Promotions: d.Promotions,
		Notes: d.Notes, CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func fromItem(b core.BudgetItem) itemDoc {
	return itemDoc{b.ID, b.Name, b.Amount, string(b.Region), b.Order, b.CreatedAt, b.UpdatedAt}
}

func (d itemDoc) domain() core.BudgetItem {
	return core.BudgetItem{
		ID: d.ID, Name: d.Name, Amount: d.Amount, Region: region.Region(d.Region), Order: d.Order,
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}

func fromExp(e core.Expenditure) expDoc {
	return expDoc{
		ID: e.ID, BudgetItemID: e.BudgetItemID, Description: e.Description, Vendor: e.Vendor,
		Amount: e.Amount, Date: e.Date.String(), PaymentMethod: e.PaymentMethod, Note: e.Note,
		CreatedAt: e.CreatedAt, UpdatedAt: e.UpdatedAt,
	}
}

func (d expDoc) domain() core.Expenditure {
	return core.Expenditure{
		ID: d.ID, BudgetItemID: d.BudgetItemID, Description: d.Description, Vendor: d.Vendor,
		Amount: d.Amount, Date: toDate(d.Date), PaymentMethod: d.PaymentMethod, Note: d.Note,
		CreatedAt: d.CreatedAt.UTC(), UpdatedAt: d.UpdatedAt.UTC(),
	}
}
