package core

import "outreach/internal/region"

// Patches carry the fields of a partial update. A nil pointer leaves the
// stored value untouched.
type (
	OrganizationPatch struct {
		City          *string `json:"city,omitempty"`
		Name          *string `json:"organizationName,omitempty"`
		ContactPerson *string `json:"contactPerson,omitempty"`
		Phone         *string `json:"phoneNumber,omitempty"`
		Email         *string `json:"email,omitempty"`
	}

	PerformancePatch struct {
		Date             *Date    `json:"date,omitempty"`
		OrganizationName *string  `json:"organizationName,omitempty"`
		City             *string  `json:"city,omitempty"`
		Program          *Program `json:"program,omitempty"`
		Male             *int     `json:"maleCount,omitempty"`
		Female           *int     `json:"femaleCount,omitempty"`
		Promotions       *int     `json:"promotionCount,omitempty"`
		Notes            *string  `json:"notes,omitempty"`
	}

	BudgetItemPatch struct {
		Name   *string        `json:"name,omitempty"`
		Amount *int64         `json:"amount,omitempty"`
		Region *region.Region `json:"region,omitempty"`
		Order  *int           `json:"order,omitempty"`
	}

	ExpenditurePatch struct {
		BudgetItemID  *string `json:"budgetItemId,omitempty"`
		Description   *string `json:"description,omitempty"`
		Vendor        *string `json:"vendor,omitempty"`
		Amount        *int64  `json:"amount,omitempty"`
		Date          *Date   `json:"date,omitempty"`
		PaymentMethod *string `json:"paymentMethod,omitempty"`
		Note          *string `json:"note,omitempty"`
	}
)

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (p OrganizationPatch) Apply(o *Organization) {
	set(&o.City, p.City)
	set(&o.Name, p.Name)
	set(&o.ContactPerson, p.ContactPerson)
	set(&o.Phone, p.Phone)
	set(&o.Email, p.Email)
}

func (p PerformancePatch) Apply(r *PerformanceRecord) {
	set(&r.Date, p.Date)
	set(&r.OrganizationName, p.OrganizationName)
	set(&r.City, p.City)
	set(&r.Program, p.Program)
	set(&r.Male, p.Male)
	set(&r.Female, p.Female)
	set(&r.Promotions, p.Promotions)
	set(&r.Notes, p.Notes)
}

func (p BudgetItemPatch) Apply(b *BudgetItem) {
	set(&b.Name, p.Name)
	set(&b.Amount, p.Amount)
	set(&b.Region, p.Region)
	if p.Order != nil {
		v := *p.Order
		b.Order = &v
	}
}

func (p ExpenditurePatch) Apply(e *Expenditure) {
	set(&e.BudgetItemID, p.BudgetItemID)
	set(&e.Description, p.Description)
	set(&e.Vendor, p.Vendor)
	set(&e.Amount, p.Amount)
	set(&e.Date, p.Date)
	set(&e.PaymentMethod, p.PaymentMethod)
	set(&e.Note, p.Note)
}
