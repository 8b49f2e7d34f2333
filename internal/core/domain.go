package core

import (
	"errors"
	"strings"
	"time"

	"outreach/internal/region"
)

// Program is one of the three outreach program categories.
type Program string

const (
	ProgramClass Program = "스포츠교실"
	ProgramZone  Program = "스포츠체험존"
	ProgramEvent Program = "스포츠이벤트"
)

// Programs lists the accepted programs in display order.
func Programs() []Program {
	return []Program{ProgramClass, ProgramZone, ProgramEvent}
}

// Valid reports whether p is one of the known programs.
func (p Program) Valid() bool {
	switch p {
	case ProgramClass, ProgramZone, ProgramEvent:
		return true
	}
	return false
}

// AdminUsername is the only account the service knows about.
const AdminUsername = "admin"

type (
	// Organization is a registered outreach target (a "demand").
	Organization struct {
		ID            string    `json:"id"`
		City          string    `json:"city" validate:"required"`
		Name          string    `json:"organizationName" validate:"required"`
		ContactPerson string    `json:"contactPerson" validate:"required"`
		Phone         string    `json:"phoneNumber" validate:"required"`
		Email         string    `json:"email,omitempty" validate:"omitempty,email"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// PerformanceRecord logs one session. OrganizationName and City are
	// copies taken at creation, not references.
	PerformanceRecord struct {
		ID               string    `json:"id"`
		Date             Date      `json:"date"`
		OrganizationName string    `json:"organizationName" validate:"required"`
		City             string    `json:"city"`
		Program          Program   `json:"program" validate:"required,oneof=스포츠교실 스포츠체험존 스포츠이벤트"`
		Male             int       `json:"maleCount" validate:"min=0"`
		Female           int       `json:"femaleCount" validate:"min=0"`
		Promotions       int       `json:"promotionCount" validate:"min=0"`
		Notes            string    `json:"notes,omitempty"`
		CreatedAt        time.Time `json:"createdAt"`
		UpdatedAt        time.Time `json:"updatedAt"`
	}

	// BudgetItem is a named allocation. Order is nil until the list has
	// been reordered at least once.
	BudgetItem struct {
		ID        string        `json:"id"`
		Name      string        `json:"name"`
		Amount    int64         `json:"amount" validate:"min=0"`
		Region    region.Region `json:"region,omitempty" validate:"omitempty,oneof=북부 남부"`
		Order     *int          `json:"order,omitempty"`
		CreatedAt time.Time     `json:"createdAt"`
		UpdatedAt time.Time     `json:"updatedAt"`
	}

	// Expenditure is one spend against a budget item. BudgetItemID is a
	// weak reference and may point at a deleted item.
	Expenditure struct {
		ID            string    `json:"id"`
		BudgetItemID  string    `json:"budgetItemId" validate:"required"`
		Description   string    `json:"description"`
		Vendor        string    `json:"vendor"`
		Amount        int64     `json:"amount"`
		Date          Date      `json:"date"`
		PaymentMethod string    `json:"paymentMethod"`
		Note          string    `json:"note,omitempty"`
		CreatedAt     time.Time `json:"createdAt"`
		UpdatedAt     time.Time `json:"updatedAt"`
	}

	// AdminCredential is the singleton login record.
	AdminCredential struct {
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrNoBudgetItems = errors.New("no budget items to attach the expenditure to")
	ErrInvalidCount  = errors.New("invalid count")
)

// Total is the participant count of the session.
func (p PerformanceRecord) Total() int {
	return p.Male + p.Female
}

// OrderValue returns the manual sort position, 0 when unset.
func (b BudgetItem) OrderValue() int {
	if b.Order == nil {
		return 0
	}
	return *b.Order
}

func (o Organization) Validate() error {
	o.Name = strings.TrimSpace(o.Name)
	return validateStruct(o)
}

func (p PerformanceRecord) Validate() error {
	p.OrganizationName = strings.TrimSpace(p.OrganizationName)
	return validateStruct(p)
}

func (b BudgetItem) Validate() error {
	return validateStruct(b)
}

func (e Expenditure) Validate() error {
	return validateStruct(e)
}
