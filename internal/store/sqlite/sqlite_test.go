package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"outreach/internal/core"
	"outreach/internal/region"
)

func openTest(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "outreach.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time {
		base = base.Add(time.Second)
		return base
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		s.Close()
	}
}

func TestOrganizationRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)

	a, err := s.AddOrganization(ctx, core.Organization{City: "수원시", Name: "A", ContactPerson: "kim", Phone: "010", Email: "a@b.c"})
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.AddOrganization(ctx, core.Organization{City: "고양시", Name: "B", ContactPerson: "lee", Phone: "011"})

	list, err := s.ListOrganizations(ctx)
	if err != nil || len(list) != 2 || list[0].ID != b.ID {
		t.Fatalf("list: %+v %v", list, err)
	}
	if !list[1].CreatedAt.Equal(a.CreatedAt) || list[1].Email != "a@b.c" {
		t.Fatalf("stored record differs: %+v vs %+v", list[1], a)
	}

	city := "파주시"
	up, err := s.UpdateOrganization(ctx, a.ID, core.OrganizationPatch{City: &city})
	if err != nil || up.City != city || up.Name != "A" {
		t.Fatalf("update: %+v %v", up, err)
	}
	if _, err := s.UpdateOrganization(ctx, "missing", core.OrganizationPatch{}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}
	if err := s.DeleteOrganization(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetOrganization(ctx, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get deleted: %v", err)
	}
	if err := s.DeleteOrganization(ctx, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete twice: %v", err)
	}
}

func TestPerformanceOrderAndDates(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	for _, d := range []core.Date{core.NewDate(2024, 2, 1), {}, core.NewDate(2024, 5, 1)} {
		_, err := s.AddPerformance(ctx, core.PerformanceRecord{
			Date: d, OrganizationName: "x", Program: core.ProgramZone, Male: 1, Female: 2,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	list, err := s.ListPerformances(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if list[0].Date.String() != "2024-05-01" || list[1].Date.String() != "2024-02-01" || !list[2].Date.IsZero() {
		t.Fatalf("order %s %s %s", list[0].Date, list[1].Date, list[2].Date)
	}
	if list[0].Program != core.ProgramZone || list[0].Total() != 3 {
		t.Fatalf("fields lost: %+v", list[0])
	}
}

func TestBudgetItemsOrderAndRegion(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	a, _ := s.AddBudgetItem(ctx, core.BudgetItem{Name: "a", Amount: 100, Region: region.North})
	b, _ := s.AddBudgetItem(ctx, core.BudgetItem{Name: "b", Amount: 200})

	if err := s.SetBudgetOrder(ctx, map[string]int{b.ID: 0, a.ID: 1}); err != nil {
		t.Fatal(err)
	}
	list, _ := s.ListBudgetItems(ctx)
	if list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("order not applied")
	}
	if list[1].Region != region.North || list[1].Order == nil || *list[1].Order != 1 {
		t.Fatalf("fields lost: %+v", list[1])
	}

	amount := int64(150)
	up, err := s.UpdateBudgetItem(ctx, a.ID, core.BudgetItemPatch{Amount: &amount})
	if err != nil || up.Amount != 150 || up.OrderValue() != 1 {
		t.Fatalf("update: %+v %v", up, err)
	}
}

func TestExpendituresAndCredential(t *testing.T) {
	ctx := context.Background()
	s := openTest(t)
	first, _ := s.AddExpenditure(ctx, core.Expenditure{BudgetItemID: "b", Amount: 10, Date: core.NewDate(2024, 3, 3)})
	_, _ = s.AddExpenditure(ctx, core.Expenditure{BudgetItemID: "b", Amount: 20})
	list, _ := s.ListExpenditures(ctx)
	if len(list) != 2 || list[0].ID != first.ID || list[0].Date.String() != "2024-03-03" {
		t.Fatalf("list %+v", list)
	}

	c, err := s.GetAdminCredential(ctx)
	if err != nil || c != nil {
		t.Fatalf("expected no credential: %+v %v", c, err)
	}
	for _, h := range []string{"one", "two"} {
		if err := s.SaveAdminCredential(ctx, core.AdminCredential{Username: core.AdminUsername, PasswordHash: h}); err != nil {
			t.Fatal(err)
		}
	}
	c, _ = s.GetAdminCredential(ctx)
	if c == nil || c.PasswordHash != "two" {
		t.Fatalf("credential %+v", c)
	}
}
