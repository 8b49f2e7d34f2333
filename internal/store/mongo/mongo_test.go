package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"outreach/internal/core"
	"outreach/internal/region"
)

func TestDocumentsKeepDatesAndOrder(t *testing.T) {
	p := core.PerformanceRecord{ID: "p", OrganizationName: "x", Program: core.ProgramEvent}
	if got := fromPerf(p).domain(); !got.Date.IsZero() || got.Program != core.ProgramEvent {
		t.Fatalf("dateless record changed: %+v", got)
	}
	p.Date = core.NewDate(2024, 7, 9)
	if got := fromPerf(p).domain(); got.Date.String() != "2024-07-09" {
		t.Fatalf("date lost: %s", got.Date)
	}

	order := 3
	b := core.BudgetItem{ID: "b", Region: region.South, Order: &order}
	got := fromItem(b).domain()
	if got.Region != region.South || got.OrderValue() != 3 {
		t.Fatalf("item fields lost: %+v", got)
	}
	if fromItem(core.BudgetItem{ID: "c"}).domain().Order != nil {
		t.Fatal("missing order should stay nil")
	}
}

// TestStoreAgainstServer runs only when MONGO_TEST_URI points at a
// disposable server.
func TestStoreAgainstServer(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := Open(ctx, uri, "outreach_test_"+uuid.NewString()[:8])
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = s.db.Drop(context.Background())
		s.Close()
	}()

	a, _ := s.AddBudgetItem(ctx, core.BudgetItem{Name: "a"})
	b, _ := s.AddBudgetItem(ctx, core.BudgetItem{Name: "b"})
	if err := s.SetBudgetOrder(ctx, map[string]int{a.ID: 1, b.ID: 0}); err != nil {
		t.Fatal(err)
	}
	items, err := s.ListBudgetItems(ctx)
	if err != nil || len(items) != 2 || items[0].ID != b.ID {
		t.Fatalf("items %+v %v", items, err)
	}

	if err := s.DeleteExpenditure(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("delete missing: %v", err)
	}

	c, err := s.GetAdminCredential(ctx)
	if err != nil || c != nil {
		t.Fatalf("credential %+v %v", c, err)
	}
	if err := s.SaveAdminCredential(ctx, core.AdminCredential{PasswordHash: "h"}); err != nil {
		t.Fatal(err)
	}
	if c, _ = s.GetAdminCredential(ctx); c == nil || c.Username != core.AdminUsername {
		t.Fatalf("credential %+v", c)
	}
}
