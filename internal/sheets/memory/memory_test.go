package memory

import (
	"context"
	"errors"
	"testing"

	"outreach/internal/core"
)

func TestMirrorKeepsLastSnapshot(t *testing.T) {
	m := New()
	ctx := context.Background()

	items := []core.BudgetItem{{ID: "b1", Name: "운영비"}}
	exps := []core.Expenditure{
		{ID: "e1", BudgetItemID: "b1", Amount: 100, Date: core.NewDate(2024, 3, 1)},
		{ID: "e2", BudgetItemID: "gone", Amount: 50},
		{ID: "e3", BudgetItemID: "b1", Amount: 70, Date: core.NewDate(2024, 4, 1)},
	}
	if err := m.MirrorExpenditures(ctx, exps, items); err != nil {
		t.Fatal(err)
	}

	rows := m.Rows(ExpenditureTab)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header plus 3", len(rows))
	}
	if rows[1][0] != "2024-04-01" || rows[1][1] != "운영비" {
		t.Fatalf("first row %v, want newest with item name", rows[1])
	}
	if rows[3][0] != "" || rows[3][1] != "gone" {
		t.Fatalf("last row %v, want dateless row with raw id", rows[3])
	}

	if err := m.MirrorExpenditures(ctx, exps[:1], items); err != nil {
		t.Fatal(err)
	}
	if len(m.Rows(ExpenditureTab)) != 2 || m.Calls(ExpenditureTab) != 2 {
		t.Fatalf("snapshot not replaced: rows=%d calls=%d", len(m.Rows(ExpenditureTab)), m.Calls(ExpenditureTab))
	}
}

func TestMirrorFailure(t *testing.T) {
	m := New()
	boom := errors.New("boom")
	m.FailWith(boom)
	if err := m.MirrorPerformances(context.Background(), nil); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if m.Rows(PerformanceTab) != nil || m.Calls(PerformanceTab) != 1 {
		t.Fatal("failed write should be counted but not stored")
	}
}
