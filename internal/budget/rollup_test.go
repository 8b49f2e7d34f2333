package budget

import (
	"testing"

	"outreach/internal/core"
	"outreach/internal/region"
)

func exp(item string, amount int64, d core.Date) core.Expenditure {
	return core.Expenditure{BudgetItemID: item, Amount: amount, Date: d}
}

func TestRollupOverspend(t *testing.T) {
	item := core.BudgetItem{ID: "b1", Amount: 1000}
	exps := []core.Expenditure{
		exp("b1", 1000, core.NewDate(2024, 1, 1)),
		exp("b1", 500, core.NewDate(2024, 1, 2)),
		exp("other", 999, core.NewDate(2024, 1, 2)),
	}
	u := Rollup(item, exps, DateRange{})
	if u.Used != 1500 || u.Remaining != -500 {
		t.Fatalf("used=%d remaining=%d", u.Used, u.Remaining)
	}
	if u.RateGlobal() != 150.0 {
		t.Fatalf("RateGlobal = %v", u.RateGlobal())
	}
	if u.RateRow() != "150.00" {
		t.Fatalf("RateRow = %q", u.RateRow())
	}
}

func TestRollupZeroAllocation(t *testing.T) {
	u := Rollup(core.BudgetItem{ID: "b"}, []core.Expenditure{exp("b", 10, core.Date{})}, DateRange{})
	if !u.Rate.IsZero() || u.Remaining != -10 {
		t.Fatalf("zero allocation rollup %+v", u)
	}
}

func TestRollupDateRange(t *testing.T) {
	item := core.BudgetItem{ID: "b", Amount: 300}
	exps := []core.Expenditure{
		exp("b", 100, core.NewDate(2024, 1, 1)),
		exp("b", 100, core.NewDate(2024, 1, 31)),
		exp("b", 100, core.NewDate(2024, 2, 1)),
		exp("b", 7, core.Date{}),
	}
	start := core.NewDate(2024, 1, 1)
	end := core.NewDate(2024, 1, 31)
	tests := []struct {
		name string
		rng  DateRange
		want int64
	}{
		{"no filter counts dateless", DateRange{}, 307},
		{"closed range inclusive", DateRange{Start: &start, End: &end}, 200},
		{"open end", DateRange{Start: &end}, 200},
		{"open start", DateRange{End: &start}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rollup(item, exps, tt.rng).Used; got != tt.want {
				t.Fatalf("used = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRateRounding(t *testing.T) {
	u := Rollup(core.BudgetItem{ID: "b", Amount: 3}, []core.Expenditure{exp("b", 1, core.Date{})}, DateRange{})
	if u.RateRow() != "33.33" {
		t.Fatalf("RateRow = %q", u.RateRow())
	}
	if u.RateGlobal() != 33.3 {
		t.Fatalf("RateGlobal = %v", u.RateGlobal())
	}
}

func TestGlobalIgnoresRegionAndOrphans(t *testing.T) {
	items := []core.BudgetItem{
		{ID: "n", Amount: 1000, Region: region.North},
		{ID: "s", Amount: 1000, Region: region.South},
	}
	exps := []core.Expenditure{
		exp("n", 250, core.Date{}),
		exp("s", 250, core.Date{}),
		exp("deleted", 10000, core.Date{}),
	}
	g := Global(items, exps, DateRange{})
	if g.Allocated != 2000 || g.Used != 500 || g.Remaining != 1500 {
		t.Fatalf("global %+v", g)
	}
	if g.RateGlobal() != 25 {
		t.Fatalf("global rate %v", g.RateGlobal())
	}
}
