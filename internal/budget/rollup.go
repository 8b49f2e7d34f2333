// Package budget computes used, remaining and utilization figures for
// budget items from their expenditures.
package budget

import (
	"github.com/shopspring/decimal"

	"outreach/internal/core"
)

var hundred = decimal.NewFromInt(100)

// DateRange is an inclusive filter on expenditure dates. A nil bound is
// open on that side.
type DateRange struct {
	Start *core.Date
	End   *core.Date
}

// Active reports whether either bound is set.
func (r DateRange) Active() bool {
	return r.Start != nil || r.End != nil
}

// Contains applies the range to an expenditure date.
func (r DateRange) Contains(d core.Date) bool {
	return d.Within(r.Start, r.End)
}

// Usage is the rollup of one item or of all items together. Remaining may
// be negative and Rate may exceed 100 when a budget is overspent.
type Usage struct {
	Allocated int64
	Used      int64
	Remaining int64
	Rate      decimal.Decimal
}

func newUsage(allocated, used int64) Usage {
	u := Usage{Allocated: allocated, Used: used, Remaining: allocated - used, Rate: decimal.Zero}
	if allocated > 0 {
		u.Rate = decimal.NewFromInt(used).Div(decimal.NewFromInt(allocated)).Mul(hundred)
	}
	return u
}

// RateGlobal is the headline rounding: one decimal place, half up.
func (u Usage) RateGlobal() float64 {
	f, _ := u.Rate.Round(1).Float64()
	return f
}

// RateRow is the per-row rendering with two fixed decimals.
func (u Usage) RateRow() string {
	return u.Rate.StringFixed(2)
}

// UsedBy sums the expenditures referencing itemID within rng.
func UsedBy(itemID string, exps []core.Expenditure, rng DateRange) int64 {
	var used int64
	for _, e := range exps {
		if e.BudgetItemID != itemID || !rng.Contains(e.Date) {
			continue
		}
		used += e.Amount
	}
	return used
}

// Rollup computes the usage of a single item.
func Rollup(item core.BudgetItem, exps []core.Expenditure, rng DateRange) Usage {
	return newUsage(item.Amount, UsedBy(item.ID, exps, rng))
}

// Global sums allocation and use across every item regardless of region.
// Expenditures pointing at unknown items are not counted.
func Global(items []core.BudgetItem, exps []core.Expenditure, rng DateRange) Usage {
	var allocated, used int64
	for _, it := range items {
		allocated += it.Amount
		used += UsedBy(it.ID, exps, rng)
	}
	return newUsage(allocated, used)
}
