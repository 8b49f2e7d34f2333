package budget

import (
	"sort"

	"outreach/internal/core"
	"outreach/internal/region"
)

type (
	// Row is one budget line ready for display.
	Row struct {
		Item        core.BudgetItem `json:"item"`
		Used        int64           `json:"used"`
		Remaining   int64           `json:"remaining"`
		Rate        string          `json:"rate"`
		Badge       region.Region   `json:"badge,omitempty"`
		MarkerBadge bool            `json:"markerBadge,omitempty"`
	}

	// Totals is the headline figure over all items.
	Totals struct {
		Allocated int64   `json:"allocated"`
		Used      int64   `json:"used"`
		Remaining int64   `json:"remaining"`
		Rate      float64 `json:"rate"`
	}

	Summary struct {
		Rows   []Row  `json:"rows"`
		Global Totals `json:"global"`
	}
)

// Summarize builds the budget table. Rows are the items whose explicit
// region matches regionFilter, in display order. Global always covers
// every item.
func Summarize(items []core.BudgetItem, exps []core.Expenditure, rng DateRange, regionFilter string) Summary {
	sorted := SortItems(items)
	want, filtered := region.Parse(regionFilter)

	rows := make([]Row, 0, len(sorted))
	for _, it := range sorted {
		if filtered && it.Region != want {
			continue
		}
		u := Rollup(it, exps, rng)
		row := Row{Item: it, Used: u.Used, Remaining: u.Remaining, Rate: u.RateRow(), Badge: it.Region}
		if it.Region == "" && region.HasNorthMarker(it.Name) {
			row.MarkerBadge = true
		}
		rows = append(rows, row)
	}

	g := Global(items, exps, rng)
	return Summary{
		Rows: rows,
		Global: Totals{
			Allocated: g.Allocated,
			Used:      g.Used,
			Remaining: g.Remaining,
			Rate:      g.RateGlobal(),
		},
	}
}

// SortItems returns a copy ordered by the manual order field. Items
// without an order count as 0; ties keep their input order.
func SortItems(items []core.BudgetItem) []core.BudgetItem {
	out := make([]core.BudgetItem, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderValue() < out[j].OrderValue() })
	return out
}

// Reorder returns the new order value for each id, which is its index in
// ids. Unknown ids are skipped; items missing from ids are left alone.
func Reorder(items []core.BudgetItem, ids []string) map[string]int {
	known := make(map[string]struct{}, len(items))
	for _, it := range items {
		known[it.ID] = struct{}{}
	}
	orders := make(map[string]int, len(ids))
	for idx, id := range ids {
		if _, ok := known[id]; !ok {
			continue
		}
		orders[id] = idx
	}
	return orders
}

// Move returns ids with the element at from moved to to, the array move a
// drag and drop produces.
func Move(ids []string, from, to int) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	v := out[from]
	out = append(out[:from], out[from+1:]...)
	out = append(out[:to], append([]string{v}, out[to:]...)...)
	return out
}

// SortExpenditures returns a copy ordered newest first with dateless
// entries last.
func SortExpenditures(exps []core.Expenditure) []core.Expenditure {
	out := make([]core.Expenditure, len(exps))
	copy(out, exps)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Date, out[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b.Time)
	})
	return out
}

// FilterExpenditures keeps the entries inside rng.
func FilterExpenditures(exps []core.Expenditure, rng DateRange) []core.Expenditure {
	if !rng.Active() {
		return exps
	}
	out := make([]core.Expenditure, 0, len(exps))
	for _, e := range exps {
		if rng.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}
