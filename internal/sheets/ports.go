// Package sheets turns collections into spreadsheet rows for the mirror.
package sheets

import (
	"context"
	"slices"

	"outreach/internal/budget"
	"outreach/internal/core"
	"outreach/internal/stats"
	"outreach/internal/transfer"
)

// Mirror receives full collection snapshots and replaces its copy.
type Mirror interface {
	MirrorPerformances(ctx context.Context, records []core.PerformanceRecord) error
	MirrorExpenditures(ctx context.Context, exps []core.Expenditure, items []core.BudgetItem) error
}

// ExpenditureColumns is the header of the expenditure tab.
var ExpenditureColumns = []string{"날짜", "예산 항목", "내용", "거래처", "금액", "결제수단", "비고"}

func header(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

// PerformanceRows returns the header and one row per record, newest
// first.
func PerformanceRows(records []core.PerformanceRecord) [][]any {
	sorted := slices.Clone(records)
	stats.SortNewestFirst(sorted)

	rows := make([][]any, 0, len(sorted)+1)
	rows = append(rows, header(transfer.PerformanceColumns))
	for _, p := range sorted {
		rows = append(rows, transfer.PerformanceRow(p))
	}
	return rows
}

// ExpenditureRows returns the header and one row per expenditure, newest
// first. The budget item id is replaced by its name when it is known.
func ExpenditureRows(exps []core.Expenditure, items []core.BudgetItem) [][]any {
	names := make(map[string]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}

	rows := make([][]any, 0, len(exps)+1)
	rows = append(rows, header(ExpenditureColumns))
	for _, e := range budget.SortExpenditures(exps) {
		item, ok := names[e.BudgetItemID]
		if !ok {
			item = e.BudgetItemID
		}
		date := ""
		if !e.Date.IsZero() {
			date = e.Date.String()
		}
		rows = append(rows, []any{date, item, e.Description, e.Vendor, e.Amount, e.PaymentMethod, e.Note})
	}
	return rows
}
