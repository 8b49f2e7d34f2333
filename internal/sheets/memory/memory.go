package memory

import (
	"context"
	"sync"

	"outreach/internal/core"
	"outreach/internal/sheets"
)

// Mirror keeps the last rows written per tab. It stands in for the
// Google client in tests and dry runs.
type Mirror struct {
	mu    sync.Mutex
	tabs  map[string][][]any
	calls map[string]int
	err   error
}

const (
	PerformanceTab = "performances"
	ExpenditureTab = "expenditures"
)

var _ sheets.Mirror = (*Mirror)(nil)

func New() *Mirror {
	return &Mirror{tabs: make(map[string][][]any), calls: make(map[string]int)}
}

// FailWith makes every later write return err. Nil restores success.
func (m *Mirror) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *Mirror) write(tab string, rows [][]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[tab]++
	if m.err != nil {
		return m.err
	}
	m.tabs[tab] = rows
	return nil
}

func (m *Mirror) MirrorPerformances(_ context.Context, records []core.PerformanceRecord) error {
	return m.write(PerformanceTab, sheets.PerformanceRows(records))
}

func (m *Mirror) MirrorExpenditures(_ context.Context, exps []core.Expenditure, items []core.BudgetItem) error {
	return m.write(ExpenditureTab, sheets.ExpenditureRows(exps, items))
}

// Rows returns the rows last written to tab, header included.
func (m *Mirror) Rows(tab string) [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tabs[tab]
}

// Calls counts write attempts on tab, failed ones included.
func (m *Mirror) Calls(tab string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[tab]
}
