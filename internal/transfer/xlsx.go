package transfer

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"outreach/internal/core"
)

const performanceSheet = "실적"

// WritePerformancesXLSX exports the same columns as the CSV as a
// workbook.
func WritePerformancesXLSX(w io.Writer, records []core.PerformanceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", performanceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for i, header := range PerformanceColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(performanceSheet, cell, header)
	}

	for i, p := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := PerformanceRow(p)
		if err := f.SetSheetRow(performanceSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// ParseOrganizationsXLSX reads organizations from the first sheet of a
// workbook using the same column layout as the CSV template.
func ParseOrganizationsXLSX(r io.Reader) (orgs []core.Organization, rejected int, err error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, 0, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, 0, fmt.Errorf("read rows: %w", err)
	}
	for i, row := range rows {
		if i == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		for j := range row {
			row[j] = strings.TrimSpace(row[j])
		}
		o, ok := organizationFromColumns(row)
		if !ok {
			rejected++
			continue
		}
		orgs = append(orgs, o)
	}
	return orgs, rejected, nil
}
