package transfer

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"

	"outreach/internal/core"
)

// PerformanceColumns is the export header. 총인원 is computed.
var PerformanceColumns = []string{"날짜", "단체명", "시군", "프로그램", "남성", "여성", "총인원", "홍보횟수", "메모"}

// ParsePerformances reads a performance CSV with the columns date,
// organization, city, program, male, female, promotions and notes. Rows
// with fewer than eight columns are rejected. A missing or unparseable
// date becomes now and non-numeric counts become 0.
func ParsePerformances(r io.Reader, now time.Time) (records []core.PerformanceRecord, rejected int, err error) {
	lines, err := dataLines(r)
	if err != nil {
		return nil, 0, err
	}
	for _, line := range lines {
		cols := splitLine(line)
		if len(cols) < 8 {
			rejected++
			continue
		}
		d, err := core.ParseDate(cols[0])
		if err != nil || d.IsZero() {
			d = core.DateOf(now)
		}
		records = append(records, core.PerformanceRecord{
			Date:             d,
			OrganizationName: cols[1],
			City:             cols[2],
			Program:          core.Program(cols[3]),
			Male:             core.CountOrZero(cols[4]),
			Female:           core.CountOrZero(cols[5]),
			Promotions:       core.CountOrZero(cols[6]),
			Notes:            cols[7],
		})
	}
	return records, rejected, nil
}

// PerformanceRow is p as typed cell values in PerformanceColumns order.
func PerformanceRow(p core.PerformanceRecord) []any {
	return []any{p.Date.String(), p.OrganizationName, p.City, string(p.Program),
		p.Male, p.Female, p.Total(), p.Promotions, p.Notes}
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WritePerformancesCSV exports records with a BOM. Text fields are always
// quoted.
func WritePerformancesCSV(w io.Writer, records []core.PerformanceRecord) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(bom)
	bw.WriteString(strings.Join(PerformanceColumns, ","))
	bw.WriteString("\n")
	for _, p := range records {
		fields := []string{
			quote(p.Date.String()),
			quote(p.OrganizationName),
			quote(p.City),
			quote(string(p.Program)),
			strconv.Itoa(p.Male),
			strconv.Itoa(p.Female),
			strconv.Itoa(p.Total()),
			strconv.Itoa(p.Promotions),
			quote(p.Notes),
		}
		bw.WriteString(strings.Join(fields, ","))
		bw.WriteString("\n")
	}
	return bw.Flush()
}
