// Package transfer reads and writes the CSV and spreadsheet files users
// exchange with the dashboard.
package transfer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"outreach/internal/core"
)

const bom = "\ufeff"

// OrganizationColumns is the header of the organization template.
var OrganizationColumns = []string{"시/군", "단체명", "담당자명", "연락처", "이메일"}

// splitLine splits a line on every comma and strips quotes from each
// field. Quoted commas are not supported; the template never produces
// them.
func splitLine(line string) []string {
	cols := strings.Split(line, ",")
	for i, c := range cols {
		cols[i] = strings.ReplaceAll(strings.TrimSpace(c), `"`, "")
	}
	return cols
}

// dataLines returns the non-blank lines after the header.
func dataLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	var lines []string
	first := true
	for sc.Scan() {
		if first {
			first = false
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return lines, nil
}

// ParseOrganizations reads an organization CSV. Rows with fewer than four
// columns are counted in rejected and skipped.
func ParseOrganizations(r io.Reader) (orgs []core.Organization, rejected int, err error) {
	lines, err := dataLines(r)
	if err != nil {
		return nil, 0, err
	}
	for _, line := range lines {
		o, ok := organizationFromColumns(splitLine(line))
		if !ok {
			rejected++
			continue
		}
		orgs = append(orgs, o)
	}
	return orgs, rejected, nil
}

func organizationFromColumns(cols []string) (core.Organization, bool) {
	if len(cols) < 4 {
		return core.Organization{}, false
	}
	o := core.Organization{City: cols[0], Name: cols[1], ContactPerson: cols[2], Phone: cols[3]}
	if len(cols) > 4 {
		o.Email = cols[4]
	}
	return o, true
}

// OrganizationTemplate writes the import template with a BOM so that
// spreadsheet programs detect UTF-8.
func OrganizationTemplate(w io.Writer) error {
	_, err := io.WriteString(w, bom+strings.Join(OrganizationColumns, ",")+"\n"+
		"수원시,예시 단체,홍길동,010-1234-5678,hong@example.com\n"+
		"성남시,샘플 그룹,김철수,010-9876-5432,kim@sample.org")
	return err
}
