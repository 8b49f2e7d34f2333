package stats

import (
	"sort"
	"strings"

	"outreach/internal/core"
)

// Filter narrows a performance list the way the records screen does.
// Zero fields are inactive.
type Filter struct {
	Start            *core.Date
	End              *core.Date
	OrganizationName string
	Search           string
}

// Apply returns the matching records sorted newest first, dateless last.
// The input slice is not modified.
func (f Filter) Apply(perfs []core.PerformanceRecord) []core.PerformanceRecord {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]core.PerformanceRecord, 0, len(perfs))
	for _, p := range perfs {
		if !p.Date.Within(f.Start, f.End) {
			continue
		}
		if f.OrganizationName != "" && p.OrganizationName != f.OrganizationName {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(p.OrganizationName), search) &&
			!strings.Contains(strings.ToLower(p.Notes), search) {
			continue
		}
		out = append(out, p)
	}
	SortNewestFirst(out)
	return out
}

// InRange keeps records inside the inclusive date range without sorting.
func InRange(perfs []core.PerformanceRecord, start, end *core.Date) []core.PerformanceRecord {
	if start == nil && end == nil {
		return perfs
	}
	out := make([]core.PerformanceRecord, 0, len(perfs))
	for _, p := range perfs {
		if p.Date.Within(start, end) {
			out = append(out, p)
		}
	}
	return out
}

// SortNewestFirst orders records by date descending with dateless
// records at the end.
func SortNewestFirst(perfs []core.PerformanceRecord) {
	sort.SliceStable(perfs, func(i, j int) bool {
		a, b := perfs[i].Date, perfs[j].Date
		if a.IsZero() || b.IsZero() {
			return !a.IsZero() && b.IsZero()
		}
		return a.After(b.Time)
	})
}

// OrganizationNames lists the distinct directory names, sorted.
func OrganizationNames(orgs []core.Organization) []string {
	seen := make(map[string]struct{}, len(orgs))
	out := make([]string, 0, len(orgs))
	for _, o := range orgs {
		if _, dup := seen[o.Name]; dup {
			continue
		}
		seen[o.Name] = struct{}{}
		out = append(out, o.Name)
	}
	sort.Strings(out)
	return out
}
