// Package stats derives dashboard rollups from performance records.
//
// Aggregate is pure: it reads the slices it is given and the supplied
// clock value, and never touches storage.
package stats

import (
	"fmt"
	"sort"
	"time"

	"outreach/internal/core"
	"outreach/internal/region"
)

// MonthsInSeries is the length of the trailing monthly series.
const MonthsInSeries = 12

type (
	// Snapshot is the full derived view over one set of records.
	Snapshot struct {
		TotalMale          int               `json:"totalMale"`
		TotalFemale        int               `json:"totalFemale"`
		TotalPeople        int               `json:"totalPeople"`
		TotalPromotions    int               `json:"totalPromotions"`
		TotalOrganizations int               `json:"totalOrganizations"`
		Monthly            []MonthBucket     `json:"monthlyData"`
		Organizations      []OrganizationRow `json:"organizationData"`
		Cities             []CityRow         `json:"cityData"`
	}

	MonthBucket struct {
		Year       int    `json:"year"`
		Month      int    `json:"month"`
		Label      string `json:"label"`
		Male       int    `json:"male"`
		Female     int    `json:"female"`
		Total      int    `json:"total"`
		Promotions int    `json:"promotions"`
	}

	OrganizationRow struct {
		Name  string `json:"name"`
		Total int    `json:"total"`
		Count int    `json:"count"`
		City  string `json:"city"`
	}

	CityRow struct {
		Name   string        `json:"name"`
		Region region.Region `json:"region"`
		Total  int           `json:"total"`
		Count  int           `json:"count"`
	}
)

// Aggregate computes totals, the trailing twelve-month series ending at
// now's month, and the organization and city leaderboards.
//
// An empty performance list returns zero totals and empty slices; the
// month and city seeding only happens when there is at least one record.
func Aggregate(perfs []core.PerformanceRecord, orgs []core.Organization, now time.Time) Snapshot {
	if len(perfs) == 0 {
		return Snapshot{
			Monthly:       []MonthBucket{},
			Organizations: []OrganizationRow{},
			Cities:        []CityRow{},
		}
	}

	var s Snapshot
	names := make(map[string]struct{})
	for _, p := range perfs {
		s.TotalMale += p.Male
		s.TotalFemale += p.Female
		s.TotalPromotions += p.Promotions
		names[p.OrganizationName] = struct{}{}
	}
	s.TotalPeople = s.TotalMale + s.TotalFemale
	s.TotalOrganizations = len(names)

	dir := cityDirectory(orgs)
	s.Monthly = monthly(perfs, now)
	s.Organizations = organizationBoard(perfs, dir)
	s.Cities = cityBoard(perfs, dir)
	return s
}

// cityDirectory maps organization name to city. The first entry for a
// name wins; later duplicates are ignored.
func cityDirectory(orgs []core.Organization) map[string]string {
	dir := make(map[string]string, len(orgs))
	for _, o := range orgs {
		if _, seen := dir[o.Name]; !seen {
			dir[o.Name] = o.City
		}
	}
	return dir
}

func monthly(perfs []core.PerformanceRecord, now time.Time) []MonthBucket {
	type ym struct{ y, m int }
	buckets := make([]MonthBucket, MonthsInSeries)
	index := make(map[ym]int, MonthsInSeries)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < MonthsInSeries; i++ {
		d := first.AddDate(0, i-(MonthsInSeries-1), 0)
		buckets[i] = MonthBucket{Year: d.Year(), Month: int(d.Month()), Label: MonthLabel(d.Year(), int(d.Month()))}
		index[ym{d.Year(), int(d.Month())}] = i
	}
	for _, p := range perfs {
		if p.Date.IsZero() {
			continue
		}
		i, ok := index[ym{p.Date.Year(), int(p.Date.Month())}]
		if !ok {
			continue
		}
		b := &buckets[i]
		b.Male += p.Male
		b.Female += p.Female
		b.Promotions += p.Promotions
		b.Total = b.Male + b.Female
	}
	return buckets
}

// MonthLabel renders the short Korean month label, e.g. "24년 1월".
func MonthLabel(year, month int) string {
	return fmt.Sprintf("%02d년 %d월", year%100, month)
}

func organizationBoard(perfs []core.PerformanceRecord, dir map[string]string) []OrganizationRow {
	rows := make([]OrganizationRow, 0)
	pos := make(map[string]int)
	for _, p := range perfs {
		i, ok := pos[p.OrganizationName]
		if !ok {
			i = len(rows)
			pos[p.OrganizationName] = i
			rows = append(rows, OrganizationRow{Name: p.OrganizationName, City: dir[p.OrganizationName]})
		}
		rows[i].Total += p.Total()
		rows[i].Count++
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Total > rows[b].Total })
	return rows
}

func cityBoard(perfs []core.PerformanceRecord, dir map[string]string) []CityRow {
	cities := region.Municipalities()
	rows := make([]CityRow, len(cities))
	pos := make(map[string]int, len(cities))
	for i, c := range cities {
		rows[i] = CityRow{Name: c, Region: region.Classify(c)}
		pos[c] = i
	}
	for _, p := range perfs {
		city, ok := dir[p.OrganizationName]
		if !ok {
			continue
		}
		i, known := pos[city]
		if !known {
			continue
		}
		rows[i].Total += p.Total()
		rows[i].Count++
	}
	sort.SliceStable(rows, func(a, b int) bool { return rows[a].Total > rows[b].Total })
	return rows
}

// CityOrganizations returns the leaderboard rows located in city, keeping
// their leaderboard order.
func CityOrganizations(s Snapshot, city string) []OrganizationRow {
	out := make([]OrganizationRow, 0)
	for _, o := range s.Organizations {
		if o.City == city {
			out = append(out, o)
		}
	}
	return out
}

// FilterCities keeps the city rows that pass the region filter value.
// The filter uses the budget-name allow-lists, not Classify.
func FilterCities(rows []CityRow, filter string) []CityRow {
	out := make([]CityRow, 0, len(rows))
	for _, r := range rows {
		if region.MatchesBudgetFilter(r.Name, filter) {
			out = append(out, r)
		}
	}
	return out
}
