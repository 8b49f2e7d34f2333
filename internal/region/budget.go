package region

import "strings"

// Budget names are matched textually against these lists. They are not
// derived from the city classifier and may drift from it independently.
var (
	southBudgetNames = []string{
		"과천시", "광명시", "광주시", "군포시", "김포시", "부천시", "성남시", "수원시", "시흥시", "안산시", "안성시",
		"안양시", "여주시", "오산시", "용인시", "의왕시", "이천시", "평택시", "하남시", "화성시", "양평군",
	}
	northBudgetNames = []string{
		"고양시", "구리시", "남양주시", "동두천시", "양주시", "의정부시", "파주시", "포천시", "가평군", "연천군",
	}

	southBudgetSet = toSet(southBudgetNames)
	northBudgetSet = toSet(northBudgetNames)
)

// northMarker is the substring some budget names carry as a region suffix.
const northMarker = "북부"

// ClassifyBudgetName looks name up in the budget allow-lists. It is
// partial: ok is false when name matches neither list.
func ClassifyBudgetName(name string) (r Region, ok bool) {
	if _, found := southBudgetSet[name]; found {
		return South, true
	}
	if _, found := northBudgetSet[name]; found {
		return North, true
	}
	return "", false
}

// MatchesBudgetFilter reports whether name passes the region filter
// value. All and unknown filter values keep every name.
func MatchesBudgetFilter(name, filter string) bool {
	want, ok := Parse(filter)
	if !ok {
		return true
	}
	got, classified := ClassifyBudgetName(name)
	return classified && got == want
}

// HasNorthMarker reports whether a budget name embeds the north marker.
func HasNorthMarker(name string) bool {
	return strings.Contains(name, northMarker)
}
