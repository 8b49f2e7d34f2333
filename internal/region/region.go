// Package region classifies Gyeonggi municipalities and budget items into
// the North/South administrative halves.
package region

import "strings"

// Region is the administrative half of the province.
type Region string

const (
	North Region = "북부"
	South Region = "남부"
)

// Filter values accepted by region-filtered views. All keeps everything.
const All = "전체"

// municipalities is the fixed universe of 31 cities and counties.
var municipalities = []string{
	"가평군", "고양시", "과천시", "광명시", "광주시", "구리시", "군포시", "김포시",
	"남양주시", "동두천시", "부천시", "성남시", "수원시", "시흥시", "안산시", "안성시",
	"안양시", "양주시", "양평군", "여주시", "연천군", "오산시", "용인시", "의왕시",
	"의정부시", "이천시", "파주시", "평택시", "포천시", "하남시", "화성시",
}

var northCities = []string{
	"고양시", "구리시", "남양주시", "동두천시", "양주시", "의정부시", "파주시", "포천시", "가평군", "연천군",
}

var (
	northSet = toSet(northCities)
	knownSet = toSet(municipalities)
)

func toSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// Parse maps a user supplied region string to a Region. The empty string
// and All return ok=false.
func Parse(s string) (Region, bool) {
	switch Region(strings.TrimSpace(s)) {
	case North:
		return North, true
	case South:
		return South, true
	}
	return "", false
}

// Municipalities returns the full list in canonical order.
func Municipalities() []string {
	out := make([]string, len(municipalities))
	copy(out, municipalities)
	return out
}

// IsKnown reports whether city belongs to the municipality universe.
func IsKnown(city string) bool {
	_, ok := knownSet[city]
	return ok
}

// Classify returns North for the ten northern municipalities and South for
// anything else, unknown names included.
func Classify(city string) Region {
	if _, ok := northSet[city]; ok {
		return North
	}
	return South
}

// CitiesOf lists the municipalities of r. South is derived as the
// complement of North within the universe.
func CitiesOf(r Region) []string {
	if r == North {
		out := make([]string, len(northCities))
		copy(out, northCities)
		return out
	}
	out := make([]string, 0, len(municipalities)-len(northCities))
	for _, c := range municipalities {
		if _, ok := northSet[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
