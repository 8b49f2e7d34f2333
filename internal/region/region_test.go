package region

import "testing"

func TestClassifyTotality(t *testing.T) {
	north := 0
	for _, c := range Municipalities() {
		switch Classify(c) {
		case North:
			north++
		case South:
		default:
			t.Fatalf("city %s classified outside North/South", c)
		}
	}
	if north != 10 {
		t.Fatalf("expected 10 northern municipalities, got %d", north)
	}
}

func TestClassifyUnknownDefaultsSouth(t *testing.T) {
	for _, c := range []string{"", "서울시", "고양", "수원 시"} {
		if got := Classify(c); got != South {
			t.Errorf("Classify(%q) = %s, want South", c, got)
		}
	}
}

func TestCitiesOfPartitionsUniverse(t *testing.T) {
	seen := map[string]Region{}
	for _, r := range []Region{North, South} {
		for _, c := range CitiesOf(r) {
			if prev, dup := seen[c]; dup {
				t.Fatalf("city %s in both %s and %s", c, prev, r)
			}
			seen[c] = r
			if Classify(c) != r {
				t.Errorf("CitiesOf(%s) contains %s but Classify says %s", r, c, Classify(c))
			}
		}
	}
	if len(seen) != len(Municipalities()) {
		t.Fatalf("union has %d cities, want %d", len(seen), len(Municipalities()))
	}
	for _, c := range Municipalities() {
		if _, ok := seen[c]; !ok {
			t.Errorf("city %s missing from union", c)
		}
	}
}

func TestCitiesOfReturnsCopy(t *testing.T) {
	n := CitiesOf(North)
	n[0] = "mutated"
	if CitiesOf(North)[0] == "mutated" {
		t.Fatal("CitiesOf leaked internal slice")
	}
}

func TestClassifyBudgetNameIsPartial(t *testing.T) {
	tests := []struct {
		name   string
		want   Region
		wantOK bool
	}{
		{"수원시", South, true},
		{"양평군", South, true},
		{"고양시", North, true},
		{"스포츠교실 운영비", "", false},
		{"북부 사업비", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ClassifyBudgetName(tt.name)
			if got != tt.want || ok != tt.wantOK {
				t.Fatalf("ClassifyBudgetName(%q) = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestMatchesBudgetFilter(t *testing.T) {
	if !MatchesBudgetFilter("anything", All) || !MatchesBudgetFilter("anything", "") {
		t.Fatal("All and empty filter must keep every name")
	}
	if !MatchesBudgetFilter("파주시", string(North)) {
		t.Error("파주시 should pass the North filter")
	}
	if MatchesBudgetFilter("파주시", string(South)) {
		t.Error("파주시 should not pass the South filter")
	}
	if MatchesBudgetFilter("기타", string(South)) {
		t.Error("unclassified names are dropped by a concrete filter")
	}
}

func TestHasNorthMarker(t *testing.T) {
	if !HasNorthMarker("체육진흥 북부") {
		t.Error("expected marker")
	}
	if HasNorthMarker("체육진흥 남부") {
		t.Error("unexpected marker")
	}
}

func TestParse(t *testing.T) {
	if r, ok := Parse(" 북부 "); !ok || r != North {
		t.Fatalf("Parse north = %q %v", r, ok)
	}
	if _, ok := Parse(All); ok {
		t.Fatal("All must not parse to a region")
	}
}
