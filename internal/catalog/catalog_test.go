// Copyright (C) 2025 the housewarming maintainers
// See root-dir/LICENSE for more information

package catalog

import "testing"

func TestStationIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Stations() {
		if seen[s.ID] {
			t.Errorf("duplicate station id: %s", s.ID)
		}
		seen[s.ID] = true
		if LineColor(s.Line) == "" {
			t.Errorf("station %s has no line colour", s.ID)
		}
	}
}

func TestSessionCapacities(t *testing.T) {
	seen := make(map[string]bool)
	for _, s := range Sessions() {
		if seen[s.ID] {
			t.Errorf("duplicate session id: %s", s.ID)
		}
		seen[s.ID] = true
		if s.Capacity <= 0 {
			t.Errorf("session %s has non-positive capacity: %d", s.ID, s.Capacity)
		}
		if s.Time == "" {
			t.Errorf("session %s has no time label", s.ID)
		}
	}
}

func TestStationByID(t *testing.T) {
	tt := []struct {
		id    string
		found bool
	}{
		{id: "baker-street", found: true},
		{id: "clapham-junction", found: true},
		{id: "narnia", found: false},
		{id: "", found: false},
	}
	for _, tc := range tt {
		if _, ok := StationByID(tc.id); ok != tc.found {
			t.Errorf("StationByID(%q) found=%v, want %v", tc.id, ok, tc.found)
		}
	}
}

func TestLineColorFallback(t *testing.T) {
	if got := LineColor("Hogwarts Express"); got != "#000000" {
		t.Errorf("unexpected fallback colour: %s", got)
	}
}
