package spatial

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

// latOffset returns the latitude degrees that move a point km kilometers
// due north, which haversine measures exactly.
func latOffset(km float64) float64 {
	return km / earthRadiusKm * 180 / math.Pi
}

func TestUpsertAndPosition(t *testing.T) {
	idx := NewIndex()

	if err := idx.Upsert("w1", 12.9716, 77.5946); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	pos, ok := idx.Position("w1")
	if !ok {
		t.Fatal("Position not found after Upsert")
	}
	if pos.Lat != 12.9716 || pos.Lng != 77.5946 {
		t.Errorf("Position = (%v, %v), want (12.9716, 77.5946)", pos.Lat, pos.Lng)
	}
}

func TestUpsertReplacesEntry(t *testing.T) {
	idx := NewIndex()

	if err := idx.Upsert("w1", 12.9716, 77.5946); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := idx.Upsert("w1", 13.0000, 77.6000); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	if idx.Len() != 1 {
		t.Errorf("Len = %d, want 1 (one entry per identity)", idx.Len())
	}

	pos, _ := idx.Position("w1")
	if pos.Lat != 13.0000 {
		t.Errorf("Position.Lat = %v, want 13.0000", pos.Lat)
	}

	// the old position must not satisfy queries anymore
	got := idx.QueryRadius(12.9716, 77.5946, 0.1, "")
	if len(got) != 0 {
		t.Errorf("old position still matches queries: %v", got)
	}
}

func TestUpsertRejectsOutOfRange(t *testing.T) {
	idx := NewIndex()

	tests := []struct {
		name string
		lat  float64
		lng  float64
	}{
		{"lat high", 91, 0},
		{"lat low", -91, 0},
		{"lng high", 0, 181},
		{"lng low", 0, -181},
		{"nan", math.NaN(), 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := idx.Upsert("w1", tc.lat, tc.lng)
			if !errors.Is(err, ErrInvalidCoordinate) {
				t.Errorf("Upsert(%v, %v) = %v, want ErrInvalidCoordinate", tc.lat, tc.lng, err)
			}
			if idx.Len() != 0 {
				t.Errorf("index mutated by rejected upsert, Len = %d", idx.Len())
			}
		})
	}
}

func TestUpsertAcceptsZeroCoordinates(t *testing.T) {
	idx := NewIndex()

	if err := idx.Upsert("w1", 0, 0); err != nil {
		t.Fatalf("Upsert(0, 0) = %v, want nil", err)
	}

	got := idx.QueryRadius(0, 0, 1, "")
	if len(got) != 1 || got[0] != "w1" {
		t.Errorf("QueryRadius around null island = %v, want [w1]", got)
	}
}

func TestRemove(t *testing.T) {
	idx := NewIndex()
	idx.Upsert("w1", 12.9716, 77.5946)

	if !idx.Remove("w1") {
		t.Error("Remove returned false for existing entry")
	}
	if idx.Remove("w1") {
		t.Error("Remove returned true for absent entry")
	}

	if _, ok := idx.Position("w1"); ok {
		t.Error("Position found after Remove")
	}
	got := idx.QueryRadius(12.9716, 77.5946, 1, "")
	if len(got) != 0 {
		t.Errorf("removed identity still returned: %v", got)
	}
}

func TestQueryRadiusBoundary(t *testing.T) {
	center := struct{ lat, lng float64 }{12.9716, 77.5946}
	idx := NewIndex()

	// due-north placements so the haversine distance is exact
	idx.Upsert("inside", center.lat+latOffset(0.999), center.lng)
	idx.Upsert("outside", center.lat+latOffset(1.001), center.lng)

	got := idx.QueryRadius(center.lat, center.lng, 1.0, "")
	want := []string{"inside"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QueryRadius = %v, want %v", got, want)
	}
}

func TestQueryRadiusExactSet(t *testing.T) {
	idx := NewIndex()

	watchers := map[string]struct{ lat, lng float64 }{
		"w-near-1": {12.9720, 77.5950}, // ~60m
		"w-near-2": {12.9710, 77.5940}, // ~90m
		"w-far":    {13.2000, 77.8000}, // ~30km
	}
	for id, pos := range watchers {
		if err := idx.Upsert(id, pos.lat, pos.lng); err != nil {
			t.Fatalf("Upsert %s: %v", id, err)
		}
	}

	got := idx.QueryRadius(12.9716, 77.5946, 1.0, "")
	want := []string{"w-near-1", "w-near-2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QueryRadius = %v, want %v", got, want)
	}

	// every returned identity really is within the radius
	for _, id := range got {
		pos, _ := idx.Position(id)
		if d := Haversine(12.9716, 77.5946, pos.Lat, pos.Lng); d > 1.0 {
			t.Errorf("%s returned at distance %.3f km", id, d)
		}
	}
}

func TestQueryRadiusDeterministicOrder(t *testing.T) {
	idx := NewIndex()
	idx.Upsert("charlie", 12.9717, 77.5947)
	idx.Upsert("alice", 12.9718, 77.5948)
	idx.Upsert("bob", 12.9719, 77.5949)

	first := idx.QueryRadius(12.9716, 77.5946, 1.0, "")
	want := []string{"alice", "bob", "charlie"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("QueryRadius = %v, want %v", first, want)
	}

	for i := 0; i < 10; i++ {
		if got := idx.QueryRadius(12.9716, 77.5946, 1.0, ""); !reflect.DeepEqual(got, first) {
			t.Fatalf("QueryRadius not deterministic: %v vs %v", got, first)
		}
	}
}

func TestQueryRadiusExcludesSelf(t *testing.T) {
	idx := NewIndex()
	idx.Upsert("amb-1", 12.9716, 77.5946)
	idx.Upsert("w1", 12.9717, 77.5947)

	got := idx.QueryRadius(12.9716, 77.5946, 1.0, "amb-1")
	want := []string{"w1"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("QueryRadius = %v, want %v", got, want)
	}
}

func TestQueryRadiusEmpty(t *testing.T) {
	idx := NewIndex()

	got := idx.QueryRadius(12.9716, 77.5946, 1.0, "")
	if len(got) != 0 {
		t.Errorf("QueryRadius on empty index = %v, want []", got)
	}
}
