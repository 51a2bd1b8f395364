package spatial

import (
	"errors"
	"testing"
)

func TestCheckCoordinate(t *testing.T) {
	tests := []struct {
		name  string
		lat   float64
		lng   float64
		valid bool
	}{
		{"Bangalore", 12.9716, 77.5946, true},
		{"equator", 0, 77.5946, true},
		{"prime meridian", 51.4779, 0, true},
		{"null island", 0, 0, true},
		{"north pole", 90, 0, true},
		{"south pole", -90, 0, true},
		{"date line", 0, 180, true},
		{"date line west", 0, -180, true},
		{"lat too high", 90.0001, 0, false},
		{"lat too low", -90.0001, 0, false},
		{"lng too high", 0, 180.0001, false},
		{"lng too low", 0, -180.0001, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckCoordinate(tc.lat, tc.lng)
			if tc.valid && err != nil {
				t.Errorf("CheckCoordinate(%v, %v) = %v, want nil", tc.lat, tc.lng, err)
			}
			if !tc.valid {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Errorf("CheckCoordinate(%v, %v) = %v, want ErrInvalidCoordinate", tc.lat, tc.lng, err)
				}
			}
		})
	}
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name  string
		lat1  float64
		lng1  float64
		lat2  float64
		lng2  float64
		minKm float64
		maxKm float64
	}{
		{
			name: "same point",
			lat1: 12.9716, lng1: 77.5946,
			lat2: 12.9716, lng2: 77.5946,
			minKm: 0, maxKm: 0.001,
		},
		{
			name: "across Bangalore (~60m)",
			lat1: 12.9716, lng1: 77.5946,
			lat2: 12.9720, lng2: 77.5950,
			minKm: 0.04, maxKm: 0.08,
		},
		{
			name: "Bangalore to Devanahalli (~30km)",
			lat1: 12.9716, lng1: 77.5946,
			lat2: 13.2000, lng2: 77.8000,
			minKm: 25, maxKm: 40,
		},
		{
			name: "London to Greenwich (~8km)",
			lat1: 51.5074, lng1: -0.1278,
			lat2: 51.4772, lng2: 0.0005,
			minKm: 8, maxKm: 10,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dist := Haversine(tc.lat1, tc.lng1, tc.lat2, tc.lng2)
			if dist < tc.minKm || dist > tc.maxKm {
				t.Errorf("Haversine() = %.3f km, want between %.3f and %.3f km",
					dist, tc.minKm, tc.maxKm)
			}
		})
	}
}

func TestHaversineSymmetric(t *testing.T) {
	a := Haversine(12.9716, 77.5946, 13.2000, 77.8000)
	b := Haversine(13.2000, 77.8000, 12.9716, 77.5946)
	if a != b {
		t.Errorf("Haversine not symmetric: %v != %v", a, b)
	}
}
