package scheduling

import (
	"testing"

	"notaryops/models"
)

func TestComputeBufferMinutes(t *testing.T) {
	bc := NewBufferCalculator()

	tests := []struct {
		name        string
		serviceType string
		wantPrep    int
		wantCleanup int
	}{
		{"essential", "essential", 10, 5},
		{"standard", "standard", 15, 10},
		{"loan signing", "loan_signing", 30, 15},
		{"specialty", "specialty", 20, 10},
		{"unknown falls back to defaults", "apostille", 15, 10},
		{"case insensitive", "LOAN_SIGNING", 30, 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := bc.Compute(tt.serviceType, nil, nil)
			if got.PrepMinutes != tt.wantPrep {
				t.Errorf("prep = %d, want %d", got.PrepMinutes, tt.wantPrep)
			}
			if got.CleanupMinutes != tt.wantCleanup {
				t.Errorf("cleanup = %d, want %d", got.CleanupMinutes, tt.wantCleanup)
			}
			if got.TravelMinutes != travelDefault {
				t.Errorf("travel with unknown locations = %d, want %d", got.TravelMinutes, travelDefault)
			}
			if got.Lead() != tt.wantPrep+travelDefault {
				t.Errorf("Lead() = %d, want %d", got.Lead(), tt.wantPrep+travelDefault)
			}
			if got.Trail() != tt.wantCleanup {
				t.Errorf("Trail() = %d, want %d", got.Trail(), tt.wantCleanup)
			}
		})
	}
}

func TestTravelMinutesTiers(t *testing.T) {
	bc := NewBufferCalculator()

	houston := models.Location{Lat: 29.7604, Lng: -95.3698, Address: "123 Main St, Houston, TX"}
	houstonEast := models.Location{Lat: 29.7520, Lng: -95.3100, Address: "456 Harrisburg Blvd, Houston, TX"}
	pasadena := models.Location{Lat: 29.6911, Lng: -95.2091, Address: "100 Pasadena Blvd, Pasadena, TX"}
	galveston := models.Location{Lat: 29.3013, Lng: -94.7977, Address: "2200 Seawall Blvd, Galveston, TX"}

	tests := []struct {
		name string
		from models.Location
		to   models.Location
		want int
	}{
		{"same city short hop", houston, houstonEast, travelSameCity},
		{"different city mid distance", houston, pasadena, travelDifferentCity},
		{"far stop is cross town tier", houston, galveston, travelCrossTown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := bc.TravelMinutes(tt.from, tt.to); got != tt.want {
				t.Errorf("TravelMinutes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSameCityParsing(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"matching cities", "1 Elm St, Houston, TX", "9 Oak St, Houston, TX", true},
		{"case and spacing ignored", "1 Elm St,houston , TX", "9 Oak St, HOUSTON, TX", true},
		{"different cities", "1 Elm St, Houston, TX", "9 Oak St, Dallas, TX", false},
		{"unparseable address never matches", "just a street name", "just a street name", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameCity(tt.a, tt.b); got != tt.want {
				t.Errorf("sameCity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestHaversineDistance(t *testing.T) {
	est := HaversineEstimator{}
	houston := models.Location{Lat: 29.7604, Lng: -95.3698}
	dallas := models.Location{Lat: 32.7767, Lng: -96.7970}

	got := est.DistanceKm(houston, dallas)
	if got < 350 || got > 390 {
		t.Errorf("DistanceKm(Houston, Dallas) = %.1f, want roughly 362", got)
	}
	if d := est.DistanceKm(houston, houston); d != 0 {
		t.Errorf("DistanceKm to self = %.4f, want 0", d)
	}
}
