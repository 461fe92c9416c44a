package detect

import (
	"testing"

	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
)

func TestVelocityExtrema_MoonHasExtremaEveryMonth(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	extrema, err := VelocityExtrema(a, ephem.Moon, july2023JD, july2023JD+31)
	if err != nil {
		t.Fatal(err)
	}
	// The Moon's speed oscillates between roughly 12 and 15 deg/day once
	// per anomalistic month (~27.5 days), so a 31-day window sees at least
	// one maximum and one minimum.
	if len(extrema) < 2 {
		t.Fatalf("expected >=2 Moon velocity extrema in 31 days, got %d", len(extrema))
	}
}

func TestVelocityExtrema_MercuryIncludesRetrogradeMinimum(t *testing.T) {
	a := newTestAdapter(t, ephem.Tropical)
	extrema, err := VelocityExtrema(a, ephem.Mercury, july2023JD-180, july2023JD+180)
	if err != nil {
		t.Fatal(err)
	}
	foundMin := false
	for _, e := range extrema {
		if e.Kind == scanner.Minimum {
			foundMin = true
		}
	}
	if !foundMin {
		t.Error("expected at least one speed minimum for Mercury over a year (it regularly goes retrograde)")
	}
}

func TestVelocityExtrema_DedupSpacing(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	extrema, err := VelocityExtrema(a, ephem.Moon, july2023JD, july2023JD+60)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(extrema); i++ {
		gap := extrema[i].Instant - extrema[i-1].Instant
		valueGap := extrema[i].SpeedDegPerDay - extrema[i-1].SpeedDegPerDay
		if valueGap < 0 {
			valueGap = -valueGap
		}
		if gap < velocityDedupWindowDays && valueGap < velocityDedupTolerance {
			t.Errorf("two extrema survived dedup too close together: gap=%f value_gap=%f", gap, valueGap)
		}
	}
}

func TestAllVelocityExtrema_OnlyKnownBodies(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	extrema, err := AllVelocityExtrema(a, july2023JD, july2023JD+31)
	if err != nil {
		t.Fatal(err)
	}
	known := map[ephem.Body]bool{}
	for _, b := range VelocityBodies {
		known[b] = true
	}
	for _, e := range extrema {
		if !known[e.Body] {
			t.Errorf("velocity extremum for unexpected body %v", e.Body)
		}
	}
}
