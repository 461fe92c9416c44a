package detect

import (
	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
)

// NakshatraChange marks the instant the Moon's longitude crosses a pada
// boundary (one of 108 around the full circle: 27 nakshatras of 4 padas
// each).
type NakshatraChange struct {
	Instant   float64 // Julian date (TDB)
	Nakshatra int     // 0..26
	Pada      int     // 1..4
}

// nakshatraStepMinutes is 30 for windows of 15 days or less, 60 otherwise:
// the Moon crosses a pada roughly every 6 hours, so even the coarser
// 60-minute step used over longer windows samples each pada several times.
func nakshatraStepMinutes(windowDays float64) float64 {
	if windowDays <= 15 {
		return 30
	}
	return 60
}

// NakshatraChanges scans [startJD, endJD) for the Moon's pada-boundary
// crossings. If none fall in the window, a single synthetic record is
// emitted at startJD carrying the nakshatra/pada that already holds there
// — an advisory "opening" record, not a true transition, for callers (such
// as the monthly record) that always want at least one entry describing
// the Moon's position.
func NakshatraChanges(adapter *ephem.Adapter, startJD, endJD float64) ([]NakshatraChange, error) {
	stepDays := nakshatraStepMinutes(endJD-startJD) / 1440.0
	classify := func(jd float64) int {
		return angle.PadaIndex(adapter.Longitude(ephem.Moon, jd))
	}

	events, err := scanner.ScanClassification(startJD, endJD, stepDays, classify, 0)
	if err != nil {
		return nil, err
	}

	out := make([]NakshatraChange, 0, len(events))
	for _, e := range events {
		nak, pada := angle.NakshatraPada(e.NewClass)
		out = append(out, NakshatraChange{Instant: e.T, Nakshatra: nak, Pada: pada})
	}

	if len(out) == 0 {
		nak, pada := CurrentNakshatraPada(adapter, startJD)
		out = append(out, NakshatraChange{Instant: startJD, Nakshatra: nak, Pada: pada})
	}

	return out, nil
}

// CurrentNakshatraPada returns the nakshatra and pada the Moon's longitude
// falls in at jd, independent of any scan — used to seed an advisory
// opening record when a window contains no pada-boundary crossing.
func CurrentNakshatraPada(adapter *ephem.Adapter, jd float64) (nakshatra, pada int) {
	padaIdx := angle.PadaIndex(adapter.Longitude(ephem.Moon, jd))
	return angle.NakshatraPada(padaIdx)
}
