package detect

import (
	"math"

	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
)

// AscendantFlip marks the instant the ascendant (lagna) at a ground
// location crosses a zodiac-sign boundary. MidpointJD is the instant within
// the following sub-interval at which the ascendant reaches the midpoint
// of ToSign (ToSign*30 + 15 degrees); it is NaN if that midpoint could not
// be located (e.g. this is the last flip in the window).
type AscendantFlip struct {
	Instant    float64
	FromSign   int
	ToSign     int
	MidpointJD float64
}

// ascendantStepMinutes is 5 for windows of 24 hours or less (the ascendant
// sweeps 360 degrees roughly once a day, so a short window needs a fine
// step to not miss a flip), 10 otherwise.
func ascendantStepMinutes(windowDays float64) float64 {
	if windowDays <= 1.0 {
		return 5
	}
	return 10
}

// AscendantFlips scans [startJD, endJD) for ascendant sign-boundary
// crossings at (latDeg, lonDeg).
func AscendantFlips(adapter *ephem.Adapter, startJD, endJD, latDeg, lonDeg float64) ([]AscendantFlip, error) {
	stepDays := ascendantStepMinutes(endJD-startJD) / 1440.0
	classify := func(jd float64) int {
		return angle.SignIndex(adapter.Ascendant(jd, latDeg, lonDeg))
	}

	events, err := scanner.ScanClassification(startJD, endJD, stepDays, classify, 0)
	if err != nil {
		return nil, err
	}

	out := make([]AscendantFlip, len(events))
	for i, e := range events {
		bound := endJD
		if i+1 < len(events) {
			bound = events[i+1].T
		}
		out[i] = AscendantFlip{
			Instant:    e.T,
			FromSign:   e.OldClass,
			ToSign:     e.NewClass,
			MidpointJD: ascendantMidpoint(adapter, e.T, bound, e.NewClass, latDeg, lonDeg),
		}
	}
	return out, nil
}

// ascendantMidpoint bisects [flipJD, boundJD) for the instant the ascendant
// reaches the 15-degree point of toSign, returning NaN if the bracket is
// degenerate or the midpoint cannot be reached before boundJD.
func ascendantMidpoint(adapter *ephem.Adapter, flipJD, boundJD float64, toSign int, latDeg, lonDeg float64) float64 {
	if boundJD <= flipJD {
		return math.NaN()
	}
	targetDeg := float64(toSign)*angle.SignSpan + 15.0

	classify := func(jd float64) int {
		asc := adapter.Ascendant(jd, latDeg, lonDeg)
		if math.IsNaN(asc) {
			return -1
		}
		if angle.AngDiff(asc, targetDeg) < 0 {
			return 0
		}
		return 1
	}

	if classify(flipJD) != 0 || classify(boundJD) != 1 {
		return math.NaN()
	}
	return scanner.Bisect(flipJD, boundJD, classify, scanner.DefaultClassEpsilon)
}
