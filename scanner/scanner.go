// Package scanner provides the generic bracketed root-finding primitives
// that every event detector in this engine is built from: scanning a
// classification function for the instants where its value changes, and
// scanning a continuous function for its local extrema.
//
// Coarse sampling plus bisection (for classification changes) or parabolic
// refinement (for extrema) is deliberately simple and deliberately generic:
// every detector — sign ingress, nakshatra/pada transition, station,
// combustion window, velocity extremum — reduces to one of these two scans
// over a suitably chosen function of time.
package scanner

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// DefaultClassEpsilon is the default convergence threshold for
	// ScanClassification, one second expressed as a fraction of a day.
	DefaultClassEpsilon = 1.0 / 86400.0

	// DefaultExtremaEpsilon is the default convergence threshold for
	// ScanExtrema, also one second expressed as a fraction of a day.
	DefaultExtremaEpsilon = 1.0 / 86400.0

	// DefaultDedupWindow discards a second transition or extremum reported
	// within this many days of the previous one, folding scan noise near a
	// bracket boundary into a single event.
	DefaultDedupWindow = 5.0 / 86400.0

	// hysteresisWindow is the width, in days, of the confirmation check
	// applied around a candidate boundary before it is accepted: the
	// classification must still disagree one second to either side of the
	// refined instant, or the candidate is treated as scan noise (typically
	// produced by a NaN sample from a transient ephemeris failure) and
	// discarded rather than reported as an event.
	hysteresisWindow = 1.0 / 86400.0
)

var (
	// ErrInvalidRange is returned when startJD >= endJD.
	ErrInvalidRange = errors.New("scanner: startJD must be before endJD")

	// ErrInvalidStep is returned when stepDays <= 0.
	ErrInvalidStep = errors.New("scanner: stepDays must be positive")
)

// ClassEvent represents a moment when a classification function's value
// changed, e.g. the instant a body crosses from one zodiac sign into the
// next, or a planet's motion direction flips from direct to retrograde.
type ClassEvent struct {
	T        float64 // Julian date (TDB) when the change occurred
	OldClass int     // classification immediately before T
	NewClass int     // classification immediately after T
}

// ExtremumKind distinguishes a local maximum from a local minimum.
type ExtremumKind int

const (
	Minimum ExtremumKind = iota
	Maximum
)

// Extremum represents a local extremum of a continuous function of time.
type Extremum struct {
	T         float64      // Julian date (TDB) of the extremum
	Value     float64      // function value at the extremum
	Kind      ExtremumKind // whether this is a local max or min
	Curvature float64      // |a|, the fitted parabola's leading coefficient magnitude
}

// ScanClassification scans [startJD, endJD] at coarse intervals of stepDays
// for changes in classify's return value, then bisects each bracket to
// locate the transition instant to within epsilon days.
//
// classify must be cheap to re-evaluate (it may be called dozens of times
// per bracket) and must return a stable integer classification for any
// instant — the canonical use is an index derived by floor division of a
// modular-360 longitude (zodiac sign, nakshatra, pada, station direction),
// never the raw angle itself, so that wraparound at 0/360 degrees is not
// mistaken for a spurious transition.
//
// A classify value of -1 is reserved to mean "undefined at this instant"
// (e.g. an ephemeris miss returned NaN); brackets touching -1 on either
// side are silently dropped rather than reported as a transition.
//
// If epsilon is 0, DefaultClassEpsilon is used. Events closer together
// than DefaultDedupWindow are collapsed into the later one. Each surviving
// candidate is re-checked one second to either side (hysteresis) before
// being accepted, to filter transitions manufactured by sampling noise
// rather than a genuine boundary crossing.
func ScanClassification(startJD, endJD, stepDays float64, classify func(float64) int, epsilon float64) ([]ClassEvent, error) {
	if startJD >= endJD {
		return nil, ErrInvalidRange
	}
	if stepDays <= 0 {
		return nil, ErrInvalidStep
	}
	if epsilon <= 0 {
		epsilon = DefaultClassEpsilon
	}

	n := int((endJD-startJD)/stepDays) + 2
	if n < 2 {
		n = 2
	}
	dt := (endJD - startJD) / float64(n-1)

	ts := make([]float64, n)
	cs := make([]int, n)
	for i := 0; i < n; i++ {
		ts[i] = startJD + float64(i)*dt
		cs[i] = classify(ts[i])
	}

	var events []ClassEvent
	for i := 0; i < n-1; i++ {
		if cs[i] == cs[i+1] {
			continue
		}
		if cs[i] == -1 || cs[i+1] == -1 {
			continue
		}

		lo, hi := ts[i], ts[i+1]
		cLo, cHi := cs[i], cs[i+1]
		for hi-lo > epsilon {
			mid := (lo + hi) / 2.0
			cMid := classify(mid)
			if cMid == cLo {
				lo = mid
			} else {
				hi = mid
				cHi = cMid
			}
		}

		if !confirmTransition(classify, lo, hi, cLo, cHi) {
			continue
		}

		events = append(events, ClassEvent{T: hi, OldClass: cLo, NewClass: cHi})
	}

	return dedupClassEvents(events, DefaultDedupWindow), nil
}

// confirmTransition re-samples one second to either side of a candidate
// boundary [lo, hi] and rejects the candidate unless the classification
// still disagrees there, guarding against a single noisy sample (typically
// a transient ephemeris NaN collapsing to some arbitrary classification)
// manufacturing a transition that does not actually persist.
func confirmTransition(classify func(float64) int, lo, hi float64, cLo, cHi int) bool {
	before := classify(lo - hysteresisWindow)
	after := classify(hi + hysteresisWindow)
	return before == cLo && after == cHi
}

func dedupClassEvents(events []ClassEvent, window float64) []ClassEvent {
	if len(events) <= 1 {
		return events
	}
	out := []ClassEvent{events[0]}
	for i := 1; i < len(events); i++ {
		prev := &out[len(out)-1]
		if events[i].T-prev.T < window {
			*prev = events[i]
		} else {
			out = append(out, events[i])
		}
	}
	return out
}

// ScanExtrema scans [startJD, endJD] at coarse intervals of stepDays for
// local maxima and minima of f, refining each bracket with a parabolic
// (three-point vertex) fit rather than golden-section search: the
// curvature sign of the fitted parabola is what classifies a bracket as a
// maximum or minimum, which golden section (which only ever returns a
// maximizer) cannot provide without being run twice.
//
// If epsilon is 0, DefaultExtremaEpsilon is used. Extrema closer together
// than DefaultDedupWindow are collapsed, keeping the more extreme value.
func ScanExtrema(startJD, endJD, stepDays float64, f func(float64) float64, epsilon float64) ([]Extremum, error) {
	if startJD >= endJD {
		return nil, ErrInvalidRange
	}
	if stepDays <= 0 {
		return nil, ErrInvalidStep
	}
	if epsilon <= 0 {
		epsilon = DefaultExtremaEpsilon
	}

	overshoot := stepDays
	sStart := startJD - overshoot
	sEnd := endJD + overshoot
	n := int((sEnd-sStart)/stepDays) + 3
	if n < 3 {
		n = 3
	}
	dt := (sEnd - sStart) / float64(n-1)

	ts := make([]float64, n)
	ys := make([]float64, n)
	for i := 0; i < n; i++ {
		ts[i] = sStart + float64(i)*dt
		ys[i] = f(ts[i])
	}

	var results []Extremum
	for i := 1; i < n-1; i++ {
		if math.IsNaN(ys[i-1]) || math.IsNaN(ys[i]) || math.IsNaN(ys[i+1]) {
			continue
		}
		isMax := ys[i] > ys[i-1] && ys[i] >= ys[i+1]
		isMin := ys[i] < ys[i-1] && ys[i] <= ys[i+1]
		if !isMax && !isMin {
			continue
		}

		t, v, kind, curvature := refineExtremum(ts[i-1], ts[i], ts[i+1], ys[i-1], ys[i], ys[i+1], f, epsilon)
		if t < startJD || t > endJD {
			continue
		}
		results = append(results, Extremum{T: t, Value: v, Kind: kind, Curvature: curvature})
	}

	return dedupExtrema(results, DefaultDedupWindow), nil
}

// refineExtremum iteratively fits a parabola through three bracketing
// points and replaces the worst-fitting outer point with the fitted
// vertex, narrowing the bracket until it is within epsilon of the true
// extremum. The sign of the leading coefficient of the parabola fitted
// through the three initial bracketing points classifies the extremum:
// negative curvature is a maximum, positive is a minimum. The coefficient's
// magnitude is also returned, for callers that need to rank extrema by how
// sharply peaked they are.
func refineExtremum(t0, t1, t2, y0, y1, y2 float64, f func(float64) float64, epsilon float64) (float64, float64, ExtremumKind, float64) {
	_, a := parabolaVertex(t0, t1, t2, y0, y1, y2)
	for iter := 0; iter < 64 && t2-t0 > epsilon; iter++ {
		vt, _ := parabolaVertex(t0, t1, t2, y0, y1, y2)
		if math.IsNaN(vt) || vt <= t0 || vt >= t2 {
			// Degenerate fit (collinear points): bisect the wider half instead.
			if t1-t0 > t2-t1 {
				vt = (t0 + t1) / 2.0
			} else {
				vt = (t1 + t2) / 2.0
			}
		}
		vy := f(vt)

		switch {
		case vt < t1:
			t2, y2 = t1, y1
			t1, y1 = vt, vy
		case vt > t1:
			t0, y0 = t1, y1
			t1, y1 = vt, vy
		default:
			// Vertex landed exactly on the midpoint; shrink from both sides.
			t0 = (t0 + t1) / 2.0
			y0 = f(t0)
			t2 = (t1 + t2) / 2.0
			y2 = f(t2)
		}
	}

	kind := Maximum
	if a > 0 {
		kind = Minimum
	}
	return t1, y1, kind, math.Abs(a)
}

// parabolaVertex fits y = a*t^2 + b*t + c through three points and returns
// the vertex's t-coordinate and the leading coefficient a (whose sign
// gives the curvature: a < 0 opens downward, i.e. a maximum).
func parabolaVertex(t0, t1, t2, y0, y1, y2 float64) (float64, float64) {
	d1 := t1 - t0
	d2 := t2 - t1
	if d1 == 0 || d2 == 0 || d1 == -d2 {
		return math.NaN(), 0
	}

	// Divided differences for the unique quadratic through the three points.
	s1 := (y1 - y0) / d1
	s2 := (y2 - y1) / d2
	a := (s2 - s1) / (t2 - t0)
	if a == 0 {
		return math.NaN(), 0
	}
	b := s1 - a*(t0+t1)
	vertex := -b / (2 * a)
	return vertex, a
}

func dedupExtrema(results []Extremum, window float64) []Extremum {
	if len(results) <= 1 {
		return results
	}
	out := []Extremum{results[0]}
	for i := 1; i < len(results); i++ {
		prev := &out[len(out)-1]
		if results[i].T-prev.T < window {
			better := results[i].Value > prev.Value
			if prev.Kind == Minimum {
				better = results[i].Value < prev.Value
			}
			if better {
				*prev = results[i]
			}
		} else {
			out = append(out, results[i])
		}
	}
	return out
}

// Bisect narrows [lo, hi] — a bracket across which classify's value
// differs — to width epsilon, using pure bisection. Exposed standalone for
// detectors (e.g. the ascendant midpoint search) that already know the coarse
// bracket and want the boundary refinement step without a full scan.
func Bisect(lo, hi float64, classify func(float64) int, epsilon float64) float64 {
	cLo := classify(lo)
	for hi-lo > epsilon {
		mid := (lo + hi) / 2.0
		if classify(mid) == cLo {
			lo = mid
		} else {
			hi = mid
		}
	}
	return hi
}
