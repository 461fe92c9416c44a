// Package detect holds one detector per event family, each composing the
// scanner with a function built atop an ephem.Adapter: sign ingress,
// nakshatra/pada transition, station, combustion, velocity extremum, and
// ascendant flip.
package detect

import (
	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
)

// SignChange marks the instant a body's sidereal longitude crosses a
// zodiac-sign boundary.
type SignChange struct {
	Body     ephem.Body
	Instant  float64 // Julian date (TDB)
	FromSign int
	ToSign   int
}

// ingressStepMinutes is the coarse scan step, in minutes, for each body's
// sign-ingress scan: the Sun moves slowly enough to need only a coarse
// step, while the Moon crosses a sign roughly every two and a half days and
// needs a finer one; inner planets get an intermediate step and the outer
// planets the coarsest.
func ingressStepMinutes(body ephem.Body) float64 {
	switch body {
	case ephem.Sun:
		return 120
	case ephem.Moon:
		return 30
	case ephem.Mercury:
		return 30
	case ephem.Venus:
		return 60
	case ephem.Mars:
		return 60
	default:
		return 240
	}
}

// IngressBodies is the set of bodies scanned for sign ingresses.
var IngressBodies = []ephem.Body{
	ephem.Sun, ephem.Moon, ephem.Mercury, ephem.Venus, ephem.Mars,
	ephem.Jupiter, ephem.Saturn, ephem.Uranus, ephem.Neptune, ephem.Pluto,
	ephem.Rahu, ephem.Ketu,
}

// SignIngresses scans [startJD, endJD) for a single body's zodiac-sign
// boundary crossings.
func SignIngresses(adapter *ephem.Adapter, body ephem.Body, startJD, endJD float64) ([]SignChange, error) {
	stepDays := ingressStepMinutes(body) / 1440.0
	classify := func(jd float64) int {
		return angle.SignIndex(adapter.Longitude(body, jd))
	}

	events, err := scanner.ScanClassification(startJD, endJD, stepDays, classify, 0)
	if err != nil {
		return nil, err
	}

	out := make([]SignChange, 0, len(events))
	for _, e := range events {
		out = append(out, SignChange{Body: body, Instant: e.T, FromSign: e.OldClass, ToSign: e.NewClass})
	}
	return out, nil
}

// AllSignIngresses scans every body in IngressBodies and returns the
// combined, per-body-ordered result (callers that need one sorted stream
// across all bodies should sort the concatenation by Instant themselves).
func AllSignIngresses(adapter *ephem.Adapter, startJD, endJD float64) ([]SignChange, error) {
	var all []SignChange
	for _, body := range IngressBodies {
		events, err := SignIngresses(adapter, body, startJD, endJD)
		if err != nil {
			return nil, err
		}
		all = append(all, events...)
	}
	return all, nil
}
