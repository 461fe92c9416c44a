package detect

import (
	"math"

	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
)

// CombustionWindow spans a period during which body's angular separation
// from the Sun stayed within orbDegrees.
type CombustionWindow struct {
	Body       ephem.Body
	StartJD    float64
	EndJD      float64
	OrbDegrees float64
}

// combustionOrbDegrees is the per-body orb within which a body is
// considered combust (too close to the Sun to be practically observable).
var combustionOrbDegrees = map[ephem.Body]float64{
	ephem.Mercury: 14,
	ephem.Venus:   10,
	ephem.Mars:    17,
	ephem.Jupiter: 11,
	ephem.Saturn:  15,
	ephem.Uranus:  10,
	ephem.Neptune: 10,
	ephem.Pluto:   10,
	ephem.Moon:    12,
}

// CombustionBodies is the set of bodies checked for combustion against the
// Sun.
var CombustionBodies = []ephem.Body{
	ephem.Mercury, ephem.Venus, ephem.Mars, ephem.Jupiter, ephem.Saturn,
	ephem.Uranus, ephem.Neptune, ephem.Pluto, ephem.Moon,
}

const combustionStepMinutes = 60

const (
	combustInside  = 0
	combustOutside = 1
)

// combustClass classifies separation from the Sun at jd: -1 if either
// longitude is unavailable, combustInside if within orb, combustOutside
// otherwise.
func combustClass(adapter *ephem.Adapter, body ephem.Body, orb, jd float64) int {
	sunLon := adapter.Longitude(ephem.Sun, jd)
	bodyLon := adapter.Longitude(body, jd)
	if math.IsNaN(sunLon) || math.IsNaN(bodyLon) {
		return -1
	}
	if angle.AbsSep(sunLon, bodyLon) <= orb {
		return combustInside
	}
	return combustOutside
}

// CombustionWindows scans [startJD, endJD) for body's combustion windows
// against the Sun, using this body's orb from combustionOrbDegrees. A
// window already open at startJD keeps its start pinned there (no opening
// boundary to detect); a window still open at endJD is closed there.
func CombustionWindows(adapter *ephem.Adapter, body ephem.Body, startJD, endJD float64) ([]CombustionWindow, error) {
	orb, ok := combustionOrbDegrees[body]
	if !ok {
		return nil, nil
	}

	stepDays := combustionStepMinutes / 1440.0
	classify := func(jd float64) int { return combustClass(adapter, body, orb, jd) }

	events, err := scanner.ScanClassification(startJD, endJD, stepDays, classify, 0)
	if err != nil {
		return nil, err
	}

	var windows []CombustionWindow
	open := combustClass(adapter, body, orb, startJD) == combustInside
	windowStart := startJD

	for _, e := range events {
		switch e.NewClass {
		case combustInside:
			windowStart = e.T
			open = true
		case combustOutside:
			if open {
				windows = append(windows, CombustionWindow{Body: body, StartJD: windowStart, EndJD: e.T, OrbDegrees: orb})
				open = false
			}
		}
	}

	if open {
		windows = append(windows, CombustionWindow{Body: body, StartJD: windowStart, EndJD: endJD, OrbDegrees: orb})
	}

	return windows, nil
}

// AllCombustionWindows scans every body in CombustionBodies.
func AllCombustionWindows(adapter *ephem.Adapter, startJD, endJD float64) ([]CombustionWindow, error) {
	var all []CombustionWindow
	for _, body := range CombustionBodies {
		windows, err := CombustionWindows(adapter, body, startJD, endJD)
		if err != nil {
			return nil, err
		}
		all = append(all, windows...)
	}
	return all, nil
}
