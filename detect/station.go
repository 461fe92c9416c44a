package detect

import (
	"math"

	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
)

// Station kinds. Only these two are ever emitted: the classification
// function below also has a Stationary zone (see angle.StationDirection),
// but a discretely sampled, continuously varying speed essentially never
// lands exactly on zero, so a class change always resolves directly
// between Retrograde and Direct.
const (
	StationRetrograde = 0
	StationDirect     = 1
)

// Station marks the instant a body's signed longitudinal speed changes
// sign.
type Station struct {
	Body    ephem.Body
	Instant float64 // Julian date (TDB)
	Kind    int     // StationRetrograde or StationDirect
}

// RetrogradeWindow spans a body's continuous retrograde period. End may be
// clipped to the scan's outer bound if the body is still retrograde there.
type RetrogradeWindow struct {
	Body    ephem.Body
	StartJD float64
	EndJD   float64
}

// StationBodies is the set of bodies capable of apparent retrograde
// motion, i.e. every tracked body except the luminaries and the lunar
// nodes (whose mean motion never reverses in this engine's model).
var StationBodies = []ephem.Body{
	ephem.Mercury, ephem.Venus, ephem.Mars, ephem.Jupiter, ephem.Saturn,
	ephem.Uranus, ephem.Neptune, ephem.Pluto,
}

const stationStepMinutes = 60
const stationDedupWindowDays = 6.0 / 24.0 // 6 hours

// stationClass classifies the signed speed of body at jd: -1 if the
// ephemeris could not supply a speed, StationRetrograde/StationDirect
// otherwise (via angle.StationDirection with a zero threshold, collapsing
// its middle Stationary zone into whichever side a near-zero sample
// happens to fall on).
func stationClass(adapter *ephem.Adapter, body ephem.Body, jd float64) int {
	_, speed := adapter.LongitudeAndSpeed(body, jd)
	if math.IsNaN(speed) {
		return -1
	}
	switch angle.StationDirection(speed, 0) {
	case angle.Retrograde:
		return StationRetrograde
	default:
		return StationDirect
	}
}

// Stations scans [startJD, endJD) for body's retrograde/direct station
// instants, dropping a station if the previous emission was the same kind
// within 6 hours (filters noisy repeated zero-crossings near the true
// station).
func Stations(adapter *ephem.Adapter, body ephem.Body, startJD, endJD float64) ([]Station, error) {
	stepDays := stationStepMinutes / 1440.0
	classify := func(jd float64) int { return stationClass(adapter, body, jd) }

	events, err := scanner.ScanClassification(startJD, endJD, stepDays, classify, 0)
	if err != nil {
		return nil, err
	}

	var out []Station
	for _, e := range events {
		kind := StationDirect
		if e.NewClass == StationRetrograde {
			kind = StationRetrograde
		}
		if len(out) > 0 {
			prev := out[len(out)-1]
			if prev.Kind == kind && e.T-prev.Instant < stationDedupWindowDays {
				continue
			}
		}
		out = append(out, Station{Body: body, Instant: e.T, Kind: kind})
	}

	return out, nil
}

// RetrogradeWindows pairs consecutive {retrograde, direct} stations in
// stations (assumed sorted ascending, as returned by Stations) into
// RetrogradeWindow spans. If body is already retrograde at startJD, the
// first emitted window's start is the scan's start rather than a detected
// station. If body is still retrograde at endJD, the final window's end is
// clipped to endJD.
func RetrogradeWindows(adapter *ephem.Adapter, body ephem.Body, startJD, endJD float64, stations []Station) []RetrogradeWindow {
	var windows []RetrogradeWindow

	open := stationClass(adapter, body, startJD) == StationRetrograde
	windowStart := startJD

	for _, s := range stations {
		switch s.Kind {
		case StationRetrograde:
			windowStart = s.Instant
			open = true
		case StationDirect:
			if open {
				windows = append(windows, RetrogradeWindow{Body: body, StartJD: windowStart, EndJD: s.Instant})
				open = false
			}
		}
	}

	if open {
		windows = append(windows, RetrogradeWindow{Body: body, StartJD: windowStart, EndJD: endJD})
	}

	return windows
}
