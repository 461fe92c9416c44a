package detect

import (
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
)

// VelocityExtremum marks a local maximum or minimum of a body's signed
// longitudinal speed.
type VelocityExtremum struct {
	Body           ephem.Body
	Instant        float64 // Julian date (TDB)
	SpeedDegPerDay float64
	Kind           scanner.ExtremumKind
	Curvature      float64 // magnitude of the fitted parabola's leading coefficient
}

// velocityStepMinutes is the body-specific coarse step used to bracket
// speed extrema: faster-moving bodies need a finer step to avoid straddling
// more than one extremum between samples.
var velocityStepMinutes = map[ephem.Body]float64{
	ephem.Moon:    5,
	ephem.Mercury: 10,
	ephem.Venus:   15,
	ephem.Sun:     30,
	ephem.Mars:    60,
	ephem.Jupiter: 120,
	ephem.Saturn:  120,
	ephem.Uranus:  240,
	ephem.Neptune: 240,
	ephem.Pluto:   240,
}

// VelocityBodies is the set of bodies scanned for speed extrema. The lunar
// nodes are excluded: their mean regression is monotonic in this engine's
// model and has no extrema to find.
var VelocityBodies = []ephem.Body{
	ephem.Sun, ephem.Moon, ephem.Mercury, ephem.Venus, ephem.Mars,
	ephem.Jupiter, ephem.Saturn, ephem.Uranus, ephem.Neptune, ephem.Pluto,
}

const velocityDedupWindowDays = 6.0 / 1440.0 // 6 minutes
const velocityDedupTolerance = 1e-4          // deg/day

// VelocityExtrema scans [startJD, endJD) for body's signed-speed local
// maxima and minima.
func VelocityExtrema(adapter *ephem.Adapter, body ephem.Body, startJD, endJD float64) ([]VelocityExtremum, error) {
	stepMin, ok := velocityStepMinutes[body]
	if !ok {
		return nil, nil
	}
	stepDays := stepMin / 1440.0

	speedAt := func(jd float64) float64 {
		_, speed := adapter.LongitudeAndSpeed(body, jd)
		return speed
	}

	extrema, err := scanner.ScanExtrema(startJD, endJD, stepDays, speedAt, 0)
	if err != nil {
		return nil, err
	}

	out := make([]VelocityExtremum, 0, len(extrema))
	for _, ex := range extrema {
		out = append(out, VelocityExtremum{Body: body, Instant: ex.T, SpeedDegPerDay: ex.Value, Kind: ex.Kind, Curvature: ex.Curvature})
	}
	return dedupVelocityExtrema(out), nil
}

// dedupVelocityExtrema collapses consecutive same-body extrema within 6
// minutes and 1e-4 deg/day of each other, keeping whichever of the pair has
// the larger curvature magnitude (the more sharply peaked fit, and thus the
// more reliable estimate of where the true extremum sits).
func dedupVelocityExtrema(extrema []VelocityExtremum) []VelocityExtremum {
	if len(extrema) <= 1 {
		return extrema
	}
	out := []VelocityExtremum{extrema[0]}
	for i := 1; i < len(extrema); i++ {
		prev := &out[len(out)-1]
		close := extrema[i].Instant-prev.Instant < velocityDedupWindowDays
		sameValue := abs(extrema[i].SpeedDegPerDay-prev.SpeedDegPerDay) < velocityDedupTolerance
		if close && sameValue {
			if extrema[i].Curvature > prev.Curvature {
				*prev = extrema[i]
			}
			continue
		}
		out = append(out, extrema[i])
	}
	return out
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// AllVelocityExtrema scans every body in VelocityBodies.
func AllVelocityExtrema(adapter *ephem.Adapter, startJD, endJD float64) ([]VelocityExtremum, error) {
	var all []VelocityExtremum
	for _, body := range VelocityBodies {
		extrema, err := VelocityExtrema(adapter, body, startJD, endJD)
		if err != nil {
			return nil, err
		}
		all = append(all, extrema...)
	}
	return all, nil
}
