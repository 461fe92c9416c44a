package ephem

import (
	"github.com/novaephem/panchangam/coord"
	"github.com/novaephem/panchangam/spk"
)

// naifID maps this engine's graha identity to the NAIF body ID used to
// look it up in a DAF/SPK file. Mars, Jupiter, and Saturn resolve to their
// barycenter, matching how DE421-class kernels carry those bodies (their
// planet-center offset from the barycenter is well below this engine's
// angular tolerance).
func naifID(body Body) (int, bool) {
	switch body {
	case Sun:
		return spk.Sun, true
	case Moon:
		return spk.Moon, true
	case Mercury:
		return spk.Mercury, true
	case Venus:
		return spk.Venus, true
	case Mars:
		return spk.MarsBarycenter, true
	case Jupiter:
		return spk.JupiterBarycenter, true
	case Saturn:
		return spk.SaturnBarycenter, true
	case Uranus:
		return spk.UranusBarycenter, true
	case Neptune:
		return spk.NeptuneBarycenter, true
	case Pluto:
		return spk.PlutoBarycenter, true
	default:
		return 0, false
	}
}

// spkLongitude returns the tropical ecliptic longitude of body at tdbJD
// from the open DAF/SPK ephemeris. Panics (propagated to the caller's
// recover in Adapter.tropicalLongitude) if the kernel has no chain or
// segment covering this body/date, matching this package's own
// panic-on-missing-data convention for segment lookups.
func (a *Adapter) spkLongitude(body Body, tdbJD float64) float64 {
	id, ok := naifID(body)
	if !ok {
		panic("ephem: body has no SPK mapping")
	}
	pos := a.spkEph.Apparent(id, tdbJD)
	_, lonDeg := coord.ICRFToEcliptic(pos[0], pos[1], pos[2])
	return lonDeg
}
