// Package ephem is the ephemeris adapter: given a body and a TDB Julian
// date, it returns a sidereal ecliptic longitude (and, by finite
// difference, a daily rate of motion), or an ascendant for a ground
// location. It hides two interchangeable tiers behind one API — a
// DAF/SPK binary ephemeris file when one can be found on disk, and a
// self-contained low-precision Keplerian fallback when it cannot — and
// applies the ayanamsa correction that turns the tropical longitude
// either tier produces into the sidereal longitude this engine works in.
package ephem

import (
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/coord"
	"github.com/novaephem/panchangam/engerr"
	"github.com/novaephem/panchangam/lunarnodes"
	"github.com/novaephem/panchangam/spk"
)

// Body identifies one of the twelve bodies this engine tracks: the nine
// classical grahas plus Uranus, Neptune, and Pluto.
type Body int

const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
	Rahu
	Ketu
)

func (b Body) String() string {
	switch b {
	case Sun:
		return "Sun"
	case Moon:
		return "Moon"
	case Mercury:
		return "Mercury"
	case Venus:
		return "Venus"
	case Mars:
		return "Mars"
	case Jupiter:
		return "Jupiter"
	case Saturn:
		return "Saturn"
	case Uranus:
		return "Uranus"
	case Neptune:
		return "Neptune"
	case Pluto:
		return "Pluto"
	case Rahu:
		return "Rahu"
	case Ketu:
		return "Ketu"
	default:
		return "Unknown"
	}
}

// Ayanamsa selects the sidereal zero-point subtracted from a tropical
// longitude to produce the sidereal longitude this engine reports.
type Ayanamsa int

const (
	Lahiri Ayanamsa = iota
	Raman
	Tropical
)

// ParseAyanamsa maps a case-insensitive name to an Ayanamsa.
func ParseAyanamsa(name string) (Ayanamsa, error) {
	switch strings.ToLower(name) {
	case "lahiri":
		return Lahiri, nil
	case "raman":
		return Raman, nil
	case "tropical":
		return Tropical, nil
	default:
		return 0, engerr.Newf(engerr.InvalidArgument, "ephem: unknown ayanamsa %q", name)
	}
}

// Tier identifies which ephemeris source answered a query.
type Tier int

const (
	TierSPK Tier = iota
	TierLowPrecision
)

func (t Tier) String() string {
	if t == TierSPK {
		return "spk"
	}
	return "low_precision"
}

// speedSampleDays is the half-width of the central-difference step used to
// derive a daily rate of motion from two longitude samples.
const speedSampleDays = 0.25 / 1440.0 // 15 seconds either side

// Adapter is the ephemeris entry point used by every detector. It is safe
// for concurrent use once Init has returned: all state after Init is
// read-only.
type Adapter struct {
	ayanamsa Ayanamsa
	tier     Tier
	spkEph   *spk.SPK
}

// NewAdapter constructs an Adapter for the given ayanamsa. Call Init
// before using it.
func NewAdapter(ayanamsa Ayanamsa) *Adapter {
	return &Adapter{ayanamsa: ayanamsa}
}

// Tier reports which ephemeris tier this adapter is using.
func (a *Adapter) Tier() Tier { return a.tier }

// DefaultCandidatePaths returns the search order Init uses when no
// explicit path is supplied: an environment override, then a handful of
// conventional install locations.
func DefaultCandidatePaths() []string {
	var paths []string
	if p := os.Getenv("SWISS_EPHE_PATH"); p != "" {
		paths = append(paths, p)
	}
	paths = append(paths,
		"./ephe/de421.bsp",
		"./swisseph/ephe/de421.bsp",
		"./vedic-ui/node_modules/swisseph/ephe/de421.bsp",
		"/usr/share/swisseph/de421.bsp",
	)
	return paths
}

// Init locates a DAF/SPK ephemeris file among candidatePaths (the first
// one that opens successfully wins) and falls back to the built-in
// low-precision tier if none can be opened. A candidate that names a
// directory is tried as the de421.bsp file inside it. Init never fails solely
// because no SPK file was found — it only returns an error
// (engerr.EphemerisInit) if something more fundamental is wrong, which
// given the low-precision tier's self-contained element table cannot
// currently happen, but the signature is kept error-returning so a future
// tier (e.g. validating an externally supplied element table) can fail
// cleanly.
func (a *Adapter) Init(candidatePaths []string) error {
	for _, p := range candidatePaths {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			p = filepath.Join(p, "de421.bsp")
		}
		eph, err := spk.Open(p)
		if err != nil {
			continue
		}
		a.spkEph = eph
		a.tier = TierSPK
		return nil
	}
	a.tier = TierLowPrecision
	return nil
}

// Longitude returns the sidereal ecliptic longitude of body at tdbJD, in
// degrees. Returns NaN (never an error) when the underlying tier cannot
// answer for this instant — callers scanning across a month tolerate NaN
// samples as engerr.EphemerisTransient rather than aborting the scan.
func (a *Adapter) Longitude(body Body, tdbJD float64) float64 {
	tropical := a.tropicalLongitude(body, tdbJD)
	if math.IsNaN(tropical) {
		return math.NaN()
	}
	return angle.Mod360(tropical - a.ayanamsaOffset(tdbJD))
}

// LongitudeAndSpeed returns the sidereal longitude of body at tdbJD along
// with its instantaneous rate of motion in degrees/day, obtained by
// central finite difference. A negative speed means the body is currently
// retrograde.
func (a *Adapter) LongitudeAndSpeed(body Body, tdbJD float64) (lonDeg, speedDegPerDay float64) {
	lon := a.Longitude(body, tdbJD)
	before := a.Longitude(body, tdbJD-speedSampleDays)
	after := a.Longitude(body, tdbJD+speedSampleDays)
	if math.IsNaN(before) || math.IsNaN(after) {
		return lon, math.NaN()
	}
	speedDegPerDay = angle.AngDiff(after, before) / (2 * speedSampleDays)
	return lon, speedDegPerDay
}

// tropicalLongitude dispatches to whichever tier this adapter selected.
// SPK-tier lookups that panic (missing chain/segment data for this
// instant, signaled via panic rather than an error return) are recovered
// here and surfaced as NaN, matching the EphemerisTransient contract.
func (a *Adapter) tropicalLongitude(body Body, tdbJD float64) (lonDeg float64) {
	if body == Rahu || body == Ketu {
		return meanNodeLongitude(body, tdbJD)
	}
	if a.tier == TierSPK {
		defer func() {
			if recover() != nil {
				lonDeg = math.NaN()
			}
		}()
		return a.spkLongitude(body, tdbJD)
	}
	return lowPrecisionLongitude(body, tdbJD)
}

func meanNodeLongitude(body Body, tdbJD float64) float64 {
	rahu, ketu := lunarnodes.MeanLunarNodes(tdbJD)
	if body == Rahu {
		return rahu
	}
	return ketu
}

// ayanamsaOffset returns the sidereal correction (degrees) subtracted from
// a tropical longitude at tdbJD, per this adapter's configured ayanamsa.
func (a *Adapter) ayanamsaOffset(tdbJD float64) float64 {
	switch a.ayanamsa {
	case Tropical:
		return 0
	case Raman:
		return lahiriAyanamsa(tdbJD) - ramanLahiriDelta
	default:
		return lahiriAyanamsa(tdbJD)
	}
}

// ramanLahiriDelta is the approximate constant offset (degrees) between
// the Lahiri and Raman ayanamsas, arising from their differing reference
// epochs rather than a differing precession rate.
const ramanLahiriDelta = 1.45

// lahiriAyanamsa approximates the N.C. Lahiri (Chitrapaksha) ayanamsa in
// degrees at the given TDB Julian date, as a linear-in-time precession
// model anchored near its J2000 value. This is not swisseph's exact
// polynomial, but tracks it to well under the tolerance this engine's
// scanner-based event detection needs.
func lahiriAyanamsa(tdbJD float64) float64 {
	const j2000JD = 2451545.0
	T := (tdbJD - j2000JD) / 36525.0
	return 23.85370625 + 1.396042*T + 0.000308*T*T
}

// Ascendant returns the sidereal ecliptic longitude of the ascendant
// (lagna) for a ground location at tdbJD, using Greenwich Apparent
// Sidereal Time plus the mean obliquity and the standard RAMC-based
// ascendant formula. Returns NaN for |latDeg| >= 90 (the formula is
// undefined at the poles).
func (a *Adapter) Ascendant(tdbJD, latDeg, lonDeg float64) float64 {
	if math.Abs(latDeg) >= 90 {
		return math.NaN()
	}

	gastDeg := coord.GAST(tdbJD)
	ramcDeg := angle.Mod360(gastDeg + lonDeg)
	epsDeg := coord.MeanObliquityDeg(tdbJD)

	ramc := ramcDeg * math.Pi / 180.0
	eps := epsDeg * math.Pi / 180.0
	lat := latDeg * math.Pi / 180.0

	// Standard tropical ascendant formula (e.g. Meeus/astrological
	// ephemeris literature): tan(Asc) = -cos(RAMC) / (sin(eps)*tan(lat) + cos(eps)*sin(RAMC))
	numerator := -math.Cos(ramc)
	denominator := math.Sin(eps)*math.Tan(lat) + math.Cos(eps)*math.Sin(ramc)
	ascRad := math.Atan2(numerator, denominator)
	ascTropicalDeg := angle.Mod360(ascRad * 180.0 / math.Pi)

	// The arctangent formula has a 180-degree ambiguity; the ascendant is
	// the root on the eastern horizon, which is the one within 90 degrees
	// of RAMC+90 (the point where the celestial equator crosses the
	// horizon rising in the east).
	if angle.AbsSep(ascTropicalDeg, ramcDeg+90) > 90 {
		ascTropicalDeg = angle.Mod360(ascTropicalDeg + 180)
	}

	return angle.Mod360(ascTropicalDeg - a.ayanamsaOffset(tdbJD))
}
