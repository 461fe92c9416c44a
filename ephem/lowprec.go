package ephem

import (
	"math"

	"github.com/novaephem/panchangam/coord"
	"github.com/novaephem/panchangam/kepler"
)

const j2000JD = 2451545.0

// meanElements holds one body's J2000 osculating elements and their
// linear secular rates per Julian century, in the form published by
// Standish (JPL "Keplerian Elements for Approximate Positions of the
// Major Planets", valid circa 1800-2050) — the standard low-precision
// planetary position table, reused here as this engine's built-in
// ephemeris fallback when no DAF/SPK kernel is available.
type meanElements struct {
	a0, aDot         float64 // semi-major axis, AU and AU/century
	e0, eDot         float64 // eccentricity
	i0, iDot         float64 // inclination, degrees and degrees/century
	l0, lDot         float64 // mean longitude
	peri0, periDot   float64 // longitude of perihelion
	node0, nodeDot   float64 // longitude of ascending node
}

var meanElementTable = map[Body]meanElements{
	Mercury: {0.38709927, 0.00000037, 0.20563593, 0.00001906, 7.00497902, -0.00594749, 252.25032350, 149472.67411175, 77.45779628, 0.16047689, 48.33076593, -0.12534081},
	Venus:   {0.72333566, 0.00000390, 0.00677672, -0.00004107, 3.39467605, -0.00078890, 181.97909950, 58517.81538729, 131.60246718, 0.00268329, 76.67984255, -0.27769418},
	Mars:    {1.52371034, 0.00001847, 0.09339410, 0.00007882, 1.84969142, -0.00813131, -4.55343205, 19140.30268499, -23.94362959, 0.44441088, 49.55953891, -0.29257343},
	Jupiter: {5.20288700, -0.00011607, 0.04838624, -0.00013253, 1.30439695, -0.00183714, 34.39644051, 3034.74612775, 14.72847983, 0.21252668, 100.47390909, 0.20469106},
	Saturn:  {9.53667594, -0.00125060, 0.05386179, -0.00050991, 2.48599187, 0.00193609, 49.95424423, 1222.49362201, 92.59887831, -0.41897216, 113.66242448, -0.28867794},
	Uranus:  {19.18916464, -0.00196176, 0.04725744, -0.00004397, 0.77263783, -0.00242939, 313.23810451, 428.48202785, 170.95427630, 0.40805281, 74.01692503, 0.04240589},
	Neptune: {30.06992276, 0.00026291, 0.00859048, 0.00005105, 1.77004347, 0.00035372, -55.12002969, 218.45945325, 44.96476227, -0.32241464, 131.78422574, -0.00508664},
	Pluto:   {39.48211675, -0.00031596, 0.24882730, 0.00005170, 17.14001206, 0.00004818, 238.92903833, 145.20780515, 224.06891629, -0.04062942, 110.30393684, -0.01183482},
}

// earthElements are the Earth-Moon barycenter's own mean elements, used
// to derive the Sun's geocentric position (the negative of Earth's
// heliocentric position) in the low-precision tier.
var earthElements = meanElements{1.00000261, 0.00000562, 0.01671123, -0.00004392, -0.00001531, -0.01294668, 100.46457166, 35999.37244981, 102.93768193, 0.32327364, 0.0, 0.0}

// orbitAt builds a kepler.Orbit whose mean anomaly is evaluated directly
// at tdbJD (by folding the secular rate into the elements themselves
// rather than kepler.Orbit's own linear mean-motion propagation), so a
// single PositionAU(tdbJD) call returns the heliocentric position at
// exactly this instant.
func orbitAt(el meanElements, tdbJD float64) *kepler.Orbit {
	T := (tdbJD - j2000JD) / 36525.0
	a := el.a0 + el.aDot*T
	e := el.e0 + el.eDot*T
	inc := el.i0 + el.iDot*T
	l := el.l0 + el.lDot*T
	peri := el.peri0 + el.periDot*T
	node := el.node0 + el.nodeDot*T

	meanAnomaly := l - peri
	argPeriapsis := peri - node

	return &kepler.Orbit{
		SemiMajorAxisAU: a,
		Eccentricity:    e,
		InclinationDeg:  inc,
		LongAscNodeDeg:  node,
		ArgPeriapsisDeg: argPeriapsis,
		MeanAnomalyDeg:  meanAnomaly,
		EpochJD:         tdbJD,
	}
}

// lowPrecisionLongitude returns the tropical ecliptic longitude of body
// at tdbJD using the built-in mean-element (Sun, planets) or Meeus
// low-precision lunar theory (Moon) fallback.
func lowPrecisionLongitude(body Body, tdbJD float64) float64 {
	if body == Moon {
		return moonMeanLongitude(tdbJD)
	}

	earthPos := orbitAt(earthElements, tdbJD).PositionAU(tdbJD)

	if body == Sun {
		_, lonDeg := coord.ICRFToEcliptic(-earthPos[0], -earthPos[1], -earthPos[2])
		return lonDeg
	}

	el, ok := meanElementTable[body]
	if !ok {
		return math.NaN()
	}
	bodyPos := orbitAt(el, tdbJD).PositionAU(tdbJD)
	geo := [3]float64{bodyPos[0] - earthPos[0], bodyPos[1] - earthPos[1], bodyPos[2] - earthPos[2]}
	_, lonDeg := coord.ICRFToEcliptic(geo[0], geo[1], geo[2])
	return lonDeg
}

// moonMeanLongitude returns the Moon's apparent tropical ecliptic
// longitude (degrees) at tdbJD using the truncated lunar theory from
// Meeus, "Astronomical Algorithms" ch. 47 — the standard low-precision
// (~0.3 degree) lunar longitude formula, keeping only its largest
// periodic terms.
func moonMeanLongitude(tdbJD float64) float64 {
	T := (tdbJD - j2000JD) / 36525.0

	Lp := 218.3164477 + 481267.88123421*T - 0.0015786*T*T
	D := 297.8501921 + 445267.1114034*T - 0.0018819*T*T
	M := 357.5291092 + 35999.0502909*T - 0.0001536*T*T
	Mp := 134.9633964 + 477198.8675055*T + 0.0087414*T*T
	F := 93.2720950 + 483202.0175233*T - 0.0036539*T*T

	d2r := math.Pi / 180.0
	sin := func(deg float64) float64 { return math.Sin(deg * d2r) }

	correction := 6.288774*sin(Mp) +
		1.274027*sin(2*D-Mp) +
		0.658314*sin(2*D) +
		0.213618*sin(2*Mp) +
		-0.185116*sin(M) +
		-0.114332*sin(2*F) +
		0.058793*sin(2*D-2*Mp) +
		0.057066*sin(2*D-M-Mp) +
		0.053322*sin(2*D+Mp) +
		0.045758*sin(2*D-M)

	return math.Mod(Lp+correction+360.0, 360.0)
}
