// Package orchestrate builds a scan window around a requested month (or, in
// horizon mode, a short custom window), runs every detector over it,
// reprojects the results to the caller's timezone, filters and sorts them,
// and assembles the resulting record.
package orchestrate

// SignChangeRow is a zodiac-sign ingress, with its instant already
// rendered as a local wall-clock string.
type SignChangeRow struct {
	Body     string `json:"body"`
	Instant  string `json:"instant"`
	FromSign int    `json:"from_sign"`
	ToSign   int    `json:"to_sign"`
}

// NakshatraRow is a Moon nakshatra/pada transition (or, when no transition
// falls in the window, the synthetic opening record).
type NakshatraRow struct {
	Instant   string `json:"instant"`
	Nakshatra int    `json:"nakshatra"`
	Pada      int    `json:"pada"`
}

// StationRow is a retrograde/direct station instant.
type StationRow struct {
	Body    string `json:"body"`
	Instant string `json:"instant"`
	Kind    string `json:"kind"` // "retrograde" or "direct"
}

// RetrogradeWindowRow spans a body's continuous retrograde period.
type RetrogradeWindowRow struct {
	Body         string `json:"body"`
	StartInstant string `json:"start_instant"`
	EndInstant   string `json:"end_instant"`
}

// CombustionRow spans a period a body stayed within its orb of the Sun.
type CombustionRow struct {
	Body         string  `json:"body"`
	StartInstant string  `json:"start_instant"`
	EndInstant   string  `json:"end_instant"`
	OrbDegrees   float64 `json:"orb_degrees"`
}

// VelocityRow is a local extremum of a body's signed longitudinal speed.
type VelocityRow struct {
	Body                 string  `json:"body"`
	Instant              string  `json:"instant"`
	SignedSpeedDegPerDay float64 `json:"signed_speed_deg_per_day"`
	Kind                 string  `json:"kind"` // "max" or "min"
}

// AscendantFlipRow is an ascendant sign change, carrying an optional
// midpoint marker at the +15-degree point of ToSign.
type AscendantFlipRow struct {
	Instant     string `json:"instant"`
	FromSign    int    `json:"from_sign"`
	ToSign      int    `json:"to_sign"`
	MidpointAt  string `json:"midpoint_at,omitempty"`
}

// MonthRecord is the result of ComputeMonthly: every event family's rows,
// already filtered to the requested month and sorted ascending by instant.
type MonthRecord struct {
	MonthStartLocal   string                `json:"month_start_local"`
	MonthEndLocal     string                `json:"month_end_local"`
	MoonMonthlyRows   []NakshatraRow        `json:"moon_monthly_rows"`
	SunRows           []SignChangeRow       `json:"sun_rows"`
	OtherIngressRows  []SignChangeRow       `json:"other_ingress_rows"`
	StationRows       []StationRow          `json:"station_rows"`
	RetrogradeWindows []RetrogradeWindowRow `json:"retrograde_windows"`
	CombustionRows    []CombustionRow       `json:"combustion_rows"`
	VelocityRows      []VelocityRow         `json:"velocity_rows"`
}

// HorizonRecord is the result of ComputeHorizon: ascendant flips and Moon
// pada transitions over a short custom window.
type HorizonRecord struct {
	StartLocal string             `json:"start_local"`
	EndLocal   string             `json:"end_local"`
	LagnaRows  []AscendantFlipRow `json:"lagna_rows"`
	MoonRows   []NakshatraRow     `json:"moon_rows"`
}
