package orchestrate

import (
	"sort"

	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/detect"
	"github.com/novaephem/panchangam/engerr"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/scanner"
	"github.com/novaephem/panchangam/timeutil"
)

// windowPaddingDays is the number of days the scan window is extended on
// each side of the requested month, so that station and combustion windows
// straddling the month boundary are correctly bounded before filtering.
const windowPaddingDays = 45.0

// ComputeMonthly builds a window around monthStartISO (the first day of a
// calendar month, "YYYY-MM-DD", interpreted in tz), runs every detector
// over the padded window, reprojects every instant to tz, filters events
// back to the month, sorts each kind ascending, and returns the assembled
// record.
func ComputeMonthly(adapter *ephem.Adapter, lat, lon float64, tz, monthStartISO string) (*MonthRecord, error) {
	monthStart, err := timeutil.ParseLocal(monthStartISO, tz)
	if err != nil {
		return nil, engerr.Wrap(engerr.InvalidArgument, err, "orchestrate: parsing month start")
	}
	monthStartTime, monthEndTime, err := timeutil.MonthBounds(monthStart.Year(), int(monthStart.Month()), tz)
	if err != nil {
		return nil, engerr.Wrap(engerr.InvalidArgument, err, "orchestrate: computing month bounds")
	}

	monthStartJD := timeutil.JulianDay(monthStartTime)
	monthEndJD := timeutil.JulianDay(monthEndTime)
	windowStartJD := monthStartJD - windowPaddingDays
	windowEndJD := monthEndJD + windowPaddingDays

	nakshatras, err := detect.NakshatraChanges(adapter, windowStartJD, windowEndJD)
	if err != nil {
		return nil, err
	}

	var stations []detect.Station
	var retroWindows []detect.RetrogradeWindow
	for _, body := range detect.StationBodies {
		bodyStations, err := detect.Stations(adapter, body, windowStartJD, windowEndJD)
		if err != nil {
			return nil, err
		}
		stations = append(stations, bodyStations...)
		retroWindows = append(retroWindows, detect.RetrogradeWindows(adapter, body, windowStartJD, windowEndJD, bodyStations)...)
	}

	combustion, err := detect.AllCombustionWindows(adapter, windowStartJD, windowEndJD)
	if err != nil {
		return nil, err
	}
	velocity, err := detect.AllVelocityExtrema(adapter, windowStartJD, windowEndJD)
	if err != nil {
		return nil, err
	}

	record := &MonthRecord{}
	record.MonthStartLocal, err = timeutil.FormatWallClock(monthStartTime, tz)
	if err != nil {
		return nil, err
	}
	record.MonthEndLocal, err = timeutil.FormatWallClock(monthEndTime, tz)
	if err != nil {
		return nil, err
	}

	for _, e := range nakshatras {
		row, err := nakshatraRow(e, tz)
		if err != nil {
			return nil, err
		}
		if pointInMonth(e.Instant, monthStartJD, monthEndJD) {
			record.MoonMonthlyRows = append(record.MoonMonthlyRows, row)
		}
	}
	// If every detected transition fell outside the month (the Moon changes
	// pada roughly every six hours, so this is vanishingly rare but not
	// impossible near a month boundary), seed one advisory record at the
	// month's first instant with whatever nakshatra/pada holds there.
	if len(record.MoonMonthlyRows) == 0 {
		nak, pada := detect.CurrentNakshatraPada(adapter, monthStartJD)
		s, err := timeutil.FormatWallClock(timeutil.FromJulianDay(monthStartJD), tz)
		if err != nil {
			return nil, err
		}
		record.MoonMonthlyRows = append(record.MoonMonthlyRows, NakshatraRow{Instant: s, Nakshatra: nak, Pada: pada})
	}

	for _, body := range detect.IngressBodies {
		changes, err := detect.SignIngresses(adapter, body, windowStartJD, windowEndJD)
		if err != nil {
			return nil, err
		}

		// A body with no sign change anywhere in the padded window (the
		// common case for Jupiter/Saturn/Uranus/Neptune/Pluto, which can
		// spend years in one sign) still gets one advisory from==to row at
		// the month's first instant, so its current sign is always
		// reported rather than silently dropped.
		if len(changes) == 0 {
			lonDeg := adapter.Longitude(body, monthStartJD)
			sign := angle.SignIndex(lonDeg)
			s, err := timeutil.FormatWallClock(timeutil.FromJulianDay(monthStartJD), tz)
			if err != nil {
				return nil, err
			}
			row := SignChangeRow{Body: body.String(), Instant: s, FromSign: sign, ToSign: sign}
			if body == ephem.Sun {
				record.SunRows = append(record.SunRows, row)
			} else {
				record.OtherIngressRows = append(record.OtherIngressRows, row)
			}
			continue
		}

		for _, e := range changes {
			if !pointInMonth(e.Instant, monthStartJD, monthEndJD) {
				continue
			}
			row, err := signChangeRow(e, tz)
			if err != nil {
				return nil, err
			}
			if body == ephem.Sun {
				record.SunRows = append(record.SunRows, row)
			} else {
				record.OtherIngressRows = append(record.OtherIngressRows, row)
			}
		}
	}

	for _, s := range stations {
		if !pointInMonth(s.Instant, monthStartJD, monthEndJD) {
			continue
		}
		row, err := stationRow(s, tz)
		if err != nil {
			return nil, err
		}
		record.StationRows = append(record.StationRows, row)
	}

	for _, w := range retroWindows {
		if !intervalIntersectsMonth(w.StartJD, w.EndJD, monthStartJD, monthEndJD) {
			continue
		}
		row, err := retrogradeWindowRow(w, tz)
		if err != nil {
			return nil, err
		}
		record.RetrogradeWindows = append(record.RetrogradeWindows, row)
	}

	for _, w := range combustion {
		if !intervalIntersectsMonth(w.StartJD, w.EndJD, monthStartJD, monthEndJD) {
			continue
		}
		row, err := combustionRow(w, tz)
		if err != nil {
			return nil, err
		}
		record.CombustionRows = append(record.CombustionRows, row)
	}

	for _, v := range velocity {
		if !pointInMonth(v.Instant, monthStartJD, monthEndJD) {
			continue
		}
		row, err := velocityRow(v, tz)
		if err != nil {
			return nil, err
		}
		record.VelocityRows = append(record.VelocityRows, row)
	}

	sortRows(record)
	return record, nil
}

func pointInMonth(jd, monthStartJD, monthEndJD float64) bool {
	return jd >= monthStartJD && jd < monthEndJD
}

func intervalIntersectsMonth(startJD, endJD, monthStartJD, monthEndJD float64) bool {
	return startJD < monthEndJD && endJD > monthStartJD
}

func nakshatraRow(e detect.NakshatraChange, tz string) (NakshatraRow, error) {
	s, err := timeutil.FormatWallClock(timeutil.FromJulianDay(e.Instant), tz)
	if err != nil {
		return NakshatraRow{}, err
	}
	return NakshatraRow{Instant: s, Nakshatra: e.Nakshatra, Pada: e.Pada}, nil
}

func signChangeRow(e detect.SignChange, tz string) (SignChangeRow, error) {
	s, err := timeutil.FormatWallClock(timeutil.FromJulianDay(e.Instant), tz)
	if err != nil {
		return SignChangeRow{}, err
	}
	return SignChangeRow{Body: e.Body.String(), Instant: s, FromSign: e.FromSign, ToSign: e.ToSign}, nil
}

func stationRow(s detect.Station, tz string) (StationRow, error) {
	instant, err := timeutil.FormatWallClock(timeutil.FromJulianDay(s.Instant), tz)
	if err != nil {
		return StationRow{}, err
	}
	kind := "direct"
	if s.Kind == detect.StationRetrograde {
		kind = "retrograde"
	}
	return StationRow{Body: s.Body.String(), Instant: instant, Kind: kind}, nil
}

func retrogradeWindowRow(w detect.RetrogradeWindow, tz string) (RetrogradeWindowRow, error) {
	start, err := timeutil.FormatWallClock(timeutil.FromJulianDay(w.StartJD), tz)
	if err != nil {
		return RetrogradeWindowRow{}, err
	}
	end, err := timeutil.FormatWallClock(timeutil.FromJulianDay(w.EndJD), tz)
	if err != nil {
		return RetrogradeWindowRow{}, err
	}
	return RetrogradeWindowRow{Body: w.Body.String(), StartInstant: start, EndInstant: end}, nil
}

func combustionRow(w detect.CombustionWindow, tz string) (CombustionRow, error) {
	start, err := timeutil.FormatWallClock(timeutil.FromJulianDay(w.StartJD), tz)
	if err != nil {
		return CombustionRow{}, err
	}
	end, err := timeutil.FormatWallClock(timeutil.FromJulianDay(w.EndJD), tz)
	if err != nil {
		return CombustionRow{}, err
	}
	return CombustionRow{Body: w.Body.String(), StartInstant: start, EndInstant: end, OrbDegrees: w.OrbDegrees}, nil
}

func velocityRow(v detect.VelocityExtremum, tz string) (VelocityRow, error) {
	instant, err := timeutil.FormatWallClock(timeutil.FromJulianDay(v.Instant), tz)
	if err != nil {
		return VelocityRow{}, err
	}
	kind := "max"
	if v.Kind == scanner.Minimum {
		kind = "min"
	}
	return VelocityRow{Body: v.Body.String(), Instant: instant, SignedSpeedDegPerDay: v.SpeedDegPerDay, Kind: kind}, nil
}

func sortRows(r *MonthRecord) {
	sort.Slice(r.MoonMonthlyRows, func(i, j int) bool { return r.MoonMonthlyRows[i].Instant < r.MoonMonthlyRows[j].Instant })
	sort.Slice(r.SunRows, func(i, j int) bool { return r.SunRows[i].Instant < r.SunRows[j].Instant })
	sort.Slice(r.OtherIngressRows, func(i, j int) bool { return r.OtherIngressRows[i].Instant < r.OtherIngressRows[j].Instant })
	sort.Slice(r.StationRows, func(i, j int) bool { return r.StationRows[i].Instant < r.StationRows[j].Instant })
	sort.Slice(r.RetrogradeWindows, func(i, j int) bool { return r.RetrogradeWindows[i].StartInstant < r.RetrogradeWindows[j].StartInstant })
	sort.Slice(r.CombustionRows, func(i, j int) bool { return r.CombustionRows[i].StartInstant < r.CombustionRows[j].StartInstant })
	sort.Slice(r.VelocityRows, func(i, j int) bool { return r.VelocityRows[i].Instant < r.VelocityRows[j].Instant })
}
