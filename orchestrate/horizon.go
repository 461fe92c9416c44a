package orchestrate

import (
	"sort"

	"github.com/novaephem/panchangam/angle"
	"github.com/novaephem/panchangam/detect"
	"github.com/novaephem/panchangam/engerr"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/timeutil"
)

// ComputeHorizon runs the ascendant-flip detector over
// [start_local, start_local+ascHours] and the Moon pada detector over
// [start_local, start_local+moonDays], both seeded with the current
// ascendant/nakshatra/pada at the window's start so the first row of each
// list is always present even if no boundary is crossed.
func ComputeHorizon(adapter *ephem.Adapter, lat, lon float64, tz, startLocalISO string, ascHours, moonDays float64) (*HorizonRecord, error) {
	if ascHours <= 0 || ascHours > 240 {
		return nil, engerr.Newf(engerr.InvalidArgument, "orchestrate: ascHours %f out of accepted range", ascHours)
	}
	if moonDays <= 0 || moonDays > 60 {
		return nil, engerr.Newf(engerr.InvalidArgument, "orchestrate: moonDays %f out of accepted range", moonDays)
	}
	if lon < -180 || lon > 180 {
		return nil, engerr.Newf(engerr.InvalidArgument, "orchestrate: lon %f out of range [-180, 180]", lon)
	}
	if lat <= -90 || lat >= 90 {
		// The ascendant is undefined at the poles (houses degenerate), so
		// the underlying computation returns NaN there; reject up front
		// rather than let NaN propagate into a garbage sign index below.
		return nil, engerr.Newf(engerr.InvalidArgument, "orchestrate: ascendant is undefined at lat %f", lat)
	}

	startTime, err := timeutil.ParseWallClock(startLocalISO, tz)
	if err != nil {
		// Accept a bare date too, so callers can pass "YYYY-MM-DD" for
		// midnight starts without needing to spell out "00:00:00".
		startTime, err = timeutil.ParseLocal(startLocalISO, tz)
		if err != nil {
			return nil, engerr.Wrap(engerr.InvalidArgument, err, "orchestrate: parsing horizon start")
		}
	}
	startJD := timeutil.JulianDay(startTime)

	ascEndJD := startJD + ascHours/24.0
	moonEndJD := startJD + moonDays

	record := &HorizonRecord{}
	record.StartLocal, err = timeutil.FormatWallClock(startTime, tz)
	if err != nil {
		return nil, err
	}
	record.EndLocal, err = timeutil.FormatWallClock(timeutil.FromJulianDay(maxJD(ascEndJD, moonEndJD)), tz)
	if err != nil {
		return nil, err
	}

	flips, err := detect.AscendantFlips(adapter, startJD, ascEndJD, lat, lon)
	if err != nil {
		return nil, err
	}
	for _, f := range flips {
		row, err := ascendantFlipRow(f, tz)
		if err != nil {
			return nil, err
		}
		record.LagnaRows = append(record.LagnaRows, row)
	}
	if len(record.LagnaRows) == 0 {
		ascNow := adapter.Ascendant(startJD, lat, lon)
		signNow := angle.SignIndex(ascNow)
		s, err := timeutil.FormatWallClock(startTime, tz)
		if err != nil {
			return nil, err
		}
		record.LagnaRows = append(record.LagnaRows, AscendantFlipRow{Instant: s, FromSign: signNow, ToSign: signNow})
	}

	nakshatras, err := detect.NakshatraChanges(adapter, startJD, moonEndJD)
	if err != nil {
		return nil, err
	}
	for _, e := range nakshatras {
		row, err := nakshatraRow(e, tz)
		if err != nil {
			return nil, err
		}
		record.MoonRows = append(record.MoonRows, row)
	}

	sort.Slice(record.LagnaRows, func(i, j int) bool { return record.LagnaRows[i].Instant < record.LagnaRows[j].Instant })
	sort.Slice(record.MoonRows, func(i, j int) bool { return record.MoonRows[i].Instant < record.MoonRows[j].Instant })

	return record, nil
}

func maxJD(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func ascendantFlipRow(f detect.AscendantFlip, tz string) (AscendantFlipRow, error) {
	instant, err := timeutil.FormatWallClock(timeutil.FromJulianDay(f.Instant), tz)
	if err != nil {
		return AscendantFlipRow{}, err
	}
	row := AscendantFlipRow{Instant: instant, FromSign: f.FromSign, ToSign: f.ToSign}
	if !isNaN(f.MidpointJD) {
		mid, err := timeutil.FormatWallClock(timeutil.FromJulianDay(f.MidpointJD), tz)
		if err != nil {
			return AscendantFlipRow{}, err
		}
		row.MidpointAt = mid
	}
	return row, nil
}

func isNaN(x float64) bool { return x != x }
