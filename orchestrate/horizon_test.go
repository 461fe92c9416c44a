package orchestrate

import (
	"testing"

	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/timeutil"
)

func TestComputeHorizon_MumbaiJune2023(t *testing.T) {
	a := newTestAdapter(t, ephem.Raman)
	rec, err := ComputeHorizon(a, mumbaiLat, mumbaiLon, "Asia/Kolkata", "2023-06-21 00:00:00", 24, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.LagnaRows) == 0 {
		t.Fatal("expected at least one lagna row")
	}
	if rec.LagnaRows[0].FromSign == rec.LagnaRows[0].ToSign {
		t.Errorf("first lagna row has FromSign == ToSign == %d", rec.LagnaRows[0].FromSign)
	}

	const fiveSeconds = 5.0 / 86400.0
	for i := 1; i < len(rec.LagnaRows); i++ {
		prev, err := timeutil.ParseWallClock(rec.LagnaRows[i-1].Instant, "Asia/Kolkata")
		if err != nil {
			t.Fatal(err)
		}
		cur, err := timeutil.ParseWallClock(rec.LagnaRows[i].Instant, "Asia/Kolkata")
		if err != nil {
			t.Fatal(err)
		}
		gapDays := timeutil.JulianDay(cur) - timeutil.JulianDay(prev)
		if gapDays < fiveSeconds-1e-9 {
			t.Errorf("consecutive lagna timestamps less than 5s apart: %s, %s", rec.LagnaRows[i-1].Instant, rec.LagnaRows[i].Instant)
		}
	}

	if len(rec.MoonRows) == 0 {
		t.Error("expected at least one moon row over a 2-day window")
	}
}

func TestComputeHorizon_RejectsOutOfRangeAscHours(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	_, err := ComputeHorizon(a, mumbaiLat, mumbaiLon, "Asia/Kolkata", "2023-06-21", 0, 2)
	if err == nil {
		t.Fatal("expected error for ascHours <= 0")
	}
	_, err = ComputeHorizon(a, mumbaiLat, mumbaiLon, "Asia/Kolkata", "2023-06-21", 241, 2)
	if err == nil {
		t.Fatal("expected error for ascHours > 240")
	}
}

func TestComputeHorizon_AcceptsBareDateStart(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	rec, err := ComputeHorizon(a, mumbaiLat, mumbaiLon, "Asia/Kolkata", "2023-06-21", 24, 2)
	if err != nil {
		t.Fatal(err)
	}
	if rec.StartLocal != "2023-06-21 00:00:00" {
		t.Errorf("start local = %q, want midnight", rec.StartLocal)
	}
}
