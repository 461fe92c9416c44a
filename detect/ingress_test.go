package detect

import (
	"testing"

	"github.com/novaephem/panchangam/ephem"
)

func TestSignIngresses_SunInJuly(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	events, err := SignIngresses(a, ephem.Sun, july2023JD-10, july2023JD+40)
	if err != nil {
		t.Fatal(err)
	}
	if len(events) == 0 {
		t.Fatal("expected at least one Sun sign ingress over a 50-day window")
	}
	for _, e := range events {
		if e.FromSign == e.ToSign {
			t.Errorf("ingress at %f has FromSign == ToSign == %d", e.Instant, e.FromSign)
		}
		if e.FromSign < 0 || e.FromSign > 11 || e.ToSign < 0 || e.ToSign > 11 {
			t.Errorf("ingress sign out of range: from=%d to=%d", e.FromSign, e.ToSign)
		}
	}
}

func TestSignIngresses_MoonCrossesManySignsPerMonth(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	events, err := SignIngresses(a, ephem.Moon, july2023JD, july2023JD+31)
	if err != nil {
		t.Fatal(err)
	}
	// The Moon completes roughly one sign every 2.3 days, so a 31-day
	// window should see well over ten ingresses.
	if len(events) < 10 {
		t.Errorf("expected >=10 Moon sign ingresses in 31 days, got %d", len(events))
	}
}

func TestSignIngresses_MonotoneOrder(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	events, err := SignIngresses(a, ephem.Mercury, july2023JD, july2023JD+90)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(events); i++ {
		if events[i].Instant < events[i-1].Instant {
			t.Fatalf("events not sorted ascending: %f before %f", events[i-1].Instant, events[i].Instant)
		}
	}
}

func TestAllSignIngresses_OnlyKnownBodies(t *testing.T) {
	a := newTestAdapter(t, ephem.Lahiri)
	events, err := AllSignIngresses(a, july2023JD, july2023JD+90)
	if err != nil {
		t.Fatal(err)
	}
	known := map[ephem.Body]bool{}
	for _, b := range IngressBodies {
		known[b] = true
	}
	for _, e := range events {
		if !known[e.Body] {
			t.Errorf("ingress reported for unexpected body %v", e.Body)
		}
	}
}
