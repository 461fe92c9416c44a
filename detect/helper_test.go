package detect

import (
	"testing"

	"github.com/novaephem/panchangam/ephem"
)

func newTestAdapter(t *testing.T, ayanamsa ephem.Ayanamsa) *ephem.Adapter {
	t.Helper()
	a := ephem.NewAdapter(ayanamsa)
	if err := a.Init([]string{"/nonexistent/path/de421.bsp"}); err != nil {
		t.Fatal(err)
	}
	return a
}

// july2023JD is the Julian date of 2023-07-01 00:00 UT, a fixed instant
// used across detector tests as a scan-window anchor.
const july2023JD = 2460126.5
