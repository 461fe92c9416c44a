// Package cache is the two-tier memoizer sitting in front of the monthly
// orchestrator: a short-lived in-process TTL store, and an external
// persistent key/value store keyed by (location, month, ayanamsa).
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Key identifies one cached month record.
type Key struct {
	LocationHash string // 32-char hex md5 of "lat.4f|lon.4f|tz"
	MonthYYYYMM  string
	Ayanamsa     string
}

// String renders Key as a single string suitable for use as an in-memory
// map/LRU key.
func (k Key) String() string {
	return k.LocationHash + "|" + k.MonthYYYYMM + "|" + k.Ayanamsa
}

// NewKey builds a Key from a location's coordinates and timezone, a
// calendar month ("YYYY-MM"), and an ayanamsa name. Rounding lat/lon to
// four decimal places (roughly 11 meters) makes the key stable across
// callers' differing float representations of "the same" location while
// preserving astronomical equivalence at this engine's precision.
func NewKey(lat, lon float64, tz, monthYYYYMM, ayanamsa string) Key {
	raw := fmt.Sprintf("%.4f|%.4f|%s", lat, lon, tz)
	sum := md5.Sum([]byte(raw))
	return Key{
		LocationHash: hex.EncodeToString(sum[:]),
		MonthYYYYMM:  monthYYYYMM,
		Ayanamsa:     ayanamsa,
	}
}
