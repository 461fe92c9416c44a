// Package panchangam is the public entry point to the monthly
// planetary-event engine: wiring the ephemeris adapter, cache, batch
// executor, and orchestrator behind four calls — ComputeMonthly,
// ComputeHorizon, ComputeTimeseries, and ComputeBatch.
package panchangam

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/novaephem/panchangam/batch"
	"github.com/novaephem/panchangam/cache"
	"github.com/novaephem/panchangam/engerr"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/orchestrate"
)

// Engine is the wired, ready-to-use entry point. The zero Engine is not
// usable; construct one with New.
type Engine struct {
	Log zerolog.Logger

	adapters   map[ephem.Ayanamsa]*ephem.Adapter
	memory     *cache.MemoryStore
	persistent cache.PersistentStore
}

// Options configures New.
type Options struct {
	// CandidatePaths overrides the ephemeris-file search order; nil uses
	// ephem.DefaultCandidatePaths.
	CandidatePaths []string

	// Persistent is the external keyed store; nil degrades the engine to
	// memory-only caching.
	Persistent cache.PersistentStore

	// Logger receives structured diagnostic events. The zero value
	// (zerolog.Nop()) silently discards everything, matching a library
	// that should never write to a caller's stdout unasked.
	Logger zerolog.Logger
}

// New builds an Engine, eagerly initializing one ephemeris adapter per
// ayanamsa (Lahiri, Raman, Tropical) so the first request of any kind never
// pays ephemeris-file discovery latency.
func New(opts Options) (*Engine, error) {
	paths := opts.CandidatePaths
	if paths == nil {
		paths = ephem.DefaultCandidatePaths()
	}

	adapters := make(map[ephem.Ayanamsa]*ephem.Adapter, 3)
	for _, ay := range []ephem.Ayanamsa{ephem.Lahiri, ephem.Raman, ephem.Tropical} {
		a := ephem.NewAdapter(ay)
		if err := a.Init(paths); err != nil {
			return nil, err
		}
		adapters[ay] = a
	}

	e := &Engine{
		Log:        opts.Logger,
		adapters:   adapters,
		memory:     cache.NewMemoryStore(cache.DefaultCapacity, cache.DefaultTTL),
		persistent: opts.Persistent,
	}
	e.Log.Info().Str("tier", adapters[ephem.Lahiri].Tier().String()).Msg("panchangam: engine initialized")
	return e, nil
}

func (e *Engine) adapterFor(ayanamsaName string) (*ephem.Adapter, error) {
	ay, err := ephem.ParseAyanamsa(ayanamsaName)
	if err != nil {
		return nil, err
	}
	return e.adapters[ay], nil
}

// ComputeMonthly computes one calendar month's event record at (lat, lon,
// tz), reading through the cache ahead of running the orchestrator.
func (e *Engine) ComputeMonthly(ctx context.Context, lat, lon float64, tz, monthStartISO, ayanamsaName string) (*orchestrate.MonthRecord, error) {
	adapter, err := e.adapterFor(ayanamsaName)
	if err != nil {
		return nil, err
	}

	yyyymm := monthStartISO
	if len(monthStartISO) >= 7 {
		yyyymm = monthStartISO[:7]
	}
	key := cache.NewKey(lat, lon, tz, yyyymm, ayanamsaName)

	if e.persistent != nil {
		if data, ok, err := e.persistent.Get(ctx, key); err == nil && ok {
			if rec, err := decodeMonth(data); err == nil {
				e.Log.Debug().Str("month", monthStartISO).Msg("panchangam: persistent cache hit")
				return rec, nil
			}
		}
	}
	if data, ok := e.memory.Get(key); ok {
		if rec, err := decodeMonth(data); err == nil {
			e.Log.Debug().Str("month", monthStartISO).Msg("panchangam: memory cache hit")
			return rec, nil
		}
	}

	rec, err := orchestrate.ComputeMonthly(adapter, lat, lon, tz, monthStartISO)
	if err != nil {
		return nil, err
	}

	if data, err := encodeMonth(rec); err == nil {
		e.memory.Set(key, data)
		if e.persistent != nil {
			if err := e.persistent.Put(ctx, key, data); err != nil {
				e.Log.Warn().Err(err).Msg("panchangam: persistent cache write failed, continuing memory-only")
			}
		}
	}

	return rec, nil
}

// ComputeHorizon computes ascendant flips and Moon pada transitions over a
// short window starting at startLocalISO.
func (e *Engine) ComputeHorizon(ctx context.Context, lat, lon float64, tz, startLocalISO string, ascHours, moonDays float64, ayanamsaName string) (*orchestrate.HorizonRecord, error) {
	adapter, err := e.adapterFor(ayanamsaName)
	if err != nil {
		return nil, err
	}
	return orchestrate.ComputeHorizon(adapter, lat, lon, tz, startLocalISO, ascHours, moonDays)
}

// TimeseriesPoint is one sample of ComputeTimeseries.
type TimeseriesPoint struct {
	UnixTimestamp int64   `json:"time"`
	Longitude     float64 `json:"longitude"`
}

// ComputeTimeseries returns body's sidereal longitude at each of the given
// Unix timestamps. Unlike ComputeMonthly/ComputeHorizon this bypasses the
// cache entirely: it is a thin per-instant ephemeris read, not an
// event-detection pass, and is cheap enough that memoizing it would cost
// more than it saves.
func (e *Engine) ComputeTimeseries(bodyName string, unixTimestamps []int64, ayanamsaName string) ([]TimeseriesPoint, error) {
	adapter, err := e.adapterFor(ayanamsaName)
	if err != nil {
		return nil, err
	}
	body, err := parseBody(bodyName)
	if err != nil {
		return nil, err
	}

	out := make([]TimeseriesPoint, len(unixTimestamps))
	for i, ts := range unixTimestamps {
		jd := unixToJD(ts)
		out[i] = TimeseriesPoint{UnixTimestamp: ts, Longitude: adapter.Longitude(body, jd)}
	}
	return out, nil
}

// ComputeBatch computes many months concurrently for one location. See
// batch.ComputeMonths for the concurrency and caching contract.
func (e *Engine) ComputeBatch(ctx context.Context, lat, lon float64, tz string, monthStarts []string, ayanamsaName string) (map[string]batch.MonthResult, error) {
	adapter, err := e.adapterFor(ayanamsaName)
	if err != nil {
		return nil, err
	}
	return batch.ComputeMonths(ctx, adapter, lat, lon, tz, monthStarts, ayanamsaName, e.memory, e.persistent)
}

const unixEpochJD = 2440587.5

func unixToJD(unixSeconds int64) float64 {
	return unixEpochJD + float64(unixSeconds)/86400.0
}

func parseBody(name string) (ephem.Body, error) {
	switch name {
	case "Sun", "sun":
		return ephem.Sun, nil
	case "Moon", "moon":
		return ephem.Moon, nil
	case "Mercury", "mercury":
		return ephem.Mercury, nil
	case "Venus", "venus":
		return ephem.Venus, nil
	case "Mars", "mars":
		return ephem.Mars, nil
	case "Jupiter", "jupiter":
		return ephem.Jupiter, nil
	case "Saturn", "saturn":
		return ephem.Saturn, nil
	case "Uranus", "uranus":
		return ephem.Uranus, nil
	case "Neptune", "neptune":
		return ephem.Neptune, nil
	case "Pluto", "pluto":
		return ephem.Pluto, nil
	case "Rahu", "rahu":
		return ephem.Rahu, nil
	case "Ketu", "ketu":
		return ephem.Ketu, nil
	default:
		return 0, engerr.Newf(engerr.InvalidArgument, "panchangam: unknown body %q", name)
	}
}
