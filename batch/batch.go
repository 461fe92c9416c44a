// Package batch computes many months for one location concurrently,
// reading through a persistent keyed store and a short-lived in-memory
// store before falling back to the monthly orchestrator, and isolating
// each month's failure from its siblings.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/novaephem/panchangam/cache"
	"github.com/novaephem/panchangam/engerr"
	"github.com/novaephem/panchangam/ephem"
	"github.com/novaephem/panchangam/orchestrate"
)

// MaxConcurrency bounds how many orchestrator invocations run at once,
// sized around a per-task memory footprint of roughly 50-80 MiB against a
// 512 MiB process budget.
const MaxConcurrency = 6

// MaxMonthsPerRequest is the largest batch this package accepts in one
// call.
const MaxMonthsPerRequest = 60

// MonthResult is one month's outcome within a batch: either a populated
// Record, or Ok=false with an Error message and no partial data.
type MonthResult struct {
	MonthStart string                   `json:"month_start"`
	Record     *orchestrate.MonthRecord `json:"record,omitempty"`
	Ok         bool                     `json:"ok"`
	Error      string                   `json:"error,omitempty"`
}

// ComputeMonths computes compute_monthly for every entry in monthStarts
// (each "YYYY-MM-DD", the first of a calendar month), reading through mem
// and persistent ahead of actually running the orchestrator, and running
// the remaining misses concurrently under a semaphore of MaxConcurrency.
// persistent may be nil, degrading to memory-only caching.
func ComputeMonths(ctx context.Context, adapter *ephem.Adapter, lat, lon float64, tz string, monthStarts []string, ayanamsaName string, mem *cache.MemoryStore, persistent cache.PersistentStore) (map[string]MonthResult, error) {
	if len(monthStarts) > MaxMonthsPerRequest {
		return nil, engerr.Newf(engerr.InvalidArgument, "batch: %d months requested, exceeds the %d-month limit", len(monthStarts), MaxMonthsPerRequest)
	}

	results := make(map[string]MonthResult, len(monthStarts))
	var missing []string

	for _, monthStart := range monthStarts {
		key := monthKey(lat, lon, tz, monthStart, ayanamsaName)

		if persistent != nil {
			if data, ok, err := persistent.Get(ctx, key); err == nil && ok {
				if rec, err := decodeRecord(data); err == nil {
					results[monthStart] = MonthResult{MonthStart: monthStart, Record: rec, Ok: true}
					continue
				}
			}
		}

		if data, ok := mem.Get(key); ok {
			if rec, err := decodeRecord(data); err == nil {
				results[monthStart] = MonthResult{MonthStart: monthStart, Record: rec, Ok: true}
				continue
			}
		}

		missing = append(missing, monthStart)
	}

	if len(missing) == 0 {
		return results, nil
	}

	sem := semaphore.NewWeighted(MaxConcurrency)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, monthStart := range missing {
		monthStart := monthStart
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			results[monthStart] = MonthResult{MonthStart: monthStart, Ok: false, Error: err.Error()}
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			result := computeOne(ctx, adapter, lat, lon, tz, monthStart, ayanamsaName, mem, persistent)

			mu.Lock()
			results[monthStart] = result
			mu.Unlock()
		}()
	}

	wg.Wait()
	return results, nil
}

// computeOne runs the orchestrator for a single month, recovering from any
// panic so one month's unexpected failure never takes down sibling goroutines
// in the same batch, and populates both cache tiers on success.
func computeOne(ctx context.Context, adapter *ephem.Adapter, lat, lon float64, tz, monthStart, ayanamsaName string, mem *cache.MemoryStore, persistent cache.PersistentStore) (result MonthResult) {
	result = MonthResult{MonthStart: monthStart}
	defer func() {
		if r := recover(); r != nil {
			result = MonthResult{MonthStart: monthStart, Ok: false, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	rec, err := orchestrate.ComputeMonthly(adapter, lat, lon, tz, monthStart)
	if err != nil {
		return MonthResult{MonthStart: monthStart, Ok: false, Error: err.Error()}
	}

	data, err := json.Marshal(rec)
	if err == nil {
		key := monthKey(lat, lon, tz, monthStart, ayanamsaName)
		mem.Set(key, data)
		if persistent != nil {
			_ = persistent.Put(ctx, key, data)
		}
	}

	return MonthResult{MonthStart: monthStart, Record: rec, Ok: true}
}

func monthKey(lat, lon float64, tz, monthStart, ayanamsaName string) cache.Key {
	yyyymm := monthStart
	if len(monthStart) >= 7 {
		yyyymm = monthStart[:7]
	}
	return cache.NewKey(lat, lon, tz, yyyymm, ayanamsaName)
}

func decodeRecord(data []byte) (*orchestrate.MonthRecord, error) {
	var rec orchestrate.MonthRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
