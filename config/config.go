// Package config reads the engine's process-wide settings from the
// environment, applying typed defaults so the engine runs out of the box
// with no configuration at all.
package config

import (
	"os"
	"strconv"
)

// Config holds every environment-tunable setting Load reads.
type Config struct {
	// SwissEphePath holds SWISS_EPHE_PATH: an ephemeris file, or a
	// directory holding de421.bsp. Nothing reads this field;
	// ephem.DefaultCandidatePaths reads the variable itself and tries it
	// ahead of the built-in conventional locations.
	SwissEphePath string

	// DatabaseURL is the persistent cache store's connection string. An
	// empty value degrades the engine to memory-only caching.
	DatabaseURL string

	// BatchConcurrency holds PANCHANGAM_BATCH_CONCURRENCY. Nothing reads
	// this field; the batch package always bounds itself with its
	// MaxConcurrency constant.
	BatchConcurrency int

	// CacheTTLSeconds holds PANCHANGAM_CACHE_TTL_SECONDS. Nothing reads
	// this field; the engine's in-memory cache tier always uses
	// cache.DefaultTTL.
	CacheTTLSeconds int
}

const (
	defaultBatchConcurrency = 6
	defaultCacheTTLSeconds  = 3600
)

// Load reads Config from the environment, falling back to the documented
// defaults for anything unset or unparseable.
func Load() Config {
	return Config{
		SwissEphePath:    os.Getenv("SWISS_EPHE_PATH"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		BatchConcurrency: envInt("PANCHANGAM_BATCH_CONCURRENCY", defaultBatchConcurrency),
		CacheTTLSeconds:  envInt("PANCHANGAM_CACHE_TTL_SECONDS", defaultCacheTTLSeconds),
	}
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
