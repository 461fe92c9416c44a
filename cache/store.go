package cache

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/novaephem/panchangam/engerr"
)

// PersistentStore is the external keyed store behind the memory tier: any
// implementation that can look up and upsert a serialized record by Key
// suffices (the engine only depends on this interface, never on SQLite
// directly).
type PersistentStore interface {
	Get(ctx context.Context, key Key) (data []byte, ok bool, err error)
	Put(ctx context.Context, key Key, data []byte) error
	Stats(ctx context.Context) (Stats, error)
	Close() error
}

// Stats summarizes the persistent store's contents, used by callers that
// want to report cache growth (e.g. "total_months_cached" after a batch).
type Stats struct {
	TotalMonthsCached int
	UniqueLocations   int
}

// SQLiteStore is the PersistentStore backing this engine, implemented over
// modernc.org/sqlite (a cgo-free driver) so the engine has no build-time
// dependency on a C toolchain.
type SQLiteStore struct {
	db *sql.DB
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS month_records (
	location_hash TEXT NOT NULL,
	month_yyyymm  TEXT NOT NULL,
	ayanamsa      TEXT NOT NULL,
	data          BLOB NOT NULL,
	updated_at    INTEGER NOT NULL,
	PRIMARY KEY (location_hash, month_yyyymm, ayanamsa)
);`

// OpenSQLiteStore opens (creating if necessary) a SQLite-backed persistent
// store at dsn, e.g. "file:/var/lib/panchangam/cache.db?_pragma=journal_mode(WAL)".
// The connection pool is sized min=2/max=10, matching a long-lived service
// process that expects a handful of concurrent batch workers rather than a
// large web-server fan-out.
func OpenSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, engerr.Wrap(engerr.StoreUnavailable, err, "cache: opening sqlite store")
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, engerr.Wrap(engerr.StoreUnavailable, err, "cache: creating month_records table")
	}

	return &SQLiteStore{db: db}, nil
}

// Get looks up the record stored for key.
func (s *SQLiteStore) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	var data []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT data FROM month_records WHERE location_hash = ? AND month_yyyymm = ? AND ayanamsa = ?`,
		key.LocationHash, key.MonthYYYYMM, key.Ayanamsa)
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, engerr.Wrap(engerr.StoreUnavailable, err, "cache: querying month_records")
	}
	return data, true, nil
}

// Put upserts the record for key, replacing its data and recomputing its
// updated_at timestamp (the database's own clock, so no caller-supplied
// time is needed).
func (s *SQLiteStore) Put(ctx context.Context, key Key, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO month_records (location_hash, month_yyyymm, ayanamsa, data, updated_at)
		 VALUES (?, ?, ?, ?, strftime('%s','now'))
		 ON CONFLICT (location_hash, month_yyyymm, ayanamsa)
		 DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key.LocationHash, key.MonthYYYYMM, key.Ayanamsa, data)
	if err != nil {
		return engerr.Wrap(engerr.StoreUnavailable, err, "cache: upserting month_records")
	}
	return nil
}

// Stats reports the total row count and the number of distinct
// location_hash values currently stored.
func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COUNT(DISTINCT location_hash) FROM month_records`)
	if err := row.Scan(&stats.TotalMonthsCached, &stats.UniqueLocations); err != nil {
		return Stats{}, engerr.Wrap(engerr.StoreUnavailable, err, "cache: computing stats")
	}
	return stats, nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
