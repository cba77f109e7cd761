package source

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JonMunkholm/countrytable/internal/config"
	"github.com/JonMunkholm/countrytable/internal/country"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TableName is the snapshot table written by Store and read by
// PostgresFetcher.
const TableName = "countries"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS countries (
    position      integer     PRIMARY KEY,
    name_common   text        NOT NULL,
    name_official text        NOT NULL DEFAULT '',
    capitals      text[]      NOT NULL DEFAULT '{}',
    region        text        NOT NULL DEFAULT '',
    population    bigint      NOT NULL DEFAULT 0,
    languages     jsonb       NOT NULL DEFAULT '{}'::jsonb,
    synced_at     timestamptz NOT NULL DEFAULT now()
)`

const selectSQL = `
SELECT name_common, name_official, capitals, region, population, languages
FROM countries
ORDER BY position`

// copyColumns lists the columns filled by Store.Replace, in copyRows order.
var copyColumns = []string{
	"position", "name_common", "name_official", "capitals", "region", "population", "languages",
}

// Querier is the read side of a pool or transaction.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// DBTX is the interface Store needs to write a snapshot.
// Satisfied by *pgxpool.Pool and *pgx.Conn.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// NewPool opens a connection pool using the configured limits and verifies
// it with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresFetcher reads the snapshot last written by Store.
type PostgresFetcher struct {
	db Querier
}

// NewPostgresFetcher creates a fetcher reading through db.
func NewPostgresFetcher(db Querier) *PostgresFetcher {
	return &PostgresFetcher{db: db}
}

// Fetch returns the stored records in their original order.
func (f *PostgresFetcher) Fetch(ctx context.Context) ([]country.Record, error) {
	rows, err := f.db.Query(ctx, selectSQL)
	if err != nil {
		return nil, fmt.Errorf("query countries: %w", err)
	}
	defer rows.Close()

	var records []country.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan country row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate countries: %w", err)
	}
	return records, nil
}

// scanRecord scans one row of selectSQL into a Record.
func scanRecord(rows pgx.Rows) (country.Record, error) {
	var (
		common     string
		official   string
		capitals   []string
		region     string
		population int64
		languages  []byte
	)
	if err := rows.Scan(&common, &official, &capitals, &region, &population, &languages); err != nil {
		return country.Record{}, err
	}

	rec := country.Record{
		Name:       country.Name{Common: common, Official: official},
		Capital:    capitals,
		Region:     region,
		Population: population,
	}
	if len(languages) > 0 {
		if err := json.Unmarshal(languages, &rec.Languages); err != nil {
			return country.Record{}, fmt.Errorf("languages: %w", err)
		}
	}
	if len(rec.Languages) == 0 {
		rec.Languages = nil
	}
	return rec.Normalize(), nil
}

// Store writes snapshots of the dataset to PostgreSQL.
type Store struct {
	db DBTX
}

// NewStore creates a store writing through db.
func NewStore(db DBTX) *Store {
	return &Store{db: db}
}

// EnsureSchema creates the snapshot table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create %s table: %w", TableName, err)
	}
	return nil
}

// Replace swaps the stored snapshot for records in one transaction.
// Returns the number of rows copied.
func (s *Store) Replace(ctx context.Context, records []country.Record) (int64, error) {
	rows, err := copyRows(records)
	if err != nil {
		return 0, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) // No-op if already committed

	if _, err := tx.Exec(ctx, "DELETE FROM "+TableName); err != nil {
		return 0, fmt.Errorf("clear %s: %w", TableName, err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{TableName}, copyColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("copy %s: %w", TableName, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// copyRows converts records into COPY rows ordered like copyColumns.
// Position preserves the fetch order.
func copyRows(records []country.Record) ([][]any, error) {
	rows := make([][]any, 0, len(records))
	for i, r := range records {
		langs := r.Languages
		if langs == nil {
			langs = map[string]string{}
		}
		encoded, err := json.Marshal(langs)
		if err != nil {
			return nil, fmt.Errorf("encode languages of %q: %w", r.Name.Common, err)
		}

		capitals := r.Capital
		if capitals == nil {
			capitals = []string{}
		}

		rows = append(rows, []any{
			int32(i), r.Name.Common, r.Name.Official, capitals, r.Region, r.Population, encoded,
		})
	}
	return rows, nil
}
