// Package overlap reads tract/visit overlap records from a SQLite database
// and resolves them into simulated exposure file paths.
//
// The database is produced upstream and holds a single table:
//
//	overlaps(id, tract, patch, visit, detector, filter, layer)
//
// Access is read-only and scoped: WithStore opens the database, runs the
// caller's queries, and always closes the handle before returning.
package overlap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"

	distinctExposuresSQL = "SELECT DISTINCT visit, detector, filter FROM overlaps WHERE tract IN (%s) ORDER BY visit, detector"
	allOverlapsSQL       = "SELECT visit, detector, filter, patch, tract FROM overlaps ORDER BY visit, detector"
)

// Record is one row of the overlaps table.
type Record struct {
	Tract    int    `json:"tract"`
	Patch    string `json:"patch"`
	Visit    int    `json:"visit"`
	Detector int    `json:"detector"`
	Filter   string `json:"filter"`
}

// Exposure is a distinct (visit, detector, filter) triple.
type Exposure struct {
	Visit    int    `json:"visit"`
	Detector int    `json:"detector"`
	Filter   string `json:"filter"`
}

// Source supplies overlap rows.
type Source interface {
	// DistinctExposures returns the distinct exposures overlapping any of the
	// given tracts, ordered by visit then detector.
	DistinctExposures(ctx context.Context, tracts []int) ([]Exposure, error)

	// Overlaps returns every overlap row ordered by visit then detector.
	Overlaps(ctx context.Context) ([]Record, error)
}

// Store is a read-only Source backed by a SQLite file.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// OpenStore opens the overlap database at path for reading.
// A missing file is reported as an error instead of creating an empty database.
func OpenStore(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, &DataSourceError{Op: "stat", Path: path, Err: err}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, &DataSourceError{Op: "open", Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, &DataSourceError{Op: "open", Path: path, Err: err}
	}
	if _, err := db.ExecContext(ctx, "PRAGMA query_only = ON"); err != nil {
		_ = db.Close()
		return nil, &DataSourceError{Op: "open", Path: path, Err: err}
	}

	logger.Debug("Opened overlap database", zap.String("path", path))
	return &Store{db: db, path: path, logger: logger}, nil
}

// Close releases the database handle. It is safe to call more than once.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.logger.Debug("Closed overlap database", zap.String("path", s.path))
	if err != nil {
		return &DataSourceError{Op: "close", Path: s.path, Err: err}
	}
	return nil
}

// DistinctExposures implements Source.
func (s *Store) DistinctExposures(ctx context.Context, tracts []int) ([]Exposure, error) {
	if s.db == nil {
		return nil, &DataSourceError{Op: "query", Path: s.path, Err: errors.New("store is closed")}
	}
	if len(tracts) == 0 {
		return nil, ErrNoTracts
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(tracts)), ",")
	args := make([]any, len(tracts))
	for i, t := range tracts {
		args[i] = t
	}
	query := fmt.Sprintf(distinctExposuresSQL, placeholders)
	s.logger.Debug("Querying distinct exposures", zap.String("sql", query), zap.Ints("tracts", tracts))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &DataSourceError{Op: "query", Path: s.path, Err: err}
	}
	defer rows.Close()

	var out []Exposure
	for rows.Next() {
		var e Exposure
		if err := rows.Scan(&e.Visit, &e.Detector, &e.Filter); err != nil {
			return nil, &DataSourceError{Op: "scan", Path: s.path, Err: err}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataSourceError{Op: "query", Path: s.path, Err: err}
	}

	s.logger.Debug("Fetched distinct exposures", zap.Int("rows", len(out)))
	return out, nil
}

// Overlaps implements Source.
func (s *Store) Overlaps(ctx context.Context) ([]Record, error) {
	if s.db == nil {
		return nil, &DataSourceError{Op: "query", Path: s.path, Err: errors.New("store is closed")}
	}
	s.logger.Debug("Querying overlap table", zap.String("sql", allOverlapsSQL))

	rows, err := s.db.QueryContext(ctx, allOverlapsSQL)
	if err != nil {
		return nil, &DataSourceError{Op: "query", Path: s.path, Err: err}
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r     Record
			patch sql.NullString
		)
		if err := rows.Scan(&r.Visit, &r.Detector, &r.Filter, &patch, &r.Tract); err != nil {
			return nil, &DataSourceError{Op: "scan", Path: s.path, Err: err}
		}
		r.Patch = patch.String
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &DataSourceError{Op: "query", Path: s.path, Err: err}
	}

	s.logger.Debug("Fetched overlap rows", zap.Int("rows", len(out)))
	return out, nil
}

// WithStore opens the database at path, calls fn with it, and closes it
// whether or not fn succeeds.
func WithStore(ctx context.Context, path string, logger *zap.Logger, fn func(Source) error) (err error) {
	store, err := OpenStore(ctx, path, logger)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()
	return fn(store)
}
