package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"parley/internal/config"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the current schema version. Bump this when the schema
// changes; users clear the catalog with `parley catalog forget --all` or by
// deleting the database file.
const schemaVersion = 1

// ErrSchemaMismatch indicates the database schema version doesn't match the
// expected version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

// Store manages catalog persistence backed by SQLite. A sibling lock file
// guards against concurrent writers from separate invocations.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the catalog database at the configured
// path and verifies the schema.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("catalog requires config")
	}
	dbPath := cfg.Catalog.Path
	if dbPath == "" {
		return nil, errors.New("catalog path is not configured")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("ensure catalog directory: %w", err)
	}

	lock := flock.New(dbPath + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !ok {
		return nil, errors.New("catalog is in use by another parley process")
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath, lock: lock}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection and releases the catalog lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var closeErr error
	if s.db != nil {
		closeErr = s.db.Close()
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil && closeErr == nil {
			closeErr = err
		}
	}
	return closeErr
}

// Path returns the location of the catalog database.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema(ctx context.Context) error {
	var tableExists int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return s.createSchema(ctx)
	}

	var version int
	err = s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s to rebuild)",
			ErrSchemaMismatch, version, schemaVersion, s.path)
	}
	return nil
}

func (s *Store) createSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

const recordColumns = "id, path, family, size_bytes, checksum, struct_count, node_count, word_count, modified_at, scanned_at"

// Upsert inserts or refreshes the record for rec.Path and returns the stored
// row.
func (s *Store) Upsert(ctx context.Context, rec *Record) (*Record, error) {
	if rec == nil {
		return nil, errors.New("record is nil")
	}
	scanned := time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO files (path, family, size_bytes, checksum, struct_count, node_count, word_count, modified_at, scanned_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(path) DO UPDATE SET
            family = excluded.family,
            size_bytes = excluded.size_bytes,
            checksum = excluded.checksum,
            struct_count = excluded.struct_count,
            node_count = excluded.node_count,
            word_count = excluded.word_count,
            modified_at = excluded.modified_at,
            scanned_at = excluded.scanned_at`,
		rec.Path,
		rec.Family,
		rec.SizeBytes,
		nullableString(rec.Checksum),
		rec.StructCnt,
		rec.NodeCount,
		rec.WordCount,
		nullableTime(rec.ModifiedAt),
		scanned.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert record: %w", err)
	}
	return s.Get(ctx, rec.Path)
}

// Get fetches the record for path, or nil when the path is not cataloged.
func (s *Store) Get(ctx context.Context, path string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM files WHERE path = ?`, path)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// List returns all records, optionally filtered by family, ordered by path.
func (s *Store) List(ctx context.Context, family string) ([]*Record, error) {
	query := `SELECT ` + recordColumns + ` FROM files ORDER BY path`
	args := []any{}
	if family != "" {
		query = `SELECT ` + recordColumns + ` FROM files WHERE family = ? ORDER BY path`
		args = append(args, family)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Forget removes the record for path. It reports whether a row was deleted.
func (s *Store) Forget(ctx context.Context, path string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path)
	if err != nil {
		return false, fmt.Errorf("forget record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ForgetAll clears the catalog and returns the number of removed rows.
func (s *Store) ForgetAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM files`)
	if err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}
	return res.RowsAffected()
}

func scanRecord(scanner interface{ Scan(dest ...any) error }) (*Record, error) {
	var (
		id          int64
		path        string
		family      string
		sizeBytes   int64
		checksum    sql.NullString
		structCount int
		nodeCount   int
		wordCount   int
		modifiedRaw sql.NullString
		scannedRaw  string
	)
	if err := scanner.Scan(
		&id,
		&path,
		&family,
		&sizeBytes,
		&checksum,
		&structCount,
		&nodeCount,
		&wordCount,
		&modifiedRaw,
		&scannedRaw,
	); err != nil {
		return nil, err
	}

	rec := &Record{
		ID:        id,
		Path:      path,
		Family:    family,
		SizeBytes: sizeBytes,
		Checksum:  checksum.String,
		StructCnt: structCount,
		NodeCount: nodeCount,
		WordCount: wordCount,
	}
	if modifiedRaw.Valid {
		if t, err := parseTimeString(modifiedRaw.String); err == nil {
			rec.ModifiedAt = t
		}
	}
	if t, err := parseTimeString(scannedRaw); err == nil {
		rec.ScannedAt = t
	}
	return rec, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
