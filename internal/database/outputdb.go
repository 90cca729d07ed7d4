package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/userclean/internal/model"
)

// ErrNoRun is returned when the database holds no run.
var ErrNoRun = errors.New("no run stored in database")

// sqliteExtensions lists the output extensions routed to the SQLite sink.
var sqliteExtensions = []string{".db", ".sqlite", ".sqlite3"}

// IsSQLitePath reports whether path should be written as SQLite.
func IsSQLitePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range sqliteExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// OutputDB stores one cleaned dataset in a SQLite file.
type OutputDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures OutputDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. It leaves -wal and -shm files
	// next to the database, so it is off for output files.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         false,
	}
}

// Open opens or creates an OutputDB at dbPath.
// If CreateIfNotExists is true, the parent directory and database file are
// created. Otherwise a missing database is an error.
func Open(dbPath string, opts Options) (*OutputDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	odb := &OutputDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := odb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return odb, nil
}

// Path returns the database file path.
func (odb *OutputDB) Path() string {
	return odb.dbPath
}

// Close closes the database connection.
func (odb *OutputDB) Close() error {
	return odb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (odb *OutputDB) createTables() error {
	schema := `
	-- One row describing the run that produced the file
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		input_path TEXT NOT NULL,
		started_at TEXT NOT NULL,
		input_count INTEGER NOT NULL,
		accepted INTEGER NOT NULL,
		rejected INTEGER NOT NULL,
		digest TEXT
	);

	-- Cleaned records in input order
	CREATE TABLE IF NOT EXISTS records (
		position INTEGER PRIMARY KEY,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_records_email ON records(email);

	-- Frequency tables; seq is the first-insertion order used for ranking ties
	CREATE TABLE IF NOT EXISTS domain_counts (
		key TEXT PRIMARY KEY,
		count INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS city_counts (
		key TEXT PRIMARY KEY,
		count INTEGER NOT NULL,
		seq INTEGER NOT NULL
	);
	`

	_, err := odb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveRun replaces the contents of the database with run's result.
// Everything is written in a single transaction.
func (odb *OutputDB) SaveRun(ctx context.Context, run *model.Run) (err error) {
	if run.Result == nil {
		return errors.New("run has no result to save")
	}

	tx, err := odb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range []string{"runs", "records", "domain_counts", "city_counts"} {
		if _, err = tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	res := run.Result
	_, err = tx.ExecContext(ctx, `
	INSERT INTO runs (id, mode, input_path, started_at, input_count, accepted, rejected, digest)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Mode),
		run.InputPath,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		res.Input,
		res.Accepted(),
		res.Input-res.Accepted(),
		run.Digest,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err = insertRecords(ctx, tx, res.Records); err != nil {
		return err
	}
	if err = insertTable(ctx, tx, "domain_counts", res.Domains); err != nil {
		return err
	}
	if err = insertTable(ctx, tx, "city_counts", res.Cities); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func insertRecords(ctx context.Context, tx *sql.Tx, records []model.CleanRecord) error {
	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO records (position, first_name, last_name, email, city)
	VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i, r.FirstName, r.LastName, r.Email, r.City); err != nil {
			return fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}
	return nil
}

func insertTable(ctx context.Context, tx *sql.Tx, table string, ft *model.FrequencyTable) error {
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (key, count, seq) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for _, e := range ft.Entries() {
		if _, err := stmt.ExecContext(ctx, e.Key, e.Count, e.Seq); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// RunMetadata is the stored description of a run.
type RunMetadata struct {
	ID        string
	Mode      model.Mode
	InputPath string
	StartedAt time.Time
	Input     int
	Accepted  int
	Rejected  int
	Digest    string
}

// GetRun returns the stored run metadata, or ErrNoRun.
func (odb *OutputDB) GetRun(ctx context.Context) (*RunMetadata, error) {
	query := `
	SELECT id, mode, input_path, started_at, input_count, accepted, rejected, COALESCE(digest, '')
	FROM runs
	LIMIT 1
	`

	var (
		meta      RunMetadata
		mode      string
		startedAt string
	)
	err := odb.db.QueryRowContext(ctx, query).Scan(
		&meta.ID,
		&mode,
		&meta.InputPath,
		&startedAt,
		&meta.Input,
		&meta.Accepted,
		&meta.Rejected,
		&meta.Digest,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRun
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	meta.Mode = model.Mode(mode)
	meta.StartedAt = parseTimestamp(startedAt)
	return &meta, nil
}

// LoadRecords returns the stored records in input order.
func (odb *OutputDB) LoadRecords(ctx context.Context) ([]model.CleanRecord, error) {
	rows, err := odb.db.QueryContext(ctx, `
	SELECT first_name, last_name, email, city
	FROM records
	ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]model.CleanRecord, 0)
	for rows.Next() {
		var r model.CleanRecord
		if err := rows.Scan(&r.FirstName, &r.LastName, &r.Email, &r.City); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LoadDomains returns the stored domain table.
func (odb *OutputDB) LoadDomains(ctx context.Context) (*model.FrequencyTable, error) {
	return odb.loadTable(ctx, "domain_counts")
}

// LoadCities returns the stored city table.
func (odb *OutputDB) LoadCities(ctx context.Context) (*model.FrequencyTable, error) {
	return odb.loadTable(ctx, "city_counts")
}

// loadTable rebuilds a frequency table. Keys are re-added in seq order so
// the rebuilt table ranks ties the same way as the original.
func (odb *OutputDB) loadTable(ctx context.Context, table string) (*model.FrequencyTable, error) {
	rows, err := odb.db.QueryContext(ctx, "SELECT key, count FROM "+table+" ORDER BY seq ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	ft := model.NewFrequencyTable()
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", table, err)
		}
		ft.Add(key, count)
	}
	return ft, rows.Err()
}

// timestampFormats lists formats that SQLite may return for TEXT timestamps.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// parseTimestamp tries each known format and returns zero time on failure.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Sink writes runs to SQLite files at the run's output path.
type Sink struct {
	opts Options
}

// NewSink creates a sink using opts for every file it opens.
func NewSink(opts Options) *Sink {
	return &Sink{opts: opts}
}

// Write stores run in the database at run.OutputPath. The canonical JSON
// encoding is not needed; only its digest, already on the run, is kept.
func (s *Sink) Write(ctx context.Context, run *model.Run, _ []byte) error {
	odb, err := Open(run.OutputPath, s.opts)
	if err != nil {
		return err
	}
	if err := odb.SaveRun(ctx, run); err != nil {
		_ = odb.Close()
		return err
	}
	return odb.Close()
}
