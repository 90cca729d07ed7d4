package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nao1215/userclean/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *OutputDB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "out.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func sampleRun(mode model.Mode) *model.Run {
	res := model.NewPipelineResult(mode)
	res.Input = 3
	res.Records = append(res.Records,
		model.CleanRecord{FirstName: "Jane", LastName: "Doe", Email: "jane@b.com", City: "Springfield"},
		model.CleanRecord{FirstName: "John", LastName: "Roe", Email: "john@a.com", City: "Shelbyville"},
	)
	res.Domains.Inc("b.com")
	res.Domains.Inc("a.com")
	if mode != model.ModeMinimal {
		res.Cities.Inc("Springfield")
		res.Cities.Inc("Shelbyville")
	}
	res.Rejections.Add(model.ReasonInvalidEmail)

	run := model.NewRun("run-123", mode, "data.json", "out.db")
	run.Result = res
	run.Digest = "abc"
	return run
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbPath := filepath.Join(t.TempDir(), "newdir", "subdir", "out.db")
		db, err := Open(dbPath, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != dbPath {
			t.Errorf("expected path %s, got %s", dbPath, db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing.db"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("EnableWAL opens successfully", func(t *testing.T) {
		t.Parallel()

		db, err := Open(filepath.Join(t.TempDir(), "wal.db"), Options{CreateIfNotExists: true, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open database with WAL: %v", err)
		}
		_ = db.Close()
	})
}

func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("round trips records tables and metadata", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		run := sampleRun(model.ModeDefault)
		ctx := context.Background()

		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		records, err := db.LoadRecords(ctx)
		if err != nil {
			t.Fatalf("failed to load records: %v", err)
		}
		if !reflect.DeepEqual(records, run.Result.Records) {
			t.Errorf("records differ: %+v", records)
		}

		domains, err := db.LoadDomains(ctx)
		if err != nil {
			t.Fatalf("failed to load domains: %v", err)
		}
		if !reflect.DeepEqual(domains.Entries(), run.Result.Domains.Entries()) {
			t.Errorf("domains differ: %+v", domains.Entries())
		}

		cities, err := db.LoadCities(ctx)
		if err != nil {
			t.Fatalf("failed to load cities: %v", err)
		}
		if cities.Count("Springfield") != 1 || cities.Len() != 2 {
			t.Errorf("unexpected cities: %v", cities.Map())
		}

		meta, err := db.GetRun(ctx)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if meta.ID != "run-123" || meta.Mode != model.ModeDefault {
			t.Errorf("unexpected metadata: %+v", meta)
		}
		if meta.Input != 3 || meta.Accepted != 2 || meta.Rejected != 1 {
			t.Errorf("unexpected counts: %+v", meta)
		}
		if meta.Digest != "abc" {
			t.Errorf("expected digest abc, got %q", meta.Digest)
		}
		if meta.StartedAt.IsZero() {
			t.Error("expected started_at to be parsed")
		}
	})

	t.Run("second save replaces first", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		ctx := context.Background()

		if err := db.SaveRun(ctx, sampleRun(model.ModeDefault)); err != nil {
			t.Fatalf("first save failed: %v", err)
		}

		second := sampleRun(model.ModeMinimal)
		second.ID = "run-456"
		second.Result.Records = second.Result.Records[:1]
		if err := db.SaveRun(ctx, second); err != nil {
			t.Fatalf("second save failed: %v", err)
		}

		records, err := db.LoadRecords(ctx)
		if err != nil {
			t.Fatalf("failed to load records: %v", err)
		}
		if len(records) != 1 {
			t.Errorf("expected 1 record, got %d", len(records))
		}
		meta, err := db.GetRun(ctx)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if meta.ID != "run-456" {
			t.Errorf("expected latest run, got %s", meta.ID)
		}
		cities, err := db.LoadCities(ctx)
		if err != nil {
			t.Fatalf("failed to load cities: %v", err)
		}
		if cities.Len() != 0 {
			t.Errorf("expected no cities in minimal mode, got %v", cities.Map())
		}
	})

	t.Run("rejects run without result", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if err := db.SaveRun(context.Background(), model.NewRun("x", model.ModeDefault, "a", "b")); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("empty database has no run", func(t *testing.T) {
		t.Parallel()

		if _, err := setupTestDB(t).GetRun(context.Background()); !errors.Is(err, ErrNoRun) {
			t.Errorf("expected ErrNoRun, got %v", err)
		}
	})
}

func TestSink(t *testing.T) {
	t.Parallel()

	run := sampleRun(model.ModeDefault)
	run.OutputPath = filepath.Join(t.TempDir(), "nested", "out.sqlite")

	if err := NewSink(DefaultOptions()).Write(context.Background(), run, nil); err != nil {
		t.Fatalf("sink write failed: %v", err)
	}

	db, err := Open(run.OutputPath, Options{CreateIfNotExists: false})
	if err != nil {
		t.Fatalf("failed to reopen: %v", err)
	}
	defer db.Close()

	records, err := db.LoadRecords(context.Background())
	if err != nil {
		t.Fatalf("failed to load records: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
}

func TestIsSQLitePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{path: "out.db", want: true},
		{path: "out.SQLITE", want: true},
		{path: "dir/out.sqlite3", want: true},
		{path: "transformed.json", want: false},
		{path: "db", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			if got := IsSQLitePath(tt.path); got != tt.want {
				t.Errorf("IsSQLitePath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}
