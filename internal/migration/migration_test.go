package migration

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newRunner(t *testing.T, db *sql.DB, files map[string]string) *Runner {
	t.Helper()
	mfs := fstest.MapFS{}
	for name, content := range files {
		mfs[name] = &fstest.MapFile{Data: []byte(content)}
	}
	r, err := NewRunner(db, mfs, DriverSQLite)
	if err != nil {
		t.Fatalf("NewRunner() error: %v", err)
	}
	return r
}

func TestNewRunnerRejectsUnknownDriver(t *testing.T) {
	if _, err := NewRunner(nil, fstest.MapFS{}, "mysql"); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestApplyMigrationsFromScratch(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := newRunner(t, db, map[string]string{
		"001_init.sql":    "CREATE TABLE habits (id TEXT PRIMARY KEY);",
		"002_logs.sql":    "CREATE TABLE habit_logs (id TEXT PRIMARY KEY, habit_id TEXT);",
		"README.md":       "ignored",
		"003_indexes.sql": "CREATE INDEX idx_logs_habit ON habit_logs(habit_id);",
	})

	var messages []string
	applied, err := r.ApplyMigrations(ctx, func(s string) { messages = append(messages, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations() error: %v", err)
	}
	if applied != 3 {
		t.Errorf("applied = %d, want 3", applied)
	}
	if len(messages) == 0 {
		t.Error("expected progress messages")
	}

	version, err := r.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion() error: %v", err)
	}
	if version != 3 {
		t.Errorf("version = %d, want 3", version)
	}

	again, err := r.ApplyMigrations(ctx, nil)
	if err != nil || again != 0 {
		t.Errorf("second ApplyMigrations() = %d, %v; want 0, nil", again, err)
	}
}

func TestApplyMigrationsRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := newRunner(t, db, map[string]string{
		"001_init.sql":   "CREATE TABLE habits (id TEXT PRIMARY KEY);",
		"002_broken.sql": "CREATE TABLE oops (;",
	})

	applied, err := r.ApplyMigrations(ctx, nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if !strings.Contains(err.Error(), "002") && !strings.Contains(err.Error(), "broken") {
		t.Errorf("error should name the failing migration: %v", err)
	}

	st, err := r.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if st.Current != 1 || st.Latest != 2 || !st.Pending() {
		t.Errorf("status = %+v, want current 1, latest 2, pending", st)
	}
}

func TestValidateVersionNewerDatabase(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := newRunner(t, db, map[string]string{
		"001_init.sql": "CREATE TABLE habits (id TEXT PRIMARY KEY);",
	})

	if err := r.EnsureSchemaVersionTable(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (9)"); err != nil {
		t.Fatal(err)
	}

	err := r.ValidateVersion(ctx)
	if err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("ValidateVersion() = %v, want newer-schema error", err)
	}
	if _, err := r.ApplyMigrations(ctx, nil); err == nil {
		t.Error("ApplyMigrations should refuse a newer database")
	}
}

func TestReadMigrationFilesValidation(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{name: "missing underscore", files: map[string]string{"001init.sql": ""}},
		{name: "non-numeric version", files: map[string]string{"abc_init.sql": ""}},
		{name: "zero version", files: map[string]string{"000_init.sql": ""}},
		{name: "duplicate version", files: map[string]string{"001_a.sql": "", "1_b.sql": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRunner(t, setupTestDB(t), tt.files)
			if _, err := r.ReadMigrationFiles(); err == nil {
				t.Error("expected error")
			}
		})
	}
}
