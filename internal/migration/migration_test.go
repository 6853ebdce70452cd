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

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sqlFile(s string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(s)}
}

func TestMigrationsSorted(t *testing.T) {
	src := fstest.MapFS{
		"010_later.sql":  sqlFile("SELECT 1;"),
		"002_second.sql": sqlFile("SELECT 1;"),
		"001_first.sql":  sqlFile("SELECT 1;"),
		"README.md":      sqlFile("ignored"),
	}
	got, err := NewRunner(openTestDB(t), src).Migrations()
	if err != nil {
		t.Fatalf("Migrations() error = %v", err)
	}
	want := []int{1, 2, 10}
	if len(got) != len(want) {
		t.Fatalf("Migrations() returned %d, want %d", len(got), len(want))
	}
	for i, m := range got {
		if m.Version != want[i] {
			t.Errorf("Migrations()[%d].Version = %d, want %d", i, m.Version, want[i])
		}
	}
	if got[0].Name != "first" {
		t.Errorf("Migrations()[0].Name = %q, want %q", got[0].Name, "first")
	}
}

func TestMigrationsInvalidNames(t *testing.T) {
	tests := []struct {
		name string
		src  fstest.MapFS
		want string
	}{
		{"no underscore", fstest.MapFS{"001.sql": sqlFile("")}, "invalid migration filename"},
		{"not a number", fstest.MapFS{"abc_x.sql": sqlFile("")}, "invalid version number"},
		{"zero", fstest.MapFS{"000_x.sql": sqlFile("")}, "invalid version number"},
		{"duplicate", fstest.MapFS{"001_a.sql": sqlFile(""), "1_b.sql": sqlFile("")}, "duplicate migration version"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(openTestDB(t), tt.src).Migrations()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Migrations() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	src := fstest.MapFS{
		"001_init.sql": sqlFile("CREATE TABLE a (id INTEGER);"),
		"002_more.sql": sqlFile("CREATE TABLE b (id INTEGER);"),
	}
	r := NewRunner(db, src)

	n, err := r.Apply(ctx)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Apply() = %d, want 2", n)
	}
	if v, _ := r.CurrentVersion(ctx); v != 2 {
		t.Errorf("CurrentVersion() = %d, want 2", v)
	}

	n, err = r.Apply(ctx)
	if err != nil || n != 0 {
		t.Errorf("second Apply() = %d, %v; want 0, nil", n, err)
	}

	src["003_c.sql"] = sqlFile("CREATE TABLE c (id INTEGER);")
	n, err = r.Apply(ctx)
	if err != nil || n != 1 {
		t.Errorf("Apply() after new file = %d, %v; want 1, nil", n, err)
	}
}

func TestApplyRollsBackFailedMigration(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	r := NewRunner(db, fstest.MapFS{
		"001_ok.sql":  sqlFile("CREATE TABLE ok (id INTEGER);"),
		"002_bad.sql": sqlFile("CREATE TABLE broken (;"),
	})

	n, err := r.Apply(ctx)
	if err == nil {
		t.Fatal("Apply() expected error for invalid SQL")
	}
	if n != 1 {
		t.Errorf("Apply() applied %d, want 1", n)
	}
	if v, _ := r.CurrentVersion(ctx); v != 1 {
		t.Errorf("CurrentVersion() = %d, want 1", v)
	}
}

func TestValidateNewerSchema(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	src := fstest.MapFS{"001_init.sql": sqlFile("CREATE TABLE a (id INTEGER);")}
	r := NewRunner(db, src)
	if _, err := r.Apply(ctx); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if err := r.Validate(ctx); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	if _, err := db.Exec("UPDATE schema_version SET version = 9"); err != nil {
		t.Fatalf("update version: %v", err)
	}
	if err := r.Validate(ctx); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("Validate() error = %v, want newer schema error", err)
	}
	if _, err := r.Apply(ctx); err == nil {
		t.Error("Apply() should refuse a newer schema")
	}
}
