package migrate

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestCreateSQLMigrationStaysAfterLatestVersion(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "20300101000000_future_change.sql")
	if err := os.WriteFile(existing, []byte(""), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	path, err := createSQLMigration(dir, "add order notes", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20300101000001_add_order_notes.sql" {
		t.Fatalf("unexpected file %s", filepath.Base(path))
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := createSQLMigration(t.TempDir(), " !! ", time.Now()); err == nil {
		t.Fatal("expected error for unusable name")
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"create_things.sql":                   "-- +goose Up\n-- +goose Down\n",
		"20250101000000_add_colour.sql":       "-- +goose Up\n-- +goose StatementBegin\n-- +goose Down\n",
		"20250101000000_add_colour_again.sql": "-- +goose Up\n-- +goose Down\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	err := ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	msg := err.Error()
	for _, want := range []string{"invalid migration filename", "duplicate migration version", "StatementBegin"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}
