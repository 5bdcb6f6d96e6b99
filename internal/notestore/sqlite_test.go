package notestore

import (
	"context"
	"os"
	"testing"
)

func testDB(t *testing.T) *SQLiteStore {
	t.Helper()
	f, err := os.CreateTemp("", "contactnotes-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := OpenSQLite(f.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestSQLiteSetGet(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	if got, err := db.Get(ctx, "a@x.com"); err != nil || got != "" {
		t.Fatalf("Get missing = %q, %v", got, err)
	}
	if err := db.Set(ctx, "a@x.com", "hello"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Set(ctx, "a@x.com", "updated"); err != nil {
		t.Fatalf("Set again: %v", err)
	}
	got, err := db.Get(ctx, "a@x.com")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "updated" {
		t.Errorf("got %q, want updated", got)
	}
}

func TestSQLiteSnapshot(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Set(ctx, "a@x.com", "one")
	_ = db.Set(ctx, "b@x.com", "two")

	notes, err := db.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(notes) != 2 || notes.Get("b@x.com") != "two" {
		t.Errorf("unexpected snapshot: %v", notes)
	}
}

func TestSQLiteSearch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Set(ctx, "a@x.com", "Met at GopherCon")
	_ = db.Set(ctx, "b@y.com", "dentist")

	got, err := Search(ctx, db, "gopher", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].Email != "a@x.com" {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestSQLiteImportKeepsExistingRows(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	_ = db.Set(ctx, "a@x.com", "newer")

	if err := db.Import(ctx, Notes{"a@x.com": "older", "b@x.com": "imported"}); err != nil {
		t.Fatalf("Import: %v", err)
	}
	if got, _ := db.Get(ctx, "a@x.com"); got != "newer" {
		t.Errorf("existing row overwritten: %q", got)
	}
	if got, _ := db.Get(ctx, "b@x.com"); got != "imported" {
		t.Errorf("b@x.com = %q", got)
	}
}
