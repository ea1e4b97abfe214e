package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()

	db, err := NewConnection(path)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func TestNewConnectionRequiresPath(t *testing.T) {
	if _, err := NewConnection(""); err == nil {
		t.Error("Expected error for empty database path")
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := openTestDB(t, filepath.Join(t.TempDir(), "watch.db"))

	version, dirty, err := RunMigrations(db)
	if err != nil {
		t.Fatalf("Expected second migration run to succeed, got %v", err)
	}
	if version != 1 {
		t.Errorf("Expected schema version 1, got %d", version)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}
}

func TestRunMigrationsAdoptsExistingTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")

	legacy, err := NewConnection(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = legacy.Exec(`CREATE TABLE seen(fp TEXT PRIMARY KEY, ts INTEGER);
		INSERT INTO seen(fp, ts) VALUES ('legacy-fp', 1700000000);`)
	if err != nil {
		t.Fatal(err)
	}
	legacy.Close()

	db := openTestDB(t, path)
	seen, err := NewSeenRepository(db).CheckAndMark(context.Background(), "legacy-fp")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("Expected fingerprint from the pre-existing table to be reported as seen")
	}
}

func TestSeenRepository_CheckAndMark(t *testing.T) {
	ctx := context.Background()
	repo := NewSeenRepository(openTestDB(t, filepath.Join(t.TempDir(), "watch.db")))

	seen, err := repo.CheckAndMark(ctx, "fp-1")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("Expected first check to report unseen")
	}

	seen, err = repo.CheckAndMark(ctx, "fp-1")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("Expected second check to report seen")
	}

	seen, err = repo.CheckAndMark(ctx, "fp-2")
	if err != nil {
		t.Fatal(err)
	}
	if seen {
		t.Error("Expected a different fingerprint to report unseen")
	}

	count, err := repo.GetSeenCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Errorf("Expected 2 seen records, got %d", count)
	}
}

func TestSeenRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "watch.db")

	first, err := NewConnection(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := RunMigrations(first); err != nil {
		t.Fatal(err)
	}
	if _, err := NewSeenRepository(first).CheckAndMark(ctx, "durable"); err != nil {
		t.Fatal(err)
	}
	first.Close()

	seen, err := NewSeenRepository(openTestDB(t, path)).CheckAndMark(ctx, "durable")
	if err != nil {
		t.Fatal(err)
	}
	if !seen {
		t.Error("Expected fingerprint to persist across connections")
	}
}

func TestHitRepository_InsertHitIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewHitRepository(openTestDB(t, filepath.Join(t.TempDir(), "watch.db")))

	hit := Hit{
		ID:          "hit-1",
		PublishedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Subject:     "Ted Cruz",
		URL:         "https://example.com/a",
		Title:       "Title",
		SourceFeed:  "https://example.com/feed",
		Snippet:     "I'm not racist but",
	}

	inserted, err := repo.InsertHitIfAbsent(ctx, hit)
	if err != nil {
		t.Fatal(err)
	}
	if !inserted {
		t.Error("Expected first insert to write a row")
	}

	hit.Snippet = "changed"
	inserted, err = repo.InsertHitIfAbsent(ctx, hit)
	if err != nil {
		t.Fatalf("Expected duplicate insert to be a no-op, got %v", err)
	}
	if inserted {
		t.Error("Expected duplicate insert to report no new row")
	}

	hits, err := repo.GetRecentHits(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	if hits[0].Snippet != "I'm not racist but" {
		t.Errorf("Expected first snippet to be kept, got '%s'", hits[0].Snippet)
	}
	if !hits[0].PublishedAt.Equal(hit.PublishedAt) {
		t.Errorf("Expected published time %v, got %v", hit.PublishedAt, hits[0].PublishedAt)
	}

	count, err := repo.GetHitCount(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 hit, got %d", count)
	}
}

func TestSeenRepository_PropagatesStoreErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	mock.ExpectExec("INSERT INTO seen").WillReturnError(errors.New("disk I/O error"))

	repo := NewSeenRepository(&DB{sqlDB})
	if _, err := repo.CheckAndMark(context.Background(), "fp"); err == nil {
		t.Error("Expected store error to be returned")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}

func TestHitRepository_PropagatesStoreErrors(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	mock.ExpectExec("INSERT INTO hits").WillReturnError(errors.New("database is locked"))

	repo := NewHitRepository(&DB{sqlDB})
	if _, err := repo.InsertHitIfAbsent(context.Background(), Hit{ID: "x"}); err == nil {
		t.Error("Expected store error to be returned")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unmet expectations: %v", err)
	}
}
