package core

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"fmeacore/internal/infra/persistence/memory"
	"fmeacore/internal/infra/persistence/postgres"
	"fmeacore/internal/infra/persistence/postgres/testutil"
	"fmeacore/internal/infra/persistence/sqlite"
)

func TestOpenDocumentStoreMemory(t *testing.T) {
	store, err := OpenDocumentStore(context.Background(), StorageOptions{Driver: StorageMemory})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenDocumentStoreSQLiteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fmea.db")
	store, err := OpenDocumentStore(context.Background(), StorageOptions{SQLitePath: path})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	ss, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	defer ss.Close()
	if ss.Path() != path {
		t.Fatalf("expected path %s, got %s", path, ss.Path())
	}

	ctx := context.Background()
	s := NewSession(fixtureDocument(newFixture()), WithStore(store))
	if _, err := s.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	list, err := store.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Brakes" {
		t.Fatalf("unexpected list %+v err=%v", list, err)
	}
}

func TestOpenDocumentStorePostgres(t *testing.T) {
	db, conn := testutil.NewStubDB()
	restore := postgres.OverrideSQLOpen(func(string, string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := OpenDocumentStore(context.Background(), StorageOptions{Driver: StoragePostgres, PostgresDSN: "postgres://stub"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*postgres.Store); !ok {
		t.Fatalf("expected postgres store, got %T", store)
	}
	if len(conn.Created) == 0 {
		t.Fatalf("expected schema creation")
	}

	restoreFail := postgres.OverrideSQLOpen(func(string, string) (*sql.DB, error) { return nil, errors.New("dial") })
	defer restoreFail()
	store, err = OpenDocumentStore(context.Background(), StorageOptions{Driver: StoragePostgres})
	if err == nil || store != nil {
		t.Fatalf("expected open failure with nil store, got %v / %v", store, err)
	}
}

func TestOpenDocumentStoreUnknownDriver(t *testing.T) {
	if _, err := OpenDocumentStore(context.Background(), StorageOptions{Driver: "redis"}); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestStorageOptionsFromEnv(t *testing.T) {
	t.Setenv("FMEA_STORAGE_DRIVER", "postgres")
	t.Setenv("FMEA_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("FMEA_POSTGRES_DSN", "postgres://db/fmea")
	opts := StorageOptionsFromEnv()
	if opts.Driver != StoragePostgres || opts.SQLitePath != "/tmp/x.db" || opts.PostgresDSN != "postgres://db/fmea" {
		t.Fatalf("unexpected options %+v", opts)
	}
}
