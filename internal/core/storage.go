package core

import (
	"context"
	"fmt"
	"os"

	"fmeacore/internal/infra/persistence/memory"
	"fmeacore/internal/infra/persistence/postgres"
	"fmeacore/internal/infra/persistence/sqlite"
	"fmeacore/pkg/domain"
)

// StorageDriver identifies a concrete document store implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

type (
	DocumentStore  = domain.DocumentStore
	ProjectSummary = domain.ProjectSummary
	ErrNotFound    = domain.ErrNotFound
)

// StorageOptions selects and configures a document store.
type StorageOptions struct {
	Driver      StorageDriver
	SQLitePath  string
	PostgresDSN string
}

// StorageOptionsFromEnv reads the storage selection from the environment.
// Defaults to sqlite when unset.
//
//	FMEA_STORAGE_DRIVER: memory|sqlite|postgres (default sqlite)
//	FMEA_SQLITE_PATH: path to sqlite file (default ./fmea.db)
//	FMEA_POSTGRES_DSN: postgres DSN when driver=postgres
func StorageOptionsFromEnv() StorageOptions {
	return StorageOptions{
		Driver:      StorageDriver(os.Getenv("FMEA_STORAGE_DRIVER")),
		SQLitePath:  os.Getenv("FMEA_SQLITE_PATH"),
		PostgresDSN: os.Getenv("FMEA_POSTGRES_DSN"),
	}
}

// OpenDocumentStore constructs the store selected by opts.
func OpenDocumentStore(ctx context.Context, opts StorageOptions) (DocumentStore, error) {
	driver := opts.Driver
	if driver == "" {
		driver = StorageSQLite
	}
	switch driver {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		ss, err := sqlite.NewStore(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
		return ss, nil
	case StoragePostgres:
		ps, err := postgres.NewStore(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return ps, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
