package core

import (
	"fmt"
	"os"

	"aquacore/internal/infra/persistence/memory"
	"aquacore/internal/infra/persistence/postgres"
	"aquacore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// Environment variables consulted by OpenPersistentStore.
const (
	EnvStorageDriver = "AQUACORE_PERSISTENCE_DRIVER"
	EnvSQLitePath    = "AQUACORE_SQLITE_PATH"
	EnvPostgresDSN   = "AQUACORE_POSTGRES_DSN"
)

// OpenPersistentStore selects a backend using environment variables.
// Defaults to memory when unset, so a bare binary needs no setup.
//
//	AQUACORE_PERSISTENCE_DRIVER: memory|sqlite|postgres (default memory)
//	AQUACORE_SQLITE_PATH: path to sqlite file (default ./aquacore.db)
//	AQUACORE_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenPersistentStore(engine *RulesEngine) (PersistentStore, error) {
	driver := os.Getenv(EnvStorageDriver)
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return NewSQLiteStore(os.Getenv(EnvSQLitePath), engine)
	case StoragePostgres:
		return NewPostgresStore(os.Getenv(EnvPostgresDSN), engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// NewSQLiteStore constructs a SQLite-backed persistent store at the given
// file path (empty for the default) bound to the rules engine.
func NewSQLiteStore(path string, engine *RulesEngine) (*sqlite.Store, error) {
	return sqlite.NewStore(path, engine)
}

// NewPostgresStore constructs a PostgreSQL-backed persistent store from the
// DSN (empty for the default) bound to the rules engine.
func NewPostgresStore(dsn string, engine *RulesEngine) (*postgres.Store, error) {
	return postgres.NewStore(dsn, engine)
}
