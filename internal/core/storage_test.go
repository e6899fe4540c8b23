package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"aquacore/internal/infra/persistence/sqlite"
	"aquacore/pkg/domain"
)

// helper to set or unset env vars and restore them afterwards
func withEnv(key, value string, fn func()) {
	orig, had := os.LookupEnv(key)
	if value == "" {
		_ = os.Unsetenv(key)
	} else {
		_ = os.Setenv(key, value)
	}
	defer func() {
		if had {
			_ = os.Setenv(key, orig)
		} else {
			_ = os.Unsetenv(key)
		}
	}()
	fn()
}

func TestOpenPersistentStoreDefaultsToMemory(t *testing.T) {
	withEnv(EnvStorageDriver, "", func() {
		store, err := OpenPersistentStore(NewDefaultRulesEngine())
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Fatalf("expected *MemoryStore, got %T", store)
		}
	})
}

func TestOpenPersistentStoreExplicitMemory(t *testing.T) {
	withEnv(EnvStorageDriver, string(StorageMemory), func() {
		store, err := OpenPersistentStore(NewDefaultRulesEngine())
		if err != nil {
			t.Fatalf("open store: %v", err)
		}
		if _, ok := store.(*MemoryStore); !ok {
			t.Fatalf("expected *MemoryStore, got %T", store)
		}
	})
}

func TestOpenPersistentStoreCustomSQLitePath(t *testing.T) {
	withEnv(EnvStorageDriver, string(StorageSQLite), func() {
		path := filepath.Join(t.TempDir(), "custom.db")
		withEnv(EnvSQLitePath, path, func() {
			store, err := OpenPersistentStore(NewDefaultRulesEngine())
			if err != nil {
				t.Fatalf("open store: %v", err)
			}
			s, ok := store.(*sqlite.Store)
			if !ok {
				t.Fatalf("expected *sqlite.Store, got %T", store)
			}
			if s.Path() != path {
				t.Fatalf("expected path %s, got %s", path, s.Path())
			}
			if _, err := s.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				_, err := tx.CreateSpecies(domain.Species{CommonName: "Checker Barb", MaxSizeCm: 5})
				return err
			}); err != nil {
				t.Fatalf("sqlite transaction: %v", err)
			}
			if len(s.ListSpecies()) != 1 {
				t.Fatalf("expected species persisted in store")
			}
		})
	})
}

func TestOpenPersistentStorePostgresInvalidDSN(t *testing.T) {
	withEnv(EnvStorageDriver, string(StoragePostgres), func() {
		withEnv(EnvPostgresDSN, "not-a-dsn", func() {
			if _, err := OpenPersistentStore(NewDefaultRulesEngine()); err == nil {
				t.Fatalf("expected error for unreachable postgres")
			}
		})
	})
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	withEnv(EnvStorageDriver, "gibberish", func() {
		store, err := OpenPersistentStore(NewDefaultRulesEngine())
		if err == nil || store != nil {
			t.Fatalf("expected unknown driver error, got store=%v err=%v", store, err)
		}
	})
}
