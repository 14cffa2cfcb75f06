package shared

import (
	"database/sql"
	"errors"
	"testing"
)

func migratedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func hasTable(db *sql.DB, table string) bool {
	_, err := db.Exec("SELECT 1 FROM " + table + " LIMIT 1")
	return err == nil
}

func appliedCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&n); err != nil {
		t.Fatalf("failed to count schema_migrations: %v", err)
	}
	return n
}

func TestMigrations(t *testing.T) {
	t.Run("embedded scripts are ordered and paired", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}
		if len(migrations) != 2 {
			t.Fatalf("expected credentials and request_log migrations, got %d", len(migrations))
		}
		for i, m := range migrations {
			if m.Version != i {
				t.Errorf("expected version %d at position %d, got %d", i, i, m.Version)
			}
			if m.Name == "" || m.Up == "" || m.Down == "" {
				t.Errorf("migration %d is incomplete: %+v", m.Version, m)
			}
		}
	})

	t.Run("creates every table", func(t *testing.T) {
		db := migratedDB(t)
		for _, table := range []string{"credentials", "credentials_sequence", "request_log", "request_log_sequence"} {
			if !hasTable(db, table) {
				t.Errorf("expected table %s", table)
			}
		}
	})

	t.Run("rerun applies nothing new", func(t *testing.T) {
		db := migratedDB(t)
		before := appliedCount(t, db)
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		if after := appliedCount(t, db); after != before {
			t.Errorf("expected %d applied migrations, got %d", before, after)
		}
	})

	t.Run("rollback undoes the latest first", func(t *testing.T) {
		db := migratedDB(t)
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("rollback failed: %v", err)
		}
		if hasTable(db, "request_log") {
			t.Error("expected request_log to be dropped")
		}
		if !hasTable(db, "credentials") {
			t.Error("expected credentials to survive one rollback")
		}
		if n := appliedCount(t, db); n != 1 {
			t.Errorf("expected 1 applied migration, got %d", n)
		}
	})

	t.Run("rollback past the start", func(t *testing.T) {
		db := migratedDB(t)
		for range 2 {
			if err := RollbackMigration(db); err != nil {
				t.Fatalf("rollback failed: %v", err)
			}
		}
		if err := RollbackMigration(db); !errors.Is(err, ErrNoMigrations) {
			t.Errorf("expected ErrNoMigrations, got %v", err)
		}
	})
}

func TestOpenDatabase(t *testing.T) {
	db, err := OpenDatabase(DatabaseConfig{Path: MemoryDatabase, MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("SELECT 1 FROM credentials LIMIT 1"); err != nil {
		t.Errorf("expected migrations to be applied: %v", err)
	}
	if stats := db.Stats(); stats.MaxOpenConnections != 1 {
		t.Errorf("expected in-memory database to use one connection, got %d", stats.MaxOpenConnections)
	}
}
