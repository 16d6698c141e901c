package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	err := MigrateUp(db)
	if err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// Verify tables were created
	tables := []string{"profiles", "excel_schemas", "column_formats", "cache_changes", "schema_migrations"}
	for _, table := range tables {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("Table %s was not created: %v", table, err)
		}
	}
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	// Fresh database should need migration
	err := CheckDBMigrationStatus(db)
	if err == nil {
		t.Error("CheckDBMigrationStatus() expected error for fresh database, got nil")
	}

	if err.Error() != "database has no schema version (needs migration)" {
		t.Errorf("CheckDBMigrationStatus() error = %q, want error about needing migration", err.Error())
	}
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	err := CheckDBMigrationStatus(db)
	if err != nil {
		t.Errorf("CheckDBMigrationStatus() after migration returned error: %v", err)
	}
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("First MigrateUp() failed: %v", err)
	}

	if err := MigrateUp(db); err != nil {
		t.Errorf("Second MigrateUp() failed: %v (should be idempotent)", err)
	}

	if err := CheckDBMigrationStatus(db); err != nil {
		t.Errorf("CheckDBMigrationStatus() after double migration returned error: %v", err)
	}
}

func TestForeignKeyConstraints(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	// A schema must belong to an existing profile
	_, err := db.Exec(`
		INSERT INTO excel_schemas (profile_id, header_row, first_data_row, last_data_row, next_free_row, headers, scanned_at)
		VALUES (999, 1, 2, 10, 11, '[]', datetime('now'))
	`)

	if err == nil {
		t.Error("Expected foreign key constraint violation, but insert succeeded")
	}
}

func TestSchema_ProfileNameUnique(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	_, err := db.Exec("INSERT INTO profiles (name, excel_path, sheet_name) VALUES ('invoices', '/a.xlsx', 'Sheet1')")
	if err != nil {
		t.Fatalf("Failed to insert first profile: %v", err)
	}

	_, err = db.Exec("INSERT INTO profiles (name, excel_path, sheet_name) VALUES ('invoices', '/b.xlsx', 'Sheet1')")
	if err == nil {
		t.Error("Expected unique constraint violation for duplicate name, but insert succeeded")
	}
}

func TestSchema_OneSchemaPerProfile(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() failed: %v", err)
	}

	res, err := db.Exec("INSERT INTO profiles (name, excel_path, sheet_name) VALUES ('invoices', '/a.xlsx', 'Sheet1')")
	if err != nil {
		t.Fatalf("Failed to insert profile: %v", err)
	}
	profileID, _ := res.LastInsertId()

	insert := `
		INSERT INTO excel_schemas (profile_id, header_row, first_data_row, last_data_row, next_free_row, headers, scanned_at)
		VALUES (?, 1, 2, 10, 11, '[]', datetime('now'))`
	if _, err := db.Exec(insert, profileID); err != nil {
		t.Fatalf("Failed to insert schema: %v", err)
	}
	if _, err := db.Exec(insert, profileID); err == nil {
		t.Error("Expected unique constraint violation for second schema, but insert succeeded")
	}
}

// openTestDB opens an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	return db
}
