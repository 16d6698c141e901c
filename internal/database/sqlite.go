// Package database implements the durable schema store on SQLite.
package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sheetfeed/internal/core"
	"sheetfeed/internal/database/migrations"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements core.Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) a SQLite store at path and runs
// pending migrations. path can be ":memory:" for an in-memory store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}

	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// NewSQLiteStoreFromDB wraps an existing database connection. The caller is
// responsible for ensuring the connection is configured and migrated.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// OpenConnection opens and configures a SQLite connection with the PRAGMAs
// the store relies on. Exported for tools and tests.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	return db, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Profile operations

func (s *SQLiteStore) CreateProfile(p *core.Profile) (int64, error) {
	mapping, err := json.Marshal(orEmptyMapping(p.ColumnMapping))
	if err != nil {
		return 0, fmt.Errorf("encoding column mapping: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO profiles (name, excel_path, sheet_name, column_mapping)
		VALUES (?, ?, ?, ?)`,
		p.Name, p.ExcelPath, p.SheetName, string(mapping))
	if err != nil {
		return 0, fmt.Errorf("inserting profile: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading profile id: %w", err)
	}
	p.ID = id
	return id, nil
}

func (s *SQLiteStore) GetProfile(id int64) (*core.Profile, error) {
	row := s.db.QueryRow(`
		SELECT id, name, excel_path, sheet_name, column_mapping,
		       file_size, file_mtime, last_scanned_at
		FROM profiles WHERE id = ?`, id)

	p, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", core.ErrProfileNotFound, id)
		}
		return nil, fmt.Errorf("loading profile %d: %w", id, err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProfiles() ([]*core.Profile, error) {
	rows, err := s.db.Query(`
		SELECT id, name, excel_path, sheet_name, column_mapping,
		       file_size, file_mtime, last_scanned_at
		FROM profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*core.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (s *SQLiteStore) UpdateProfile(p *core.Profile) error {
	mapping, err := json.Marshal(orEmptyMapping(p.ColumnMapping))
	if err != nil {
		return fmt.Errorf("encoding column mapping: %w", err)
	}

	res, err := s.db.Exec(`
		UPDATE profiles
		SET name = ?, excel_path = ?, sheet_name = ?, column_mapping = ?
		WHERE id = ?`,
		p.Name, p.ExcelPath, p.SheetName, string(mapping), p.ID)
	if err != nil {
		return fmt.Errorf("updating profile %d: %w", p.ID, err)
	}
	return requireAffected(res, p.ID)
}

func (s *SQLiteStore) DeleteProfile(id int64) error {
	res, err := s.db.Exec(`DELETE FROM profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting profile %d: %w", id, err)
	}
	return requireAffected(res, id)
}

// Schema operations

// SaveSchema upserts the schema for a profile in one transaction: the schema
// row is replaced, old column-format rows are dropped and reinserted, and
// the owning profile is stamped with the file signature and scan time.
func (s *SQLiteStore) SaveSchema(profileID int64, sc *core.Schema) error {
	headers, err := json.Marshal(sc.Headers)
	if err != nil {
		return fmt.Errorf("encoding headers: %w", err)
	}

	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	scannedAt := sc.ScannedAt
	if scannedAt.IsZero() {
		scannedAt = time.Now()
	}

	_, err = tx.Exec(`
		INSERT INTO excel_schemas (
			profile_id, header_row, first_data_row, last_data_row, next_free_row,
			total_rows, total_columns, headers,
			template_row_index, row_height, use_alternating_colors,
			file_size, file_mtime, scanned_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(profile_id) DO UPDATE SET
			header_row = excluded.header_row,
			first_data_row = excluded.first_data_row,
			last_data_row = excluded.last_data_row,
			next_free_row = excluded.next_free_row,
			total_rows = excluded.total_rows,
			total_columns = excluded.total_columns,
			headers = excluded.headers,
			template_row_index = excluded.template_row_index,
			row_height = excluded.row_height,
			use_alternating_colors = excluded.use_alternating_colors,
			file_size = excluded.file_size,
			file_mtime = excluded.file_mtime,
			scanned_at = excluded.scanned_at`,
		profileID, sc.HeaderRow, sc.FirstDataRow, sc.LastDataRow, sc.NextFreeRow,
		sc.TotalRows, sc.TotalColumns, string(headers),
		sc.RowTemplate.TemplateRowIndex, sc.RowTemplate.RowHeight, sc.RowTemplate.UseAlternatingColors,
		sc.FileSize, sc.FileMtime, scannedAt)
	if err != nil {
		return fmt.Errorf("upserting schema: %w", err)
	}

	var schemaID int64
	if err := tx.QueryRow(`SELECT id FROM excel_schemas WHERE profile_id = ?`, profileID).Scan(&schemaID); err != nil {
		return fmt.Errorf("reading schema id: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM column_formats WHERE schema_id = ?`, schemaID); err != nil {
		return fmt.Errorf("clearing column formats: %w", err)
	}

	for _, c := range sc.Columns {
		_, err := tx.Exec(`
			INSERT INTO column_formats (
				schema_id, column_index, column_letter, header_text,
				font_name, font_size, font_color, font_bold, font_italic,
				background_color, background_color_alt,
				border_style, border_color, alignment,
				data_type, number_format, column_width
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			schemaID, c.ColumnIndex, c.ColumnLetter, c.HeaderText,
			c.FontName, c.FontSize, c.FontColor, c.FontBold, c.FontItalic,
			c.BackgroundColor, c.BackgroundColorAlt,
			c.BorderStyle, c.BorderColor, c.Alignment,
			c.DataType, c.NumberFormat, c.ColumnWidth)
		if err != nil {
			return fmt.Errorf("inserting column format %s: %w", c.ColumnLetter, err)
		}
	}

	res, err := tx.Exec(`
		UPDATE profiles SET file_size = ?, file_mtime = ?, last_scanned_at = ?
		WHERE id = ?`,
		sc.FileSize, sc.FileMtime, scannedAt, profileID)
	if err != nil {
		return fmt.Errorf("stamping profile %d: %w", profileID, err)
	}
	if err := requireAffected(res, profileID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema save: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadSchema(profileID int64) (*core.Schema, error) {
	var (
		schemaID    int64
		sc          core.Schema
		headersJSON string
		scannedAt   time.Time
	)
	err := s.db.QueryRow(`
		SELECT id, header_row, first_data_row, last_data_row, next_free_row,
		       total_rows, total_columns, headers,
		       template_row_index, row_height, use_alternating_colors,
		       file_size, file_mtime, scanned_at
		FROM excel_schemas WHERE profile_id = ?`, profileID).Scan(
		&schemaID, &sc.HeaderRow, &sc.FirstDataRow, &sc.LastDataRow, &sc.NextFreeRow,
		&sc.TotalRows, &sc.TotalColumns, &headersJSON,
		&sc.RowTemplate.TemplateRowIndex, &sc.RowTemplate.RowHeight, &sc.RowTemplate.UseAlternatingColors,
		&sc.FileSize, &sc.FileMtime, &scannedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: profile %d", core.ErrSchemaNotFound, profileID)
		}
		return nil, fmt.Errorf("loading schema for profile %d: %w", profileID, err)
	}
	sc.ScannedAt = scannedAt

	if err := json.Unmarshal([]byte(headersJSON), &sc.Headers); err != nil {
		return nil, fmt.Errorf("decoding headers for profile %d: %w", profileID, err)
	}

	rows, err := s.db.Query(`
		SELECT column_index, column_letter, header_text,
		       font_name, font_size, font_color, font_bold, font_italic,
		       background_color, background_color_alt,
		       border_style, border_color, alignment,
		       data_type, number_format, column_width
		FROM column_formats WHERE schema_id = ? ORDER BY column_index`, schemaID)
	if err != nil {
		return nil, fmt.Errorf("loading column formats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c core.ColumnFormat
		err := rows.Scan(
			&c.ColumnIndex, &c.ColumnLetter, &c.HeaderText,
			&c.FontName, &c.FontSize, &c.FontColor, &c.FontBold, &c.FontItalic,
			&c.BackgroundColor, &c.BackgroundColorAlt,
			&c.BorderStyle, &c.BorderColor, &c.Alignment,
			&c.DataType, &c.NumberFormat, &c.ColumnWidth)
		if err != nil {
			return nil, fmt.Errorf("scanning column format: %w", err)
		}
		sc.Columns = append(sc.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &sc, nil
}

// AdvanceRowPointer moves the row pointer and records the change in one
// transaction, so the audit log never disagrees with the pointer.
func (s *SQLiteStore) AdvanceRowPointer(profileID int64, newNextFreeRow, oldNextFreeRow int) error {
	ctx := context.Background()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE excel_schemas SET next_free_row = ?, last_data_row = ?
		WHERE profile_id = ?`,
		newNextFreeRow, newNextFreeRow-1, profileID)
	if err != nil {
		return fmt.Errorf("advancing row pointer: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking pointer update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: profile %d", core.ErrSchemaNotFound, profileID)
	}

	_, err = tx.Exec(`
		INSERT INTO cache_changes (profile_id, reason, old_next_free_row, new_next_free_row)
		VALUES (?, ?, ?, ?)`,
		profileID, "row_added", oldNextFreeRow, newNextFreeRow)
	if err != nil {
		return fmt.Errorf("recording row pointer change: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing pointer advance: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListChanges(profileID int64, limit int) ([]*core.ChangeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, profile_id, changed_at, reason, old_next_free_row, new_next_free_row
		FROM cache_changes WHERE profile_id = ?
		ORDER BY id DESC LIMIT ?`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing changes: %w", err)
	}
	defer rows.Close()

	var changes []*core.ChangeRecord
	for rows.Next() {
		var c core.ChangeRecord
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.ChangedAt, &c.Reason, &c.OldNextFreeRow, &c.NewNextFreeRow); err != nil {
			return nil, fmt.Errorf("scanning change record: %w", err)
		}
		changes = append(changes, &c)
	}
	return changes, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*core.Profile, error) {
	var (
		p           core.Profile
		mappingJSON string
		scannedAt   sql.NullTime
	)
	err := row.Scan(&p.ID, &p.Name, &p.ExcelPath, &p.SheetName, &mappingJSON,
		&p.FileSize, &p.FileMtime, &scannedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(mappingJSON), &p.ColumnMapping); err != nil {
		return nil, fmt.Errorf("decoding column mapping: %w", err)
	}
	if scannedAt.Valid {
		p.LastScannedAt = scannedAt.Time
	}
	return &p, nil
}

func requireAffected(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", core.ErrProfileNotFound, id)
	}
	return nil
}

func orEmptyMapping(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
