package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		InstallID: "install-abc",
		BaseDir:   "/home/user/.local/share/sheetfeed",
		LogDir:    "/home/user/.local/share/sheetfeed/log",
		Database:  DatabaseConfig{Type: "sqlite", DataDir: "/home/user/.local/share/sheetfeed/data"},
		Append:    AppendConfig{DefaultDocumentType: "Фактура"},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.InstallID != original.InstallID {
		t.Errorf("InstallID = %q, want %q", got.InstallID, original.InstallID)
	}
	if got.BaseDir != original.BaseDir {
		t.Errorf("BaseDir = %q, want %q", got.BaseDir, original.BaseDir)
	}
	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want %q", got.Database.Type, "sqlite")
	}
	if got.Database.DataDir != original.Database.DataDir {
		t.Errorf("Database.DataDir = %q, want %q", got.Database.DataDir, original.Database.DataDir)
	}
	if got.Append.DefaultDocumentType != "Фактура" {
		t.Errorf("Append.DefaultDocumentType = %q, want %q", got.Append.DefaultDocumentType, "Фактура")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("install-1", "/data/sheetfeed")

	if cfg.InstallID != "install-1" {
		t.Errorf("InstallID = %q, want %q", cfg.InstallID, "install-1")
	}
	if cfg.BaseDir != "/data/sheetfeed" {
		t.Errorf("BaseDir = %q, want %q", cfg.BaseDir, "/data/sheetfeed")
	}
	if cfg.LogDir != filepath.Join("/data/sheetfeed", "log") {
		t.Errorf("LogDir = %q, want default under base dir", cfg.LogDir)
	}
	if cfg.Database.Type != "sqlite" {
		t.Errorf("Database.Type = %q, want sqlite", cfg.Database.Type)
	}
	if cfg.Database.DataDir != filepath.Join("/data/sheetfeed", "data") {
		t.Errorf("Database.DataDir = %q, want default under base dir", cfg.Database.DataDir)
	}
}

func TestReadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetfeed.toml")

	content := `
install_id = "install-xyz"
base_dir = "/data/sheetfeed"
log_dir = "/data/sheetfeed/log"

[database]
type = "memory"

[append]
default_document_type = "Фискална сметка"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}

	if cfg.InstallID != "install-xyz" {
		t.Errorf("InstallID = %q, want %q", cfg.InstallID, "install-xyz")
	}
	if cfg.Database.Type != "memory" {
		t.Errorf("Database.Type = %q, want memory", cfg.Database.Type)
	}
	if cfg.Append.DefaultDocumentType != "Фискална сметка" {
		t.Errorf("Append.DefaultDocumentType = %q", cfg.Append.DefaultDocumentType)
	}
}

func TestReadFromFile_Missing(t *testing.T) {
	if _, err := ReadFromFile("/nonexistent/sheetfeed.toml"); err == nil {
		t.Error("ReadFromFile() expected error for missing file")
	}
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sheetfeed.toml")
	cfg := NewConfig("install-1", dir)

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if got.InstallID != "install-1" {
		t.Errorf("InstallID = %q, want %q", got.InstallID, "install-1")
	}

	// A second init must not overwrite an existing config.
	if err := Init(path, NewConfig("install-2", dir)); err == nil {
		t.Error("Init() expected error for existing config")
	}
}
