package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"sheetfeed/internal/cache"
	"sheetfeed/internal/config"
	"sheetfeed/internal/core"
	"sheetfeed/internal/database"
	"sheetfeed/internal/scanner"
	"sheetfeed/internal/xlsx"
)

// App is the application layer between the CLI and the core Service.
// It constructs all dependencies from config, exposes high-level operations,
// and manages the store lifecycle on Close.
type App struct {
	cfg     *config.Config
	store   core.Store
	cache   *cache.MemoryCache
	service *core.Service
	logFile *os.File
}

// New creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Scan", "Append").
// The caller must call Close when done.
func New(cfg *config.Config, operation string) (*App, error) {
	store, err := database.NewStoreFromConfig(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("creating store: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z") + "-" + operation
	logger, logFile, err := newLogger(cfg.LogDir, opID)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	log := &slogAdapter{l: logger}
	fs := core.OSFilesystem{}
	mirror := cache.New()
	sc := scanner.New(xlsx.NewReader(), fs, log)
	writer := xlsx.NewWriter(log)

	svc := core.NewService(store, mirror, sc, writer, fs, log, core.RealClock{})
	svc.SetDefaultDocumentType(cfg.Append.DefaultDocumentType)

	return &App{
		cfg:     cfg,
		store:   store,
		cache:   mirror,
		service: svc,
		logFile: logFile,
	}, nil
}

// CreateProfile registers a new profile and runs the initial scan so the
// profile is ready to append into immediately.
func (a *App) CreateProfile(ctx context.Context, name, excelPath, sheetName string, mapping map[string]string) (*core.Profile, error) {
	p := &core.Profile{
		Name:          name,
		ExcelPath:     excelPath,
		SheetName:     sheetName,
		ColumnMapping: mapping,
	}
	id, err := a.store.CreateProfile(p)
	if err != nil {
		return nil, err
	}

	if _, err := a.service.GetOrScanSchema(ctx, id, true); err != nil {
		return nil, fmt.Errorf("initial scan: %w", err)
	}
	return a.store.GetProfile(id)
}

// ListProfiles returns all profiles ordered by name.
func (a *App) ListProfiles() ([]*core.Profile, error) {
	return a.store.ListProfiles()
}

// DeleteProfile removes a profile and everything stored under it.
func (a *App) DeleteProfile(id int64) error {
	if err := a.store.DeleteProfile(id); err != nil {
		return err
	}
	a.cache.Invalidate(id)
	return nil
}

// Scan returns the profile's schema, scanning the file if needed.
// force bypasses both the mirror and the store.
func (a *App) Scan(ctx context.Context, profileID int64, force bool) (*core.Schema, error) {
	return a.service.GetOrScanSchema(ctx, profileID, force)
}

// Append writes one record into the profile's next free row and returns the
// row number it landed on.
func (a *App) Append(ctx context.Context, profileID int64, record core.Record) (int, error) {
	return a.service.AppendRecord(ctx, profileID, record)
}

// Changes returns the most recent row-pointer changes for a profile.
func (a *App) Changes(profileID int64, limit int) ([]*core.ChangeRecord, error) {
	return a.store.ListChanges(profileID, limit)
}

// Close releases the store and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.store.Close(); err != nil {
		firstErr = fmt.Errorf("closing store: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
