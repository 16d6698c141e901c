package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// DefaultDocumentType is written to the first column when the record carries
// no document_type field.
const DefaultDocumentType = "Фактура"

// documentTypeField is the record key special-cased into the first column.
const documentTypeField = "document_type"

// Service is the append-slot allocator: it obtains a trustworthy schema
// (mirror → store → rescan), computes the column values for the next free
// row, invokes the external row writer, then durably advances the row
// pointer and refreshes the mirror.
//
// Appends to one profile are serialized by a per-profile lock, because the
// next_free_row read-then-write is not atomic across the mirror/store
// boundary. Appends to different profiles proceed concurrently.
type Service struct {
	store   Store
	cache   SchemaCache
	scanner Scanner
	writer  RowWriter
	fs      Filesystem
	logger  Logger
	clock   Clock

	defaultDocType string

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// NewService creates a Service with the provided dependencies.
func NewService(store Store, cache SchemaCache, scanner Scanner, writer RowWriter, fs Filesystem, logger Logger, clock Clock) *Service {
	return &Service{
		store:          store,
		cache:          cache,
		scanner:        scanner,
		writer:         writer,
		fs:             fs,
		logger:         logger,
		clock:          clock,
		defaultDocType: DefaultDocumentType,
		locks:          make(map[int64]*sync.Mutex),
	}
}

// SetDefaultDocumentType overrides the literal written to the first column
// when a record has no document_type field.
func (s *Service) SetDefaultDocumentType(v string) {
	if v != "" {
		s.defaultDocType = v
	}
}

// profileLock returns the mutex serializing appends for one profile.
func (s *Service) profileLock(profileID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[profileID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[profileID] = l
	}
	return l
}

// GetOrScanSchema returns a schema the caller can trust for the profile.
//
// Resolution order:
//  1. Mirror hit whose recorded mtime still matches the live file: use it.
//  2. Mirror hit that fails validation: drop the mirror entry and rescan —
//     the file is known to have changed, so the store's copy (written from
//     the same scan) cannot be fresher.
//  3. Mirror miss: load from the store and trust it without re-statting the
//     file. This asymmetry is intentional: store loads happen right after a
//     scan or a restart, when the store's last write was authoritative. A
//     stricter build could re-validate here at a latency cost.
//  4. Nothing stored: scan the file, save the result, populate the mirror.
//
// forceRefresh skips all caches and goes straight to a fresh scan.
func (s *Service) GetOrScanSchema(ctx context.Context, profileID int64, forceRefresh bool) (*Schema, error) {
	profile, err := s.store.GetProfile(profileID)
	if err != nil {
		return nil, err
	}

	if !forceRefresh {
		if cached, ok := s.cache.Get(profileID); ok {
			if SchemaValid(s.fs, profile.ExcelPath, cached) {
				return cached, nil
			}
			// Stale: the file changed under us. Rescan below.
			s.cache.Invalidate(profileID)
			s.logger.Debug("cached schema stale", "profile", profileID)
		} else {
			stored, err := s.store.LoadSchema(profileID)
			if err == nil {
				s.cache.Set(profileID, stored)
				return stored, nil
			}
			if !errors.Is(err, ErrSchemaNotFound) {
				return nil, err
			}
		}
	}

	return s.rescan(ctx, profile)
}

// rescan runs a full structural scan and persists the result.
func (s *Service) rescan(ctx context.Context, profile *Profile) (*Schema, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	schema, err := s.scanner.Scan(profile.ExcelPath, profile.SheetName)
	if err != nil {
		return nil, err
	}
	schema.ScannedAt = s.clock.Now()

	if err := s.store.SaveSchema(profile.ID, schema); err != nil {
		return nil, fmt.Errorf("saving schema: %w", err)
	}
	s.cache.Set(profile.ID, schema)

	s.logger.Info("schema scanned",
		"profile", profile.ID,
		"headerRow", schema.HeaderRow,
		"nextFreeRow", schema.NextFreeRow,
		"columns", len(schema.Headers))
	return schema, nil
}

// SaveSchema persists an externally produced schema (e.g. the scan run while
// creating a profile) and refreshes the mirror.
func (s *Service) SaveSchema(profileID int64, schema *Schema) error {
	if _, err := s.store.GetProfile(profileID); err != nil {
		return err
	}
	if err := s.store.SaveSchema(profileID, schema); err != nil {
		return fmt.Errorf("saving schema: %w", err)
	}
	s.cache.Set(profileID, schema)
	return nil
}

// AppendRecord writes one record into the profile's next free row and
// returns the 1-based row number it landed on.
//
// Ordering matters for crash-safety: the external writer must flush the file
// before the row pointer advances. If the write fails, the pointer is
// untouched and the same row can be retried. If the pointer update fails
// after a successful write, the call returns ErrStoreUpdate — distinctly,
// because the persisted pointer is now behind the file and a blind retry
// would duplicate the row.
func (s *Service) AppendRecord(ctx context.Context, profileID int64, record Record) (int, error) {
	lock := s.profileLock(profileID)
	lock.Lock()
	defer lock.Unlock()

	schema, err := s.GetOrScanSchema(ctx, profileID, false)
	if err != nil {
		return 0, err
	}

	profile, err := s.store.GetProfile(profileID)
	if err != nil {
		return 0, err
	}

	rowNumber := schema.NextFreeRow
	values := s.resolveValues(schema, profile.ColumnMapping, record)

	if err := s.writer.AppendAt(profile.ExcelPath, profile.SheetName, rowNumber, values, schema.RowTemplate.RowHeight); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	newNext := rowNumber + 1
	if err := s.store.AdvanceRowPointer(profileID, newNext, rowNumber); err != nil {
		// The row is on disk but the pointer is stale. Surface distinctly;
		// no automatic retry happens inside the core.
		s.logger.Error("row pointer update failed after write",
			"profile", profileID, "row", rowNumber, "err", err)
		return rowNumber, fmt.Errorf("%w: %v", ErrStoreUpdate, err)
	}

	// Bump the mirror in place; no store round trip.
	if cached, ok := s.cache.Get(profileID); ok {
		cached.NextFreeRow = newNext
		cached.LastDataRow = rowNumber
		s.cache.Set(profileID, cached)
	}

	s.logger.Info("record appended", "profile", profileID, "row", rowNumber)
	return rowNumber, nil
}

// resolveValues maps a record onto the schema's columns, in column order.
// The first column always carries the document type; every other column
// resolves the field key bound to its letter (case-insensitive), defaulting
// to the empty string when the record has no such field.
func (s *Service) resolveValues(schema *Schema, mapping map[string]string, record Record) []CellValue {
	values := make([]CellValue, 0, len(schema.Headers))
	for i, h := range schema.Headers {
		var value string
		if i == 0 {
			value = record[documentTypeField]
			if value == "" {
				value = s.defaultDocType
			}
		} else {
			if key, ok := lookupLetter(mapping, h.ColumnLetter); ok {
				value = record[key]
			}
		}
		values = append(values, CellValue{Column: h.ColumnLetter, Value: value})
	}
	return values
}

// lookupLetter finds the field key mapped to a column letter, ignoring case.
func lookupLetter(mapping map[string]string, letter string) (string, bool) {
	if key, ok := mapping[letter]; ok {
		return key, true
	}
	upper := strings.ToUpper(letter)
	if key, ok := mapping[upper]; ok {
		return key, true
	}
	for k, v := range mapping {
		if strings.EqualFold(k, letter) {
			return v, true
		}
	}
	return "", false
}
