package core

// Store provides durable, profile-keyed persistence for schemas and the
// append-only change log. All methods are implemented with appropriate
// transaction handling; AdvanceRowPointer in particular is a single
// transaction so the pointer and its audit entry never diverge.
type Store interface {
	// Profile operations

	// CreateProfile inserts a new profile and returns its id.
	CreateProfile(p *Profile) (int64, error)

	// GetProfile returns a profile by id, or ErrProfileNotFound.
	GetProfile(id int64) (*Profile, error)

	// ListProfiles returns all profiles ordered by name.
	ListProfiles() ([]*Profile, error)

	// UpdateProfile replaces the name, path, sheet and mapping of an
	// existing profile.
	UpdateProfile(p *Profile) error

	// DeleteProfile removes a profile. Its schema, column formats, row
	// template and change log go with it (cascading delete).
	DeleteProfile(id int64) error

	// Schema operations

	// SaveSchema upserts the full schema for a profile with replace
	// semantics: old column-format rows are deleted and reinserted. It also
	// stamps the owning profile's file signature and last-scanned time.
	SaveSchema(profileID int64, s *Schema) error

	// LoadSchema returns the current schema for a profile, or
	// ErrSchemaNotFound if the profile has never been scanned.
	LoadSchema(profileID int64) (*Schema, error)

	// AdvanceRowPointer atomically sets next_free_row = newNextFreeRow and
	// last_data_row = newNextFreeRow-1, and appends one change-log record,
	// all in one transaction. Headers and columns are not rewritten.
	AdvanceRowPointer(profileID int64, newNextFreeRow, oldNextFreeRow int) error

	// ListChanges returns the most recent row-pointer changes for a
	// profile, newest first.
	ListChanges(profileID int64, limit int) ([]*ChangeRecord, error)

	// Close closes the underlying connection.
	Close() error
}

// SchemaCache is the process-wide in-memory mirror of the store's schemas.
// It is injectable so tests can substitute an isolated instance. No
// persistence: it is rebuilt lazily from the Store.
type SchemaCache interface {
	// Get returns the cached schema for a profile, if any.
	Get(profileID int64) (*Schema, bool)

	// Set stores a schema for a profile, replacing any previous entry.
	Set(profileID int64, s *Schema)

	// Invalidate drops the entry for one profile.
	Invalidate(profileID int64)

	// ClearAll drops every entry.
	ClearAll()
}
