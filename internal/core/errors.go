package core

import "errors"

// Failure taxonomy for scanning, caching and appending. Callers branch on
// these with errors.Is; UserMessage turns any of them into a short
// human-readable string for the UI.
var (
	// ErrNotFound: the spreadsheet path or the sheet does not exist.
	ErrNotFound = errors.New("file or sheet not found")

	// ErrParse: the workbook exists but could not be read.
	ErrParse = errors.New("workbook is unreadable")

	// ErrEmptySheet: no header row could be detected within scan bounds.
	ErrEmptySheet = errors.New("no headers found in sheet")

	// ErrProfileNotFound: no profile with the given id.
	ErrProfileNotFound = errors.New("profile not found")

	// ErrSchemaNotFound: the profile exists but has never been scanned.
	ErrSchemaNotFound = errors.New("no schema stored for profile")

	// ErrWriteFailed: the external row write failed (locked file, permission,
	// disk). No pointer advance happened; the same row is safe to retry.
	ErrWriteFailed = errors.New("could not write to spreadsheet")

	// ErrStoreUpdate: the row was physically written but persisting the new
	// row pointer failed. Surfaced distinctly because a naive retry would
	// duplicate the row.
	ErrStoreUpdate = errors.New("row written but pointer update failed")
)

// UserMessage resolves an error to a short operator-facing message. Raw
// low-level errors are never shown unexplained.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrWriteFailed):
		return "Cannot write to the spreadsheet. If it is open in another application, close it and try again."
	case errors.Is(err, ErrStoreUpdate):
		return "The row was written but its position could not be saved. Do not retry blindly: the next append may duplicate this row. Rescan the profile first."
	case errors.Is(err, ErrNotFound):
		return "The spreadsheet or sheet was not found. Check the profile's file path."
	case errors.Is(err, ErrParse):
		return "The spreadsheet could not be read. It may be corrupt or not an .xlsx file."
	case errors.Is(err, ErrEmptySheet):
		return "No header row was found in the sheet."
	case errors.Is(err, ErrProfileNotFound):
		return "The profile does not exist."
	case errors.Is(err, ErrSchemaNotFound):
		return "The profile has not been scanned yet."
	default:
		return "Something went wrong: " + err.Error()
	}
}
