package core

import (
	"os"
	"time"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// FileInfo is the filesystem signature the validity check compares:
// byte size and modification time truncated to whole seconds.
type FileInfo struct {
	Size  int64
	Mtime int64
}

// Filesystem abstracts the stat call used by the validity oracle and the
// scanner's file-signature step, so tests can run without real files.
type Filesystem interface {
	// Stat returns the live signature of a file, or os.ErrNotExist-wrapping
	// error when the path is gone.
	Stat(path string) (FileInfo, error)
}

// OSFilesystem stats the real filesystem.
type OSFilesystem struct{}

func (OSFilesystem) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{Size: info.Size(), Mtime: info.ModTime().Unix()}, nil
}
