package testutil

import (
	"os"
	"sync"

	"sheetfeed/internal/core"
)

// StubFilesystem serves canned stat results keyed by path. Paths with no
// entry report os.ErrNotExist. Safe for concurrent use.
type StubFilesystem struct {
	mu    sync.Mutex
	files map[string]core.FileInfo
}

func NewStubFilesystem() *StubFilesystem {
	return &StubFilesystem{files: make(map[string]core.FileInfo)}
}

// SetFile registers or replaces the stat result for a path.
func (fs *StubFilesystem) SetFile(path string, size, mtime int64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.files[path] = core.FileInfo{Size: size, Mtime: mtime}
}

// Touch bumps the recorded mtime for a path, simulating an external edit.
func (fs *StubFilesystem) Touch(path string, mtime int64) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	info := fs.files[path]
	info.Mtime = mtime
	fs.files[path] = info
}

// Remove deletes a path, so subsequent stats fail.
func (fs *StubFilesystem) Remove(path string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	delete(fs.files, path)
}

func (fs *StubFilesystem) Stat(path string) (core.FileInfo, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	info, ok := fs.files[path]
	if !ok {
		return core.FileInfo{}, os.ErrNotExist
	}
	return info, nil
}
