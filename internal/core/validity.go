package core

// SchemaValid reports whether a cached schema still reflects the live file.
// The check is deliberately coarse: the whole-file mtime, at seconds
// resolution, against the mtime recorded at scan time. Any edit anywhere in
// the file invalidates the whole cached structure — false invalidations are
// cheaper than undetected structural drift. A missing file is always invalid.
func SchemaValid(fs Filesystem, path string, s *Schema) bool {
	if s == nil {
		return false
	}
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mtime == s.FileMtime
}
