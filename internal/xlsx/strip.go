package xlsx

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Some spreadsheet producers embed drawing and media parts that round-trip
// corrupt: after a save the references survive but the payloads do not, and
// the next open reports a damaged file. Stripping them entirely keeps the
// workbook healthy; the invoice tables carry no meaningful imagery.
var (
	contentTypeOverrideRe = regexp.MustCompile(`<Override[^>]*PartName="/xl/(?:drawings|media)/[^"]*"[^>]*/>`)
	drawingRelRe          = regexp.MustCompile(`<Relationship[^>]*Target="[^"]*(?:drawings|media)/[^"]*"[^>]*/>`)
	drawingRefRe          = regexp.MustCompile(`<drawing[^>]*/>`)
)

// StripDrawings rewrites the xlsx zip without its drawing and media parts,
// and scrubs the references those parts leave behind. The rewrite goes to a
// temp file in the same directory and renames over the original.
func StripDrawings(path string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".strip-*.xlsx")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	zw := zip.NewWriter(tmp)
	for _, entry := range r.File {
		if isDrawingPart(entry.Name) {
			continue
		}

		data, err := readZipEntry(entry)
		if err != nil {
			zw.Close()
			tmp.Close()
			return fmt.Errorf("reading %s: %w", entry.Name, err)
		}

		data = scrubReferences(entry.Name, data)

		w, err := zw.Create(entry.Name)
		if err != nil {
			zw.Close()
			tmp.Close()
			return fmt.Errorf("writing %s: %w", entry.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			tmp.Close()
			return fmt.Errorf("writing %s: %w", entry.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("finishing zip: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	// zip.OpenReader keeps the original open; release it before the rename.
	r.Close()

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

func isDrawingPart(name string) bool {
	return strings.HasPrefix(name, "xl/drawings/") || strings.HasPrefix(name, "xl/media/")
}

// scrubReferences removes the content-type, relationship and worksheet
// references pointing at the removed parts.
func scrubReferences(name string, data []byte) []byte {
	switch {
	case name == "[Content_Types].xml":
		return contentTypeOverrideRe.ReplaceAll(data, nil)
	case strings.HasPrefix(name, "xl/worksheets/_rels/"):
		return drawingRelRe.ReplaceAll(data, nil)
	case strings.HasPrefix(name, "xl/worksheets/") && strings.HasSuffix(name, ".xml"):
		return drawingRefRe.ReplaceAll(data, nil)
	default:
		return data
	}
}

func readZipEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
