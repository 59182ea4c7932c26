package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"sort"
)

// ZIPExporter bundles multiple rendered artifacts into one archive.
type ZIPExporter struct{}

// NewZIPExporter builds a ZIP exporter.
func NewZIPExporter() *ZIPExporter {
	return &ZIPExporter{}
}

// Render writes each named entry into a ZIP archive. Entries are written in
// lexical order so output bytes are stable for identical inputs.
func (e *ZIPExporter) Render(entries map[string][]byte) ([]byte, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("zip requires at least one entry")
	}
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, name := range names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, fmt.Errorf("create zip entry %s: %w", name, err)
		}
		if _, err := w.Write(entries[name]); err != nil {
			return nil, fmt.Errorf("write zip entry %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize zip: %w", err)
	}
	return buf.Bytes(), nil
}
