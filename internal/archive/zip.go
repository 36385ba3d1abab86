// Package archive packages a run's bundle into a single ZIP file.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/JonMunkholm/prfbulk/internal/core"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// ZipPackager implements core.Packager. Entries are written in bundle order
// with the bundle's generation time as their modification time, so the same
// bundle always produces the same archive.
type ZipPackager struct {
	// Level is the deflate level; zero means flate.DefaultCompression.
	Level int
}

// NewZipPackager returns a packager using the default compression level.
func NewZipPackager() *ZipPackager {
	return &ZipPackager{}
}

// Package writes every bundle file into a new archive.
func (z *ZipPackager) Package(ctx context.Context, b core.Bundle) ([]byte, error) {
	level := z.Level
	if level == 0 {
		level = flate.DefaultCompression
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	modified := b.Manifest.GeneratedAt.UTC()
	seen := make(map[string]struct{}, len(b.Files))

	for _, f := range b.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("duplicate archive entry %q", f.Name)
		}
		seen[f.Name] = struct{}{}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(f.Content); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

// Entry is one file read back from an archive.
type Entry struct {
	Name    string
	Content []byte
}

// ReadAll opens an archive produced by Package and returns its entries in
// order. Used by the CLI's inspect command and by tests.
func ReadAll(data []byte) ([]Entry, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Content: content})
	}
	return entries, nil
}
