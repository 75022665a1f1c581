package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
)

var (
	ErrArchiveCorrupt = errors.New("archive is corrupt or not a zip file")
	ErrEntryNotFound  = errors.New("entry not found in archive")
	ErrTooManyEntries = errors.New("archive exceeds entry count cap")
	ErrTooLarge       = errors.New("archive exceeds uncompressed size cap")
)

// Limits bounds what an archive may contain before extraction begins.
type Limits struct {
	MaxEntries          int
	MaxUncompressedSize int64
}

func DefaultLimits() Limits {
	return Limits{
		MaxEntries:          1000,
		MaxUncompressedSize: 200 << 20,
	}
}

// Archive is a read-only view over the entries of an in-memory zip.
type Archive struct {
	entries map[string]*zip.File
	paths   []string
	limits  Limits
}

// Open parses raw zip bytes and indexes the entries. Declared uncompressed
// sizes are checked against the limits up front; since headers can lie,
// ReadEntry re-enforces the budget on the actual decompressed stream.
func Open(data []byte, limits Limits) (*Archive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveCorrupt, err)
	}

	if limits.MaxEntries > 0 && len(r.File) > limits.MaxEntries {
		return nil, fmt.Errorf("%w: %d entries", ErrTooManyEntries, len(r.File))
	}

	var total int64
	a := &Archive{entries: make(map[string]*zip.File, len(r.File)), limits: limits}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		total += int64(f.UncompressedSize64)
		if limits.MaxUncompressedSize > 0 && total > limits.MaxUncompressedSize {
			return nil, fmt.Errorf("%w: over %d bytes uncompressed", ErrTooLarge, limits.MaxUncompressedSize)
		}
		name := normalize(f.Name)
		a.entries[name] = f
		a.paths = append(a.paths, name)
	}
	sort.Strings(a.paths)
	return a, nil
}

// ReadEntry returns the full content of the named entry. The read is bounded
// by the entry's declared size (itself capped by the archive limit), so an
// entry whose header understates its real size stops decompressing at the
// budget instead of ballooning in memory.
func (a *Archive) ReadEntry(path string) ([]byte, error) {
	f, ok := a.entries[normalize(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, path)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveCorrupt, err)
	}
	defer rc.Close()

	budget := int64(f.UncompressedSize64)
	if a.limits.MaxUncompressedSize > 0 && budget > a.limits.MaxUncompressedSize {
		budget = a.limits.MaxUncompressedSize
	}
	data, err := io.ReadAll(io.LimitReader(rc, budget+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveCorrupt, err)
	}
	if int64(len(data)) > budget {
		return nil, fmt.Errorf("%w: entry %s exceeds its declared size", ErrTooLarge, path)
	}
	return data, nil
}

// HasEntry reports whether the named entry exists.
func (a *Archive) HasEntry(path string) bool {
	_, ok := a.entries[normalize(path)]
	return ok
}

// ListEntriesUnderPrefix returns the paths of all file entries below the
// prefix, in lexicographic order. Stage folders use a two-digit numeric
// prefix, so lexicographic order is stage order.
func (a *Archive) ListEntriesUnderPrefix(prefix string) []string {
	prefix = normalize(prefix)
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	var out []string
	for _, p := range a.paths {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}

func normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(p, "/")
}
