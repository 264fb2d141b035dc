// Package archive opens zip-family containers (OOXML packages, Keynote archives)
// and reads their entries by name.
package archive

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
)

var (
	// ErrArchive is returned when a file is not a readable zip container.
	ErrArchive = errors.New("not a valid zip archive")
	// ErrEntryRead is returned when an entry is missing or cannot be decompressed.
	ErrEntryRead = errors.New("archive entry unreadable")
)

// Reader is an open archive. It holds a file descriptor until Close is called.
type Reader struct {
	rc    *zip.ReadCloser
	files map[string]*zip.File
	names []string
}

// Open opens the archive at path. The caller must Close the returned Reader.
func Open(path string) (*Reader, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w: %v", path, ErrArchive, err)
	}
	r := &Reader{
		rc:    rc,
		files: make(map[string]*zip.File, len(rc.File)),
		names: make([]string, 0, len(rc.File)),
	}
	for _, f := range rc.File {
		if f.FileInfo().IsDir() {
			continue
		}
		// First entry wins when an archive repeats a name.
		if _, dup := r.files[f.Name]; dup {
			continue
		}
		r.files[f.Name] = f
		r.names = append(r.names, f.Name)
	}
	return r, nil
}

// Names returns entry names in archive order. Directory entries are omitted.
func (r *Reader) Names() []string {
	return append([]string(nil), r.names...)
}

// Has reports whether the archive contains an entry with the given name.
func (r *Reader) Has(name string) bool {
	_, ok := r.files[name]
	return ok
}

// ReadEntry returns the decompressed bytes of the named entry.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	f, ok := r.files[name]
	if !ok {
		return nil, fmt.Errorf("read %s: %w: not found", name, ErrEntryRead)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", name, ErrEntryRead, err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	// The checksum is verified when the reader hits EOF.
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("read %s: %w: %v", name, ErrEntryRead, err)
	}
	return buf.Bytes(), nil
}

// ReadXMLEntry reads the named entry and unmarshals it into v.
func (r *Reader) ReadXMLEntry(name string, v any) error {
	data, err := r.ReadEntry(name)
	if err != nil {
		return err
	}
	if err := xml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.rc == nil {
		return nil
	}
	err := r.rc.Close()
	r.rc = nil
	return err
}
