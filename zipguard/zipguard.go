// seehuhn.de/go/escher - a library for reading and writing Escher drawing records
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package zipguard reads zip archives while checking the entries for zip
// bombs.
//
// Picture bytes sometimes arrive via zip-based package files.  Reading an
// entry through this package enforces a maximum uncompressed entry size and
// a minimum inflate ratio; a violation surfaces as
// [*SuspiciousInputError].  Callers feeding the bytes into the drawing
// layer only need to propagate that error.
package zipguard

import (
	"fmt"
	"io"
	"io/fs"

	"github.com/klauspost/compress/zip"
)

const (
	// DefaultMinInflateRatio is the default minimum ratio between
	// compressed and uncompressed bytes.  Entries compressing better than
	// 1% are rejected.
	DefaultMinInflateRatio = 0.01

	// DefaultMaxEntrySize is the default maximum uncompressed size of a
	// single entry, the 32-bit zip format maximum.
	DefaultMaxEntrySize = 0xFFFFFFFF

	// graceEntrySize is the amount of output below which the inflate
	// ratio is not checked, so that tiny entries with good compression
	// are not rejected.
	graceEntrySize = 100 * 1024
)

// SuspiciousInputError indicates that a zip entry violated the configured
// limits.
type SuspiciousInputError struct {
	// Entry is the name of the offending zip entry.
	Entry string

	// Ratio is the observed inflate ratio, or 0 if the entry size limit
	// was exceeded instead.
	Ratio float64

	// MinRatio is the configured minimum inflate ratio.
	MinRatio float64

	// MaxSize is the configured maximum entry size; it is 0 unless the
	// size limit was exceeded.
	MaxSize int64
}

func (err *SuspiciousInputError) Error() string {
	if err.MaxSize > 0 {
		return fmt.Sprintf("zip entry %q exceeds the maximum entry size of %d bytes",
			err.Entry, err.MaxSize)
	}
	return fmt.Sprintf("zip entry %q inflates suspiciously well (ratio %.5f, minimum %.5f)",
		err.Entry, err.Ratio, err.MinRatio)
}

// Reader reads a zip archive with zip-bomb checks.  The limits can be
// adjusted between NewReader and the first Open call.
type Reader struct {
	// MaxEntrySize is the maximum uncompressed size of a single entry.
	MaxEntrySize int64

	// MinInflateRatio is the minimum accepted ratio between compressed
	// and uncompressed bytes of an entry.
	MinInflateRatio float64

	zr *zip.Reader
}

// NewReader returns a guarded reader for the given archive, with the
// default limits.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return &Reader{
		MaxEntrySize:    DefaultMaxEntrySize,
		MinInflateRatio: DefaultMinInflateRatio,
		zr:              zr,
	}, nil
}

// Entries returns the entries of the archive in archive order.
func (r *Reader) Entries() []*zip.File {
	return r.zr.File
}

// Open opens the named entry for reading.  The returned reader fails with
// [*SuspiciousInputError] as soon as the entry exceeds the configured
// limits.
func (r *Reader) Open(name string) (io.ReadCloser, error) {
	for _, f := range r.zr.File {
		if f.Name == name {
			return r.OpenEntry(f)
		}
	}
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
}

// OpenEntry opens the given entry for reading with the configured limits.
func (r *Reader) OpenEntry(f *zip.File) (io.ReadCloser, error) {
	// The sizes declared in the central directory are checked first, but
	// headers can lie, so the limits are enforced again while reading.
	if int64(f.UncompressedSize64) > r.MaxEntrySize {
		return nil, &SuspiciousInputError{Entry: f.Name, MaxSize: r.MaxEntrySize}
	}

	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	return &thresholdReader{
		rc:         rc,
		entry:      f.Name,
		compressed: int64(f.CompressedSize64),
		maxSize:    r.MaxEntrySize,
		minRatio:   r.MinInflateRatio,
	}, nil
}

// ReadFile reads the complete contents of the named entry.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	rc, err := r.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// thresholdReader counts the inflated bytes of one entry and enforces the
// limits while reading.
type thresholdReader struct {
	rc         io.ReadCloser
	entry      string
	compressed int64
	maxSize    int64
	minRatio   float64
	written    int64
}

func (t *thresholdReader) Read(p []byte) (int, error) {
	n, err := t.rc.Read(p)
	t.written += int64(n)

	if t.written > t.maxSize {
		return n, &SuspiciousInputError{Entry: t.entry, MaxSize: t.maxSize}
	}
	if t.written > graceEntrySize {
		ratio := float64(t.compressed) / float64(t.written)
		if ratio < t.minRatio {
			return n, &SuspiciousInputError{
				Entry:    t.entry,
				Ratio:    ratio,
				MinRatio: t.minRatio,
			}
		}
	}
	return n, err
}

func (t *thresholdReader) Close() error {
	return t.rc.Close()
}
