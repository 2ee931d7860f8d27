// Package filesource opens a plain, gzip, or bzip2 STDF file and supports
// sequential reads with skip, reopen-to-rewind, and a best-effort size
// query used to normalize progress reporting.
package filesource

import (
	"compress/bzip2"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// Kind identifies the compression wrapper around the underlying file.
type Kind int

const (
	KindPlain Kind = iota
	KindGzip
	KindBzip2
)

// DetectKind classifies a path by extension.
func DetectKind(path string) Kind {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return KindGzip
	case strings.HasSuffix(path, ".bz2"):
		return KindBzip2
	default:
		return KindPlain
	}
}

// Source is a sequential byte reader over an STDF file, transparently
// decompressing gzip/bzip2 input. It is not safe for concurrent use: the
// reader goroutine is its only caller.
type Source struct {
	path string
	kind Kind

	file   *os.File
	reader io.Reader
	closer io.Closer // non-nil only for wrappers that need explicit Close (gzip)
}

// Open opens path for sequential reading, wrapping it in a decompressor if
// its extension indicates gzip or bzip2.
func Open(path string) (*Source, error) {
	s := &Source{path: path, kind: DetectKind(path)}
	if err := s.open(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Source) open() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open %q: %w", s.path, err)
	}
	s.file = f

	switch s.kind {
	case KindGzip:
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("open gzip %q: %w", s.path, err)
		}
		s.reader = gz
		s.closer = gz
	case KindBzip2:
		s.reader = bzip2.NewReader(f)
		s.closer = nil
	default:
		s.reader = f
		s.closer = nil
	}
	return nil
}

// Read fills buf completely or returns an error, matching io.ReadFull
// semantics — the reader thread treats any short read as end of stream.
func (s *Source) Read(buf []byte) error {
	_, err := io.ReadFull(s.reader, buf)
	return err
}

// Skip discards n bytes without allocating a buffer for them, using
// io.CopyN against io.Discard. Compressed sources still have to inflate the
// skipped bytes — there is no way to seek within them.
func (s *Source) Skip(n uint16) error {
	if n == 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, s.reader, int64(n))
	return err
}

// SkipN discards n bytes of arbitrary size, used by the parametric reader
// to seek forward to an indexed offset. Negative n is a no-op.
func (s *Source) SkipN(n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := io.CopyN(io.Discard, s.reader, n)
	return err
}

// ReadN reads exactly n bytes, returning io.ErrUnexpectedEOF on a short read.
func (s *Source) ReadN(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(s.reader, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Reopen rewinds the source to its start by closing and reopening the file
// (and its decompressor, for compressed files, since gzip.Reader and the
// stdlib bzip2 reader do not support seeking). Plain files take the same
// close-and-reopen path.
func (s *Source) Reopen() error {
	s.closeCurrent()
	return s.open()
}

// Close releases all resources held by the source.
func (s *Source) Close() error {
	return s.closeCurrent()
}

func (s *Source) closeCurrent() error {
	var err error
	if s.closer != nil {
		err = s.closer.Close()
	}
	if s.file != nil {
		if cerr := s.file.Close(); err == nil {
			err = cerr
		}
	}
	s.file = nil
	s.reader = nil
	s.closer = nil
	return err
}

// Size returns a best-effort byte count for progress normalization.
// For .gz files it reads the 4-byte little-endian ISIZE trailer (the
// uncompressed size modulo 2^32); for everything else it returns the
// file's size on disk. Per the documented latent bug in the original tool,
// an unopened (nonexistent) file reports size 0 rather than erroring — the
// caller is expected to have already validated the path via Open.
func Size(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, nil
	}
	defer f.Close()

	if DetectKind(path) == KindGzip {
		info, err := f.Stat()
		if err != nil || info.Size() < 4 {
			return 0, err
		}
		if _, err := f.Seek(-4, io.SeekEnd); err != nil {
			return 0, err
		}
		var trailer [4]byte
		if _, err := io.ReadFull(f, trailer[:]); err != nil {
			return 0, err
		}
		return int64(binary.LittleEndian.Uint32(trailer[:])), nil
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
