package filesource

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestPlainReadSkip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.stdf")
	if err := os.WriteFile(path, []byte("abcdefghij"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	buf := make([]byte, 2)
	if err := s.Read(buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "ab" {
		t.Fatalf("got %q", buf)
	}
	if err := s.Skip(3); err != nil {
		t.Fatal(err)
	}
	if err := s.Read(buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "fg" {
		t.Fatalf("got %q", buf)
	}

	if err := s.Reopen(); err != nil {
		t.Fatal(err)
	}
	if err := s.Read(buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "ab" {
		t.Fatalf("reopen did not rewind, got %q", buf)
	}
}

func TestGzipSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.stdf.gz")

	payload := bytes.Repeat([]byte("x"), 1000)
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	gw.Write(payload)
	gw.Close()

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	sz, err := Size(path)
	if err != nil {
		t.Fatal(err)
	}
	if sz != int64(len(payload)) {
		t.Fatalf("got size %d, want %d", sz, len(payload))
	}

	// Sanity check the trailer format directly.
	trailer := buf.Bytes()[len(buf.Bytes())-4:]
	if binary.LittleEndian.Uint32(trailer) != uint32(len(payload)) {
		t.Fatal("trailer mismatch")
	}
}

func TestSizeMissingFile(t *testing.T) {
	sz, err := Size("/nonexistent/path.stdf")
	if err != nil {
		t.Fatal(err)
	}
	if sz != 0 {
		t.Fatalf("expected 0 for unopened file, got %d", sz)
	}
}
