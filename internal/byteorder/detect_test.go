package byteorder

import (
	"bytes"
	"testing"
)

func TestDetectNative(t *testing.T) {
	raw := []byte{2, 0, 0, 10, 2, 4} // rec_len=2 (LE), rec_typ=0, rec_sub=10, CPU_TYPE=2, STDF_VER=4
	_, swap, err := Detect(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if swap {
		t.Fatal("expected no swap")
	}
}

func TestDetectSwapped(t *testing.T) {
	raw := []byte{0, 2, 0, 10, 2, 4} // rec_len=512 (LE) == 2 byte-reversed
	_, swap, err := Detect(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	if !swap {
		t.Fatal("expected swap required")
	}
}

func TestDetectInvalid(t *testing.T) {
	raw := []byte{1, 0, 5, 5}
	_, _, err := Detect(bytes.NewReader(raw))
	if err != ErrInvalidSTDF {
		t.Fatalf("expected ErrInvalidSTDF, got %v", err)
	}
}

func TestDetectWrongVersion(t *testing.T) {
	raw := []byte{2, 0, 0, 10, 2, 3} // well-formed FAR header, STDF_VER=3
	_, _, err := Detect(bytes.NewReader(raw))
	if err != ErrWrongVersion {
		t.Fatalf("expected ErrWrongVersion, got %v", err)
	}
}
