// Package byteorder inspects the first record header of an STDF file and
// decides whether the file's multi-byte integers need swapping to match
// host order.
package byteorder

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Header is the raw 4-byte STDF record header.
type Header struct {
	RecLen uint16
	RecTyp uint8
	RecSub uint8
}

// ErrInvalidSTDF is returned when the first record is not a recognizable
// FAR (rec_typ=0, rec_sub=10, rec_len∈{2,512}).
var ErrInvalidSTDF = fmt.Errorf("first record is not a valid FAR header")

// ErrWrongVersion is returned when the first record's FAR payload declares
// an STDF_VER other than 4.
var ErrWrongVersion = fmt.Errorf("FAR.STDF_VER is not 4")

// Detect reads the first 4-byte header and 2-byte FAR payload from r and
// decides whether the host needs to byte-swap the file's multi-byte
// integers. It returns the FAR header with RecLen already normalized to
// host order (always 2) and the needSwap decision.
//
// A conforming STDF V4 file's first record is FAR (type 0, subtype 10). A
// native-order file reports rec_len=2 (FAR's payload is CPU_TYPE+STDF_VER,
// two bytes); a swapped file reports rec_len=512 — 2 with its bytes
// reversed. FAR.STDF_VER must be 4; anything else is rejected even though
// the header itself is well formed.
func Detect(r io.Reader) (hdr Header, needSwap bool, err error) {
	var raw [4]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return Header{}, false, err
	}

	recLenNative := binary.LittleEndian.Uint16(raw[0:2])
	recTyp := raw[2]
	recSub := raw[3]

	if recTyp != 0 || recSub != 10 {
		return Header{}, false, ErrInvalidSTDF
	}

	var needsSwap bool
	switch recLenNative {
	case 2:
		needsSwap = false
	case 512:
		// 512 = 0x0200 is 2 = 0x0002 with its bytes reversed.
		needsSwap = true
	default:
		return Header{}, false, ErrInvalidSTDF
	}

	var payload [2]byte
	if _, err := io.ReadFull(r, payload[:]); err != nil {
		return Header{}, false, err
	}
	stdfVer := payload[1]
	if stdfVer != 4 {
		return Header{}, false, ErrWrongVersion
	}

	return Header{RecLen: 2, RecTyp: recTyp, RecSub: recSub}, needsSwap, nil
}

// HumanReadable derives the logical byte-order name the engine records into
// File_Info.BYTE_ORD: the XOR of "host is little-endian" and "file needs a
// swap" tells us whether the file's stated order is little- or big-endian.
func HumanReadable(needSwap bool) string {
	hostLittle := hostIsLittleEndian()
	if hostLittle != needSwap {
		return "Little-endian"
	}
	return "Big-endian"
}

func hostIsLittleEndian() bool {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	return buf[0] == 1
}
