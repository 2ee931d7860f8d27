package stdfrec

import "math"

// Cursor is a sequential field reader over a single record's raw payload.
// Fields in STDF records are optional tails: once the payload is exhausted,
// every further read silently yields the type's zero value instead of
// erroring — this is normal for STDF, not corruption, because writers
// commonly omit trailing optional fields.
type Cursor struct {
	buf      []byte
	pos      int
	needSwap bool
}

// NewCursor wraps raw in a Cursor. needSwap must be the engine's
// process-wide byte-order decision, threaded explicitly rather than read
// from shared mutable state.
func NewCursor(raw []byte, needSwap bool) *Cursor {
	return &Cursor{buf: raw, needSwap: needSwap}
}

func (c *Cursor) remaining() int {
	return len(c.buf) - c.pos
}

func (c *Cursor) take(n int) []byte {
	if c.remaining() < n {
		c.pos = len(c.buf)
		return nil
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b
}

// U1 reads an unsigned 1-byte integer.
func (c *Cursor) U1() uint8 {
	b := c.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// I1 reads a signed 1-byte integer.
func (c *Cursor) I1() int8 {
	return int8(c.U1())
}

// U2 reads an unsigned 2-byte integer, swapping bytes if needSwap is set.
func (c *Cursor) U2() uint16 {
	b := c.take(2)
	if b == nil {
		return 0
	}
	if c.needSwap {
		return uint16(b[1]) | uint16(b[0])<<8
	}
	return uint16(b[0]) | uint16(b[1])<<8
}

// I2 reads a signed 2-byte integer.
func (c *Cursor) I2() int16 {
	return int16(c.U2())
}

// U4 reads an unsigned 4-byte integer, swapping bytes if needSwap is set.
func (c *Cursor) U4() uint32 {
	b := c.take(4)
	if b == nil {
		return 0
	}
	if c.needSwap {
		return uint32(b[3]) | uint32(b[2])<<8 | uint32(b[1])<<16 | uint32(b[0])<<24
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// I4 reads a signed 4-byte integer.
func (c *Cursor) I4() int32 {
	return int32(c.U4())
}

// R4 reads an IEEE-754 single-precision float.
func (c *Cursor) R4() float32 {
	return math.Float32frombits(c.U4())
}

// R8 reads an IEEE-754 double-precision float.
func (c *Cursor) R8() float64 {
	lo := uint64(c.U4())
	hi := uint64(c.U4())
	// STDF stores R8 as two consecutive 4-byte words in the record's
	// overall byte order; the word order itself is always low-word-first.
	return math.Float64frombits(lo | hi<<32)
}

// B1 reads a one-byte bit-encoded field (e.g. PART_FLG, TEST_FLG).
func (c *Cursor) B1() byte {
	return c.U1()
}

// Cn reads a length-prefixed (1-byte count) ASCII string.
func (c *Cursor) Cn() string {
	n := int(c.U1())
	b := c.take(n)
	return string(b)
}

// Bn reads a length-prefixed (1-byte count) byte array.
func (c *Cursor) Bn() []byte {
	n := int(c.U1())
	b := c.take(n)
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// Dn reads a bit-encoded array: a 2-byte bit count followed by
// ceil(bits/8) data bytes.
func (c *Cursor) Dn() []byte {
	bits := int(c.U2())
	n := (bits + 7) / 8
	b := c.take(n)
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// SkipU2Array skips a kxU2 array of the given element count.
func (c *Cursor) SkipU2Array(count int) {
	c.take(count * 2)
}

// SkipR4Array skips a kxR4 array of the given element count.
func (c *Cursor) SkipR4Array(count int) {
	c.take(count * 4)
}

// SkipNibbleArray skips a kxN1 nibble-packed array: two elements per byte,
// rounded up.
func (c *Cursor) SkipNibbleArray(count int) {
	c.take((count + 1) / 2)
}
