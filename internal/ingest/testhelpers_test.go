package ingest

import (
	"database/sql"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	internaldb "github.com/eargollo/stdfload/internal/db"
)

// mustOpenDB opens a temp-file SQLite database with the full schema applied.
func mustOpenDB(tb testing.TB) *sql.DB {
	tb.Helper()
	dbPath := filepath.Join(tb.TempDir(), "test.db")
	db, err := internaldb.Open(dbPath)
	if err != nil {
		tb.Fatalf("open test DB: %v", err)
	}
	if err := internaldb.RunMigrations(db); err != nil {
		db.Close()
		tb.Fatalf("run migrations: %v", err)
	}
	tb.Cleanup(func() { db.Close() })
	return db
}

// recordBuilder assembles a little-endian STDF byte stream for tests:
// each call to rec appends a 4-byte header (len, typ, sub) plus payload.
type recordBuilder struct {
	buf []byte
}

func (b *recordBuilder) rec(typ, sub byte, payload []byte) *recordBuilder {
	var hdr [4]byte
	binary.LittleEndian.PutUint16(hdr[0:2], uint16(len(payload)))
	hdr[2] = typ
	hdr[3] = sub
	b.buf = append(b.buf, hdr[:]...)
	b.buf = append(b.buf, payload...)
	return b
}

func (b *recordBuilder) bytes() []byte { return b.buf }

func u1(v byte) []byte { return []byte{v} }

func u2le(v uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return buf
}

func u4le(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func i2le(v int16) []byte { return u2le(uint16(v)) }

func cn(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

// Wire rec_typ/rec_sub pairs for the record codes test fixtures build —
// mirrors stdfrec.MakeCode's encoding (rec_typ<<8 | rec_sub).
const (
	typFAR, subFAR = 0, 10
	typMIR, subMIR = 1, 10
	typPCR, subPCR = 1, 30
	typHBR, subHBR = 1, 40
	typSBR, subSBR = 1, 50
	typPMR, subPMR = 1, 60
	typWIR, subWIR = 2, 10
	typWRR, subWRR = 2, 20
	typWCR, subWCR = 2, 30
	typPIR, subPIR = 5, 10
	typPRR, subPRR = 5, 20
	typTSR, subTSR = 10, 30
	typPTR, subPTR = 15, 10
	typMPR, subMPR = 15, 15
	typFTR, subFTR = 15, 20
)

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// farPayload builds a valid FAR payload: CPU_TYPE=2 (generic), STDF_VER=4.
func farPayload() []byte {
	return []byte{2, 4}
}

// mirPayload builds a minimal MIR payload matching DecodeMir's field order.
func mirPayload(setupT, startT uint32) []byte {
	return concat(
		u4le(setupT), u4le(startT),
		u1(1),          // STAT_NUM
		u1(' '), u1(' '), u1(' '), // MODE_COD, RTST_COD, PROT_COD
		u2le(65535),    // BURN_TIM = missing
		u1(' '),        // CMOD_COD
	)
}

func pirPayload(head, site byte) []byte {
	return concat(u1(head), u1(site))
}

// prrPayload builds a PRR payload matching DecodePrr's field order.
func prrPayload(head, site, partFlg byte, numTest, hbin, sbin uint16, x, y int16, testT uint32, partID string) []byte {
	return concat(
		u1(head), u1(site), u1(partFlg),
		u2le(numTest), u2le(hbin), u2le(sbin),
		i2le(x), i2le(y),
		u4le(testT), cn(partID),
	)
}

// ptrPayload builds a PTR payload matching DecodePtr's field order.
func ptrPayload(testNum uint32, head, site, testFlg byte, result float32, testTxt string) []byte {
	buf := concat(u4le(testNum), u1(head), u1(site), u1(testFlg))
	buf = append(buf, 0)          // PARM_FLG
	buf = append(buf, f4le(result)...)
	buf = append(buf, cn(testTxt)...)
	buf = append(buf, cn("")...)  // ALARM_ID
	buf = append(buf, 0)          // OPT_FLAG
	buf = append(buf, 0, 0, 0)    // RES_SCAL, LLM_SCAL, HLM_SCAL
	buf = append(buf, f4le(0)...) // LO_LIMIT
	buf = append(buf, f4le(0)...) // HI_LIMIT
	buf = append(buf, cn("")...)  // UNITS
	return buf
}

func f4le(v float32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
	return buf
}
