package ingest

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/eargollo/stdfload/internal/filesource"
	"github.com/eargollo/stdfload/internal/stdfrec"
)

// ParametricReader re-extracts and decodes measurement bytes for a single
// record code, given the (offset, length) pairs recorded in Test_Offsets
// during the ingestion pass.
//
// filesource.Source has no true random-access seek over compressed inputs,
// so rows must be visited in ascending offset order: callers pass offsets
// already sorted, and Read walks the source once, skipping the gap between
// consecutive reads rather than reopening per row.
type ParametricReader struct {
	src      *filesource.Source
	needSwap bool
	workers  int
}

// NewParametricReader builds a reader over src using the endianness the
// ingestion pass already observed, rather than re-detecting it.
func NewParametricReader(src *filesource.Source, needSwap bool, workers int) *ParametricReader {
	if workers < 1 {
		workers = 1
	}
	return &ParametricReader{src: src, needSwap: needSwap, workers: workers}
}

// Row is one decoded measurement: Value is NaN and Flag is 0 when the
// corresponding offset/length pair was negative.
type Row struct {
	Value float64
	Flag  int
}

// Read decodes code's payload at each (offsets[i], lengths[i]) pair, in the
// order given. Both columns come straight from Test_Offsets: offsets[i] is
// the payload start and lengths[i] the payload length alone, header
// excluded. offsets must already be sorted ascending — the caller (the
// DUT/test lookup that produced them from Test_Offsets) is expected to sort
// before calling, since this reader cannot seek backward over a compressed
// source.
func (r *ParametricReader) Read(code stdfrec.Code, offsets []int64, lengths []int) ([]Row, error) {
	raws := make([][]byte, len(offsets))
	valid := make([]bool, len(offsets))

	var pos int64
	for i := range offsets {
		if offsets[i] < 0 || lengths[i] < 0 {
			continue
		}
		if offsets[i] < pos {
			return nil, newErr(ErrOSFail, "parametric offsets must be sorted ascending", nil)
		}
		if gap := offsets[i] - pos; gap > 0 {
			if err := r.src.SkipN(gap); err != nil {
				return nil, newErr(ErrOSFail, "skip to parametric offset", err)
			}
		}
		buf, err := r.src.ReadN(lengths[i])
		if err != nil {
			return nil, newErr(ErrOSFail, "read parametric payload", err)
		}
		pos = offsets[i] + int64(lengths[i])
		raws[i] = buf
		valid[i] = true
	}

	rows := make([]Row, len(offsets))
	sem := semaphore.NewWeighted(int64(r.workers))
	var wg sync.WaitGroup
	ctx := context.Background()

	for i := range offsets {
		i := i
		if !valid[i] {
			rows[i] = Row{Value: math.NaN(), Flag: 0}
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, newErr(ErrOSFail, "acquire decode slot", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			rows[i] = decodeRow(code, raws[i], r.needSwap)
		}()
	}
	wg.Wait()
	return rows, nil
}

func decodeRow(code stdfrec.Code, raw []byte, needSwap bool) Row {
	// Offset/length already identify payload bytes only — nothing to strip.
	switch code {
	case stdfrec.CodePTR:
		p := stdfrec.DecodePtr(raw, needSwap)
		return Row{Value: float64(p.Result), Flag: int(p.TestFlg)}
	case stdfrec.CodeFTR:
		f := stdfrec.DecodeFtr(raw, needSwap)
		return Row{Value: float64(f.TestFlg), Flag: int(f.TestFlg)}
	case stdfrec.CodeMPR:
		m := stdfrec.DecodeMpr(raw, needSwap)
		return Row{Value: float64(m.TestFlg), Flag: int(m.TestFlg)}
	default:
		return Row{Value: math.NaN(), Flag: 0}
	}
}
