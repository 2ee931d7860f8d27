package ingest

import (
	"context"
	"sync/atomic"

	"github.com/eargollo/stdfload/internal/filesource"
	"github.com/eargollo/stdfload/internal/queue"
	"github.com/eargollo/stdfload/internal/stdfrec"
)

// Histogram counts records observed per record code. It is the analyzer's
// output in place of the SQL rows the ingestion pipeline produces.
type Histogram map[stdfrec.Code]int64

// Analyze runs the same source-open, byte-order-detect, and read pipeline
// as Run, but drains the queue into a record-type histogram instead of
// summarizing into a database — a diagnostic variant useful for inspecting
// a file's record mix without committing to a full load.
func Analyze(ctx context.Context, path string) (Histogram, error) {
	src, err := filesource.Open(path)
	if err != nil {
		return nil, newErr(ErrOSFail, "open source", err)
	}
	defer src.Close()

	q := queue.New[Message](1024)
	var stop atomic.Bool
	var offset atomic.Int64

	reader := NewReader(src, q, &stop, &offset)
	go reader.Run(ctx)

	hist := make(Histogram)
	var finishErr error

	for {
		msg, ok, err := q.Pop(ctx)
		if err != nil {
			return hist, newErr(ErrOSFail, "queue pop", err)
		}
		if !ok {
			break
		}
		switch msg.Op {
		case OpParse:
			hist[msg.RecordCode]++
		case OpFinish:
			if msg.Err != nil && !IsEOF(msg.Err) {
				finishErr = msg.Err
			}
		}
	}

	return hist, finishErr
}
