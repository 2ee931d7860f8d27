package ingest

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"sync/atomic"

	"github.com/eargollo/stdfload/internal/byteorder"
	"github.com/eargollo/stdfload/internal/filesource"
	"github.com/eargollo/stdfload/internal/queue"
	"github.com/eargollo/stdfload/internal/stdfrec"
)

// Reader walks an STDF file sequentially, filters by record code, and
// enqueues (header, offset, bytes) for every record the summarizer needs.
type Reader struct {
	src   *filesource.Source
	q     *queue.Queue[Message]
	stop  *atomic.Bool
	offset *atomic.Int64 // published for the progress reporter; informational only
}

// NewReader constructs a Reader over an already-opened source.
func NewReader(src *filesource.Source, q *queue.Queue[Message], stop *atomic.Bool, offset *atomic.Int64) *Reader {
	return &Reader{src: src, q: q, stop: stop, offset: offset}
}

// Run detects the file's byte order, rewinds, and walks every record until
// EOF, the stop flag, or an unrecoverable error. It emits exactly one FINISH
// message as the terminal queue element, on error paths too; the one
// exception is ctx being cancelled while a Push is blocked, in which case it
// returns without a FINISH and without closing the queue.
func (r *Reader) Run(ctx context.Context) {
	needSwap, err := r.detectAndRewind()
	if err != nil {
		r.finish(ctx, wrapReaderErr(err))
		return
	}

	if pushErr := r.q.Push(ctx, Message{Op: OpSetEndian, NeedSwap: needSwap}); pushErr != nil {
		return // ctx cancelled while blocked on a full queue
	}

	var off uint64
	for {
		if r.stop.Load() {
			r.finish(ctx, newErr(ErrTerminate, "stop flag observed", nil))
			return
		}

		var hdr [4]byte
		if err := r.src.Read(hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				r.finish(ctx, newErr(ErrStdEOF, "", nil))
			} else {
				r.finish(ctx, newErr(ErrOSFail, "read header", err))
			}
			return
		}
		off += 4
		r.offset.Store(int64(off))

		recLen := binary.LittleEndian.Uint16(hdr[0:2])
		if needSwap {
			recLen = binary.BigEndian.Uint16(hdr[0:2])
		}
		code := stdfrec.MakeCode(hdr[2], hdr[3])

		if code.Enqueued() {
			buf := make([]byte, recLen)
			if recLen > 0 {
				if err := r.src.Read(buf); err != nil {
					if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
						r.finish(ctx, newErr(ErrStdEOF, "", nil))
					} else {
						r.finish(ctx, newErr(ErrOSFail, "read payload", err))
					}
					return
				}
			}
			off += uint64(recLen)
			r.offset.Store(int64(off))

			msg := Message{Op: OpParse, RecordCode: code, FileOffset: off - uint64(recLen), RawBytes: buf}
			if err := r.q.Push(ctx, msg); err != nil {
				return
			}
			continue
		}

		if err := r.src.Skip(recLen); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				r.finish(ctx, newErr(ErrStdEOF, "", nil))
			} else {
				r.finish(ctx, newErr(ErrOSFail, "skip payload", err))
			}
			return
		}
		off += uint64(recLen)
		r.offset.Store(int64(off))
	}
}

func (r *Reader) detectAndRewind() (bool, error) {
	_, needSwap, err := byteorder.Detect(readerAdapter{r.src})
	if err != nil {
		return false, err
	}
	if err := r.src.Reopen(); err != nil {
		return false, err
	}
	return needSwap, nil
}

func (r *Reader) finish(ctx context.Context, err error) {
	_ = r.q.Push(ctx, Message{Op: OpFinish, Err: err})
	r.q.Close()
}

func wrapReaderErr(err error) error {
	if errors.Is(err, byteorder.ErrInvalidSTDF) {
		return newErr(ErrInvalidSTDF, "", err)
	}
	if errors.Is(err, byteorder.ErrWrongVersion) {
		return newErr(ErrWrongVersion, "", err)
	}
	return newErr(ErrOSFail, "open/detect", err)
}

// readerAdapter lets byteorder.Detect (which wants an io.Reader) read
// through a filesource.Source (which exposes Read(buf) error instead of
// io.Reader's (n, err) signature).
type readerAdapter struct{ s *filesource.Source }

func (a readerAdapter) Read(p []byte) (int, error) {
	if err := a.s.Read(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
