package ingest

import "github.com/eargollo/stdfload/internal/stdfrec"

// Operation tags a queue message's kind: SET_ENDIAN / PARSE / FINISH.
type Operation int

const (
	OpSetEndian Operation = iota
	OpParse
	OpFinish
)

// Message is the single type of element carried over the bounded queue
// between the reader thread and the summarizer. RawBytes is owned by the
// reader until it is sent, then owned exclusively by the summarizer, which
// must release it (by letting it become unreachable) on every exit path.
type Message struct {
	Op Operation

	// Valid only when Op == OpParse.
	RecordCode stdfrec.Code
	FileOffset uint64
	RawBytes   []byte

	// Valid only when Op == OpSetEndian.
	NeedSwap bool

	// Valid only when Op == OpFinish.
	Err error
}
