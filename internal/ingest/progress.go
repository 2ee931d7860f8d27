package ingest

import (
	"context"
	"sync/atomic"
	"time"
)

// Sink receives the 0-10000 percent scale published by the progress
// reporter (the caller interprets the last two digits as decimals).
type Sink func(percent int64)

// ProgressReporter periodically samples the reader's byte offset against
// the file's total size and publishes a percent-complete value. It is an
// independent worker: it shares no state with the reader/summarizer beyond
// the atomic offset counter they already publish for this purpose.
type ProgressReporter struct {
	offset   *atomic.Int64
	fileSize int64
	sink     Sink
	interval time.Duration
}

// NewProgressReporter builds a reporter. fileSize of 0 disables percent
// math (every sample publishes 0) rather than dividing by zero.
func NewProgressReporter(offset *atomic.Int64, fileSize int64, sink Sink) *ProgressReporter {
	return &ProgressReporter{offset: offset, fileSize: fileSize, sink: sink, interval: 100 * time.Millisecond}
}

// Run publishes samples every ~100ms until done is closed, then publishes a
// final 10000 and returns.
func (p *ProgressReporter) Run(ctx context.Context, done <-chan struct{}) {
	if p.sink == nil {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.publish()
		case <-done:
			p.sink(10000)
			return
		case <-ctx.Done():
			return
		}
	}
}

func (p *ProgressReporter) publish() {
	if p.fileSize <= 0 {
		p.sink(0)
		return
	}
	pct := (10000 * p.offset.Load()) / p.fileSize
	if pct > 10000 {
		pct = 10000
	}
	p.sink(pct)
}
