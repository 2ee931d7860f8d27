package ingest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestProgressReporterPublishClampsAtFull(t *testing.T) {
	var offset atomic.Int64
	offset.Store(150)

	var got int64 = -1
	r := NewProgressReporter(&offset, 100, func(pct int64) { got = pct })
	r.publish()

	if got != 10000 {
		t.Errorf("publish: got %d, want 10000 (clamped)", got)
	}
}

func TestProgressReporterPublishZeroSizeIsZero(t *testing.T) {
	var offset atomic.Int64
	offset.Store(42)

	var got int64 = -1
	r := NewProgressReporter(&offset, 0, func(pct int64) { got = pct })
	r.publish()

	if got != 0 {
		t.Errorf("publish with zero file size: got %d, want 0", got)
	}
}

func TestProgressReporterPublishHalfway(t *testing.T) {
	var offset atomic.Int64
	offset.Store(50)

	var got int64 = -1
	r := NewProgressReporter(&offset, 100, func(pct int64) { got = pct })
	r.publish()

	if got != 5000 {
		t.Errorf("publish at half: got %d, want 5000", got)
	}
}

func TestProgressReporterRunPublishesFinalOnDone(t *testing.T) {
	var offset atomic.Int64
	var last atomic.Int64
	r := NewProgressReporter(&offset, 100, func(pct int64) { last.Store(pct) })

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		r.Run(context.Background(), done)
		close(finished)
	}()

	close(done)
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after done was closed")
	}

	if got := last.Load(); got != 10000 {
		t.Errorf("final publish: got %d, want 10000", got)
	}
}

func TestProgressReporterRunStopsOnContextCancel(t *testing.T) {
	var offset atomic.Int64
	r := NewProgressReporter(&offset, 100, func(int64) {})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		r.Run(ctx, done)
		close(finished)
	}()

	cancel()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}

func TestProgressReporterRunNilSinkIsNoop(t *testing.T) {
	var offset atomic.Int64
	r := NewProgressReporter(&offset, 100, nil)

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		r.Run(context.Background(), done)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Run with nil sink did not return immediately")
	}
}
