package ingest

import (
	"context"
	"database/sql"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/eargollo/stdfload/internal/filesource"
	"github.com/eargollo/stdfload/internal/queue"
)

// Config holds pipeline tuning parameters for a single ingestion run.
type Config struct {
	QueueCapacity     int
	ParametricWorkers int
}

// DefaultConfig returns sane defaults: a large ingestion queue (2^22) so the
// reader never blocks behind a slow summarizer, and a small parametric
// decode worker pool.
func DefaultConfig() Config {
	return Config{QueueCapacity: 1 << 22, ParametricWorkers: 4}
}

// Engine runs the source-open, byte-order-detect, read, queue, and
// summarize pipeline against one STDF file into one database. It owns no
// state across runs — Manager is responsible for sequencing and persisting
// run history.
type Engine struct {
	db  *sql.DB
	cfg Config
}

// New creates an Engine over an already-migrated database.
func New(db *sql.DB, cfg Config) *Engine {
	return &Engine{db: db, cfg: cfg}
}

// Run loads sourcePath into the engine's database, reporting progress
// through sink (nil disables reporting) and observing stop for cancellation.
// The returned error is nil on success or STD_EOF; any *Error from the
// reader or summarizer otherwise.
func (e *Engine) Run(ctx context.Context, sourcePath string, stop *atomic.Bool, sink Sink) error {
	slog.Info("ingestion started", "source", sourcePath)
	startedAt := time.Now()

	src, err := filesource.Open(sourcePath)
	if err != nil {
		return newErr(ErrOSFail, "open source", err)
	}
	defer src.Close()

	fileSize, _ := filesource.Size(sourcePath)

	if stop == nil {
		stop = new(atomic.Bool)
	}
	var offset atomic.Int64

	q := queue.New[Message](e.cfg.QueueCapacity)
	summarizer, err := NewSummarizer(e.db, q)
	if err != nil {
		return err
	}

	reader := NewReader(src, q, stop, &offset)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		reader.Run(ctx)
	}()

	reporterDone := make(chan struct{})
	if sink != nil {
		go NewProgressReporter(&offset, fileSize, sink).Run(ctx, reporterDone)
	}

	runErr := summarizer.Run(ctx)
	close(reporterDone)
	<-readerDone

	status := "completed"
	switch {
	case runErr != nil && errCode(runErr) == ErrTerminate:
		status = "cancelled"
	case runErr != nil:
		status = "failed"
	}

	slog.Info("ingestion finished", "source", sourcePath, "status", status,
		"duration", time.Since(startedAt).Round(time.Millisecond))

	return runErr
}

func errCode(err error) ErrorCode {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ErrNone
}
