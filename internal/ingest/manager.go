package ingest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrAlreadyRunning is returned when Start is called while a run is active.
var ErrAlreadyRunning = errors.New("an ingestion run is already in progress")

// ErrNoActiveRun is returned when Cancel is called with no run active.
var ErrNoActiveRun = errors.New("no ingestion run is currently running")

// ActiveRun holds live information about the running ingestion.
type ActiveRun struct {
	ID          int64
	CorrelationID string
	SourcePath  string
	StartedAt   time.Time
	TriggeredBy string
	Offset      *atomic.Int64
}

// Manager enforces a single-active-run invariant over the Ingest_Runs
// ledger and exposes start/cancel.
type Manager struct {
	mu  sync.Mutex
	db  *sql.DB
	cfg Config

	active   *ActiveRun
	cancelFn context.CancelFunc
	stopFlag *atomic.Bool
}

// NewManager creates a Manager over an already-migrated database.
func NewManager(db *sql.DB, cfg Config) *Manager {
	return &Manager{db: db, cfg: cfg}
}

// Start launches an asynchronous ingestion run for sourcePath, dbPath
// identifying which database it is loading into (normally the Manager's own
// db, but recorded for the ledger regardless). Returns ErrAlreadyRunning if
// a run is already active.
func (m *Manager) Start(parentCtx context.Context, sourcePath, dbPath, triggeredBy string) (*ActiveRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrAlreadyRunning
	}

	startedAt := time.Now()
	runID, err := insertRunRecord(m.db, sourcePath, dbPath, triggeredBy, startedAt)
	if err != nil {
		return nil, fmt.Errorf("create ingestion run record: %w", err)
	}

	var offset atomic.Int64
	stop := &atomic.Bool{}
	runCtx, cancel := context.WithCancel(parentCtx)

	active := &ActiveRun{
		ID:            runID,
		CorrelationID: uuid.NewString(),
		SourcePath:    sourcePath,
		StartedAt:     startedAt,
		TriggeredBy:   triggeredBy,
		Offset:        &offset,
	}
	m.active = active
	m.cancelFn = cancel
	m.stopFlag = stop

	engine := New(m.db, m.cfg)

	go func() {
		sink := func(pct int64) {
			_, _ = m.db.Exec(`UPDATE Ingest_Runs SET BytesConsumed=? WHERE ID=?`, offset.Load(), runID)
		}
		runErr := engine.Run(runCtx, sourcePath, stop, sink)

		status, code, detail := classifyRunResult(runErr, runCtx)
		if finErr := finalizeRunRecord(m.db, runID, status, code, detail); finErr != nil {
			slog.Error("finalize ingestion run", "run_id", runID, "error", finErr)
		}
		if runErr != nil && status == "failed" {
			_ = insertRunError(m.db, runID, "summarize", runErr.Error())
		}

		m.mu.Lock()
		m.active = nil
		m.cancelFn = nil
		m.stopFlag = nil
		m.mu.Unlock()
	}()

	return active, nil
}

// Cancel requests termination of the active run via both the stop flag the
// reader polls and context cancellation. Returns ErrNoActiveRun if idle.
func (m *Manager) Cancel() (*ActiveRun, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrNoActiveRun
	}

	snap := *m.active
	m.stopFlag.Store(true)
	m.cancelFn()
	return &snap, nil
}

// ActiveRun returns a snapshot of the running ingestion, or nil when idle.
func (m *Manager) ActiveRun() *ActiveRun {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	snap := *m.active
	return &snap
}

func classifyRunResult(err error, ctx context.Context) (status string, code ErrorCode, detail string) {
	if err == nil {
		return "completed", ErrNone, ""
	}
	if ctx.Err() != nil {
		return "cancelled", ErrTerminate, err.Error()
	}
	return "failed", errCode(err), err.Error()
}

func insertRunRecord(db *sql.DB, sourcePath, dbPath, triggeredBy string, startedAt time.Time) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO Ingest_Runs (SourcePath, DBPath, TriggeredBy, Status, StartedAt)
		VALUES (?, ?, ?, 'running', ?)`,
		sourcePath, dbPath, triggeredBy, startedAt.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func finalizeRunRecord(db *sql.DB, runID int64, status string, code ErrorCode, detail string) error {
	_, err := db.Exec(`
		UPDATE Ingest_Runs
		SET Status=?, FinishedAt=?, ErrorCode=?, ErrorDetail=?
		WHERE ID=?`,
		status, time.Now().Unix(), string(code), detail, runID)
	return err
}

func insertRunError(db *sql.DB, runID int64, stage, detail string) error {
	_, err := db.Exec(`
		INSERT INTO Ingest_Run_Errors (RunID, Stage, Detail, OccurredAt)
		VALUES (?, ?, ?, ?)`,
		runID, stage, detail, time.Now().Unix())
	return err
}

// MarkStaleRunsFailed marks any Ingest_Runs rows still 'running' as 'failed'.
// Call once at startup in case a previous process crashed mid-load.
func MarkStaleRunsFailed(db *sql.DB) error {
	res, err := db.Exec(`
		UPDATE Ingest_Runs
		SET Status='failed', FinishedAt=?, ErrorCode=?
		WHERE Status='running'`,
		time.Now().Unix(), string(ErrOSFail))
	if err != nil {
		return fmt.Errorf("mark stale ingestion runs failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		slog.Warn("marked stale ingestion runs as failed", "count", n)
	}
	return nil
}
