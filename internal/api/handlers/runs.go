package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eargollo/stdfload/internal/ingest"
)

// RunsHandler exposes the Ingest_Runs ledger: list/get history and
// start/cancel the single active run.
type RunsHandler struct {
	DB      *sql.DB
	Manager *ingest.Manager
}

type runView struct {
	ID              int64   `json:"id"`
	SourcePath      string  `json:"source_path"`
	DBPath          string  `json:"db_path"`
	TriggeredBy     string  `json:"triggered_by"`
	Status          string  `json:"status"`
	StartedAt       int64   `json:"started_at"`
	FinishedAt      *int64  `json:"finished_at"`
	ErrorCode       *string `json:"error_code"`
	ErrorDetail     *string `json:"error_detail"`
	BytesTotal      *int64  `json:"bytes_total"`
	BytesConsumed   *int64  `json:"bytes_consumed"`
	RecordsEnqueued *int64  `json:"records_enqueued"`
	RecordsSkipped  *int64  `json:"records_skipped"`
}

// List returns the most recent runs, newest first.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.DB.Query(`
		SELECT ID, SourcePath, DBPath, TriggeredBy, Status, StartedAt, FinishedAt,
		       ErrorCode, ErrorDetail, BytesTotal, BytesConsumed, RecordsEnqueued, RecordsSkipped
		FROM Ingest_Runs ORDER BY ID DESC LIMIT 100`)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	defer rows.Close()

	var out []runView
	for rows.Next() {
		v, err := scanRunView(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
			return
		}
		out = append(out, v)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get returns one run by ID.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "id must be an integer")
		return
	}

	row := h.DB.QueryRow(`
		SELECT ID, SourcePath, DBPath, TriggeredBy, Status, StartedAt, FinishedAt,
		       ErrorCode, ErrorDetail, BytesTotal, BytesConsumed, RecordsEnqueued, RecordsSkipped
		FROM Ingest_Runs WHERE ID = ?`, id)

	v, err := scanRunView(row)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "RUN_NOT_FOUND", "no run with that id")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, v)
}

type createRunRequest struct {
	SourcePath string `json:"source_path"`
}

// Create starts a new ingestion run for the requested source path.
func (h *RunsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid request body")
		return
	}
	if req.SourcePath == "" {
		writeError(w, http.StatusBadRequest, "SOURCE_PATH_REQUIRED", "source_path is required")
		return
	}

	active, err := h.Manager.Start(context.Background(), req.SourcePath, "", "api")
	if errors.Is(err, ingest.ErrAlreadyRunning) {
		writeError(w, http.StatusConflict, "RUN_ALREADY_RUNNING", "an ingestion run is already in progress")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": active.ID, "correlation_id": active.CorrelationID})
}

// Cancel stops the active run, if any.
func (h *RunsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	active, err := h.Manager.Cancel()
	if errors.Is(err, ingest.ErrNoActiveRun) {
		writeError(w, http.StatusNotFound, "NO_ACTIVE_RUN", "no ingestion run is currently running")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{"id": active.ID})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRunView(rs rowScanner) (runView, error) {
	var v runView
	err := rs.Scan(&v.ID, &v.SourcePath, &v.DBPath, &v.TriggeredBy, &v.Status, &v.StartedAt, &v.FinishedAt,
		&v.ErrorCode, &v.ErrorDetail, &v.BytesTotal, &v.BytesConsumed, &v.RecordsEnqueued, &v.RecordsSkipped)
	return v, err
}
