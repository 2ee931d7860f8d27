package handlers

import (
	"database/sql"
	"net/http"

	"github.com/eargollo/stdfload/internal/ingest"
	"github.com/eargollo/stdfload/internal/scheduler"
)

// StatusHandler serves a single-document summary of the engine's state:
// whether a run is active and when the next scheduled one will fire.
type StatusHandler struct {
	DB      *sql.DB
	Manager *ingest.Manager
	Sched   *scheduler.Scheduler
	Version string
}

type statusResponse struct {
	Version    string           `json:"version"`
	ActiveRun  *activeRunView   `json:"active_run"`
	NextRunAt  *string          `json:"next_run_at"`
	CronExpr   string           `json:"cron_expr"`
}

type activeRunView struct {
	ID          int64  `json:"id"`
	SourcePath  string `json:"source_path"`
	TriggeredBy string `json:"triggered_by"`
	StartedAt   string `json:"started_at"`
	BytesRead   int64  `json:"bytes_read"`
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Version: h.Version, CronExpr: h.Sched.CronExpr()}

	if next := h.Sched.NextRunAt(); next != nil {
		s := next.Format("2006-01-02T15:04:05Z07:00")
		resp.NextRunAt = &s
	}

	if active := h.Manager.ActiveRun(); active != nil {
		resp.ActiveRun = &activeRunView{
			ID:          active.ID,
			SourcePath:  active.SourcePath,
			TriggeredBy: active.TriggeredBy,
			StartedAt:   active.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
			BytesRead:   active.Offset.Load(),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
