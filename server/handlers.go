package server

import (
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/onnwee/engage-tender/session"
	"github.com/onnwee/engage-tender/telemetry"
)

// Handlers holds dependencies for all HTTP handlers.
type Handlers struct {
	store *session.Store
	db    *sql.DB
}

// HandleHealthz responds to liveness probes. The process is alive as long as
// the event loop runs; no dependency checks here.
func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// HandleReadyz responds to readiness probes. When the archive is configured,
// its database must be reachable; the in-memory store is always ready.
func (h *Handlers) HandleReadyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			telemetry.RecordError(r.Context(), err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"status":       "not_ready",
				"failed_check": "archive",
				"error":        err.Error(),
			})
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ready"})
}

// HandleStatus returns an aggregate snapshot of tracked chats for operators.
func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.store.Summarize())
}
