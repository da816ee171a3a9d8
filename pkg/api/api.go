// Package api exposes the controller's command surface over HTTP:
// start/stop the capture schedule, query run status, and force a cycle.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/andsko/pagelapse/pkg/state"
)

// Controller is the command surface the API drives.
type Controller interface {
	Start() bool
	Stop() bool
	Status() state.RunState
	RunNow() (string, error)
}

type server struct {
	ctl Controller
}

// NewRouter returns the HTTP router for the control API.
func NewRouter(ctl Controller) *chi.Mux {
	s := &server{ctl: ctl}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Post("/start", s.handleStart)
	r.Post("/stop", s.handleStop)
	r.Post("/run", s.handleRun)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *server) handleStart(w http.ResponseWriter, r *http.Request) {
	if s.ctl.Start() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "already running"})
}

func (s *server) handleStop(w http.ResponseWriter, r *http.Request) {
	if s.ctl.Stop() {
		writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "not running"})
}

type statusResponse struct {
	Running    bool   `json:"running"`
	LastRunAt  string `json:"last_run_at,omitempty"`
	TotalCount int64  `json:"total_count"`
}

func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	rs := s.ctl.Status()

	resp := statusResponse{
		Running:    rs.Running,
		TotalCount: rs.TotalCount,
	}
	if !rs.LastRunAt.IsZero() {
		resp.LastRunAt = rs.LastRunAt.UTC().Format(time.RFC3339)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handleRun(w http.ResponseWriter, r *http.Request) {
	filename, err := s.ctl.RunNow()
	if err != nil {
		jsonErr(w, err.Error(), http.StatusBadGateway)
		return
	}

	resp := map[string]string{"status": "ok"}
	if filename != "" {
		resp["file"] = filename
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonErr(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
