package trigger

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const (
	// ManualRunPath starts a workflow run when requested with any method.
	ManualRunPath = "/test-run"

	manualRunBody = "Test run executed"
	defaultBody   = "OK"
)

type manualTrigger struct {
	log  *slog.Logger
	sup  *Supervisor
	task Task
}

// NewRouter serves the manual trigger. Every other path answers 200 OK.
func NewRouter(log *slog.Logger, sup *Supervisor, task Task) http.Handler {
	h := &manualTrigger{log: log, sup: sup, task: task}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.HandleFunc(ManualRunPath, h.handleRun)
	r.NotFound(handleDefault)
	r.MethodNotAllowed(handleDefault)

	return r
}

// handleRun acknowledges before the run completes; the outcome only shows up in logs.
func (h *manualTrigger) handleRun(w http.ResponseWriter, r *http.Request) {
	h.log.Info("manual test run triggered",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("remote", r.RemoteAddr),
	)
	if err := h.sup.Go("manual", h.task); err != nil {
		h.log.Warn("manual run not started", slog.Any("err", err))
	}
	writeText(w, http.StatusOK, manualRunBody)
}

func handleDefault(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, defaultBody)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
