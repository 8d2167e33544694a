// Package api exposes the crawler's small operational surface: health,
// last-run stats and a manual run trigger.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/minwoopark/infomore/internal/crawler"
)

type Handlers struct {
	runner *crawler.Runner
	logger *slog.Logger
}

func NewHandlers(runner *crawler.Runner, logger *slog.Logger) *Handlers {
	return &Handlers{
		runner: runner,
		logger: logger.With("component", "api"),
	}
}

func (h *Handlers) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
	}))

	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/crawl", h.TriggerCrawl)

	return r
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"running": h.runner.Running(),
	})
}

// Stats returns the summary of the most recent completed run.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	last := h.runner.LastRun()
	if last == nil {
		h.respondError(w, http.StatusNotFound, "no completed run yet")
		return
	}
	h.respondJSON(w, http.StatusOK, last)
}

// TriggerCrawl starts a run in the background. 409 when one is active.
func (h *Handlers) TriggerCrawl(w http.ResponseWriter, r *http.Request) {
	if h.runner.Running() {
		h.respondError(w, http.StatusConflict, "crawl run already in progress")
		return
	}

	// The run outlives the request; it must not die with r.Context().
	go func() {
		if _, err := h.runner.RunOnce(context.Background()); err != nil && !errors.Is(err, crawler.ErrRunInProgress) {
			h.logger.Error("triggered crawl failed", "error", err)
		}
	}()

	h.respondJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondJSON(w, status, map[string]string{"error": msg})
}
