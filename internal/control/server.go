// Package control exposes the local HTTP control surface.
package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/nvezhov/eyeguardd/internal/actions"
	"github.com/nvezhov/eyeguardd/internal/stats"
)

// ReminderStatus provides the current work/rest state.
type ReminderStatus interface {
	Status() string
	RestPeriodsToday() int
}

// StatsSource provides recent daily usage summaries.
type StatsSource interface {
	Recent(n int) ([]stats.DailySummary, error)
}

// Server is the local HTTP API for querying state and invoking actions.
type Server struct {
	addr       string
	registry   *actions.Registry
	reminder   ReminderStatus
	stats      StatsSource
	profiles   actions.ProfileApplier
	httpServer *http.Server
}

// NewServer creates a control server. reminder, stats, and profiles
// may be nil; the corresponding endpoints degrade gracefully.
func NewServer(host string, port int, registry *actions.Registry, reminder ReminderStatus, statsSrc StatsSource, profiles actions.ProfileApplier) *Server {
	return &Server{
		addr:     fmt.Sprintf("%s:%d", host, port),
		registry: registry,
		reminder: reminder,
		stats:    statsSrc,
		profiles: profiles,
	}
}

// Run starts the control server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Info().Str("addr", s.addr).Msg("Starting control server")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Control server shutdown error")
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/actions/", s.handleAction)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := map[string]any{
		"actions": s.registry.Names(),
	}
	if s.reminder != nil {
		resp["reminder"] = s.reminder.Status()
		resp["rest_periods_today"] = s.reminder.RestPeriodsToday()
	}
	if s.profiles != nil {
		resp["profiles"] = s.profiles.Names()
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.stats == nil {
		http.Error(w, "stats disabled", http.StatusNotFound)
		return
	}

	days := 7
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			http.Error(w, "invalid days parameter", http.StatusBadRequest)
			return
		}
		days = n
	}

	summaries, err := s.stats.Recent(days)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load usage stats")
		http.Error(w, "failed to load stats", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"days": summaries})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/actions/")
	if name == "" || strings.Contains(name, "/") {
		http.Error(w, "invalid action name", http.StatusBadRequest)
		return
	}

	var args map[string]any
	if r.Body != nil {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	requestID := uuid.NewString()
	log.Debug().
		Str("action", name).
		Str("request_id", requestID).
		Msg("Control action request")

	if _, ok := s.registry.Get(name); !ok {
		http.Error(w, fmt.Sprintf("unknown action %q", name), http.StatusNotFound)
		return
	}

	if err := s.registry.Invoke(r.Context(), name, args); err != nil {
		log.Error().Err(err).
			Str("action", name).
			Str("request_id", requestID).
			Msg("Control action failed")
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status":     "error",
			"error":      err.Error(),
			"request_id": requestID,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"request_id": requestID,
	})
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
