package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ponyclubs/clubsync/internal/model"
	"github.com/ponyclubs/clubsync/internal/reconcile"
)

var servePort int

type reconcileRequest struct {
	Payload     string   `json:"payload"`
	SelectedIDs []string `json:"selected_ids,omitempty"`
	SessionID   string   `json:"session_id,omitempty"`
}

type reconcileResponse struct {
	Success      bool                        `json:"success"`
	Error        string                      `json:"error,omitempty"`
	Matches      []model.MatchCandidate      `json:"matches"`
	Summary      model.ReconciliationSummary `json:"summary"`
	AppliedCount int                         `json:"applied_count,omitempty"`
	SkippedCount int                         `json:"skipped_count,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFailure maps pipeline errors onto the wire: extraction problems are
// the caller's fault, everything else is ours. Matches is always present
// (empty) so clients can render uniformly.
func writeFailure(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, reconcile.ErrExtraction) {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, reconcileResponse{
		Success: false,
		Error:   err.Error(),
		Matches: []model.MatchCandidate{},
	})
}

// newServeMux builds the HTTP routes over the app environment.
func newServeMux(env *appEnv, pollInterval, sessionTTL time.Duration) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("GET /api/clubs", func(w http.ResponseWriter, r *http.Request) {
		clubs, err := env.store.ListClubs(r.Context())
		if err != nil {
			zap.L().Error("list clubs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list clubs failed"})
			return
		}
		if clubs == nil {
			clubs = []model.Club{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"clubs": clubs})
	})

	mux.HandleFunc("GET /api/runs", func(w http.ResponseWriter, r *http.Request) {
		runs, err := env.store.ListRuns(r.Context(), 50)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		if runs == nil {
			runs = []model.ReconcileRun{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	})

	mux.HandleFunc("POST /api/reconcile/preview", func(w http.ResponseWriter, r *http.Request) {
		var req reconcileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"success":false,"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		result, err := env.reconciler.Preview(r.Context(), req.Payload, req.SessionID)
		if err != nil {
			zap.L().Warn("preview failed", zap.Error(err))
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reconcileResponse{
			Success: true,
			Matches: result.Matches,
			Summary: result.Summary,
		})
	})

	mux.HandleFunc("POST /api/reconcile/apply", func(w http.ResponseWriter, r *http.Request) {
		var req reconcileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"success":false,"error":"invalid request body"}`, http.StatusBadRequest)
			return
		}

		selected := make(map[string]bool, len(req.SelectedIDs))
		for _, id := range req.SelectedIDs {
			selected[id] = true
		}

		result, err := env.reconciler.Apply(r.Context(), req.Payload, selected, req.SessionID)
		if err != nil {
			zap.L().Warn("apply failed", zap.Error(err))
			writeFailure(w, err)
			return
		}
		writeJSON(w, http.StatusOK, reconcileResponse{
			Success:      true,
			Matches:      result.Matches,
			Summary:      result.Summary,
			AppliedCount: result.AppliedCount,
			SkippedCount: result.SkippedCount,
		})
	})

	// SSE replay of session-log lines. Polls the log store on a fixed
	// interval and closes when the session TTL elapses.
	mux.HandleFunc("GET /api/sessions/{sessionID}/log", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("sessionID")
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		deadline := time.NewTimer(sessionTTL)
		defer deadline.Stop()

		after := 0
		emit := func() {
			for _, line := range env.logs.Read(id, after) {
				fmt.Fprintf(w, "data: %s\n\n", line.Text)
				after = line.Seq
			}
			flusher.Flush()
		}

		emit()
		for {
			select {
			case <-r.Context().Done():
				return
			case <-deadline.C:
				emit()
				return
			case <-ticker.C:
				emit()
			}
		}
	})

	return mux
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reconciliation HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		mux := newServeMux(env,
			time.Duration(cfg.Server.LogPollMillis)*time.Millisecond,
			time.Duration(cfg.Server.SessionTTLSecs)*time.Second,
		)

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: mux,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
