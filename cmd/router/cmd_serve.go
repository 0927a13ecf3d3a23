package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"intentrouter/internal/logging"
	"intentrouter/internal/perception"
	"intentrouter/internal/router"
	"intentrouter/internal/types"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve routing decisions and metrics over HTTP",
	Long: `Starts an HTTP server:
  POST /route    {"text": "..."} or an intent payload -> {"intent": ..., "decision": ...}
  GET  /metrics  Prometheus metrics
  GET  /healthz  liveness`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		engine, err := newEngine(cfg, cfg.Router.Backend, "", nil)
		if err != nil {
			return err
		}
		addr := firstNonEmpty(serveAddr, cfg.Server.Addr)
		srv := &http.Server{
			Addr:              addr,
			Handler:           newServeMux(engine, perception.HeuristicExtractor{}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		logging.Boot("config %s, backend %s", configPath, engine.BackendName())
		go func() {
			logging.Server("listening on %s", addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :9464)")
}

type routeRequest struct {
	Text    string               `json:"text,omitempty"`
	Payload *types.IntentPayload `json:"payload,omitempty"`
}

type routeResponse struct {
	Intent   types.IntentPayload `json:"intent"`
	Decision types.Decision      `json:"decision"`
	Verdict  string              `json:"verdict,omitempty"`
}

func newServeMux(engine *router.Engine, extractor perception.Extractor) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/route", func(w http.ResponseWriter, r *http.Request) {
		log := logging.Get(logging.CategoryServer).With("remote", r.RemoteAddr)
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req routeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			http.Error(w, fmt.Sprintf("invalid request: %v", err), http.StatusBadRequest)
			return
		}

		var payload types.IntentPayload
		switch {
		case req.Payload != nil:
			payload = *req.Payload
		case req.Text != "":
			p, err := extractor.Extract(r.Context(), req.Text)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			payload = p
		default:
			http.Error(w, "text or payload required", http.StatusBadRequest)
			return
		}
		if payload.Entities.Date != nil {
			resolved := types.ResolveDate(*payload.Entities.Date)
			payload.Entities.Date = &resolved
		}

		resp := routeResponse{Intent: payload}
		if payload.Intent == types.IntentUnknown {
			resp.Decision = types.AskFor(router.QuestionIntent)
		} else {
			decision, verdict := engine.Check(r.Context(), payload)
			resp.Decision = decision
			resp.Verdict = string(verdict.Kind)
		}
		logging.Routing("%s -> %s", payload.Intent, resp.Decision)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			log.Warn("failed to write response: %v", err)
		}
	})
	return mux
}
