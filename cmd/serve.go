package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/pipeline"
	"github.com/timi233/enterprise-brain/internal/resilience"
)

var servePort int

// enricher runs one progressive enrichment, streaming snapshots to em.
type enricher interface {
	Run(ctx context.Context, inputText string, em pipeline.Emitter) error
}

// cachePurger evicts result-cache entries.
type cachePurger interface {
	Purge(ctx context.Context, key string) (bool, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the progressive enrichment HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(env.Pipeline, env.Cache, env.Breakers),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.WithoutCancel(ctx))
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(run enricher, purger cachePurger, breakers *resilience.ServiceBreakers) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"services": breakers.States(),
		})
	})

	r.Post("/api/v1/company/progressive", progressiveHandler(run))
	r.Post("/api/v1/cache/purge", purgeHandler(purger))
	r.Post("/api/v1/cache/purge-expired", purgeExpiredHandler(purger))

	return r
}

func progressiveHandler(run enricher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			InputText string `json:"input_text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.InputText) == "" {
			http.Error(w, `{"error":"input_text is required"}`, http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/x-ndjson")
		w.Header().Set("Cache-Control", "no-cache")
		w.WriteHeader(http.StatusOK)

		flush := func() {}
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}

		runID := uuid.New().String()
		zap.L().Info("serve: progressive run started",
			zap.String("run_id", runID),
			zap.String("input", req.InputText),
		)

		// The run outlives a client disconnect so the finished result still
		// lands in the cache.
		ctx := context.WithoutCancel(r.Context())
		if err := run.Run(ctx, req.InputText, pipeline.NewStreamEmitter(w, flush)); err != nil {
			zap.L().Error("serve: progressive run failed",
				zap.String("run_id", runID),
				zap.String("input", req.InputText),
				zap.Error(err),
			)
		}
	}
}

func purgeHandler(purger cachePurger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CompanyName string `json:"company_name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.CompanyName) == "" {
			http.Error(w, `{"error":"company_name is required"}`, http.StatusBadRequest)
			return
		}

		purged, err := purger.Purge(r.Context(), extract.Normalize(req.CompanyName))
		if err != nil {
			zap.L().Error("serve: cache purge failed", zap.Error(err))
			http.Error(w, `{"error":"purge failed"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"purged": purged})
	}
}

func purgeExpiredHandler(purger cachePurger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := purger.PurgeExpired(r.Context())
		if err != nil {
			zap.L().Error("serve: expired purge failed", zap.Error(err))
			http.Error(w, `{"error":"purge failed"}`, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"removed": removed})
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
