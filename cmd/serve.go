package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/proposal-cli/internal/model"
	"github.com/sells-group/proposal-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for quotes and proposal generation",
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
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(ctx, env, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API routes. genCtx is the long-lived server context
// that async generation runs against, so shutdown cancels in-flight work.
func newRouter(genCtx context.Context, env *pipelineEnv, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/quote", func(w http.ResponseWriter, req *http.Request) {
		var bid model.BidRequest
		if err := json.NewDecoder(req.Body).Decode(&bid); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if bid.Title == "" && bid.Description == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title or description is required"})
			return
		}

		quote, err := env.Pipeline.Quote(req.Context(), bid)
		if err != nil {
			zap.L().Error("quote failed", zap.String("title", bid.Title), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "quote failed"})
			return
		}

		id, err := env.Store.SaveQuote(req.Context(), bid, quote)
		if err != nil {
			zap.L().Warn("quote save failed", zap.Error(err))
		}

		writeJSON(w, http.StatusOK, map[string]any{"id": id, "quote": quote})
	})

	r.Post("/api/proposals", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			Bid  model.BidRequest `json:"bid"`
			Kind string           `json:"kind"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if body.Bid.Title == "" && body.Bid.Description == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bid title or description is required"})
			return
		}
		kinds, err := resolveKinds(orDefault(body.Kind, "all"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}

		// Document IDs are assigned up front so the caller can poll
		// GET /api/proposals/{id} while generation is still running.
		ids := make(map[string]string, len(kinds))
		for _, kind := range kinds {
			ids[string(kind)] = uuid.NewString()
		}

		// Generation runs for minutes; do it off-request against the
		// server context so shutdown cancels it.
		go func() {
			for _, kind := range kinds {
				doc, err := generateOne(genCtx, env, body.Bid, kind)
				if err != nil {
					zap.L().Error("async generation failed",
						zap.String("kind", string(kind)),
						zap.String("title", body.Bid.Title),
						zap.Error(err))
					return
				}
				doc.ID = ids[string(kind)]
				if err := env.Store.SaveProposal(genCtx, body.Bid, doc); err != nil {
					zap.L().Error("proposal save failed", zap.String("id", doc.ID), zap.Error(err))
					return
				}
				zap.L().Info("async generation complete",
					zap.String("kind", string(kind)),
					zap.String("id", doc.ID))
			}
		}()

		writeJSON(w, http.StatusAccepted, map[string]any{
			"status": "accepted",
			"bid":    body.Bid.Title,
			"ids":    ids,
		})
	})

	r.Get("/api/proposals", func(w http.ResponseWriter, req *http.Request) {
		docs, err := env.Store.ListProposals(req.Context(), store.ProposalFilter{
			Kind:  model.DocumentKind(req.URL.Query().Get("kind")),
			Limit: 50,
		})
		if err != nil {
			zap.L().Error("list proposals failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list failed"})
			return
		}
		writeJSON(w, http.StatusOK, docs)
	})

	r.Get("/api/proposals/{id}", func(w http.ResponseWriter, req *http.Request) {
		doc, err := env.Store.GetProposal(req.Context(), chi.URLParam(req, "id"))
		if err != nil {
			zap.L().Error("get proposal failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
			return
		}
		if doc == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, doc)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
