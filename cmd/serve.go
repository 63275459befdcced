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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/interview-crawler/internal/crawler"
	"github.com/sells-group/interview-crawler/internal/model"
	"github.com/sells-group/interview-crawler/internal/resilience"
)

// maxBatchURLs bounds one batch request.
const maxBatchURLs = 50

var servePort int

// crawlService is the orchestrator surface the HTTP handlers use.
type crawlService interface {
	Crawl(ctx context.Context, req model.CrawlRequest) (*model.CrawlResult, error)
	CrawlURLs(ctx context.Context, urls []string) []model.PageResult
	Sites() []crawler.SiteStatus
	PurgeCache(ctx context.Context, prefix string) (int, error)
	Health(ctx context.Context) error
	Breakers() []resilience.BreakerStatus
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the crawl HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initCrawler(ctx, "serve")
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
			Handler:           newRouter(env.Orchestrator, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the HTTP routes over svc.
func newRouter(svc crawlService, origins []string) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()
		if err := svc.Health(ctx); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unhealthy", "error": err.Error()})
			return
		}
		respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "breakers": svc.Breakers()})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/questions/crawl", func(w http.ResponseWriter, r *http.Request) {
			var req model.CrawlRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if err := req.Validate(); err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			res, err := svc.Crawl(r.Context(), req)
			if err != nil {
				zap.L().Error("crawl request failed", zap.String("category", req.Category), zap.Error(err))
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			respondJSON(w, http.StatusOK, res)
		})

		r.Post("/crawl/batch", func(w http.ResponseWriter, r *http.Request) {
			var req struct {
				URLs []string `json:"urls"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if len(req.URLs) == 0 {
				respondError(w, http.StatusBadRequest, "urls is required")
				return
			}
			if len(req.URLs) > maxBatchURLs {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("at most %d urls per batch", maxBatchURLs))
				return
			}
			respondJSON(w, http.StatusOK, svc.CrawlURLs(r.Context(), req.URLs))
		})

		r.Get("/sites", func(w http.ResponseWriter, r *http.Request) {
			respondJSON(w, http.StatusOK, svc.Sites())
		})

		r.Delete("/cache", func(w http.ResponseWriter, r *http.Request) {
			n, err := svc.PurgeCache(r.Context(), r.URL.Query().Get("prefix"))
			if err != nil {
				respondError(w, http.StatusInternalServerError, err.Error())
				return
			}
			respondJSON(w, http.StatusOK, map[string]int{"deleted": n})
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		defer func() {
			zap.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]any{"success": false, "error": msg})
}
