package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/terra-clan/roadmap-engine/internal/canvas"
	"github.com/terra-clan/roadmap-engine/internal/config"
	"github.com/terra-clan/roadmap-engine/internal/models"
	"github.com/terra-clan/roadmap-engine/internal/reviews"
	"github.com/terra-clan/roadmap-engine/internal/storage"
)

// ProgressStore abstracts the saved-progress backend so handlers can
// be tested without redis
type ProgressStore interface {
	Save(ctx context.Context, session *models.ProgressSession) error
	Load(ctx context.Context, roadmapID, userID string) (*models.ProgressSession, error)
}

// Server represents the HTTP API server
type Server struct {
	config         config.ServerConfig
	router         *chi.Mux
	repo           storage.Repository
	reviews        *reviews.Aggregator
	progress       ProgressStore
	rasterizer     canvas.Canvas
	hub            *StreamHub
	authMiddleware *AuthMiddleware
}

// NewServer creates a new API server
func NewServer(
	cfg config.ServerConfig,
	repo storage.Repository,
	progress ProgressStore,
	rasterizer canvas.Canvas,
) *Server {
	s := &Server{
		config:         cfg,
		repo:           repo,
		reviews:        reviews.NewAggregator(repo),
		progress:       progress,
		rasterizer:     rasterizer,
		hub:            NewStreamHub(),
		authMiddleware: NewAuthMiddleware(repo),
	}
	s.setupRouter()
	return s
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRouter configures all routes and middleware
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check (public)
	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/roadmaps", func(r chi.Router) {
			r.Get("/", s.handleListRoadmaps)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetRoadmap)
				r.Get("/reviews", s.handleListReviews)
				// Optional auth: an unauthenticated submit must reach the
				// aggregator so the caller gets the login-required message
				r.With(s.authMiddleware.Attach).Post("/reviews", s.handleSubmitReview)

				// Fire-and-forget telemetry
				r.Post("/download", s.handleDownloadEvent)
				r.Post("/share", s.handleShareEvent)

				// Export artifacts
				r.Get("/export.png", s.handleExportPNG)
				r.Get("/document", s.handleGetDocument)

				// Saved learner progress
				r.With(s.authMiddleware.Attach, s.authMiddleware.Require).Get("/progress", s.handleGetProgress)
				r.With(s.authMiddleware.Attach, s.authMiddleware.Require).Put("/progress", s.handleSaveProgress)
				r.Get("/progress/stream", s.handleProgressStream)
			})
		})
	})

	s.router = r
}

// loggingMiddleware logs HTTP requests using slog
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			slog.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
