package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"waypost/internal/config"
	"waypost/internal/domain/area"
	"waypost/internal/server/handlers"
	"waypost/internal/server/middleware"
	areasvc "waypost/internal/service/area"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer creates a new HTTP server
func NewServer(
	cfg config.ServerConfig,
	rlCfg config.RateLimitConfig,
	svc *areasvc.Service,
	counter middleware.CounterBackend,
	log *zap.Logger,
) *Server {
	router := chi.NewRouter()

	// Middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))

	// CORS configuration
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CorsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "x-userid", "x-localecode"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	limiter := middleware.NewRateLimiter(counter, rlCfg.FailOpen, log)

	areaHandler := handlers.NewAreaHandler(svc, log)
	spaceHandler := handlers.NewSpaceHandler(svc, log)

	mountAreaRoutes := func(r chi.Router, t area.Type) {
		r.With(limiter.Limit(rlCfg.CreateWindow, rlCfg.CreateMax)).
			Post("/", areaHandler.Create(t))
		r.Put("/{id}", areaHandler.Update(t))
		r.Post("/search", areaHandler.Search(t))
		r.Post("/me/search", areaHandler.SearchMine(t))
		r.Post("/find", areaHandler.Find(t))
		r.Post("/{id}/details", areaHandler.Details(t))
		r.Delete("/", areaHandler.Delete(t))
	}

	// Routes
	router.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("OK"))
		})

		r.Route("/v1", func(r chi.Router) {
			r.Route("/moments", func(r chi.Router) {
				mountAreaRoutes(r, area.TypeMoment)
			})

			r.Route("/spaces", func(r chi.Router) {
				mountAreaRoutes(r, area.TypeSpace)

				r.With(limiter.Limit(rlCfg.ClaimWindow, rlCfg.ClaimMax)).
					Post("/{id}/request-claim", spaceHandler.RequestClaim)
				r.With(limiter.Limit(rlCfg.CheckInWindow, rlCfg.CheckInMax)).
					Post("/{id}/check-in", spaceHandler.CheckIn)
			})

			r.Route("/events", func(r chi.Router) {
				mountAreaRoutes(r, area.TypeEvent)
			})
		})
	})

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// ListenAndServe starts the HTTP server
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
