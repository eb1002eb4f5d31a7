package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/simaogato/wealthflow-valuation/internal/domain"
)

// Valuator is the valuation use case as seen by the transport
type Valuator interface {
	Valuate(ctx context.Context, accounts []domain.Account) (*domain.Valuation, error)
	ValuateOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Valuation, error)
}

// ReportGenerator renders a valuation as a spreadsheet
type ReportGenerator interface {
	Generate(ctx context.Context, v *domain.Valuation) ([]byte, error)
}

// Snapshotter records and lists account snapshots
type Snapshotter interface {
	Capture(ctx context.Context, ownerID uuid.UUID) ([]domain.AccountSnapshot, error)
	History(ctx context.Context, ownerID uuid.UUID, limit int) ([]domain.AccountSnapshot, error)
}

// Config holds server configuration
type Config struct {
	Addr           string
	RequestTimeout time.Duration
	AllowedOrigins []string
	APIToken       string // empty disables bearer token checks
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	cfg      Config
	handlers *Handlers
}

// New creates a new HTTP server
// Snapshot routes are only mounted when snapshots is non-nil.
func New(cfg Config, valuator Valuator, reports ReportGenerator, snapshots Snapshotter, log zerolog.Logger) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	s := &Server{
		router:   chi.NewRouter(),
		log:      log.With().Str("component", "http").Logger(),
		cfg:      cfg,
		handlers: NewHandlers(valuator, reports, snapshots, log),
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(s.cfg.RequestTimeout))

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", ownerHeader},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handlers.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Post("/valuations", s.handlers.HandleValuate)

		r.Route("/portfolio", func(r chi.Router) {
			r.Use(ownerMiddleware)
			r.Get("/valuation", s.handlers.HandleOwnerValuation)
			r.Get("/valuation.xlsx", s.handlers.HandleOwnerValuationExport)

			if s.handlers.snapshots != nil {
				r.Post("/snapshots", s.handlers.HandleCaptureSnapshots)
				r.Get("/snapshots", s.handlers.HandleSnapshotHistory)
			}
		})
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.cfg.Addr).Msg("starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
