// Package api serves the commitment tracker over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/felixgeelhaar/vouch/internal/app"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/commands"
	"github.com/felixgeelhaar/vouch/internal/commitments/application/queries"
	"github.com/felixgeelhaar/vouch/pkg/observability"
)

// Handlers are the application entry points the API exposes.
type Handlers struct {
	CreateCommitment     *commands.CreateCommitmentHandler
	CompleteCommitment   *commands.CompleteCommitmentHandler
	SnoozeCommitment     *commands.SnoozeCommitmentHandler
	RescheduleCommitment *commands.RescheduleCommitmentHandler
	LogTrustEvent        *commands.LogTrustEventHandler
	ListCommitments      *queries.ListCommitmentsHandler
	GetCommitment        *queries.GetCommitmentHandler
	TrustReport          *queries.TrustReportHandler
	ResolveDeadline      *queries.ResolveDeadlineHandler

	// Location renders deadlines in the user's zone.
	Location *time.Location
}

// HandlersFromContainer collects the handlers a wired container provides.
func HandlersFromContainer(c *app.Container) Handlers {
	return Handlers{
		CreateCommitment:     c.CreateCommitmentHandler,
		CompleteCommitment:   c.CompleteCommitmentHandler,
		SnoozeCommitment:     c.SnoozeCommitmentHandler,
		RescheduleCommitment: c.RescheduleCommitmentHandler,
		LogTrustEvent:        c.LogTrustEventHandler,
		ListCommitments:      c.ListCommitmentsHandler,
		GetCommitment:        c.GetCommitmentHandler,
		TrustReport:          c.TrustReportHandler,
		ResolveDeadline:      c.ResolveDeadlineHandler,
		Location:             c.DeadlineResolver.Location(),
	}
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Server is the HTTP API server.
type Server struct {
	router chi.Router
	server *http.Server
	logger *slog.Logger
}

// NewServer builds the router and registers every operation.
func NewServer(cfg ServerConfig, h Handlers, health *observability.Health, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if h.Location == nil {
		h.Location = time.Local
	}
	installErrorEnvelope()

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(requestContext)

	if health != nil {
		router.Method(http.MethodGet, "/healthz", health.Handler())
	}

	hcfg := huma.DefaultConfig("Vouch API", "1.0.0")
	api := humachi.New(router, hcfg)
	v1 := huma.NewGroup(api, "/v1")

	e := &endpoints{h: h, logger: logger}
	e.registerCommitments(v1)
	e.registerTrust(v1)
	e.registerDeadlines(v1)

	return &Server{
		router: router,
		logger: logger,
		server: &http.Server{
			Addr:         cfg.Addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}

// requestContext stamps correlation, request and user ids on the context so
// every log line and outbox message of the request carries them.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get("X-Correlation-ID")
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		ctx := observability.NewRequestContext(r.Context(), correlationID)
		if user := r.Header.Get(userHeader); user != "" {
			ctx = observability.WithUserID(ctx, user)
		}
		w.Header().Set("X-Correlation-ID", correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type endpoints struct {
	h      Handlers
	logger *slog.Logger
}
