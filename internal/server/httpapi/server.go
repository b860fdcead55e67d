// Package httpapi exposes the media pipeline's privileged operations
// over HTTP/JSON: permit exchange, upload ticket issuance, finalize,
// batch view signing, the permit-gated media message send, and status
// lines.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/9r89uf8/mediagate/internal/logging"
	sc "github.com/9r89uf8/mediagate/internal/server/config"
)

type Server struct {
	address  string
	logger   logging.Logger
	handlers *Handlers
	auth     *authMiddleware
	limiter  *rateLimiter
}

func NewServer(cfg *sc.Config, l logging.Logger, h *Handlers) *Server {
	return &Server{
		address:  cfg.EndpointAddrHTTP,
		logger:   l.With("module", "http_server"),
		handlers: h,
		auth:     newAuthMiddleware([]byte(cfg.SecretKey)),
		limiter:  newRateLimiter(cfg.PermitRateRPS, cfg.PermitRateBurst),
	}
}

func (s *Server) router() chi.Router {
	r := chi.NewRouter()

	r.Get("/ping", s.handlers.HandlePing())
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(s.auth.Handle)

		r.With(s.limiter.Handle).Post("/permits", s.handlers.HandleExchangePermit())
		r.Post("/uploads/tickets", s.handlers.HandleIssueTicket())
		r.Post("/media", s.handlers.HandleFinalize())
		r.Patch("/media/{mediaID}", s.handlers.HandleUpdateMedia())
		r.Post("/media/{mediaID}/like", s.handlers.HandleToggleLike())
		r.Post("/views/sign", s.handlers.HandleSignBatch())
		r.Post("/messages/media", s.handlers.HandleSendMediaMessage())
		r.Put("/status", s.handlers.HandleSetStatus())
		r.Get("/status", s.handlers.HandleGetStatus())
	})

	return r
}

// Run serves the API until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.router(),
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
