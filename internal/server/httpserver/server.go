// Package httpserver assembles the chi router, middleware, and the
// http.Server lifecycle for the API.
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/modtoolkit/internal/logging"
	"github.com/dmitrijs2005/modtoolkit/internal/server/config"
	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver/handlers"
	"github.com/dmitrijs2005/modtoolkit/internal/server/httpserver/mw"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http   *http.Server
	logger logging.Logger
}

// New builds the HTTP server: router, middleware, route registration.
func New(cfg *config.Config, logger logging.Logger, h *handlers.Handler, jwtSecret []byte) *Server {
	r := NewRouter(logger, h, jwtSecret)

	s := &http.Server{
		Addr:              cfg.EndpointAddrHTTP,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	return &Server{http: s, logger: logger}
}

// NewRouter builds the chi router. Split out from New so handler tests can
// exercise real routing without binding a port.
func NewRouter(logger logging.Logger, h *handlers.Handler, jwtSecret []byte) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.Log(logger))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		// The watch stream stays outside the timeout group: it is
		// long-lived and ends only when the client disconnects.
		r.With(mw.Auth(jwtSecret)).Get("/tools/watch", h.WatchTools)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(15 * time.Second))

			r.Post("/auth/signup", h.Signup)
			r.Post("/auth/login", h.Login)
			r.Post("/auth/refresh", h.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(mw.Auth(jwtSecret))

				r.Post("/auth/logout", h.Logout)

				r.Route("/tools", func(r chi.Router) {
					r.Get("/", h.ListTools)
					r.Post("/", h.CreateTool)
					r.Get("/{id}", h.GetTool)
					r.Put("/{id}", h.UpdateTool)
					r.Patch("/{id}/enabled", h.SetToolEnabled)
					r.Delete("/{id}", h.DeleteTool)
				})

				r.Route("/avatar", func(r chi.Router) {
					r.Post("/upload-url", h.AvatarUploadURL)
					r.Get("/download-url", h.AvatarDownloadURL)
				})
			})
		})
	})

	return r
}

// Start runs the HTTP server and blocks until error or shutdown.
func (s *Server) Start() error {
	s.logger.Info(context.Background(), "HTTP server listening", "addr", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info(ctx, "HTTP server shutting down")
	return s.http.Shutdown(ctx)
}
