// Package server implements the companion incident service: the REST
// contract the console client consumes, backed by the SQLite store. The
// client works against any service honoring the same contract; this one
// exists so the repo runs end-to-end out of the box.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devbyilmir/incidents-manager/internal/store"
)

// Options configures the service.
type Options struct {
	// Bind address, e.g. "127.0.0.1:8000".
	Bind string
	// JWTSecret signs session tokens. Required.
	JWTSecret string
	// TokenTTL bounds session lifetime; defaults to 24h.
	TokenTTL time.Duration
	// Logger for request and error logs (optional).
	Logger *logrus.Logger
}

// Server is the companion incident service.
type Server struct {
	store  *store.Store
	opts   Options
	logger *logrus.Logger
	router *gin.Engine
	srv    *http.Server
}

// New builds the service with routes and middleware wired.
func New(st *store.Store, opts Options) (*Server, error) {
	if opts.JWTSecret == "" {
		return nil, errors.New("JWT secret is required")
	}
	if opts.Bind == "" {
		opts.Bind = "127.0.0.1:8000"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}

	s := &Server{store: st, opts: opts, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "incident service is up"})
	})

	auth := router.Group("/auth")
	{
		auth.POST("/register", s.handleRegister)
		auth.POST("/login", s.handleLogin)
		auth.POST("/logout", s.handleLogout)
		auth.GET("/me", s.requireUser(), s.handleMe)
	}

	incidents := router.Group("/incidents", s.requireUser())
	{
		incidents.GET("/", s.handleListIncidents)
		incidents.POST("/", s.handleCreateIncident)
		incidents.GET("/:id", s.handleGetIncident)
		incidents.PATCH("/:id", s.handlePatchIncident)
		incidents.DELETE("/:id", s.handleDeleteIncident)
	}

	s.router = router
	return s, nil
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully. Binding
// happens synchronously so startup errors surface immediately.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Bind)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.opts.Bind, err)
	}

	s.srv = &http.Server{
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.WithField("addr", s.opts.Bind).Info("incident service listening")

	errCh := make(chan error, 1)
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}

// detail writes the contract's error body shape.
func detail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"detail": msg})
}
