// Package stagingsrv is an in-memory staging service speaking the same REST
// contract as the production one. It backs "recon serve" for local work and
// the end-to-end tests; its validation rules are a small stand-in.
package stagingsrv

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/ebotics/recon/internal/remote"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
	bodyLimit       = "20M"
)

// Server wires the store to echo routes.
type Server struct {
	store *Store
	log   *logrus.Entry
	echo  *echo.Echo
}

// New builds a server around store.
func New(store *Store, log *logrus.Entry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	s := &Server{store: store, log: log, echo: e}

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10,
	}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator:    uuid.NewString,
		TargetHeader: remote.RequestIDHeader,
	}))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(s.requestLogger)

	api := e.Group("/api/import-jobs")
	api.GET("", s.handleListJobs)
	api.POST("/upload", s.handleUpload)
	api.GET("/:id", s.handleGetJob)
	api.DELETE("/:id", s.handleDeleteJob)
	api.GET("/:id/rows", s.handleGetRows)
	api.PUT("/:id/rows", s.handleUpdateRows)
	api.POST("/:id/revalidate", s.handleRevalidate)
	api.POST("/:id/promote", s.handlePromote)
	e.GET("/api/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	return s
}

// Handler returns the HTTP handler, for httptest or custom servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.log.WithField("addr", addr).Info("staging service listening")
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req, res := c.Request(), c.Response()
		s.log.WithFields(logrus.Fields{
			"method":      req.Method,
			"path":        req.URL.Path,
			"status":      res.Status,
			"request_id":  res.Header().Get(remote.RequestIDHeader),
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("request")
		return nil
	}
}
