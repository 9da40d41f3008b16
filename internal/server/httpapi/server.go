// Package httpapi is the HTTP surface of the relay: registration, login,
// one-shot messages, history and housekeeping endpoints.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/auth"
	"github.com/dmitrijs2005/chatrelay/internal/server/messages"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/dmitrijs2005/chatrelay/internal/server/relay"
	"github.com/dmitrijs2005/chatrelay/internal/server/shared/db"
	"github.com/dmitrijs2005/chatrelay/internal/server/users"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Archiver exports a conversation before it is deleted.
type Archiver interface {
	Export(ctx context.Context, owner models.OwnerRef, msgs []*models.Message) (string, error)
}

// Deps are the collaborators the HTTP surface is built from. Archive,
// Metrics, Live and ReplyState are optional.
type Deps struct {
	Users    *users.Service
	Messages *messages.Service
	Relay    *relay.Service
	Issuer   *auth.Issuer
	Archive  Archiver
	Metrics  http.Handler
	Live     echo.HandlerFunc
	Storage  db.Mode
	Logger   logging.Logger

	// ReplyState reports the reply collaborator's circuit breaker state.
	ReplyState func() string
}

type Server struct {
	echo     *echo.Echo
	users    *users.Service
	messages *messages.Service
	relay    *relay.Service
	issuer   *auth.Issuer
	archive  Archiver
	storage  db.Mode
	reply    func() string
	logger   logging.Logger
}

func NewServer(d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	s := &Server{
		echo:     e,
		users:    d.Users,
		messages: d.Messages,
		relay:    d.Relay,
		issuer:   d.Issuer,
		archive:  d.Archive,
		storage:  d.Storage,
		reply:    d.ReplyState,
		logger:   d.Logger.With("module", "http"),
	}

	e.Use(middleware.Recover())
	e.Use(requestLogger(s.logger))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	s.RegisterRoutes(d)
	return s
}

func (s *Server) RegisterRoutes(d Deps) {
	s.echo.GET("/", s.Root)
	s.echo.GET("/health", s.Health)

	api := s.echo.Group("/api")
	api.POST("/register", s.Register)
	api.POST("/login", s.Login)

	authed := s.BearerAuth()
	api.POST("/message", s.Message, authed)
	api.GET("/messages/history", s.History, authed)
	api.GET("/messages/recent", s.Recent, authed)
	api.DELETE("/messages", s.DeleteMessages, authed)

	if d.Metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(d.Metrics))
	}
	if d.Live != nil {
		s.echo.GET("/ws", d.Live)
	}
}

// Handler exposes the router, mostly for httptest.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "http server listening", "addr", addr)
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	return s.echo.Shutdown(shutdownCtx)
}
