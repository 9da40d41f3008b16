// Package ws is the live-connection surface: clients authenticate once at
// connect time and then exchange sendMessage / receiveMessage frames.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/auth"
	"github.com/dmitrijs2005/chatrelay/internal/server/metrics"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/dmitrijs2005/chatrelay/internal/server/relay"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Exchanger runs one exchange; *relay.Service implements it.
type Exchanger interface {
	Handle(ctx context.Context, transport string, owner models.OwnerRef, text string) (string, error)
}

// Recorder tracks open connections. Optional.
type Recorder interface {
	ConnectionOpened()
	ConnectionClosed()
}

type Options struct {
	PongWait       time.Duration
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	MaxMessageSize int64
}

func DefaultOptions() Options {
	return Options{
		PongWait:       60 * time.Second,
		PingInterval:   54 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

type Server struct {
	relay    Exchanger
	issuer   *auth.Issuer
	recorder Recorder
	logger   logging.Logger
	opts     Options
	upgrader websocket.Upgrader
}

var (
	_ Exchanger = (*relay.Service)(nil)
	_ Recorder  = (*metrics.Metrics)(nil)
)

func NewServer(r Exchanger, issuer *auth.Issuer, recorder Recorder, logger logging.Logger, opts Options) *Server {
	return &Server{
		relay:    r,
		issuer:   issuer,
		recorder: recorder,
		logger:   logger.With("module", "ws"),
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Handle authenticates the handshake and, if it passes, serves the
// connection until the client goes away. A rejected handshake is answered
// with 401 and never upgraded.
func (s *Server) Handle(c echo.Context) error {
	req := c.Request()

	_, owner, err := s.issuer.Authenticate(req, true)
	if err != nil {
		msg := "无效的令牌"
		if errors.Is(err, auth.ErrMissingToken) {
			msg = "未提供认证令牌"
		}
		s.logger.Debug(req.Context(), "handshake rejected", "error", err)
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": msg})
	}

	ws, err := s.upgrader.Upgrade(c.Response(), req, nil)
	if err != nil {
		// the upgrader has already written the error response
		s.logger.Warn(req.Context(), "failed to upgrade connection", "error", err)
		return nil
	}

	conn := newConnection(req.Context(), uuid.NewString(), owner, ws, s.opts)
	s.serve(conn)
	return nil
}

func (s *Server) serve(conn *Connection) {
	logger := s.logger.With("conn", conn.ID, "owner", conn.Owner.String())
	logger.Info(conn.ctx, "connection opened")

	if s.recorder != nil {
		s.recorder.ConnectionOpened()
		defer s.recorder.ConnectionClosed()
	}

	defer func() {
		conn.close()
		logger.Info(context.Background(), "connection closed")
	}()

	conn.conn.SetReadLimit(s.opts.MaxMessageSize)
	_ = conn.extendReadDeadline()
	conn.conn.SetPongHandler(func(string) error {
		return conn.extendReadDeadline()
	})

	go conn.pingLoop()

	for {
		_, data, err := conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				logger.Warn(conn.ctx, "read error", "error", err)
			}
			return
		}

		s.dispatch(conn, logger, data)
	}
}

func (s *Server) dispatch(conn *Connection, logger logging.Logger, data []byte) {
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		s.sendError(conn, logger, "invalid frame")
		return
	}

	switch f.Event {
	case EventSendMessage:
		text, ok := f.Text()
		if !ok {
			s.sendError(conn, logger, "message must be a string")
			return
		}
		if strings.TrimSpace(text) == "" {
			s.sendError(conn, logger, "消息不能为空")
			return
		}

		// each message gets its own goroutine so a slow reply does not
		// hold up reading
		conn.wg.Add(1)
		go func() {
			defer conn.wg.Done()
			s.exchange(conn, logger, text)
		}()
	default:
		s.sendError(conn, logger, "unknown event: "+f.Event)
	}
}

// exchange answers with the reply, or with the apology when anything in
// the relay fails.
func (s *Server) exchange(conn *Connection, logger logging.Logger, text string) {
	reply, err := s.relay.Handle(conn.ctx, metrics.TransportWS, conn.Owner, text)
	if err != nil {
		if !errors.Is(err, common.ErrorGeneration) && !errors.Is(err, common.ErrorPersistence) {
			logger.Warn(conn.ctx, "exchange failed", "error", err)
		}
		reply = relay.Apology
	}

	f, err := NewFrame(EventReceiveMessage, reply)
	if err != nil {
		logger.Error(conn.ctx, "encode reply", "error", err)
		return
	}
	if err := conn.WriteFrame(f); err != nil {
		logger.Debug(conn.ctx, "failed to deliver reply", "error", err)
	}
}

func (s *Server) sendError(conn *Connection, logger logging.Logger, msg string) {
	f, err := NewFrame(EventError, msg)
	if err != nil {
		return
	}
	if err := conn.WriteFrame(f); err != nil {
		logger.Debug(conn.ctx, "failed to send error frame", "error", err)
	}
}
