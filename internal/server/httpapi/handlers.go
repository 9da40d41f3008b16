package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/messages"
	"github.com/dmitrijs2005/chatrelay/internal/server/metrics"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/labstack/echo/v4"
)

const (
	shutdownTimeout = 10 * time.Second
	rootText        = "ChatBot API 正在运行"
)

func (s *Server) Root(c echo.Context) error {
	return c.String(http.StatusOK, rootText)
}

func (s *Server) Health(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Storage: s.storage}
	if s.reply != nil {
		resp.Reply = s.reply()
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
	}
	if err := c.Validate(&req); err != nil {
		return s.respondError(c, registerErrors, err)
	}

	res, err := s.users.Register(c.Request().Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return s.respondError(c, registerErrors, err)
	}

	return c.JSON(http.StatusCreated, res)
}

func (s *Server) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
	}
	if err := c.Validate(&req); err != nil {
		return s.respondError(c, loginErrors, err)
	}

	res, err := s.users.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, loginErrors, err)
	}

	return c.JSON(http.StatusOK, res)
}

// Message runs one exchange and answers with the reply. Unlike the live
// connection, failures surface as errors rather than an apology.
func (s *Server) Message(c echo.Context) error {
	owner, ok := OwnerFrom(c)
	if !ok {
		return s.respondError(c, authErrors, common.ErrInvalidToken)
	}

	var req MessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msgBadRequest})
	}
	if err := c.Validate(&req); err != nil {
		return s.respondError(c, messageErrors, err)
	}

	reply, err := s.relay.Handle(c.Request().Context(), metrics.TransportHTTP, owner, req.Message)
	if err != nil {
		return s.respondError(c, messageErrors, err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Response: reply})
}

// History serves ?limit (default 50) and ?skip (default 0). Missing, zero
// or unparseable values fall back to the defaults.
func (s *Server) History(c echo.Context) error {
	owner, ok := OwnerFrom(c)
	if !ok {
		return s.respondError(c, authErrors, common.ErrInvalidToken)
	}

	limit := queryInt(c, "limit", messages.DefaultHistoryLimit)
	skip := queryInt(c, "skip", 0)

	msgs, err := s.messages.History(c.Request().Context(), owner, limit, skip)
	if err != nil {
		return s.respondError(c, historyErrors, err)
	}

	return c.JSON(http.StatusOK, nonNil(msgs))
}

// Recent serves the last ?pairs exchanges (default 10).
func (s *Server) Recent(c echo.Context) error {
	owner, ok := OwnerFrom(c)
	if !ok {
		return s.respondError(c, authErrors, common.ErrInvalidToken)
	}

	pairs := queryInt(c, "pairs", messages.DefaultRecentPairs)

	msgs, err := s.messages.Recent(c.Request().Context(), owner, pairs)
	if err != nil {
		return s.respondError(c, historyErrors, err)
	}

	return c.JSON(http.StatusOK, nonNil(msgs))
}

// DeleteMessages clears the caller's conversation. When archiving is
// configured the transcript is exported first, and nothing is deleted if
// the export fails.
func (s *Server) DeleteMessages(c echo.Context) error {
	owner, ok := OwnerFrom(c)
	if !ok {
		return s.respondError(c, authErrors, common.ErrInvalidToken)
	}
	ctx := c.Request().Context()

	var key string
	if s.archive != nil {
		msgs, err := s.messages.All(ctx, owner)
		if err != nil {
			return s.respondError(c, deleteErrors, err)
		}
		if len(msgs) > 0 {
			key, err = s.archive.Export(ctx, owner, msgs)
			if err != nil {
				return s.respondError(c, deleteErrors, err)
			}
		}
	}

	n, err := s.messages.DeleteAll(ctx, owner)
	if err != nil {
		return s.respondError(c, deleteErrors, err)
	}

	s.logger.Info(ctx, "conversation deleted", "owner", owner.String(), "deleted", n, "archive", key)
	return c.JSON(http.StatusOK, DeleteResponse{Deleted: n, Archive: key})
}

func queryInt(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || v == 0 {
		return def
	}
	return v
}

func nonNil(msgs []*models.Message) []*models.Message {
	if msgs == nil {
		return []*models.Message{}
	}
	return msgs
}
