package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/auth"
	"github.com/dmitrijs2005/chatrelay/internal/server/users"
	"github.com/labstack/echo/v4"
)

// errorMapping turns an error matching target into a status and a message
// for the client. Tables are checked top to bottom.
type errorMapping struct {
	target  error
	status  int
	message string
}

const msgBadRequest = "请求格式错误"

var (
	authErrors = []errorMapping{
		{auth.ErrMissingToken, http.StatusUnauthorized, "未提供认证令牌"},
		{common.ErrTokenExpired, http.StatusUnauthorized, "令牌已过期"},
		{common.ErrorUnauthorized, http.StatusUnauthorized, "无效的令牌"},
	}

	registerErrors = []errorMapping{
		{common.ErrorValidation, http.StatusBadRequest, "请提供所有必要的注册信息"},
		{users.ErrUsernameTaken, http.StatusBadRequest, "用户名已被使用"},
		{users.ErrEmailTaken, http.StatusBadRequest, "邮箱已被注册"},
		{common.ErrorConflict, http.StatusBadRequest, "用户名或邮箱已被使用"},
		{nil, http.StatusInternalServerError, "注册失败"},
	}

	loginErrors = []errorMapping{
		{common.ErrorValidation, http.StatusBadRequest, "请提供邮箱和密码"},
		{common.ErrorUnauthorized, http.StatusUnauthorized, "邮箱或密码错误"},
		{nil, http.StatusInternalServerError, "登录失败"},
	}

	messageErrors = []errorMapping{
		{common.ErrorValidation, http.StatusBadRequest, "消息不能为空"},
		{nil, http.StatusInternalServerError, "无法获取AI回复，请稍后重试"},
	}

	historyErrors = []errorMapping{
		{nil, http.StatusInternalServerError, "获取消息历史失败"},
	}

	deleteErrors = []errorMapping{
		{nil, http.StatusInternalServerError, "删除消息失败"},
	}
)

// lookupError returns the first mapping matching err. A nil target is the
// catch-all; without one the result is a plain 500.
func lookupError(table []errorMapping, err error) errorMapping {
	for _, m := range table {
		if m.target == nil || errors.Is(err, m.target) {
			return m
		}
	}
	return errorMapping{status: http.StatusInternalServerError, message: http.StatusText(http.StatusInternalServerError)}
}

func (s *Server) respondError(c echo.Context, table []errorMapping, err error) error {
	m := lookupError(table, err)
	ctx := c.Request().Context()

	if m.status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "path", c.Path(), "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "path", c.Path(), "status", m.status, "error", err)
	}

	return c.JSON(m.status, ErrorResponse{Error: m.message})
}
