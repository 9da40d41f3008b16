package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// ErrMissingToken is returned when a request carries no credential at all.
var ErrMissingToken = fmt.Errorf("missing token: %w", common.ErrorUnauthorized)

// TokenFromRequest reads a bearer token from the Authorization header.
// With allowQuery it also accepts the token query parameter, which is the
// only option browsers have when opening a WebSocket.
func TokenFromRequest(r *http.Request, allowQuery bool) string {
	if h := r.Header.Get(common.AuthorizationHeaderName); h != "" {
		if len(h) > len(common.BearerPrefix) && strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
			return strings.TrimSpace(h[len(common.BearerPrefix):])
		}
		return ""
	}
	if allowQuery {
		return r.URL.Query().Get(common.TokenQueryParam)
	}
	return ""
}

// Authenticate verifies the credential on r and resolves its owner.
func (i *Issuer) Authenticate(r *http.Request, allowQuery bool) (*Claims, models.OwnerRef, error) {
	token := TokenFromRequest(r, allowQuery)
	if token == "" {
		return nil, models.OwnerRef{}, ErrMissingToken
	}

	claims, err := i.Verify(token)
	if err != nil {
		return nil, models.OwnerRef{}, err
	}

	owner, err := claims.Owner()
	if err != nil {
		return nil, models.OwnerRef{}, err
	}

	return claims, owner, nil
}
