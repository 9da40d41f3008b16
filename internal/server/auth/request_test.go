package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		url        string
		allowQuery bool
		want       string
	}{
		{"bearer header", "Bearer abc", "/", false, "abc"},
		{"lowercase scheme", "bearer abc", "/", false, "abc"},
		{"wrong scheme", "Basic abc", "/", true, ""},
		{"scheme only", "Bearer ", "/", false, ""},
		{"query ignored", "", "/?token=q", false, ""},
		{"query allowed", "", "/?token=q", true, "q"},
		{"header wins", "Bearer h", "/?token=q", true, "h"},
		{"nothing", "", "/", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, TokenFromRequest(r, tt.allowQuery))
		})
	}
}

func TestAuthenticate(t *testing.T) {
	issuer := NewIssuer("secret")
	user := &models.User{ID: "5b6b0a6e-3c1f-4d0a-9a7e-1f0f0c6d9e21", Username: "alice", Email: "a@x.com"}

	token, err := issuer.Issue(user)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil)
	claims, owner, err := issuer.Authenticate(r, true)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, user.ID, owner.String())

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	_, _, err = issuer.Authenticate(r, true)
	assert.True(t, errors.Is(err, ErrMissingToken))
	assert.True(t, errors.Is(err, common.ErrorUnauthorized))

	r.Header.Set("Authorization", "Bearer not-a-token")
	_, _, err = issuer.Authenticate(r, false)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))

	bad := &models.User{ID: "not-a-uuid", Username: "mallory"}
	token, err = issuer.Issue(bad)
	require.NoError(t, err)
	r.Header.Set("Authorization", "Bearer "+token)
	_, _, err = issuer.Authenticate(r, false)
	assert.True(t, errors.Is(err, common.ErrInvalidToken))
}
