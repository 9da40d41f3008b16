// Package auth issues and verifies the bearer credentials handed out at
// register and login time.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// TokenValidity is fixed; there is no refresh flow and no revocation.
const TokenValidity = 24 * time.Hour

// Claims is the token payload: the standard registered claims plus the
// identity of the user it was issued to.
type Claims struct {
	UserID   string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// Owner validates the id claim and converts it for the conversation store.
func (c *Claims) Owner() (models.OwnerRef, error) {
	owner, err := models.ParseOwnerRef(c.UserID)
	if err != nil {
		return models.OwnerRef{}, common.ErrInvalidToken
	}
	return owner, nil
}

type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secretKey string) *Issuer {
	return &Issuer{secret: []byte(secretKey), now: time.Now}
}

// Issue signs a 24h HS256 token for user.
func (i *Issuer) Issue(user *models.User) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenValidity)),
		},
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return tokenString, nil
}

// Verify checks signature, algorithm and expiry. Expired tokens yield
// common.ErrTokenExpired, anything else common.ErrInvalidToken; both match
// common.ErrorUnauthorized.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
