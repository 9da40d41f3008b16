// Package users is the identity store: registration, lookup, password
// verification and login bookkeeping over a pluggable Repository.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// Repository is implemented by the durable and the in-memory backends.
// Lookups return common.ErrorNotFound for unknown keys; Create returns
// ErrUsernameTaken or ErrEmailTaken when either is already in use.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	TouchLogin(ctx context.Context, id string, at time.Time) error
}
