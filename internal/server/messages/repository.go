// Package messages is the conversation store: per-owner message history
// over a durable or in-memory Repository, with an in-memory write fallback
// when the durable backend fails mid-flight.
package messages

import (
	"context"

	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// Repository is implemented by the durable and the in-memory backends.
type Repository interface {
	Insert(ctx context.Context, m *models.Message) error

	// Newest returns up to limit messages of owner, newest first, skipping
	// the offset newest ones.
	Newest(ctx context.Context, owner models.OwnerRef, limit, offset int) ([]*models.Message, error)

	// DeleteAll removes every message of owner and reports how many went.
	DeleteAll(ctx context.Context, owner models.OwnerRef) (int64, error)
}
