// Package db resolves, once per process, which storage backend the relay
// runs on and hands out the repositories for it.
package db

import (
	"github.com/dmitrijs2005/chatrelay/internal/server/messages"
	"github.com/dmitrijs2005/chatrelay/internal/server/users"
)

// Mode names the active backend.
type Mode string

const (
	ModeDurable   Mode = "durable"
	ModeEphemeral Mode = "ephemeral"
)

// RepositoryManager is the outcome of storage selection. Every caller
// sees the same backend for the lifetime of the process.
type RepositoryManager interface {
	Mode() Mode
	Users() users.Repository
	Messages() messages.Repository

	// MessageFallback is where message writes go when the durable backend
	// rejects them. It is nil in ephemeral mode.
	MessageFallback() messages.Repository

	Close() error
}
