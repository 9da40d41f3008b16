package db

import (
	"github.com/dmitrijs2005/chatrelay/internal/server/messages"
	"github.com/dmitrijs2005/chatrelay/internal/server/users"
)

type InMemoryRepositoryManager struct {
	users    *users.MemoryRepository
	messages *messages.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		messages: messages.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Mode() Mode {
	return ModeEphemeral
}

func (m *InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *InMemoryRepositoryManager) Messages() messages.Repository {
	return m.messages
}

func (m *InMemoryRepositoryManager) MessageFallback() messages.Repository {
	return nil
}

func (m *InMemoryRepositoryManager) Close() error {
	return nil
}
