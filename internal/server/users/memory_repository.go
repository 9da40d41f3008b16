package users

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// MemoryRepository keeps users in process memory. Records are copied on
// the way in and out, so callers never share state with the store.
type MemoryRepository struct {
	mu         sync.RWMutex
	byID       map[string]*models.User
	byUsername map[string]string
	byEmail    map[string]string
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byID:       make(map[string]*models.User),
		byUsername: make(map[string]string),
		byEmail:    make(map[string]string),
	}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byUsername[user.Username]; ok {
		return nil, ErrUsernameTaken
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return nil, ErrEmailTaken
	}
	if _, ok := r.byID[user.ID]; ok {
		return nil, fmt.Errorf("%w: id", common.ErrorConflict)
	}

	r.byID[user.ID] = user.Clone()
	r.byUsername[user.Username] = user.ID
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *MemoryRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lookup(r.byUsername, username)
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lookup(r.byEmail, email)
}

// lookup must be called with mu held.
func (r *MemoryRepository) lookup(index map[string]string, key string) (*models.User, error) {
	id, ok := index[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.byID[id].Clone(), nil
}

func (r *MemoryRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	u.LastLoginAt = &at

	return nil
}
