package messages

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// MemoryRepository keeps each owner's messages in a slice ordered oldest
// first. Records are copied in and out.
type MemoryRepository struct {
	mu      sync.RWMutex
	byOwner map[models.OwnerRef][]*models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byOwner: make(map[models.OwnerRef][]*models.Message)}
}

func (r *MemoryRepository) Insert(ctx context.Context, m *models.Message) error {
	c := *m

	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byOwner[m.Owner]
	// first position whose message is newer than c; usually len(list)
	i := sort.Search(len(list), func(i int) bool { return list[i].Newer(&c) })
	list = append(list, nil)
	copy(list[i+1:], list[i:])
	list[i] = &c
	r.byOwner[m.Owner] = list

	return nil
}

func (r *MemoryRepository) Newest(ctx context.Context, owner models.OwnerRef, limit, offset int) ([]*models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if offset < 0 {
		offset = 0
	}

	list := r.byOwner[owner]
	result := make([]*models.Message, 0)

	for i := len(list) - 1 - offset; i >= 0 && len(result) < limit; i-- {
		c := *list[i]
		result = append(result, &c)
	}

	return result, nil
}

func (r *MemoryRepository) DeleteAll(ctx context.Context, owner models.OwnerRef) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := int64(len(r.byOwner[owner]))
	delete(r.byOwner, owner)

	return n, nil
}
