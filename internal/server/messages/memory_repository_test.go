package messages

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOwner() models.OwnerRef {
	return models.MustOwnerRef(uuid.NewString())
}

func msg(owner models.OwnerRef, id string, at time.Time, content string) *models.Message {
	return &models.Message{ID: id, Owner: owner, Content: content, Role: models.RoleUser, CreatedAt: at}
}

func contents(list []*models.Message) []string {
	out := make([]string, 0, len(list))
	for _, m := range list {
		out = append(out, m.Content)
	}
	return out
}

func TestMemoryRepository_NewestWindow(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	owner := newOwner()
	t0 := time.Now()

	for i, c := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, r.Insert(ctx, msg(owner, string(rune('0'+i)), t0.Add(time.Duration(i)*time.Second), c)))
	}

	got, err := r.Newest(ctx, owner, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"e", "d"}, contents(got))

	got, err = r.Newest(ctx, owner, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, contents(got))

	got, err = r.Newest(ctx, owner, 10, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = r.Newest(ctx, newOwner(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryRepository_OutOfOrderInsertIsSorted(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	owner := newOwner()
	t0 := time.Now()

	require.NoError(t, r.Insert(ctx, msg(owner, "2", t0.Add(2*time.Second), "late")))
	require.NoError(t, r.Insert(ctx, msg(owner, "0", t0, "early")))
	require.NoError(t, r.Insert(ctx, msg(owner, "1", t0.Add(time.Second), "middle")))

	got, err := r.Newest(ctx, owner, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"late", "middle", "early"}, contents(got))
}

func TestMemoryRepository_CopiesAndOwnerIsolation(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	alice, bob := newOwner(), newOwner()

	m := msg(alice, "1", time.Now(), "hello")
	require.NoError(t, r.Insert(ctx, m))
	require.NoError(t, r.Insert(ctx, msg(bob, "2", time.Now(), "bob's")))
	m.Content = "mutated"

	got, err := r.Newest(ctx, alice, 10, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Content)
	got[0].Content = "mutated again"

	n, err := r.DeleteAll(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := r.Newest(ctx, bob, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob's"}, contents(left))
}
