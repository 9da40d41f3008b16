package relay

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/llm"
	"github.com/dmitrijs2005/chatrelay/internal/server/messages"
	"github.com/dmitrijs2005/chatrelay/internal/server/metrics"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore fails every append whose role is in failOn.
type failingStore struct {
	next   Store
	failOn map[models.Role]bool
}

func (f *failingStore) Append(ctx context.Context, owner models.OwnerRef, content string, role models.Role) (*models.Message, error) {
	if f.failOn[role] {
		return nil, errors.New("disk on fire")
	}
	return f.next.Append(ctx, owner, content, role)
}

type recorded struct {
	exchanges   map[string]int
	persistence map[string]int
	generation  int
}

func newRecorded() *recorded {
	return &recorded{exchanges: map[string]int{}, persistence: map[string]int{}}
}

func (r *recorded) Exchange(transport, outcome string) { r.exchanges[transport+"/"+outcome]++ }
func (r *recorded) PersistenceFailure(stage string)    { r.persistence[stage]++ }
func (r *recorded) GenerationFailure()                 { r.generation++ }

func setup(t *testing.T) (*messages.Service, *llm.MockGenerator, models.OwnerRef) {
	t.Helper()
	store := messages.NewService(messages.NewMemoryRepository(), nil, logging.Nop{}, nil)
	gen := llm.NewMockGenerator()
	gen.Reply = func(string) string { return "hello" }
	return store, gen, models.MustOwnerRef(uuid.NewString())
}

func TestHandle_Delivered(t *testing.T) {
	store, gen, owner := setup(t)
	rec := newRecorded()
	s := NewService(store, gen, logging.Nop{}, rec)

	reply, err := s.Handle(context.Background(), metrics.TransportHTTP, owner, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)

	history, err := store.History(context.Background(), owner, 50, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.RoleUser, history[0].Role)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, models.RoleBot, history[1].Role)
	assert.Equal(t, "hello", history[1].Content)
	assert.Equal(t, 1, rec.exchanges["http/delivered"])
}

func TestHandle_EmptyText(t *testing.T) {
	store, gen, owner := setup(t)
	s := NewService(store, gen, logging.Nop{}, newRecorded())

	_, err := s.Handle(context.Background(), metrics.TransportWS, owner, "   ")
	assert.True(t, errors.Is(err, common.ErrorValidation))
	assert.Empty(t, gen.Calls())

	history, err := store.All(context.Background(), owner)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestHandle_InboundPersistenceFailure(t *testing.T) {
	store, gen, owner := setup(t)
	rec := newRecorded()
	fs := &failingStore{next: store, failOn: map[models.Role]bool{models.RoleUser: true}}
	s := NewService(fs, gen, logging.Nop{}, rec)

	_, err := s.Handle(context.Background(), metrics.TransportHTTP, owner, "hi")
	assert.True(t, errors.Is(err, common.ErrorPersistence))
	assert.Empty(t, gen.Calls(), "collaborator must not be called")
	assert.Equal(t, 1, rec.persistence[metrics.StageInbound])
}

func TestHandle_GenerationFailureKeepsInbound(t *testing.T) {
	store, gen, owner := setup(t)
	gen.Err = errors.New("upstream timeout")
	rec := newRecorded()
	s := NewService(store, gen, logging.Nop{}, rec)

	_, err := s.Handle(context.Background(), metrics.TransportWS, owner, "hi")
	assert.True(t, errors.Is(err, common.ErrorGeneration))
	assert.Equal(t, 1, rec.generation)
	assert.Equal(t, 1, rec.exchanges["ws/generation_failed"])

	history, err := store.All(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, models.RoleUser, history[0].Role)
}

func TestHandle_OutboundFailureStillReplies(t *testing.T) {
	store, gen, owner := setup(t)
	rec := newRecorded()
	fs := &failingStore{next: store, failOn: map[models.Role]bool{models.RoleBot: true}}
	s := NewService(fs, gen, logging.Nop{}, rec)

	reply, err := s.Handle(context.Background(), metrics.TransportHTTP, owner, "hi")
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, 1, rec.persistence[metrics.StageOutbound])

	history, err := store.All(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestHandle_CallerCancellationDoesNotAbortGeneration(t *testing.T) {
	store, gen, owner := setup(t)
	s := NewService(store, gen, logging.Nop{}, newRecorded())

	ctx, cancel := context.WithCancel(context.Background())
	gen.Reply = func(string) string {
		cancel()
		return "late but fine"
	}

	reply, err := s.Handle(ctx, metrics.TransportWS, owner, "hi")
	require.NoError(t, err)
	assert.Equal(t, "late but fine", reply)

	history, err := store.All(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
