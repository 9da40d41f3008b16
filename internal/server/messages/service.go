package messages

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
	"github.com/google/uuid"
)

const (
	DefaultHistoryLimit = 50
	DefaultRecentPairs  = 10
)

// Recorder is notified when a write had to go to the fallback store.
type Recorder interface {
	FallbackWrite()
}

type nopRecorder struct{}

func (nopRecorder) FallbackWrite() {}

type Service struct {
	primary  Repository
	fallback Repository
	logger   logging.Logger
	recorder Recorder
	now      func() time.Time
}

// NewService builds the store over primary. fallback may be nil; when set,
// writes that fail on primary are retried there once and reads merge both.
func NewService(primary, fallback Repository, logger logging.Logger, recorder Recorder) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		primary:  primary,
		fallback: fallback,
		logger:   logger.With("module", "messages"),
		recorder: recorder,
		now:      time.Now,
	}
}

// Append stores one message for owner. The id is time-ordered and the
// timestamp is taken here, at microsecond precision so both backends
// hand back identical values.
func (s *Service) Append(ctx context.Context, owner models.OwnerRef, content string, role models.Role) (*models.Message, error) {
	if owner.IsZero() {
		return nil, fmt.Errorf("%w: missing owner", common.ErrorValidation)
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: message content is empty", common.ErrorValidation)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", common.ErrorValidation, role)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	m := &models.Message{
		ID:        id.String(),
		Owner:     owner,
		Content:   content,
		Role:      role,
		CreatedAt: s.now().UTC().Truncate(time.Microsecond),
	}

	err = s.primary.Insert(ctx, m)
	if err == nil {
		return m, nil
	}

	// a caller that gave up is not a backend failure; the message must not
	// end up stranded in memory
	if s.fallback == nil || callerGone(ctx, err) {
		return nil, fmt.Errorf("%w: %w", common.ErrorPersistence, err)
	}

	s.logger.Warn(ctx, "durable write failed, keeping message in memory",
		"owner", owner.String(), "role", string(role), "error", err)

	if ferr := s.fallback.Insert(ctx, m); ferr != nil {
		return nil, fmt.Errorf("%w: %v; fallback: %v", common.ErrorPersistence, err, ferr)
	}
	s.recorder.FallbackWrite()

	return m, nil
}

// History returns the window [offset, offset+limit) of owner's messages
// counted from the newest, in ascending order. Negative arguments count
// as zero.
func (s *Service) History(ctx context.Context, owner models.OwnerRef, limit, offset int) ([]*models.Message, error) {
	limit = max(limit, 0)
	offset = max(offset, 0)

	if limit == 0 {
		return []*models.Message{}, nil
	}

	var newest []*models.Message
	var err error

	if s.fallback == nil {
		newest, err = s.primary.Newest(ctx, owner, limit, offset)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
		}
	} else {
		newest, err = s.mergedNewest(ctx, owner, limit, offset)
		if err != nil {
			return nil, err
		}
	}

	slices.Reverse(newest)
	return newest, nil
}

// mergedNewest reads the first offset+limit messages from both stores,
// merges them newest first and cuts the requested window.
func (s *Service) mergedNewest(ctx context.Context, owner models.OwnerRef, limit, offset int) ([]*models.Message, error) {
	n := limit + offset
	if n < 0 {
		n = math.MaxInt32
	}

	a, perr := s.primary.Newest(ctx, owner, n, 0)
	b, err := s.fallback.Newest(ctx, owner, n, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}
	if perr != nil {
		// with rescued messages at hand, serve those instead of nothing
		if len(b) == 0 || callerGone(ctx, perr) {
			return nil, fmt.Errorf("%w: %w", common.ErrorPersistence, perr)
		}
		s.logger.Warn(ctx, "durable read failed, serving in-memory messages only",
			"owner", owner.String(), "error", perr)
		a = nil
	}

	merged := make([]*models.Message, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case j >= len(b) || (i < len(a) && a[i].Newer(b[j])):
			merged = append(merged, a[i])
			i++
		default:
			merged = append(merged, b[j])
			j++
		}
	}

	if offset >= len(merged) {
		return []*models.Message{}, nil
	}
	return merged[offset:min(offset+limit, len(merged))], nil
}

// callerGone reports whether err is down to ctx being cancelled or timing
// out rather than to the backend.
func callerGone(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Recent returns the last pairCount exchanges (two messages each).
func (s *Service) Recent(ctx context.Context, owner models.OwnerRef, pairCount int) ([]*models.Message, error) {
	return s.History(ctx, owner, max(pairCount, 0)*2, 0)
}

// All returns the complete conversation of owner, oldest first.
func (s *Service) All(ctx context.Context, owner models.OwnerRef) ([]*models.Message, error) {
	return s.History(ctx, owner, math.MaxInt32, 0)
}

// DeleteAll removes owner's messages from every store and returns the total.
func (s *Service) DeleteAll(ctx context.Context, owner models.OwnerRef) (int64, error) {
	n, err := s.primary.DeleteAll(ctx, owner)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	if s.fallback != nil {
		m, err := s.fallback.DeleteAll(ctx, owner)
		if err != nil {
			return n, fmt.Errorf("%w: %v", common.ErrorPersistence, err)
		}
		n += m
	}

	return n, nil
}
