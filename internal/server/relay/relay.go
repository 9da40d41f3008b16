// Package relay runs one exchange: store the user's message, ask the reply
// collaborator, store the reply and hand it back.
package relay

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/dmitrijs2005/chatrelay/internal/server/llm"
	"github.com/dmitrijs2005/chatrelay/internal/server/metrics"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

// Apology is what live connections receive instead of a reply when the
// exchange fails.
const Apology = "抱歉，我暂时无法回答，请稍后再试。"

// Store is the part of the conversation store the relay writes to.
type Store interface {
	Append(ctx context.Context, owner models.OwnerRef, content string, role models.Role) (*models.Message, error)
}

// Recorder receives exchange outcomes. *metrics.Metrics implements it.
type Recorder interface {
	Exchange(transport, outcome string)
	PersistenceFailure(stage string)
	GenerationFailure()
}

type Service struct {
	store     Store
	generator llm.Generator
	logger    logging.Logger
	recorder  Recorder
}

var _ Recorder = (*metrics.Metrics)(nil)

func NewService(store Store, generator llm.Generator, logger logging.Logger, recorder Recorder) *Service {
	return &Service{
		store:     store,
		generator: generator,
		logger:    logger.With("module", "relay"),
		recorder:  recorder,
	}
}

// Handle runs the exchange for owner. transport only labels metrics and
// logs.
//
// Errors:
//   - common.ErrorValidation when text is blank; nothing is stored.
//   - common.ErrorPersistence when the user's message cannot be stored; the
//     collaborator is not called.
//   - common.ErrorGeneration when the collaborator fails; the user's message
//     stays stored.
//
// A reply that cannot be stored is logged and still returned.
func (s *Service) Handle(ctx context.Context, transport string, owner models.OwnerRef, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		s.recorder.Exchange(transport, metrics.OutcomeRejected)
		return "", fmt.Errorf("%w: message is empty", common.ErrorValidation)
	}

	if _, err := s.store.Append(ctx, owner, text, models.RoleUser); err != nil {
		s.recorder.PersistenceFailure(metrics.StageInbound)
		s.recorder.Exchange(transport, metrics.OutcomeRejected)
		s.logger.Error(ctx, "failed to store user message", "owner", owner.String(), "error", err)
		if errors.Is(err, common.ErrorValidation) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", common.ErrorPersistence, err)
	}

	// From here on the exchange finishes even if the caller goes away, so
	// a stored question always gets its stored answer.
	detached := context.WithoutCancel(ctx)

	reply, err := s.generator.GenerateResponse(detached, text)
	if err != nil {
		s.recorder.GenerationFailure()
		s.recorder.Exchange(transport, metrics.OutcomeGenerationFailed)
		s.logger.Error(ctx, "reply generation failed", "owner", owner.String(), "error", err)
		if !errors.Is(err, common.ErrorGeneration) {
			err = fmt.Errorf("%w: %v", common.ErrorGeneration, err)
		}
		return "", err
	}

	if _, err := s.store.Append(detached, owner, reply, models.RoleBot); err != nil {
		s.recorder.PersistenceFailure(metrics.StageOutbound)
		s.logger.Warn(ctx, "failed to store reply", "owner", owner.String(), "error", err)
	}

	s.recorder.Exchange(transport, metrics.OutcomeDelivered)
	return reply, nil
}
