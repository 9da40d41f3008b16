package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/logging"
	"github.com/sony/gobreaker"
)

// BreakerSettings configures the circuit breaker in front of a Generator.
type BreakerSettings struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// the breaker opens once MinRequests have been seen and at least
	// FailureThreshold of them failed
	FailureThreshold float64
	MinRequests      uint32
}

// Breaker fails fast while the wrapped generator keeps failing, instead of
// making every user wait for the upstream timeout.
type Breaker struct {
	next Generator
	cb   *gobreaker.CircuitBreaker
}

func NewBreaker(next Generator, s BreakerSettings, logger logging.Logger) *Breaker {
	logger = logger.With("module", "llm_breaker")

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= s.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
		IsSuccessful: func(err error) bool {
			// a caller hanging up is not the upstream's fault
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Breaker{next: next, cb: cb}
}

func (b *Breaker) GenerateResponse(ctx context.Context, text string) (string, error) {
	out, err := b.cb.Execute(func() (any, error) {
		return b.next.GenerateResponse(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", common.ErrorGeneration, err)
		}
		return "", err
	}
	return out.(string), nil
}

// State is "closed", "half-open" or "open".
func (b *Breaker) State() string {
	return b.cb.State().String()
}
