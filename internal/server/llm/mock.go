package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/chatrelay/internal/common"
)

// MockGenerator answers locally without any network call. Tests can make
// it fail or block through its exported fields.
type MockGenerator struct {
	mu    sync.Mutex
	Err   error
	Reply func(text string) string
	calls []string
}

func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) GenerateResponse(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	err, reply := m.Err, m.Reply
	m.mu.Unlock()

	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorGeneration, err)
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorGeneration, err)
	}
	if reply != nil {
		return reply(text), nil
	}
	return "echo: " + text, nil
}

// Calls returns the texts received so far.
func (m *MockGenerator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}
