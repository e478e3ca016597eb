package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"media2text/internal/app/api"
)

// MockTextGenerator implements api.TextGenerator. Without testify
// expectations it applies Transform to the user text, echoing it by default.
type MockTextGenerator struct {
	mock.Mock
	mu sync.Mutex

	Transform func(text string) string
	Requests  []api.GenerateRequest
}

var _ api.TextGenerator = (*MockTextGenerator)(nil)

func NewMockTextGenerator() *MockTextGenerator {
	return &MockTextGenerator{}
}

// NewTransformGenerator returns a generator that answers with fn(userText).
func NewTransformGenerator(fn func(string) string) *MockTextGenerator {
	return &MockTextGenerator{Transform: fn}
}

func (m *MockTextGenerator) Name() string {
	return "mock-generator"
}

func (m *MockTextGenerator) Generate(ctx context.Context, req api.GenerateRequest) (string, error) {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()

	if len(m.ExpectedCalls) > 0 {
		args := m.Called(ctx, req)
		return args.String(0), args.Error(1)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Transform != nil {
		return m.Transform(req.UserText), nil
	}
	return req.UserText, nil
}

func (m *MockTextGenerator) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}
