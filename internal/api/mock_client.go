package api

import (
	"context"
	"sync"

	"github.com/diogo/aichat/internal/models"
)

// MockClient is a mock implementation of ClientInterface for testing
type MockClient struct {
	// Mock return values
	Reply string
	Err   error
	Model models.Model
	// Hook runs inside GenerateContent before returning; tests use it to block or panic
	Hook func(ctx context.Context, prompt string)

	mu          sync.Mutex
	prompts     []string
	CloseCalled bool
}

// Ensure MockClient implements ClientInterface
var _ ClientInterface = (*MockClient)(nil)

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

func (m *MockClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()

	if m.Hook != nil {
		m.Hook(ctx, prompt)
	}
	return m.Reply, m.Err
}

func (m *MockClient) GetModel() models.Model {
	if m.Model.Name == "" {
		return models.DefaultModel
	}
	return m.Model
}

func (m *MockClient) Close() {
	m.CloseCalled = true
}

// Prompts returns the prompts received so far
func (m *MockClient) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}
