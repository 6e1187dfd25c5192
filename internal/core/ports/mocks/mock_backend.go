package mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

// MockBackend is a mock implementation of the Backend interface for testing.
// Each *Func field overrides the default behaviour when set.
type MockBackend struct {
	mu sync.Mutex

	UploadFunc func(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error)
	AskFunc    func(ctx context.Context, req ports.AskRequest) (*ports.AskResult, error)
	StatusFunc func(ctx context.Context, mediaID string) (*ports.TranscriptStatus, error)
	InfoFunc   func(ctx context.Context, mediaID string) (json.RawMessage, error)
	DeleteFunc func(ctx context.Context, mediaID string) error

	uploadCalls int
	askCalls    int
	statusCalls int
	deleted     []string
	asks        []ports.AskRequest
}

// NewMockBackend creates a backend that accepts everything and answers with
// 87% confidence
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Upload returns "media-N" with a ready transcript unless UploadFunc is set
func (m *MockBackend) Upload(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
	m.mu.Lock()
	m.uploadCalls++
	n := m.uploadCalls
	fn := m.UploadFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	if req.OnProgress != nil {
		req.OnProgress(100)
	}
	return &ports.UploadResult{
		ID:         fmt.Sprintf("media-%d", n),
		Transcript: "Transcript of " + req.File.Name,
	}, nil
}

// Ask echoes the question unless AskFunc is set
func (m *MockBackend) Ask(ctx context.Context, req ports.AskRequest) (*ports.AskResult, error) {
	m.mu.Lock()
	m.askCalls++
	m.asks = append(m.asks, req)
	fn := m.AskFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, req)
	}
	confidence := 87.0
	return &ports.AskResult{
		Answer:     "Answer to: " + req.Question,
		Confidence: &confidence,
		Context:    req.Context,
	}, nil
}

// Status reports ready unless StatusFunc is set
func (m *MockBackend) Status(ctx context.Context, mediaID string) (*ports.TranscriptStatus, error) {
	m.mu.Lock()
	m.statusCalls++
	fn := m.StatusFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, mediaID)
	}
	return &ports.TranscriptStatus{Ready: true, Progress: 100}, nil
}

// Info returns a minimal metadata document unless InfoFunc is set
func (m *MockBackend) Info(ctx context.Context, mediaID string) (json.RawMessage, error) {
	m.mu.Lock()
	fn := m.InfoFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, mediaID)
	}
	return json.RawMessage(fmt.Sprintf(`{"id":%q}`, mediaID)), nil
}

// Delete records the id unless DeleteFunc is set
func (m *MockBackend) Delete(ctx context.Context, mediaID string) error {
	m.mu.Lock()
	m.deleted = append(m.deleted, mediaID)
	fn := m.DeleteFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, mediaID)
	}
	return nil
}

func (m *MockBackend) UploadCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uploadCalls
}

func (m *MockBackend) AskCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.askCalls
}

func (m *MockBackend) StatusCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls
}

// AskRequests returns a copy of every ask received
func (m *MockBackend) AskRequests() []ports.AskRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ports.AskRequest, len(m.asks))
	copy(out, m.asks)
	return out
}

// Deleted returns the ids passed to Delete
func (m *MockBackend) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}
