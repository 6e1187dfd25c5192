package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// MockPreviewStore hands out MockHandles and remembers them
type MockPreviewStore struct {
	mu      sync.Mutex
	handles []*MockHandle

	// AcquireErr makes Acquire fail
	AcquireErr error
}

func NewMockPreviewStore() *MockPreviewStore {
	return &MockPreviewStore{}
}

func (s *MockPreviewStore) Acquire(ctx context.Context, file domain.MediaFile) (domain.PreviewHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.AcquireErr != nil {
		return nil, s.AcquireErr
	}

	h := &MockHandle{
		id:   fmt.Sprintf("preview-%d", len(s.handles)+1),
		path: "/mock/previews/" + file.Name,
	}
	s.handles = append(s.handles, h)
	return h, nil
}

// Handles returns every handle acquired so far
func (s *MockPreviewStore) Handles() []*MockHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*MockHandle, len(s.handles))
	copy(out, s.handles)
	return out
}

// Outstanding counts handles that were never released
func (s *MockPreviewStore) Outstanding() int {
	n := 0
	for _, h := range s.Handles() {
		if h.Releases() == 0 {
			n++
		}
	}
	return n
}

// MockHandle counts releases so tests can catch leaks and double frees
type MockHandle struct {
	mu       sync.Mutex
	id       string
	path     string
	releases int
}

func (h *MockHandle) ID() string   { return h.id }
func (h *MockHandle) Path() string { return h.path }

func (h *MockHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.releases++
	if h.releases > 1 {
		return domain.ErrHandleReleased
	}
	return nil
}

// Releases returns how many times Release was called
func (h *MockHandle) Releases() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releases
}
