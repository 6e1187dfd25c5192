package mocks

import (
	"context"
	"sync"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// MockTransport is an in-memory MediaTransport for testing
type MockTransport struct {
	mu          sync.Mutex
	position    float64
	playing     bool
	loaded      string
	seeks       []float64
	subscribers map[int]func(domain.PlayState)
	nextSub     int

	// PositionErr makes Position fail, simulating an unavailable engine
	PositionErr error
	// PlayErr makes Play fail
	PlayErr error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{subscribers: make(map[int]func(domain.PlayState))}
}

func (m *MockTransport) Load(ctx context.Context, path string, category domain.MimeCategory) error {
	m.mu.Lock()
	m.loaded = path
	m.position = 0
	wasPlaying := m.playing
	m.playing = false
	m.mu.Unlock()

	if wasPlaying {
		m.notify(domain.Paused)
	}
	return nil
}

func (m *MockTransport) Position(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PositionErr != nil {
		return 0, m.PositionErr
	}
	return m.position, nil
}

func (m *MockTransport) SetPosition(ctx context.Context, seconds float64) error {
	m.mu.Lock()
	m.position = seconds
	m.seeks = append(m.seeks, seconds)
	m.mu.Unlock()
	return nil
}

func (m *MockTransport) Play(ctx context.Context) error {
	m.mu.Lock()
	if m.PlayErr != nil {
		err := m.PlayErr
		m.mu.Unlock()
		return err
	}
	changed := !m.playing
	m.playing = true
	m.mu.Unlock()

	if changed {
		m.notify(domain.Playing)
	}
	return nil
}

func (m *MockTransport) Pause(ctx context.Context) error {
	m.mu.Lock()
	changed := m.playing
	m.playing = false
	m.mu.Unlock()

	if changed {
		m.notify(domain.Paused)
	}
	return nil
}

func (m *MockTransport) Subscribe(fn func(domain.PlayState)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subscribers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

func (m *MockTransport) notify(state domain.PlayState) {
	m.mu.Lock()
	fns := make([]func(domain.PlayState), 0, len(m.subscribers))
	for _, fn := range m.subscribers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

// SetCurrent moves the playhead without recording a seek, like the user dragging it
func (m *MockTransport) SetCurrent(seconds float64) {
	m.mu.Lock()
	m.position = seconds
	m.mu.Unlock()
}

func (m *MockTransport) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *MockTransport) Loaded() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

func (m *MockTransport) Seeks() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float64, len(m.seeks))
	copy(out, m.seeks)
	return out
}

func (m *MockTransport) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscribers)
}
