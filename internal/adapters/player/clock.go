package player

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// ClockTransport is a headless player. It renders nothing and keeps a
// virtual playhead that advances with wall-clock time while playing.
type ClockTransport struct {
	mu        sync.Mutex
	now       func() time.Time
	path      string
	category  domain.MimeCategory
	offset    float64   // Playhead at the last play/pause/seek
	startedAt time.Time // Zero while paused
	observers observers
}

// NewClockTransport creates a paused transport. now may be nil.
func NewClockTransport(now func() time.Time) *ClockTransport {
	if now == nil {
		now = time.Now
	}
	return &ClockTransport{now: now}
}

func (c *ClockTransport) Load(ctx context.Context, path string, category domain.MimeCategory) error {
	c.mu.Lock()
	wasPlaying := !c.startedAt.IsZero()
	c.path = path
	c.category = category
	c.offset = 0
	c.startedAt = time.Time{}
	c.mu.Unlock()

	if wasPlaying {
		c.observers.notify(domain.Paused)
	}
	return nil
}

func (c *ClockTransport) Position(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.path == "" {
		return 0, errors.New("nothing loaded")
	}
	return c.positionLocked(), nil
}

func (c *ClockTransport) SetPosition(ctx context.Context, seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.offset = domain.ClampPosition(seconds)
	if !c.startedAt.IsZero() {
		c.startedAt = c.now()
	}
	return nil
}

func (c *ClockTransport) Play(ctx context.Context) error {
	c.mu.Lock()
	if c.path == "" {
		c.mu.Unlock()
		return errors.New("nothing loaded")
	}
	if !c.startedAt.IsZero() {
		c.mu.Unlock()
		return nil
	}
	c.startedAt = c.now()
	c.mu.Unlock()

	c.observers.notify(domain.Playing)
	return nil
}

func (c *ClockTransport) Pause(ctx context.Context) error {
	c.mu.Lock()
	if c.startedAt.IsZero() {
		c.mu.Unlock()
		return nil
	}
	c.offset = c.positionLocked()
	c.startedAt = time.Time{}
	c.mu.Unlock()

	c.observers.notify(domain.Paused)
	return nil
}

func (c *ClockTransport) Subscribe(fn func(domain.PlayState)) func() {
	return c.observers.subscribe(fn)
}

// Loaded returns the path of the current media, or ""
func (c *ClockTransport) Loaded() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

func (c *ClockTransport) positionLocked() float64 {
	if c.startedAt.IsZero() {
		return c.offset
	}
	return c.offset + c.now().Sub(c.startedAt).Seconds()
}
