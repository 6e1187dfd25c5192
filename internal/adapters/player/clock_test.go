package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeClock) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeClock) advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}

func TestClockTransport_Playhead(t *testing.T) {
	// Setup
	clock := &fakeClock{t: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	tr := NewClockTransport(clock.now)
	ctx := context.Background()

	if _, err := tr.Position(ctx); err == nil {
		t.Error("expected error before anything is loaded")
	}
	if err := tr.Load(ctx, "/tmp/a.mp3", domain.CategoryAudio); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// Paused playhead does not move
	clock.advance(5 * time.Second)
	if pos, _ := tr.Position(ctx); pos != 0 {
		t.Errorf("expected 0 while paused, got %v", pos)
	}

	// Playing advances with the clock
	_ = tr.Play(ctx)
	clock.advance(3 * time.Second)
	if pos, _ := tr.Position(ctx); pos != 3 {
		t.Errorf("expected 3, got %v", pos)
	}

	// Seeking while playing restarts from the new offset
	_ = tr.SetPosition(ctx, 60)
	clock.advance(2 * time.Second)
	if pos, _ := tr.Position(ctx); pos != 62 {
		t.Errorf("expected 62, got %v", pos)
	}

	// Pause freezes it
	_ = tr.Pause(ctx)
	clock.advance(10 * time.Second)
	if pos, _ := tr.Position(ctx); pos != 62 {
		t.Errorf("expected 62 after pause, got %v", pos)
	}

	// Negative seeks clamp to 0
	_ = tr.SetPosition(ctx, -4)
	if pos, _ := tr.Position(ctx); pos != 0 {
		t.Errorf("expected clamp to 0, got %v", pos)
	}
}

func TestClockTransport_Notifications(t *testing.T) {
	tr := NewClockTransport(nil)
	ctx := context.Background()
	_ = tr.Load(ctx, "/tmp/v.mp4", domain.CategoryVideo)

	var got []domain.PlayState
	unsubscribe := tr.Subscribe(func(s domain.PlayState) { got = append(got, s) })

	_ = tr.Play(ctx)
	_ = tr.Play(ctx) // no change, no event
	_ = tr.Pause(ctx)
	_ = tr.Play(ctx)
	_ = tr.Load(ctx, "/tmp/other.mp4", domain.CategoryVideo) // reload pauses

	want := []domain.PlayState{domain.Playing, domain.Paused, domain.Playing, domain.Paused}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	unsubscribe()
	unsubscribe()
	_ = tr.Play(ctx)
	if len(got) != len(want) {
		t.Error("expected no events after unsubscribe")
	}
	if tr.observers.count() != 0 {
		t.Errorf("expected no observers, got %d", tr.observers.count())
	}
}

func TestClockTransport_PlayWithoutMedia(t *testing.T) {
	tr := NewClockTransport(nil)
	if err := tr.Play(context.Background()); err == nil {
		t.Error("expected error playing with nothing loaded")
	}
}
