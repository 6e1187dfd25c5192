package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

// SessionOption configures a QASession
type SessionOption func(*QASession)

// WithStrictClear drops answers that resolve after Clear instead of
// appending them to the emptied log
func WithStrictClear() SessionOption {
	return func(s *QASession) { s.strictClear = true }
}

// WithSessionClock overrides the wall clock used for entry timestamps
func WithSessionClock(now func() time.Time) SessionOption {
	return func(s *QASession) { s.now = now }
}

// WithSessionLogger sets the session logger
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(s *QASession) { s.logger = orDiscard(logger) }
}

func withChangeHook(fn func()) SessionOption {
	return func(s *QASession) { s.notify = fn }
}

// QASession owns the conversation log for one transcript-ready asset
type QASession struct {
	asset     *domain.MediaAsset
	backend   ports.Backend
	transport ports.MediaTransport

	strictClear bool
	now         func() time.Time
	logger      *slog.Logger
	notify      func()

	mu         sync.Mutex
	entries    []domain.ConversationEntry
	pending    bool
	lastError  string
	generation uint64 // Bumped by Clear
	detached   bool   // Set once the controller replaced this session
}

// NewQASession creates a session. The asset must have a ready transcript.
func NewQASession(asset *domain.MediaAsset, backend ports.Backend, transport ports.MediaTransport, opts ...SessionOption) (*QASession, error) {
	if asset == nil {
		return nil, domain.ErrNoSession
	}
	if !asset.TranscriptReady {
		return nil, domain.ErrTranscriptNotReady
	}

	s := &QASession{
		asset:     asset,
		backend:   backend,
		transport: transport,
		now:       time.Now,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ask appends a Question right away, asks the backend and appends the Answer
// with the same position snapshot. A failed call leaves the Question in place
// and records LastError.
func (s *QASession) Ask(ctx context.Context, text string) (domain.Exchange, error) {
	question := strings.TrimSpace(text)
	if question == "" {
		return domain.Exchange{}, domain.ErrEmptyQuestion
	}
	if !s.asset.TranscriptReady {
		return domain.Exchange{}, domain.ErrTranscriptNotReady
	}

	s.mu.Lock()
	if s.detached {
		s.mu.Unlock()
		return domain.Exchange{}, domain.ErrNoSession
	}
	if s.pending {
		s.mu.Unlock()
		return domain.Exchange{}, domain.ErrSessionBusy
	}
	s.pending = true
	s.mu.Unlock()

	position := s.position(ctx)
	q := domain.NewQuestion(question, position, s.now())

	s.mu.Lock()
	s.entries = append(s.entries, q)
	s.lastError = ""
	generation := s.generation
	s.mu.Unlock()
	s.changed()

	s.logger.Info("question sent",
		slog.String("media_id", s.asset.ID),
		slog.Float64("position", q.MediaPosition))

	res, err := s.backend.Ask(ctx, ports.AskRequest{
		MediaID:       s.asset.ID,
		Question:      question,
		MediaPosition: q.MediaPosition,
		Context:       s.asset.TranscriptExcerpt,
	})

	defer s.changed()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false

	if s.detached {
		s.logger.Debug("dropping answer for replaced session", slog.String("media_id", s.asset.ID))
		return domain.Exchange{Question: q}, fmt.Errorf("%w: media %s", domain.ErrStaleResult, s.asset.ID)
	}

	if err != nil {
		s.lastError = questionFailure(err)
		s.logger.Warn("question failed", slog.String("media_id", s.asset.ID), slog.String("error", err.Error()))
		return domain.Exchange{Question: q}, err
	}

	if s.strictClear && generation != s.generation {
		s.logger.Debug("dropping answer from a cleared log", slog.String("media_id", s.asset.ID))
		return domain.Exchange{Question: q}, fmt.Errorf("%w: log was cleared", domain.ErrStaleResult)
	}

	a := domain.NewAnswer(res.Answer, res.Confidence, res.Context, q.MediaPosition, s.now())
	s.entries = append(s.entries, a)

	return domain.Exchange{Question: q, Answer: a}, nil
}

// Clear empties the log and the last error together. An in-flight ask keeps
// running; see WithStrictClear for what happens to its answer.
func (s *QASession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.lastError = ""
	s.generation++
}

// JumpTo seeks the player to the entry's position and starts playback
func (s *QASession) JumpTo(ctx context.Context, entry domain.ConversationEntry) error {
	if s.transport == nil {
		return errors.New("no player attached")
	}
	if err := s.transport.SetPosition(ctx, entry.MediaPosition); err != nil {
		return err
	}
	return s.transport.Play(ctx)
}

// Entries returns a copy of the log
func (s *QASession) Entries() []domain.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.ConversationEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries in the log
func (s *QASession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Pending reports whether a question is in flight
func (s *QASession) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// LastError returns the most recent user-facing failure, or ""
func (s *QASession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// Asset returns the asset this session is bound to
func (s *QASession) Asset() *domain.MediaAsset {
	return s.asset
}

// detach marks the session as replaced. Late answers are dropped from then on.
func (s *QASession) detach() {
	s.mu.Lock()
	s.detached = true
	s.mu.Unlock()
}

func (s *QASession) changed() {
	if s.notify != nil {
		s.notify()
	}
}

func (s *QASession) position(ctx context.Context) float64 {
	if s.transport == nil {
		return 0
	}
	pos, err := s.transport.Position(ctx)
	if err != nil {
		s.logger.Debug("player position unavailable", slog.String("error", err.Error()))
		return 0
	}
	return pos
}

func questionFailure(err error) string {
	var opErr *domain.OpError
	if errors.As(err, &opErr) {
		return opErr.Error()
	}
	return "Question failed: " + err.Error()
}
