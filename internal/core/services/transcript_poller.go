package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollAttempts = 30
)

// TranscriptPoller waits for the backend to finish transcribing an upload
type TranscriptPoller struct {
	backend     ports.Backend
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewTranscriptPoller creates a poller. Zero attempts falls back to the default;
// a zero interval polls back to back.
func NewTranscriptPoller(backend ports.Backend, interval time.Duration, maxAttempts int, logger *slog.Logger) *TranscriptPoller {
	if maxAttempts <= 0 {
		maxAttempts = DefaultPollAttempts
	}
	if interval < 0 {
		interval = DefaultPollInterval
	}
	return &TranscriptPoller{
		backend:     backend,
		interval:    interval,
		maxAttempts: maxAttempts,
		logger:      orDiscard(logger),
	}
}

// WaitReady polls the status endpoint until the transcript is ready, the
// backend reports failure, or the attempt budget runs out
func (p *TranscriptPoller) WaitReady(ctx context.Context, mediaID string) (*ports.TranscriptStatus, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.backend.Status(ctx, mediaID)
		if err != nil {
			return nil, err
		}

		p.logger.Debug("transcript status",
			slog.String("media_id", mediaID),
			slog.Int("attempt", attempt),
			slog.Bool("ready", status.Ready),
			slog.Int("progress", status.Progress))

		if status.Failed {
			msg := status.Message
			if msg == "" {
				msg = "backend reported a failed transcription"
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrTranscriptionFailed, msg)
		}
		if status.Ready {
			return status, nil
		}

		if attempt == p.maxAttempts {
			break
		}
		if err := sleepContext(ctx, p.interval); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: %s not ready after %d checks", domain.ErrTranscriptionTimeout, mediaID, p.maxAttempts)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return logger
}
