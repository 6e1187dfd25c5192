package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

// UploadService validates a local file, sends it to the backend and turns
// the response into a MediaAsset
type UploadService struct {
	backend  ports.Backend
	previews ports.PreviewStore
	poller   *TranscriptPoller
	maxBytes int64
	logger   *slog.Logger
	now      func() time.Time
}

// NewUploadService creates a new upload service. A nil poller means assets
// whose transcript is not in the upload response come back not ready.
func NewUploadService(backend ports.Backend, previews ports.PreviewStore, poller *TranscriptPoller, maxBytes int64, logger *slog.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = domain.DefaultMaxUploadBytes
	}
	return &UploadService{
		backend:  backend,
		previews: previews,
		poller:   poller,
		maxBytes: maxBytes,
		logger:   orDiscard(logger),
		now:      time.Now,
	}
}

// MaxBytes returns the upload ceiling in effect
func (s *UploadService) MaxBytes() int64 {
	return s.maxBytes
}

// Validate checks type, size and name against the upload ceiling
func (s *UploadService) Validate(file domain.MediaFile) (domain.MimeCategory, error) {
	return file.Validate(s.maxBytes)
}

// Submit runs one upload attempt. onState (optional) receives every
// UploadState transition of the attempt. The returned asset owns a preview
// handle that the caller must release.
func (s *UploadService) Submit(ctx context.Context, file domain.MediaFile, onState func(domain.UploadState)) (*domain.MediaAsset, error) {
	emit := func(st domain.UploadState) {
		if onState != nil {
			onState(st)
		}
	}

	// Local checks first: nothing touches the network on bad input
	category, err := s.Validate(file)
	if err != nil {
		emit(domain.Failed(err.Error()))
		return nil, err
	}

	emit(domain.Uploading(0))
	s.logger.Info("upload started",
		slog.String("name", file.Name),
		slog.String("mime", file.MimeType),
		slog.Int64("bytes", file.Size))

	res, err := s.backend.Upload(ctx, ports.UploadRequest{
		File:       file,
		OnProgress: func(p int) { emit(domain.Uploading(p)) },
	})
	if err != nil {
		s.logger.Warn("upload failed", slog.String("name", file.Name), slog.String("error", err.Error()))
		emit(domain.Failed(domain.UserMessage(err)))
		return nil, err
	}
	if res.ID == "" {
		err := &domain.OpError{Op: "Upload", Message: "backend returned no media id", Err: domain.ErrBackendRejected}
		emit(domain.Failed(err.Error()))
		return nil, err
	}

	asset := &domain.MediaAsset{
		ID:         res.ID,
		Name:       file.Name,
		MimeType:   file.MimeType,
		Category:   category,
		ByteSize:   file.Size,
		UploadedAt: s.now(),
	}

	if res.Transcript != "" {
		asset.MarkTranscriptReady(res.Transcript)
	} else if s.poller != nil {
		status, err := s.poller.WaitReady(ctx, asset.ID)
		if err != nil {
			s.logger.Warn("transcript not ready", slog.String("media_id", asset.ID), slog.String("error", err.Error()))
			emit(domain.Failed(domain.UserMessage(err)))
			return nil, err
		}
		asset.MarkTranscriptReady(status.Transcript)
	}

	// Acquired last so a failed attempt never holds a handle
	handle, err := s.previews.Acquire(ctx, file)
	if err != nil {
		s.discardRemote(ctx, asset.ID)
		err = fmt.Errorf("failed to prepare local preview: %w", err)
		emit(domain.Failed(err.Error()))
		return nil, err
	}
	asset.Preview = handle

	s.logger.Info("upload finished",
		slog.String("media_id", asset.ID),
		slog.Bool("transcript_ready", asset.TranscriptReady),
		slog.String("preview", handle.ID()))

	emit(domain.Succeeded(asset))
	return asset, nil
}

// discardRemote deletes media the client will never reference
func (s *UploadService) discardRemote(ctx context.Context, mediaID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := s.backend.Delete(ctx, mediaID); err != nil {
		s.logger.Warn("orphaned media left on backend",
			slog.String("media_id", mediaID),
			slog.String("error", err.Error()))
		return
	}
	s.logger.Info("discarded uploaded media", slog.String("media_id", mediaID))
}
