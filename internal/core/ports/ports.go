package ports

import (
	"context"
	"encoding/json"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// UploadRequest describes the file sent to the backend
type UploadRequest struct {
	File domain.MediaFile

	// OnProgress receives the percentage of bytes sent (0-100). Optional.
	OnProgress func(percent int)
}

// UploadResult is the backend response to an upload
type UploadResult struct {
	ID         string
	Transcript string // Empty when transcription is still running
}

// AskRequest is one question about a media asset
type AskRequest struct {
	MediaID       string
	Question      string
	MediaPosition float64
	Context       string // Transcript excerpt handed back as context
}

// AskResult is the backend answer
type AskResult struct {
	Answer     string
	Confidence *float64
	Context    string
}

// TranscriptStatus is the readiness payload returned by the status endpoint
type TranscriptStatus struct {
	Ready      bool
	Failed     bool
	Progress   int
	Message    string
	Transcript string
	Raw        json.RawMessage
}

// Backend defines the port for the transcription/question-answering service
type Backend interface {
	// Upload transmits the raw file and returns the backend-assigned id
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)

	// Ask sends a question with its playback position
	Ask(ctx context.Context, req AskRequest) (*AskResult, error)

	// Status reports transcription readiness for a media id
	Status(ctx context.Context, mediaID string) (*TranscriptStatus, error)

	// Info returns the backend's metadata for a media id as raw JSON
	Info(ctx context.Context, mediaID string) (json.RawMessage, error)

	// Delete removes the media and its derived data from the backend
	Delete(ctx context.Context, mediaID string) error
}

// MediaTransport defines the port for the playback engine
type MediaTransport interface {
	// Load points the engine at a local file
	Load(ctx context.Context, path string, category domain.MimeCategory) error

	// Position returns the current playback offset in seconds
	Position(ctx context.Context) (float64, error)

	// SetPosition seeks to an offset in seconds
	SetPosition(ctx context.Context, seconds float64) error

	Play(ctx context.Context) error
	Pause(ctx context.Context) error

	// Subscribe registers fn for play/pause changes. Calling the returned
	// function unsubscribes; it is safe to call more than once.
	Subscribe(fn func(domain.PlayState)) (unsubscribe func())
}

// PreviewStore defines the port for local preview handles
type PreviewStore interface {
	// Acquire creates a handle for the file at path. The caller owns it and
	// must Release it exactly once.
	Acquire(ctx context.Context, file domain.MediaFile) (domain.PreviewHandle, error)
}

// Uploader is the upload pipeline as seen by the session controller
type Uploader interface {
	// Validate runs the local checks Submit would run, without side effects
	Validate(file domain.MediaFile) (domain.MimeCategory, error)

	Submit(ctx context.Context, file domain.MediaFile, onState func(domain.UploadState)) (*domain.MediaAsset, error)
}

// HistoryRepository records media this client has uploaded
type HistoryRepository interface {
	Save(ctx context.Context, rec domain.MediaRecord) error
	Get(ctx context.Context, idOrName string) (*domain.MediaRecord, error)
	List(ctx context.Context) ([]domain.MediaRecord, error)
	Delete(ctx context.Context, id string) error
}
