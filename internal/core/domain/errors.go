package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is, never on message text.
var (
	ErrUnsupportedMediaType = errors.New("unsupported media type: only audio or video files are accepted")
	ErrFileTooLarge         = errors.New("file too large")
	ErrEmptyFile            = errors.New("file is empty")
	ErrEmptyQuestion        = errors.New("question cannot be empty")
	ErrTranscriptNotReady   = errors.New("transcript is not ready yet")

	ErrNetworkFailure  = errors.New("backend unreachable")
	ErrBackendRejected = errors.New("backend rejected the request")

	ErrSessionBusy = errors.New("a question is already being answered")
	ErrNoSession   = errors.New("no media selected")

	ErrStaleResult = errors.New("result arrived for a replaced session")

	ErrTranscriptionTimeout = errors.New("transcript did not become ready in time")
	ErrTranscriptionFailed  = errors.New("transcription failed")

	ErrHandleReleased = errors.New("preview handle already released")
)

// ErrorKind groups errors by how the UI should treat them
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindValidation
	KindNetwork
	KindConcurrency
	KindStale
	KindTimeout
	KindState
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNetwork:
		return "network"
	case KindConcurrency:
		return "concurrency"
	case KindStale:
		return "stale"
	case KindTimeout:
		return "timeout"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// OpError is a failed backend operation, already normalized for display.
// Error() renders as "<Op> failed: <Message>".
type OpError struct {
	Op      string // "Upload", "Question", "Status check", "Delete", "Get media info"
	Message string // Human readable reason (backend message or transport error)
	Status  int    // HTTP status, 0 when the request never got a response
	Err     error  // ErrNetworkFailure or ErrBackendRejected
}

func (e *OpError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// KindOf classifies an error into one of the ErrorKind groups
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrUnsupportedMediaType),
		errors.Is(err, ErrFileTooLarge),
		errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrEmptyQuestion),
		errors.Is(err, ErrTranscriptNotReady):
		return KindValidation
	case errors.Is(err, ErrNetworkFailure), errors.Is(err, ErrBackendRejected):
		return KindNetwork
	case errors.Is(err, ErrSessionBusy):
		return KindConcurrency
	case errors.Is(err, ErrStaleResult):
		return KindStale
	case errors.Is(err, ErrTranscriptionTimeout):
		return KindTimeout
	case errors.Is(err, ErrNoSession), errors.Is(err, ErrHandleReleased), errors.Is(err, ErrTranscriptionFailed):
		return KindState
	}

	var opErr *OpError
	if errors.As(err, &opErr) {
		return KindNetwork
	}
	return KindUnknown
}

// UserMessage returns the text shown to the user for err.
// Stale results are never shown, so they map to "".
func UserMessage(err error) string {
	if err == nil || KindOf(err) == KindStale {
		return ""
	}

	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Error()
	}
	return err.Error()
}
