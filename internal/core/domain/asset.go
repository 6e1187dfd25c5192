package domain

import (
	"fmt"
	"strings"
	"time"
)

// DefaultMaxUploadBytes is the upload ceiling used when config does not set one (50 MiB)
const DefaultMaxUploadBytes int64 = 50 * 1024 * 1024

// MimeCategory is the playback family of an uploaded file
type MimeCategory string

const (
	CategoryAudio MimeCategory = "audio"
	CategoryVideo MimeCategory = "video"
)

// Icon returns the glyph shown next to the asset name
func (c MimeCategory) Icon() string {
	if c == CategoryVideo {
		return "🎥"
	}
	return "🎵"
}

// CategoryFromMime derives the category from a declared MIME type.
// "video/mp4; codecs=avc1" -> video, "audio/mpeg" -> audio, anything else fails.
func CategoryFromMime(mimeType string) (MimeCategory, error) {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch {
	case strings.HasPrefix(mt, "video/") && len(mt) > len("video/"):
		return CategoryVideo, nil
	case strings.HasPrefix(mt, "audio/") && len(mt) > len("audio/"):
		return CategoryAudio, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mimeType)
}

// MediaFile is a local file offered for upload
type MediaFile struct {
	Path     string // Absolute path on disk
	Name     string // Display name, usually the base name
	MimeType string // Declared MIME type
	Size     int64  // Bytes
}

// Validate runs the local checks that must pass before any network call
func (f MediaFile) Validate(maxBytes int64) (MimeCategory, error) {
	category, err := CategoryFromMime(f.MimeType)
	if err != nil {
		return "", err
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	if f.Size > maxBytes {
		return "", fmt.Errorf("%w: %s exceeds the %s limit", ErrFileTooLarge, FormatBytes(f.Size), FormatBytes(maxBytes))
	}
	if f.Size == 0 {
		return "", ErrEmptyFile
	}

	return category, nil
}

// PreviewHandle is a local resource that lets the player open the asset.
// It must be released exactly once when its asset is replaced or discarded.
type PreviewHandle interface {
	ID() string
	Path() string
	Release() error
}

// MediaAsset is the uploaded file as known to the client
type MediaAsset struct {
	ID                string
	Name              string
	MimeType          string
	Category          MimeCategory
	ByteSize          int64
	Preview           PreviewHandle
	TranscriptReady   bool
	TranscriptExcerpt string
	UploadedAt        time.Time
}

// MarkTranscriptReady flips readiness on. It never flips back.
func (a *MediaAsset) MarkTranscriptReady(excerpt string) {
	a.TranscriptReady = true
	if excerpt != "" && a.TranscriptExcerpt == "" {
		a.TranscriptExcerpt = excerpt
	}
}

// DisplayName returns the name prefixed with its category icon
func (a *MediaAsset) DisplayName() string {
	return a.Category.Icon() + " " + a.Name
}

// FormatBytes renders a size like "4.0 MB"
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
