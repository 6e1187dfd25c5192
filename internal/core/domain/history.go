package domain

import (
	"errors"
	"time"
)

var ErrRecordNotFound = errors.New("no uploaded media matches")

// MediaRecord is the history entry kept for an uploaded asset
type MediaRecord struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	MimeType   string       `json:"mime_type"`
	Category   MimeCategory `json:"category"`
	ByteSize   int64        `json:"bytes"`
	UploadedAt time.Time    `json:"uploaded_at"`
}

// RecordOf builds the history entry for an asset
func RecordOf(a *MediaAsset) MediaRecord {
	return MediaRecord{
		ID:         a.ID,
		Name:       a.Name,
		MimeType:   a.MimeType,
		Category:   a.Category,
		ByteSize:   a.ByteSize,
		UploadedAt: a.UploadedAt,
	}
}
