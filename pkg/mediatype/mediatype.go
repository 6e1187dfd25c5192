package mediatype

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// byExtension covers the formats browsers and backends agree on. Anything
// else is sniffed from the file header.
var byExtension = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".weba": "audio/webm",
	".mp4":  "video/mp4",
	".m4v":  "video/mp4",
	".mov":  "video/quicktime",
	".webm": "video/webm",
	".mkv":  "video/x-matroska",
	".avi":  "video/x-msvideo",
	".ogv":  "video/ogg",
}

// Resolve describes the file at path. override, when set, wins over the
// extension table and content sniffing.
func Resolve(path, override string) (domain.MediaFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.MediaFile{}, fmt.Errorf("failed to read media file: %w", err)
	}
	if info.IsDir() {
		return domain.MediaFile{}, fmt.Errorf("%s is a directory", path)
	}

	mimeType := strings.TrimSpace(override)
	if mimeType == "" {
		mimeType = FromExtension(path)
	}
	if mimeType == "" {
		mimeType, err = Sniff(path)
		if err != nil {
			return domain.MediaFile{}, err
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return domain.MediaFile{
		Path:     abs,
		Name:     filepath.Base(path),
		MimeType: mimeType,
		Size:     info.Size(),
	}, nil
}

// FromExtension returns the MIME type for a known media extension, or ""
func FromExtension(path string) string {
	return byExtension[strings.ToLower(filepath.Ext(path))]
}

// Sniff detects the MIME type from the file content
func Sniff(path string) (string, error) {
	m, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect media type: %w", err)
	}
	return m.String(), nil
}

// IsMedia reports whether path looks like audio or video by name alone
func IsMedia(path string) bool {
	return FromExtension(path) != ""
}
