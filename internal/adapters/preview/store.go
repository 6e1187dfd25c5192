package preview

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// Store keeps private copies of uploaded files so the player never depends on
// the original staying in place
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory previews are written to
func (s *Store) Dir() string {
	return s.dir
}

// Acquire copies the file into the store. The returned handle owns the copy.
func (s *Store) Acquire(ctx context.Context, file domain.MediaFile) (domain.PreviewHandle, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create preview directory: %w", err)
	}

	src, err := os.Open(file.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open media file: %w", err)
	}
	defer src.Close()

	id := uuid.NewString()
	dest := filepath.Join(s.dir, id+strings.ToLower(filepath.Ext(file.Name)))

	dst, err := os.OpenFile(dest, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview: %w", err)
	}

	if _, err := io.Copy(dst, contextReader{ctx: ctx, r: src}); err != nil {
		dst.Close()
		os.Remove(dest)
		return nil, fmt.Errorf("failed to copy preview: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to write preview: %w", err)
	}

	return &Handle{id: id, path: dest}, nil
}

// Sweep removes previews older than maxAge left behind by crashed runs.
// It returns the number of files removed.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Handle is one preview copy. Release deletes it; a second Release fails.
type Handle struct {
	mu       sync.Mutex
	id       string
	path     string
	released bool
}

func (h *Handle) ID() string   { return h.id }
func (h *Handle) Path() string { return h.path }

func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return fmt.Errorf("%w: %s", domain.ErrHandleReleased, h.id)
	}
	h.released = true

	if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove preview: %w", err)
	}
	return nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
