package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// FileHistory keeps the upload history in a JSON manifest keyed by media id
type FileHistory struct {
	manifestPath string
	mu           sync.RWMutex
	loaded       bool
	cache        map[string]domain.MediaRecord
}

func NewFileHistory(dataDir string) *FileHistory {
	return &FileHistory{
		manifestPath: filepath.Join(dataDir, "history.json"),
		cache:        make(map[string]domain.MediaRecord),
	}
}

// Path returns the manifest location
func (h *FileHistory) Path() string {
	return h.manifestPath
}

func (h *FileHistory) load() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.loaded {
		return nil
	}

	data, err := os.ReadFile(h.manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			h.loaded = true
			return nil
		}
		return err
	}

	if err := json.Unmarshal(data, &h.cache); err != nil {
		return fmt.Errorf("corrupt history manifest %s: %w", h.manifestPath, err)
	}
	h.loaded = true
	return nil
}

// Save adds or replaces a record
func (h *FileHistory) Save(ctx context.Context, rec domain.MediaRecord) error {
	if err := h.load(); err != nil {
		return err
	}

	h.mu.Lock()
	h.cache[rec.ID] = rec
	h.mu.Unlock()

	return h.flush()
}

// Get finds a record by exact id, then by file name (newest upload wins)
func (h *FileHistory) Get(ctx context.Context, idOrName string) (*domain.MediaRecord, error) {
	if err := h.load(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if rec, ok := h.cache[idOrName]; ok {
		return &rec, nil
	}

	var best *domain.MediaRecord
	for _, rec := range h.cache {
		if !strings.EqualFold(rec.Name, idOrName) {
			continue
		}
		if best == nil || rec.UploadedAt.After(best.UploadedAt) {
			r := rec
			best = &r
		}
	}
	if best == nil {
		return nil, fmt.Errorf("%w %q", domain.ErrRecordNotFound, idOrName)
	}
	return best, nil
}

// List returns all records, newest first
func (h *FileHistory) List(ctx context.Context) ([]domain.MediaRecord, error) {
	if err := h.load(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	records := make([]domain.MediaRecord, 0, len(h.cache))
	for _, rec := range h.cache {
		records = append(records, rec)
	}
	h.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		return records[i].UploadedAt.After(records[j].UploadedAt)
	})
	return records, nil
}

// Delete removes a record. Missing ids are not an error.
func (h *FileHistory) Delete(ctx context.Context, id string) error {
	if err := h.load(); err != nil {
		return err
	}

	h.mu.Lock()
	_, ok := h.cache[id]
	delete(h.cache, id)
	h.mu.Unlock()

	if !ok {
		return nil
	}
	return h.flush()
}

// flush writes the cache to disk
func (h *FileHistory) flush() error {
	h.mu.RLock()
	data, err := json.MarshalIndent(h.cache, "", "  ")
	h.mu.RUnlock()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(h.manifestPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(h.manifestPath, data, 0644)
}
