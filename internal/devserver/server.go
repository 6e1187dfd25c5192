package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

// Options tunes the canned backend
type Options struct {
	// TranscribeAfter is how long an upload stays "processing". Zero means
	// the transcript is returned with the upload response.
	TranscribeAfter time.Duration

	// MaxUploadBytes rejects larger uploads with 413. Zero uses the client default.
	MaxUploadBytes int64

	// AllowedOrigins enables CORS for browser clients
	AllowedOrigins []string

	// AccessLog receives one combined-format line per request. Optional.
	AccessLog io.Writer

	Logger *slog.Logger
	Now    func() time.Time
}

type media struct {
	ID         string
	Name       string
	MimeType   string
	Size       int64
	UploadedAt time.Time
	Transcript string
}

// Server is an in-memory stand-in for the transcription backend. It answers
// every question with a canned reply built from the stored transcript.
type Server struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	media map[string]*media
}

// New creates a Server
func New(opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = domain.DefaultMaxUploadBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		opts:   opts,
		logger: logger,
		now:    now,
		media:  make(map[string]*media),
	}
}

// Handler returns the routed API mounted under /api
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", s.upload).Methods(http.MethodPost)
	api.HandleFunc("/ask", s.ask).Methods(http.MethodPost)
	api.HandleFunc("/status/{id}", s.status).Methods(http.MethodGet)
	api.HandleFunc("/media/{id}", s.info).Methods(http.MethodGet)
	api.HandleFunc("/media/{id}", s.remove).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	var h http.Handler = r
	if len(s.opts.AllowedOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(s.opts.AllowedOrigins),
			handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
			handlers.AllowedHeaders([]string{"Content-Type", "X-Request-ID"}),
		)(h)
	}
	if s.opts.AccessLog != nil {
		h = handlers.CombinedLoggingHandler(s.opts.AccessLog, h)
	}
	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))(h)
}

// Serve listens on addr until ctx is cancelled, then drains in-flight requests
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devserver listening", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	s.logger.Info("devserver stopped")
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1<<20)

	mr, err := r.MultipartReader()
	if err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			writeError(w, http.StatusBadRequest, "no media file provided")
			return
		}
		if err != nil {
			writeError(w, http.StatusBadRequest, "malformed multipart body")
			return
		}
		if part.FormName() != "media" {
			part.Close()
			continue
		}

		s.storeUpload(w, part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		return
	}
}

func (s *Server) storeUpload(w http.ResponseWriter, name, mimeType string, body io.Reader) {
	if _, err := domain.CategoryFromMime(mimeType); err != nil {
		writeError(w, http.StatusUnsupportedMediaType, "only audio and video files are accepted")
		return
	}

	size, err := io.Copy(io.Discard, io.LimitReader(body, s.opts.MaxUploadBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	if size > s.opts.MaxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}
	if size == 0 {
		writeError(w, http.StatusBadRequest, "empty file")
		return
	}

	m := &media{
		ID:         uuid.NewString(),
		Name:       name,
		MimeType:   mimeType,
		Size:       size,
		UploadedAt: s.now(),
		Transcript: cannedTranscript(name),
	}

	s.mu.Lock()
	s.media[m.ID] = m
	s.mu.Unlock()

	s.logger.Info("media uploaded",
		slog.String("id", m.ID),
		slog.String("name", name),
		slog.Int64("bytes", size))

	resp := map[string]any{"id": m.ID, "name": m.Name}
	if s.ready(m) {
		resp["transcript"] = m.Transcript
	}
	writeJSON(w, http.StatusOK, resp)
}

type askBody struct {
	MediaID  string          `json:"mediaId"`
	Question json.RawMessage `json:"question"`
}

// question accepts {question, timestamp, context} or a bare string
func (b askBody) question() (text string, timestamp float64) {
	var nested struct {
		Question  string  `json:"question"`
		Timestamp float64 `json:"timestamp"`
	}
	if err := json.Unmarshal(b.Question, &nested); err == nil {
		return nested.Question, nested.Timestamp
	}
	_ = json.Unmarshal(b.Question, &text)
	return text, 0
}

func (s *Server) ask(w http.ResponseWriter, r *http.Request) {
	var body askBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	text, timestamp := body.question()
	if strings.TrimSpace(text) == "" {
		writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	m, ok := s.lookup(body.MediaID)
	if !ok {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	if !s.ready(m) {
		writeError(w, http.StatusConflict, "transcript is not ready yet")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"answer":     cannedAnswer(m.Name, text, timestamp),
		"confidence": cannedConfidence(text),
		"context":    excerptAt(m.Transcript, timestamp),
	})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}

	if s.ready(m) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "completed",
			"progress":   100,
			"transcript": m.Transcript,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "processing",
		"progress": s.progress(m),
	})
}

func (s *Server) info(w http.ResponseWriter, r *http.Request) {
	m, ok := s.lookup(mux.Vars(r)["id"])
	if !ok {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}

	status := "processing"
	if s.ready(m) {
		status = "completed"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"id":         m.ID,
		"name":       m.Name,
		"mimeType":   m.MimeType,
		"size":       m.Size,
		"uploadedAt": m.UploadedAt,
		"status":     status,
	})
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.mu.Lock()
	_, ok := s.media[id]
	delete(s.media, id)
	s.mu.Unlock()

	if !ok {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	s.logger.Info("media deleted", slog.String("id", id))
	writeJSON(w, http.StatusOK, map[string]string{"message": "media deleted"})
}

func (s *Server) lookup(id string) (*media, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.media[id]
	return m, ok
}

func (s *Server) ready(m *media) bool {
	return !s.now().Before(m.UploadedAt.Add(s.opts.TranscribeAfter))
}

func (s *Server) progress(m *media) int {
	if s.opts.TranscribeAfter <= 0 {
		return 100
	}
	elapsed := s.now().Sub(m.UploadedAt)
	p := int(elapsed * 100 / s.opts.TranscribeAfter)
	if p > 99 {
		p = 99
	}
	return p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
