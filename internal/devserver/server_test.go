package devserver

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kamal-hamza/mq-cli/internal/adapters/backend"
	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func startServer(t *testing.T, opts Options) (*backend.HTTPBackend, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(New(opts).Handler())
	t.Cleanup(ts.Close)
	return backend.NewHTTPBackend(ts.URL+"/api", 5*time.Second, nil), ts
}

func mediaFile(t *testing.T, name, mimeType string, size int) domain.MediaFile {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0x42}, size), 0644); err != nil {
		t.Fatal(err)
	}
	return domain.MediaFile{Path: path, Name: name, MimeType: mimeType, Size: int64(size)}
}

func TestServer_RoundTrip(t *testing.T) {
	// Setup
	client, _ := startServer(t, Options{})
	ctx := context.Background()

	// Execute
	up, err := client.Upload(ctx, ports.UploadRequest{File: mediaFile(t, "lecture.mp4", "video/mp4", 2048)})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	res, err := client.Ask(ctx, ports.AskRequest{MediaID: up.ID, Question: "What is entropy?", MediaPosition: 65})

	// Assert
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if up.Transcript == "" {
		t.Error("expected the transcript with the upload when TranscribeAfter is zero")
	}
	if !strings.Contains(res.Answer, "1:05") || !strings.Contains(res.Answer, "What is entropy?") {
		t.Errorf("unexpected answer %q", res.Answer)
	}
	if res.Confidence == nil || *res.Confidence < 55 || *res.Confidence >= 100 {
		t.Errorf("unexpected confidence %v", res.Confidence)
	}
	if !strings.Contains(res.Context, "Segment 3") {
		t.Errorf("expected the excerpt covering 1:05, got %q", res.Context)
	}

	again, _ := client.Ask(ctx, ports.AskRequest{MediaID: up.ID, Question: "what is entropy?"})
	if *again.Confidence != *res.Confidence {
		t.Error("expected stable confidence for the same question")
	}
}

func TestServer_TranscriptionDelay(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	client, _ := startServer(t, Options{TranscribeAfter: 10 * time.Second, Now: clock.Now})
	ctx := context.Background()

	up, err := client.Upload(ctx, ports.UploadRequest{File: mediaFile(t, "talk.mp3", "audio/mpeg", 100)})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if up.Transcript != "" {
		t.Fatal("expected no transcript while processing")
	}

	_, err = client.Ask(ctx, ports.AskRequest{MediaID: up.ID, Question: "too early"})
	if !errors.Is(err, domain.ErrBackendRejected) {
		t.Errorf("expected a rejection before the transcript is ready, got %v", err)
	}

	clock.Advance(5 * time.Second)
	st, err := client.Status(ctx, up.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if st.Ready || st.Progress != 50 {
		t.Errorf("expected 50%% processing, got %+v", st)
	}

	clock.Advance(5 * time.Second)
	st, err = client.Status(ctx, up.ID)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !st.Ready || st.Transcript == "" {
		t.Errorf("expected ready transcript, got %+v", st)
	}
}

func TestServer_InfoAndDelete(t *testing.T) {
	client, _ := startServer(t, Options{})
	ctx := context.Background()

	up, err := client.Upload(ctx, ports.UploadRequest{File: mediaFile(t, "talk.mp3", "audio/mpeg", 100)})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	raw, err := client.Info(ctx, up.ID)
	if err != nil {
		t.Fatalf("info failed: %v", err)
	}
	if !bytes.Contains(raw, []byte(`"name":"talk.mp3"`)) || !bytes.Contains(raw, []byte(`"size":100`)) {
		t.Errorf("unexpected info %s", raw)
	}

	if err := client.Delete(ctx, up.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	_, err = client.Info(ctx, up.ID)
	var opErr *domain.OpError
	if !errors.As(err, &opErr) || opErr.Status != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %v", err)
	}
	if err := client.Delete(ctx, up.ID); !errors.Is(err, domain.ErrBackendRejected) {
		t.Errorf("expected second delete to be rejected, got %v", err)
	}
}

func TestServer_UploadRejections(t *testing.T) {
	tests := []struct {
		name   string
		file   func(t *testing.T) domain.MediaFile
		status int
	}{
		{
			name:   "not media",
			file:   func(t *testing.T) domain.MediaFile { return mediaFile(t, "notes.txt", "text/plain", 10) },
			status: http.StatusUnsupportedMediaType,
		},
		{
			name:   "too large",
			file:   func(t *testing.T) domain.MediaFile { return mediaFile(t, "big.mp3", "audio/mpeg", 2048) },
			status: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := startServer(t, Options{MaxUploadBytes: 1024})

			_, err := client.Upload(context.Background(), ports.UploadRequest{File: tt.file(t)})

			var opErr *domain.OpError
			if !errors.As(err, &opErr) {
				t.Fatalf("expected OpError, got %v", err)
			}
			if opErr.Status != tt.status || !errors.Is(err, domain.ErrBackendRejected) {
				t.Errorf("expected rejected %d, got %+v", tt.status, opErr)
			}
		})
	}
}

func TestServer_AskValidation(t *testing.T) {
	_, ts := startServer(t, Options{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"empty question", `{"mediaId":"x","question":{"question":"  "}}`, http.StatusBadRequest},
		{"unknown media", `{"mediaId":"x","question":"hello"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/api/ask", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("expected %d, got %d", tt.status, resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("expected JSON error body, got %q", ct)
			}
		})
	}
}

func TestServer_HealthAndRoutes(t *testing.T) {
	var access bytes.Buffer
	ts := httptest.NewServer(New(Options{AccessLog: &access}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected healthy, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/api/nope")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	if !strings.Contains(access.String(), "GET /health") {
		t.Errorf("expected access log line, got %q", access.String())
	}
}

func TestServe_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- New(Options{}).Serve(ctx, "127.0.0.1:0") }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestExcerptAt(t *testing.T) {
	transcript := cannedTranscript("a.mp3")

	tests := []struct {
		at   float64
		want string
	}{
		{0, "Segment 1 "},
		{45, "Segment 2 "},
		{-5, "Segment 1 "},
		{10000, "Segment 10 "},
	}
	for _, tt := range tests {
		if got := excerptAt(transcript, tt.at); !strings.Contains(got, tt.want) {
			t.Errorf("at %v: expected %q in %q", tt.at, tt.want, got)
		}
	}
}
