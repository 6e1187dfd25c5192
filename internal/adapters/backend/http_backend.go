package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

const (
	DefaultBaseURL = "http://localhost:3001/api"
	DefaultTimeout = 60 * time.Second

	// Uploads can take far longer than a question
	uploadTimeoutFactor = 10
)

// Operation names, used as the prefix of every failure message
const (
	opUpload = "Upload"
	opAsk    = "Question"
	opStatus = "Status check"
	opInfo   = "Get media info"
	opDelete = "Delete"
)

// HTTPBackend talks to the transcription backend over its JSON/multipart API
type HTTPBackend struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// NewHTTPBackend creates a client for baseURL (e.g. http://localhost:3001/api).
// Timeouts are applied per request through the context so uploads can run longer.
func NewHTTPBackend(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPBackend {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		timeout: timeout,
		logger:  logger,
	}
}

// BaseURL returns the API root this client talks to
func (b *HTTPBackend) BaseURL() string {
	return b.baseURL
}

// Upload streams the file as the multipart field "media"
func (b *HTTPBackend) Upload(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
	f, err := os.Open(req.File.Path)
	if err != nil {
		return nil, &domain.OpError{Op: opUpload, Message: err.Error(), Err: domain.ErrNetworkFailure}
	}
	defer f.Close()

	ctx, cancel := context.WithTimeout(ctx, b.timeout*uploadTimeoutFactor)
	defer cancel()

	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)
	body := newProgressReader(f, req.File.Size, req.OnProgress)

	go func() {
		pw.CloseWithError(writeMediaPart(mw, req.File, body))
	}()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/upload", pr)
	if err != nil {
		return nil, &domain.OpError{Op: opUpload, Message: err.Error(), Err: domain.ErrNetworkFailure}
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	var res uploadResponse
	if err := b.do(httpReq, opUpload, &res); err != nil {
		return nil, err
	}

	return &ports.UploadResult{
		ID:         res.mediaID(),
		Transcript: res.Transcript.String(),
	}, nil
}

func writeMediaPart(mw *multipart.Writer, file domain.MediaFile, body io.Reader) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="media"; filename=%q`, file.Name))
	h.Set("Content-Type", file.MimeType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

// Ask sends one question with the playback position it was asked at
func (b *HTTPBackend) Ask(ctx context.Context, req ports.AskRequest) (*ports.AskResult, error) {
	payload, err := json.Marshal(askRequest{
		MediaID: req.MediaID,
		Question: askQuestion{
			Question:  req.Question,
			Timestamp: req.MediaPosition,
			Context:   req.Context,
		},
	})
	if err != nil {
		return nil, &domain.OpError{Op: opAsk, Message: err.Error(), Err: domain.ErrNetworkFailure}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, &domain.OpError{Op: opAsk, Message: err.Error(), Err: domain.ErrNetworkFailure}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var res askResponse
	if err := b.do(httpReq, opAsk, &res); err != nil {
		return nil, err
	}

	return &ports.AskResult{
		Answer:     res.Answer,
		Confidence: domain.NormalizeConfidence(res.Confidence),
		Context:    res.Context.String(),
	}, nil
}

// Status fetches the transcription readiness payload
func (b *HTTPBackend) Status(ctx context.Context, mediaID string) (*ports.TranscriptStatus, error) {
	raw, err := b.getJSON(ctx, opStatus, "/status/"+url.PathEscape(mediaID))
	if err != nil {
		return nil, err
	}

	var res statusResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, &domain.OpError{Op: opStatus, Message: "invalid response: " + err.Error(), Err: domain.ErrNetworkFailure}
	}
	return res.toStatus(raw), nil
}

// Info returns the backend's metadata document for a media id
func (b *HTTPBackend) Info(ctx context.Context, mediaID string) (json.RawMessage, error) {
	return b.getJSON(ctx, opInfo, "/media/"+url.PathEscape(mediaID))
}

// Delete removes the media and everything derived from it
func (b *HTTPBackend) Delete(ctx context.Context, mediaID string) error {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.baseURL+"/media/"+url.PathEscape(mediaID), nil)
	if err != nil {
		return &domain.OpError{Op: opDelete, Message: err.Error(), Err: domain.ErrNetworkFailure}
	}
	return b.do(httpReq, opDelete, nil)
}

func (b *HTTPBackend) getJSON(ctx context.Context, op, path string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.baseURL+path, nil)
	if err != nil {
		return nil, &domain.OpError{Op: op, Message: err.Error(), Err: domain.ErrNetworkFailure}
	}

	var raw json.RawMessage
	if err := b.do(httpReq, op, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// do sends the request and decodes a 2xx body into out (when non-nil).
// Every failure comes back as a *domain.OpError for op.
func (b *HTTPBackend) do(req *http.Request, op string, out any) error {
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := b.client.Do(req)
	if err != nil {
		b.logger.Warn("backend request failed",
			slog.String("op", op),
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return &domain.OpError{Op: op, Message: transportMessage(err), Err: domain.ErrNetworkFailure}
	}
	defer resp.Body.Close()

	b.logger.Debug("backend request",
		slog.String("op", op),
		slog.String("method", req.Method),
		slog.String("url", req.URL.Redacted()),
		slog.String("request_id", requestID),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return rejection(op, resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return &domain.OpError{Op: op, Message: "empty response", Status: resp.StatusCode, Err: domain.ErrNetworkFailure}
		}
		return &domain.OpError{Op: op, Message: "invalid response: " + err.Error(), Status: resp.StatusCode, Err: domain.ErrNetworkFailure}
	}
	return nil
}

// rejection turns a non-2xx response into an OpError. A backend-supplied
// message means the backend understood and refused the request.
func rejection(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var e errorResponse
	if json.Unmarshal(body, &e) == nil {
		if msg := e.text(); msg != "" {
			return &domain.OpError{Op: op, Message: msg, Status: resp.StatusCode, Err: domain.ErrBackendRejected}
		}
	}
	return &domain.OpError{
		Op:      op,
		Message: fmt.Sprintf("server returned %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
		Status:  resp.StatusCode,
		Err:     domain.ErrNetworkFailure,
	}
}

func transportMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}
