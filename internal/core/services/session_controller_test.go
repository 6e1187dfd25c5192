package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
	"github.com/kamal-hamza/mq-cli/internal/core/ports/mocks"
)

type controllerFixture struct {
	backend    *mocks.MockBackend
	previews   *mocks.MockPreviewStore
	transport  *mocks.MockTransport
	controller *SessionController
}

func newControllerFixture(opts ...SessionOption) *controllerFixture {
	backend := mocks.NewMockBackend()
	previews := mocks.NewMockPreviewStore()
	transport := mocks.NewMockTransport()
	uploader := NewUploadService(backend, previews, nil, 0, nil)
	return &controllerFixture{
		backend:    backend,
		previews:   previews,
		transport:  transport,
		controller: NewSessionController(uploader, backend, transport, nil, opts...),
	}
}

func audioFile(name string) domain.MediaFile {
	return domain.MediaFile{Path: "/tmp/" + name, Name: name, MimeType: "audio/mpeg", Size: 2048}
}

func TestSessionController_LectureScenario(t *testing.T) {
	// Setup
	f := newControllerFixture()
	ctx := context.Background()

	if snap := f.controller.Snapshot(); snap.State != domain.StateNoMedia {
		t.Fatalf("expected NoMedia at start, got %s", snap.State)
	}

	// Execute: upload, move the playhead, ask
	asset, err := f.controller.SubmitFile(ctx, lectureFile())
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	f.transport.SetCurrent(12.5)
	ex, err := f.controller.Ask(ctx, "What is this about?")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}

	// Assert
	snap := f.controller.Snapshot()
	if snap.State != domain.StateReady {
		t.Errorf("expected Ready, got %s", snap.State)
	}
	if snap.Asset != asset || asset.Category != domain.CategoryVideo {
		t.Errorf("unexpected asset %+v", snap.Asset)
	}
	if f.transport.Loaded() != "/mock/previews/lecture.mp4" {
		t.Errorf("expected player to load the preview, got %q", f.transport.Loaded())
	}
	if len(snap.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(snap.Entries))
	}
	if snap.Entries[0].MediaPosition != 12.5 || snap.Entries[1].MediaPosition != 12.5 {
		t.Errorf("expected both entries at 12.5, got %+v", snap.Entries)
	}
	if ex.Answer.ConfidenceLabel() != "Confidence: 87%" {
		t.Errorf("unexpected confidence label %q", ex.Answer.ConfidenceLabel())
	}

	// Jump back to the answer
	f.transport.SetCurrent(80)
	if err := f.controller.JumpTo(ctx, snap.Entries[1]); err != nil {
		t.Fatalf("jump failed: %v", err)
	}
	seeks := f.transport.Seeks()
	if len(seeks) != 1 || seeks[0] != 12.5 {
		t.Errorf("expected seek to 12.5, got %v", seeks)
	}
	if !f.transport.IsPlaying() || !f.controller.Snapshot().Playing {
		t.Error("expected playback after jump")
	}
}

func TestSessionController_AskWithoutMedia(t *testing.T) {
	f := newControllerFixture()

	_, err := f.controller.Ask(context.Background(), "anyone?")
	if !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	if err := f.controller.JumpTo(context.Background(), domain.ConversationEntry{}); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected ErrNoSession from JumpTo, got %v", err)
	}
}

func TestSessionController_ReplaceWhilePending(t *testing.T) {
	// Setup
	f := newControllerFixture()
	ctx := context.Background()
	if _, err := f.controller.SubmitFile(ctx, lectureFile()); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	f.backend.AskFunc = blockingAsk(started, release)

	done := make(chan error, 1)
	go func() {
		_, err := f.controller.Ask(ctx, "about the old file")
		done <- err
	}()
	<-started

	// Execute: replace the media while the question is in flight
	if _, err := f.controller.SubmitFile(ctx, audioFile("podcast.mp3")); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	close(release)
	err := <-done

	// Assert
	if !errors.Is(err, domain.ErrStaleResult) {
		t.Errorf("expected stale result for the replaced session, got %v", err)
	}
	if domain.UserMessage(err) != "" {
		t.Errorf("stale results must not surface, got %q", domain.UserMessage(err))
	}
	snap := f.controller.Snapshot()
	if snap.Asset.Name != "podcast.mp3" {
		t.Errorf("expected podcast to be current, got %s", snap.Asset.Name)
	}
	if len(snap.Entries) != 0 {
		t.Errorf("new session must not receive the old answer, got %d entries", len(snap.Entries))
	}
	if snap.Pending {
		t.Error("new session must not be pending")
	}
	if snap.LastError != "" {
		t.Errorf("unexpected error message %q", snap.LastError)
	}
}

func TestSessionController_FailedUploadFallsBackToNoMedia(t *testing.T) {
	// Setup
	f := newControllerFixture()
	ctx := context.Background()
	if _, err := f.controller.SubmitFile(ctx, lectureFile()); err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	_ = f.transport.Play(ctx)
	f.backend.UploadFunc = func(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
		return nil, &domain.OpError{Op: "Upload", Message: "server exploded", Status: 500, Err: domain.ErrBackendRejected}
	}

	// Execute
	_, err := f.controller.SubmitFile(ctx, audioFile("broken.mp3"))

	// Assert
	if !errors.Is(err, domain.ErrBackendRejected) {
		t.Errorf("expected backend rejection, got %v", err)
	}
	snap := f.controller.Snapshot()
	if snap.State != domain.StateNoMedia || snap.Asset != nil {
		t.Errorf("expected NoMedia without an asset, got %s", snap.State)
	}
	if f.controller.Session() != nil {
		t.Error("expected no session after failure")
	}
	if snap.LastError != "Upload failed: server exploded" {
		t.Errorf("unexpected error message %q", snap.LastError)
	}
	if snap.Upload.Phase != domain.UploadFailed {
		t.Errorf("expected failed upload phase, got %s", snap.Upload.Phase)
	}
	if f.transport.IsPlaying() {
		t.Error("expected the player to pause when its media goes away")
	}
	handles := f.previews.Handles()
	if len(handles) != 1 || handles[0].Releases() != 1 {
		t.Errorf("expected the old preview to be released once, got %+v", handles)
	}
}

func TestSessionController_ValidationFailureSkipsNetwork(t *testing.T) {
	f := newControllerFixture()

	_, err := f.controller.SubmitFile(context.Background(), domain.MediaFile{Name: "slides.pdf", MimeType: "application/pdf", Size: 10})

	if !errors.Is(err, domain.ErrUnsupportedMediaType) {
		t.Errorf("expected unsupported type, got %v", err)
	}
	if f.backend.UploadCalls() != 0 {
		t.Errorf("expected no upload call, got %d", f.backend.UploadCalls())
	}
	if f.controller.Snapshot().State != domain.StateNoMedia {
		t.Error("expected NoMedia")
	}
}

func TestSessionController_ValidationFailureKeepsSession(t *testing.T) {
	tests := []struct {
		name    string
		file    domain.MediaFile
		wantErr error
	}{
		{
			name:    "unsupported type",
			file:    domain.MediaFile{Path: "/tmp/slides.pdf", Name: "slides.pdf", MimeType: "application/pdf", Size: 10},
			wantErr: domain.ErrUnsupportedMediaType,
		},
		{
			name:    "over the ceiling",
			file:    domain.MediaFile{Path: "/tmp/big.mp4", Name: "big.mp4", MimeType: "video/mp4", Size: domain.DefaultMaxUploadBytes + 1},
			wantErr: domain.ErrFileTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup: a live session with one exchange
			f := newControllerFixture()
			ctx := context.Background()
			asset, err := f.controller.SubmitFile(ctx, lectureFile())
			if err != nil {
				t.Fatalf("upload failed: %v", err)
			}
			if _, err := f.controller.Ask(ctx, "hi"); err != nil {
				t.Fatalf("ask failed: %v", err)
			}
			f.transport.Play(ctx)
			session := f.controller.Session()

			// Execute
			_, err = f.controller.SubmitFile(ctx, tt.file)

			// Assert
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			snap := f.controller.Snapshot()
			if snap.State != domain.StateReady {
				t.Errorf("expected Ready, got %s", snap.State)
			}
			if f.controller.Session() != session || snap.Asset != asset {
				t.Error("expected the live session and asset to survive")
			}
			if len(snap.Entries) != 2 {
				t.Errorf("expected 2 entries, got %d", len(snap.Entries))
			}
			if snap.LastError == "" {
				t.Error("expected the rejection to be reported")
			}
			if snap.Upload.Phase != domain.UploadFailed {
				t.Errorf("expected failed upload state, got %s", snap.Upload.Phase)
			}
			if f.backend.UploadCalls() != 1 {
				t.Errorf("expected no further upload call, got %d", f.backend.UploadCalls())
			}
			if f.previews.Outstanding() != 1 {
				t.Errorf("expected the current preview to stay held, got %d", f.previews.Outstanding())
			}
			if !f.transport.IsPlaying() {
				t.Error("expected playback to continue")
			}
		})
	}
}

func TestSessionController_IgnoresProgressAfterFailure(t *testing.T) {
	// Setup: the body writer reports progress after the backend has refused
	f := newControllerFixture()
	late := make(chan func(int), 1)
	f.backend.UploadFunc = func(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
		late <- req.OnProgress
		return nil, &domain.OpError{Op: "Upload", Message: "payload too large", Status: 413, Err: domain.ErrBackendRejected}
	}

	// Execute
	_, err := f.controller.SubmitFile(context.Background(), lectureFile())
	(<-late)(40)

	// Assert
	if err == nil {
		t.Fatal("expected the upload to fail")
	}
	snap := f.controller.Snapshot()
	if snap.Upload.Phase != domain.UploadFailed {
		t.Errorf("expected failed upload state to stick, got %s (%d%%)", snap.Upload.Phase, snap.Upload.Progress)
	}
	if snap.State != domain.StateNoMedia {
		t.Errorf("expected NoMedia, got %s", snap.State)
	}
}

func TestSessionController_TranscriptNotReady(t *testing.T) {
	f := newControllerFixture()
	f.backend.UploadFunc = func(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
		return &ports.UploadResult{ID: "media-pending"}, nil
	}

	_, err := f.controller.SubmitFile(context.Background(), lectureFile())

	if !errors.Is(err, domain.ErrTranscriptNotReady) {
		t.Errorf("expected ErrTranscriptNotReady, got %v", err)
	}
	if f.controller.Session() != nil {
		t.Error("session must not exist without a transcript")
	}
	if f.previews.Outstanding() != 0 {
		t.Errorf("expected no outstanding handles, got %d", f.previews.Outstanding())
	}
}

func TestSessionController_SupersededUpload(t *testing.T) {
	// Setup: the first upload hangs until the second one is done
	f := newControllerFixture()
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})
	f.backend.UploadFunc = func(ctx context.Context, req ports.UploadRequest) (*ports.UploadResult, error) {
		if req.File.Name == "slow.mp3" {
			close(started)
			<-release
		}
		return &ports.UploadResult{ID: "id-" + req.File.Name, Transcript: "text"}, nil
	}

	done := make(chan error, 1)
	go func() {
		_, err := f.controller.SubmitFile(ctx, audioFile("slow.mp3"))
		done <- err
	}()
	<-started

	// Execute
	if _, err := f.controller.SubmitFile(ctx, audioFile("fast.mp3")); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}
	close(release)
	err := <-done

	// Assert
	if !errors.Is(err, domain.ErrStaleResult) {
		t.Errorf("expected stale result for the superseded upload, got %v", err)
	}
	snap := f.controller.Snapshot()
	if snap.Asset == nil || snap.Asset.Name != "fast.mp3" {
		t.Errorf("expected the latest upload to win, got %+v", snap.Asset)
	}
	if snap.State != domain.StateReady {
		t.Errorf("expected Ready, got %s", snap.State)
	}
	if f.previews.Outstanding() != 1 {
		t.Errorf("expected only the current preview outstanding, got %d", f.previews.Outstanding())
	}
}

func TestSessionController_HandlesReleasedExactlyOnce(t *testing.T) {
	// Setup
	f := newControllerFixture()
	ctx := context.Background()

	// Execute
	for _, name := range []string{"a.mp3", "b.mp3", "c.mp3"} {
		if _, err := f.controller.SubmitFile(ctx, audioFile(name)); err != nil {
			t.Fatalf("upload of %s failed: %v", name, err)
		}
	}
	if err := f.controller.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := f.controller.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}

	// Assert
	handles := f.previews.Handles()
	if len(handles) != 3 {
		t.Fatalf("expected 3 handles, got %d", len(handles))
	}
	for _, h := range handles {
		if h.Releases() != 1 {
			t.Errorf("handle %s released %d times", h.ID(), h.Releases())
		}
	}
	if f.transport.Subscribers() != 0 {
		t.Errorf("expected controller to unsubscribe, got %d subscribers", f.transport.Subscribers())
	}
	if _, err := f.controller.SubmitFile(ctx, audioFile("late.mp3")); !errors.Is(err, domain.ErrNoSession) {
		t.Errorf("expected closed controller to refuse uploads, got %v", err)
	}
}

func TestSessionController_TogglePlayback(t *testing.T) {
	f := newControllerFixture()
	ctx := context.Background()
	if _, err := f.controller.SubmitFile(ctx, lectureFile()); err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if err := f.controller.TogglePlayback(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !f.transport.IsPlaying() || !f.controller.Snapshot().Playing {
		t.Error("expected playing after first toggle")
	}

	if err := f.controller.TogglePlayback(ctx); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if f.transport.IsPlaying() || f.controller.Snapshot().Playing {
		t.Error("expected paused after second toggle")
	}
}

func TestSessionController_TogglePlaybackError(t *testing.T) {
	f := newControllerFixture()
	f.transport.PlayErr = errors.New("no audio device")

	err := f.controller.TogglePlayback(context.Background())

	if err == nil {
		t.Fatal("expected error")
	}
	if got := f.controller.Snapshot().LastError; got != "Player failed: no audio device" {
		t.Errorf("unexpected error message %q", got)
	}
}

func TestSessionController_Clear(t *testing.T) {
	f := newControllerFixture()
	ctx := context.Background()
	_, _ = f.controller.SubmitFile(ctx, lectureFile())
	_, _ = f.controller.Ask(ctx, "one")
	_, _ = f.controller.Ask(ctx, "two")

	f.controller.Clear()

	snap := f.controller.Snapshot()
	if len(snap.Entries) != 0 {
		t.Errorf("expected empty log, got %d", len(snap.Entries))
	}
	if snap.State != domain.StateReady {
		t.Errorf("clear must keep the media, got %s", snap.State)
	}
}

func TestSessionController_Discard(t *testing.T) {
	tests := []struct {
		name        string
		remote      bool
		wantDeleted int
	}{
		{name: "local only", remote: false, wantDeleted: 0},
		{name: "delete remote copy", remote: true, wantDeleted: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newControllerFixture()
			ctx := context.Background()
			asset, err := f.controller.SubmitFile(ctx, lectureFile())
			if err != nil {
				t.Fatalf("upload failed: %v", err)
			}

			if err := f.controller.Discard(ctx, tt.remote); err != nil {
				t.Fatalf("discard failed: %v", err)
			}

			if f.controller.Snapshot().State != domain.StateNoMedia {
				t.Error("expected NoMedia after discard")
			}
			deleted := f.backend.Deleted()
			if len(deleted) != tt.wantDeleted {
				t.Errorf("expected %d deletes, got %v", tt.wantDeleted, deleted)
			}
			if tt.remote && deleted[0] != asset.ID {
				t.Errorf("expected %s deleted, got %s", asset.ID, deleted[0])
			}
			if f.previews.Outstanding() != 0 {
				t.Error("expected preview to be released")
			}
		})
	}
}

func TestSessionController_ChangeListener(t *testing.T) {
	f := newControllerFixture()
	var calls atomic.Int32
	f.controller.SetChangeListener(func() {
		// Listeners may read state back
		_ = f.controller.Snapshot()
		calls.Add(1)
	})

	_, _ = f.controller.SubmitFile(context.Background(), lectureFile())
	afterUpload := calls.Load()
	if afterUpload == 0 {
		t.Fatal("expected notifications during upload")
	}

	_, _ = f.controller.Ask(context.Background(), "hello")
	if calls.Load()-afterUpload < 2 {
		t.Errorf("expected notifications for the question and the answer, got %d", calls.Load()-afterUpload)
	}
}
