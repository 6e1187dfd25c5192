package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
)

// ControllerSnapshot is a consistent read of the controller state
type ControllerSnapshot struct {
	State     domain.ControllerState
	Upload    domain.UploadState
	Asset     *domain.MediaAsset
	Entries   []domain.ConversationEntry
	Pending   bool
	Playing   bool
	LastError string
}

// SessionController binds the current upload result to one QASession and one
// player. A session exists only while a transcript-ready asset is selected.
type SessionController struct {
	uploader    ports.Uploader
	backend     ports.Backend
	transport   ports.MediaTransport
	sessionOpts []SessionOption
	logger      *slog.Logger

	mu          sync.Mutex
	state       domain.ControllerState
	upload      domain.UploadState
	asset       *domain.MediaAsset
	session     *QASession
	lastError   string
	playing     bool
	submitSeq   uint64
	closed      bool
	unsubscribe func()
	onChange    func()
}

// NewSessionController creates a controller in the NoMedia state and starts
// mirroring the player's play/pause notifications
func NewSessionController(uploader ports.Uploader, backend ports.Backend, transport ports.MediaTransport, logger *slog.Logger, sessionOpts ...SessionOption) *SessionController {
	c := &SessionController{
		uploader:    uploader,
		backend:     backend,
		transport:   transport,
		logger:      orDiscard(logger),
		state:       domain.StateNoMedia,
		upload:      domain.UploadState{Phase: domain.UploadIdle},
	}
	c.sessionOpts = append([]SessionOption{WithSessionLogger(logger), withChangeHook(c.changed)}, sessionOpts...)

	if transport != nil {
		c.unsubscribe = transport.Subscribe(c.onPlayState)
	}
	return c
}

// SetChangeListener registers fn to be called after every state change.
// fn runs outside the controller lock and may call back into it.
func (c *SessionController) SetChangeListener(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// SubmitFile uploads a file and, on success, replaces the current asset and
// session atomically. A file that fails local validation leaves the current
// session untouched; any later failure falls back to NoMedia.
func (c *SessionController) SubmitFile(ctx context.Context, file domain.MediaFile) (*domain.MediaAsset, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, domain.ErrNoSession
	}
	if _, err := c.uploader.Validate(file); err != nil {
		c.lastError = domain.UserMessage(err)
		// An attempt in flight keeps reporting its own progress
		if c.state != domain.StateUploading {
			c.upload = domain.Failed(c.lastError)
		}
		c.mu.Unlock()
		c.logger.Info("file rejected", slog.String("name", file.Name), slog.String("error", err.Error()))
		c.changed()
		return nil, err
	}
	c.submitSeq++
	seq := c.submitSeq
	c.state = domain.StateUploading
	c.upload = domain.Uploading(0)
	c.lastError = ""
	c.mu.Unlock()
	c.changed()

	// finished is guarded by c.mu; progress can still arrive from the
	// request body writer after the backend has answered
	finished := false
	asset, err := c.uploader.Submit(ctx, file, func(st domain.UploadState) {
		c.mu.Lock()
		current := seq == c.submitSeq && !finished && !(c.upload.Terminal() && !st.Terminal())
		if current {
			c.upload = st
		}
		c.mu.Unlock()
		if current {
			c.changed()
		}
	})

	if err == nil && !asset.TranscriptReady {
		c.release(asset)
		asset, err = nil, domain.ErrTranscriptNotReady
	}

	var session *QASession
	if err == nil {
		session, err = NewQASession(asset, c.backend, c.transport, c.sessionOpts...)
		if err != nil {
			c.release(asset)
			asset = nil
		}
	}

	c.mu.Lock()
	finished = true
	if seq != c.submitSeq || c.closed {
		// A newer submission (or teardown) owns the controller now
		c.mu.Unlock()
		c.release(asset)
		return nil, fmt.Errorf("%w: upload of %s was superseded", domain.ErrStaleResult, file.Name)
	}

	oldAsset, oldSession := c.asset, c.session
	if err != nil {
		c.state = domain.StateNoMedia
		c.asset, c.session = nil, nil
		c.lastError = domain.UserMessage(err)
		c.upload = domain.Failed(c.lastError)
	} else {
		c.state = domain.StateReady
		c.asset, c.session = asset, session
		c.upload = domain.Succeeded(asset)
	}
	c.mu.Unlock()

	if oldSession != nil {
		oldSession.detach()
	}
	if err != nil && oldAsset != nil && c.transport != nil {
		_ = c.transport.Pause(ctx)
	}

	if err == nil && c.transport != nil {
		if loadErr := c.transport.Load(ctx, asset.Preview.Path(), asset.Category); loadErr != nil {
			c.logger.Warn("player could not load preview", slog.String("error", loadErr.Error()))
			c.setError("Player failed: " + loadErr.Error())
		}
	}

	// The player has moved on, so the previous preview can go
	c.release(oldAsset)
	c.changed()

	if err != nil {
		return nil, err
	}
	c.logger.Info("session ready", slog.String("media_id", asset.ID), slog.String("name", asset.Name))
	return asset, nil
}

// Ask forwards a question to the current session
func (c *SessionController) Ask(ctx context.Context, text string) (domain.Exchange, error) {
	session := c.Session()
	if session == nil {
		return domain.Exchange{}, domain.ErrNoSession
	}
	return session.Ask(ctx, text)
}

// JumpTo seeks the player to the entry's position and plays
func (c *SessionController) JumpTo(ctx context.Context, entry domain.ConversationEntry) error {
	session := c.Session()
	if session == nil {
		return domain.ErrNoSession
	}
	if err := session.JumpTo(ctx, entry); err != nil {
		c.setError("Player failed: " + err.Error())
		return err
	}
	return nil
}

// TogglePlayback pauses when playing and plays when paused
func (c *SessionController) TogglePlayback(ctx context.Context) error {
	if c.transport == nil {
		return fmt.Errorf("no player attached")
	}

	c.mu.Lock()
	playing := c.playing
	c.mu.Unlock()

	var err error
	if playing {
		err = c.transport.Pause(ctx)
	} else {
		err = c.transport.Play(ctx)
	}
	if err != nil {
		c.setError("Player failed: " + err.Error())
		return err
	}

	// Engines without notifications still get a correct indicator
	if playing {
		c.onPlayState(domain.Paused)
	} else {
		c.onPlayState(domain.Playing)
	}
	return nil
}

// Clear empties the current session's log
func (c *SessionController) Clear() {
	if session := c.Session(); session != nil {
		session.Clear()
	}
	c.mu.Lock()
	c.lastError = ""
	c.mu.Unlock()
	c.changed()
}

// Discard drops the current asset and returns to NoMedia. With deleteRemote
// the backend copy is deleted as well.
func (c *SessionController) Discard(ctx context.Context, deleteRemote bool) error {
	c.mu.Lock()
	asset, session := c.asset, c.session
	c.asset, c.session = nil, nil
	c.state = domain.StateNoMedia
	c.upload = domain.UploadState{Phase: domain.UploadIdle}
	c.submitSeq++ // Orphans any upload still in flight
	c.mu.Unlock()

	if session != nil {
		session.detach()
	}
	if asset != nil && c.transport != nil {
		_ = c.transport.Pause(ctx)
	}
	c.release(asset)
	c.changed()

	if deleteRemote && asset != nil {
		if err := c.backend.Delete(ctx, asset.ID); err != nil {
			c.setError(domain.UserMessage(err))
			return err
		}
		c.logger.Info("media deleted", slog.String("media_id", asset.ID))
	}
	return nil
}

// Close tears the controller down and releases the current preview handle.
// It is safe to call more than once.
func (c *SessionController) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	asset, session := c.asset, c.session
	c.asset, c.session = nil, nil
	c.state = domain.StateNoMedia
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if session != nil {
		session.detach()
	}
	c.release(asset)
	return nil
}

// Session returns the current session, or nil outside the Ready state
func (c *SessionController) Session() *QASession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Snapshot returns the controller state for rendering
func (c *SessionController) Snapshot() ControllerSnapshot {
	c.mu.Lock()
	snap := ControllerSnapshot{
		State:     c.state,
		Upload:    c.upload,
		Asset:     c.asset,
		Playing:   c.playing,
		LastError: c.lastError,
	}
	session := c.session
	c.mu.Unlock()

	if session != nil {
		snap.Entries = session.Entries()
		snap.Pending = session.Pending()
		if msg := session.LastError(); msg != "" {
			snap.LastError = msg
		}
	}
	return snap
}

func (c *SessionController) onPlayState(state domain.PlayState) {
	c.mu.Lock()
	c.playing = state == domain.Playing
	c.mu.Unlock()
	c.changed()
}

func (c *SessionController) setError(msg string) {
	c.mu.Lock()
	c.lastError = msg
	c.mu.Unlock()
	c.changed()
}

// release frees the asset's preview. Callers must have taken sole ownership
// of the asset first, so each handle is released exactly once.
func (c *SessionController) release(asset *domain.MediaAsset) {
	if asset == nil || asset.Preview == nil {
		return
	}
	if err := asset.Preview.Release(); err != nil {
		c.logger.Error("preview release failed",
			slog.String("media_id", asset.ID),
			slog.String("preview", asset.Preview.ID()),
			slog.String("error", err.Error()))
	}
}

func (c *SessionController) changed() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}
