package player

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
)

const (
	mpvDialTimeout = 5 * time.Second
	pauseObserveID = 1
)

var ErrPlayerClosed = errors.New("player closed")

type mpvRequest struct {
	Command   []any `json:"command"`
	RequestID int   `json:"request_id"`
}

// mpvMessage is either a reply (RequestID set) or an event
type mpvMessage struct {
	RequestID int             `json:"request_id"`
	Error     string          `json:"error"`
	Data      json.RawMessage `json:"data"`
	Event     string          `json:"event"`
	Name      string          `json:"name"`
}

// MPVTransport drives an mpv process over its JSON IPC socket
type MPVTransport struct {
	logger *slog.Logger
	cmd    *exec.Cmd // Nil when attached to an mpv we did not start
	conn   net.Conn

	writeMu sync.Mutex
	mu      sync.Mutex
	nextID  int
	waiting map[int]chan mpvMessage
	closed  bool
	done    chan struct{}

	observers observers
}

// StartMPV launches mpv idle with an IPC socket under runtimeDir and connects to it
func StartMPV(ctx context.Context, binary, runtimeDir string, logger *slog.Logger) (*MPVTransport, error) {
	if binary == "" {
		binary = "mpv"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("mpv not found: %w", err)
	}
	if err := os.MkdirAll(runtimeDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create runtime directory: %w", err)
	}

	socket := filepath.Join(runtimeDir, "mpv-"+uuid.NewString()[:8]+".sock")
	cmd := exec.Command(binary,
		"--idle=yes",
		"--no-terminal",
		"--force-window=yes",
		"--keep-open=yes",
		"--input-ipc-server="+socket,
	)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start mpv: %w", err)
	}

	t, err := ConnectMPV(ctx, socket, logger)
	if err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return nil, err
	}
	t.cmd = cmd
	return t, nil
}

// ConnectMPV attaches to an mpv already listening on socket
func ConnectMPV(ctx context.Context, socket string, logger *slog.Logger) (*MPVTransport, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	conn, err := dialRetry(ctx, socket)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mpv at %s: %w", socket, err)
	}

	t := &MPVTransport{
		logger:  logger,
		conn:    conn,
		waiting: make(map[int]chan mpvMessage),
		done:    make(chan struct{}),
	}
	go t.readLoop()

	if _, err := t.command(ctx, "observe_property", pauseObserveID, "pause"); err != nil {
		_ = t.Close()
		return nil, err
	}
	return t, nil
}

// mpv creates the socket a moment after the process starts
func dialRetry(ctx context.Context, socket string) (net.Conn, error) {
	ctx, cancel := context.WithTimeout(ctx, mpvDialTimeout)
	defer cancel()

	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "unix", socket)
		if err == nil {
			return conn, nil
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (t *MPVTransport) Load(ctx context.Context, path string, category domain.MimeCategory) error {
	_, err := t.command(ctx, "loadfile", path, "replace")
	if err != nil {
		return err
	}
	// loadfile starts playback; a fresh session starts paused at 0
	_, err = t.command(ctx, "set_property", "pause", true)
	return err
}

func (t *MPVTransport) Position(ctx context.Context) (float64, error) {
	data, err := t.command(ctx, "get_property", "time-pos")
	if err != nil {
		return 0, err
	}
	var pos float64
	if err := json.Unmarshal(data, &pos); err != nil {
		return 0, fmt.Errorf("unexpected time-pos %s: %w", data, err)
	}
	return domain.ClampPosition(pos), nil
}

func (t *MPVTransport) SetPosition(ctx context.Context, seconds float64) error {
	_, err := t.command(ctx, "set_property", "time-pos", domain.ClampPosition(seconds))
	return err
}

func (t *MPVTransport) Play(ctx context.Context) error {
	_, err := t.command(ctx, "set_property", "pause", false)
	return err
}

func (t *MPVTransport) Pause(ctx context.Context) error {
	_, err := t.command(ctx, "set_property", "pause", true)
	return err
}

func (t *MPVTransport) Subscribe(fn func(domain.PlayState)) func() {
	return t.observers.subscribe(fn)
}

// Close disconnects and stops mpv if this transport started it
func (t *MPVTransport) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	t.mu.Unlock()

	if t.cmd != nil {
		_, _ = t.command(context.Background(), "quit")
	}
	err := t.conn.Close()
	<-t.done

	if t.cmd != nil {
		waitErr := make(chan error, 1)
		go func() { waitErr <- t.cmd.Wait() }()
		select {
		case <-waitErr:
		case <-time.After(2 * time.Second):
			_ = t.cmd.Process.Kill()
			<-waitErr
		}
	}
	return err
}

func (t *MPVTransport) command(ctx context.Context, args ...any) (json.RawMessage, error) {
	t.mu.Lock()
	if t.closed && (len(args) == 0 || args[0] != "quit") {
		t.mu.Unlock()
		return nil, ErrPlayerClosed
	}
	t.nextID++
	id := t.nextID
	reply := make(chan mpvMessage, 1)
	t.waiting[id] = reply
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		delete(t.waiting, id)
		t.mu.Unlock()
	}()

	line, err := json.Marshal(mpvRequest{Command: args, RequestID: id})
	if err != nil {
		return nil, err
	}

	t.writeMu.Lock()
	_, err = t.conn.Write(append(line, '\n'))
	t.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("mpv %v: %w", args[0], err)
	}

	select {
	case msg := <-reply:
		if msg.Error != "success" {
			return nil, fmt.Errorf("mpv %v: %s", args[0], msg.Error)
		}
		return msg.Data, nil
	case <-t.done:
		return nil, ErrPlayerClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *MPVTransport) readLoop() {
	defer close(t.done)

	scanner := bufio.NewScanner(t.conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		var msg mpvMessage
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			t.logger.Debug("unreadable mpv message", slog.String("error", err.Error()))
			continue
		}

		if msg.Event != "" {
			t.handleEvent(msg)
			continue
		}

		t.mu.Lock()
		reply, ok := t.waiting[msg.RequestID]
		t.mu.Unlock()
		if ok {
			reply <- msg
		}
	}
}

func (t *MPVTransport) handleEvent(msg mpvMessage) {
	if msg.Event != "property-change" || msg.Name != "pause" {
		return
	}
	var paused bool
	if err := json.Unmarshal(msg.Data, &paused); err != nil {
		return
	}
	if paused {
		t.observers.notify(domain.Paused)
	} else {
		t.observers.notify(domain.Playing)
	}
}
