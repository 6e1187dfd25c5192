package cmd

import (
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

// TestCommandStructure verifies that all commands are properly registered
func TestCommandStructure(t *testing.T) {
	commands := []string{
		"upload", "ask", "chat", "status", "info", "delete", "history",
		"watch", "devserver", "config", "doctor", "clean", "version",
	}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{cmdName})
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", cmdName, err)
			}
			if cmd == nil {
				t.Fatalf("Command '%s' is nil", cmdName)
			}
			if cmd.Use == "" {
				t.Errorf("Command '%s' has no Use field", cmdName)
			}
		})
	}
}

// TestRootCommandExists verifies the root command is properly configured
func TestRootCommandExists(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("Root command is nil")
	}

	if rootCmd.Use != "mq" {
		t.Errorf("Expected root command Use to be 'mq', got '%s'", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Root command Short description is empty")
	}

	for _, name := range []string{"backend", "player"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("Persistent flag '--%s' not found", name)
		}
	}
}

// TestCommandsHaveHelp verifies all commands have help text
func TestCommandsHaveHelp(t *testing.T) {
	commands := rootCmd.Commands()

	if len(commands) == 0 {
		t.Fatal("No commands registered")
	}

	for _, cmd := range commands {
		t.Run(cmd.Name(), func(t *testing.T) {
			if cmd.Short == "" {
				t.Errorf("Command '%s' has no Short description", cmd.Name())
			}
		})
	}
}

// TestAliases verifies command aliases resolve
func TestAliases(t *testing.T) {
	tests := []struct {
		alias string
		want  string
	}{
		{"ls", "history"},
		{"v", "version"},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.alias})
			if err != nil {
				t.Fatalf("Alias '%s' not found: %v", tt.alias, err)
			}
			if cmd.Name() != tt.want {
				t.Errorf("Alias '%s' resolved to '%s', want '%s'", tt.alias, cmd.Name(), tt.want)
			}
		})
	}
}

// TestSubcommands verifies specific subcommands exist
func TestSubcommands(t *testing.T) {
	tests := []struct {
		parent     string
		subcommand string
	}{
		{"config", "list"},
		{"config", "get"},
		{"config", "set"},
		{"config", "path"},
		{"config", "edit"},
	}

	for _, tt := range tests {
		t.Run(tt.parent+"_"+tt.subcommand, func(t *testing.T) {
			parentCmd, _, err := rootCmd.Find([]string{tt.parent})
			if err != nil {
				t.Fatalf("Parent command '%s' not found: %v", tt.parent, err)
			}

			found := false
			for _, cmd := range parentCmd.Commands() {
				if cmd.Name() == tt.subcommand {
					found = true
					break
				}
			}

			if !found {
				t.Errorf("Subcommand '%s' not found under '%s'", tt.subcommand, tt.parent)
			}
		})
	}
}

// TestFlagsExist verifies important flags are registered
func TestFlagsExist(t *testing.T) {
	tests := []struct {
		command  string
		flagName string
	}{
		{"upload", "mime"},
		{"ask", "at"},
		{"ask", "export"},
		{"ask", "format"},
		{"ask", "context"},
		{"chat", "mime"},
		{"status", "json"},
		{"status", "wait"},
		{"delete", "force"},
		{"history", "json"},
		{"history", "limit"},
		{"watch", "ask"},
		{"watch", "export"},
		{"devserver", "addr"},
		{"devserver", "delay"},
		{"devserver", "cors"},
		{"doctor", "fix"},
		{"clean", "exports"},
	}

	for _, tt := range tests {
		t.Run(tt.command+"_"+tt.flagName, func(t *testing.T) {
			cmd, _, err := rootCmd.Find([]string{tt.command})
			if err != nil {
				t.Fatalf("Command '%s' not found: %v", tt.command, err)
			}

			flag := cmd.Flags().Lookup(tt.flagName)
			if flag == nil {
				t.Errorf("Flag '--%s' not found on command '%s'", tt.flagName, tt.command)
			}
		})
	}
}

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"created video", fsnotify.Event{Name: "/rec/talk.mp4", Op: fsnotify.Create}, true},
		{"written audio", fsnotify.Event{Name: "/rec/talk.MP3", Op: fsnotify.Write}, true},
		{"removed", fsnotify.Event{Name: "/rec/talk.mp4", Op: fsnotify.Remove}, false},
		{"renamed", fsnotify.Event{Name: "/rec/talk.mp4", Op: fsnotify.Rename}, false},
		{"hidden", fsnotify.Event{Name: "/rec/.talk.mp4", Op: fsnotify.Create}, false},
		{"lock file", fsnotify.Event{Name: "/rec/~talk.mp4", Op: fsnotify.Create}, false},
		{"not media", fsnotify.Event{Name: "/rec/notes.txt", Op: fsnotify.Create}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isCandidate(tt.event); got != tt.want {
				t.Errorf("isCandidate(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestDebouncer_CoalescesTouches(t *testing.T) {
	// Setup
	var mu sync.Mutex
	fired := map[string]int{}
	done := make(chan struct{}, 4)
	d := newDebouncer(30*time.Millisecond, func(path string) {
		mu.Lock()
		fired[path]++
		mu.Unlock()
		done <- struct{}{}
	})
	defer d.Stop()

	// Execute
	for i := 0; i < 5; i++ {
		d.Touch("a.mp4")
		time.Sleep(5 * time.Millisecond)
	}
	d.Touch("b.mp3")

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for debounced fire")
		}
	}
	time.Sleep(60 * time.Millisecond)

	// Assert
	mu.Lock()
	defer mu.Unlock()
	if fired["a.mp4"] != 1 {
		t.Errorf("Expected a.mp4 to fire once, got %d", fired["a.mp4"])
	}
	if fired["b.mp3"] != 1 {
		t.Errorf("Expected b.mp3 to fire once, got %d", fired["b.mp3"])
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	// Setup
	fired := make(chan string, 1)
	d := newDebouncer(20*time.Millisecond, func(path string) {
		fired <- path
	})

	// Execute
	d.Touch("a.mp4")
	d.Stop()
	d.Touch("b.mp4")

	// Assert
	select {
	case path := <-fired:
		t.Errorf("Expected no fire after Stop, got %s", path)
	case <-time.After(80 * time.Millisecond):
	}
}

func TestFindMediaFiles(t *testing.T) {
	// Setup
	root := t.TempDir()
	write := func(rel string, age time.Duration) {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := time.Now().Add(-age)
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	write("old.mp3", 2*time.Hour)
	write("new.mp4", time.Minute)
	write("talks/mid.wav", time.Hour)
	write("notes.txt", 0)
	write(".cache/hidden.mp4", 0)
	write("a/b/c/d/deep.mp4", 0)

	// Execute
	files, err := findMediaFiles(root)

	// Assert
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	want := []string{
		filepath.Join(root, "new.mp4"),
		filepath.Join(root, "talks", "mid.wav"),
		filepath.Join(root, "old.mp3"),
	}
	if len(files) != len(want) {
		t.Fatalf("Expected %d files, got %d: %v", len(want), len(files), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %s, want %s", i, files[i], want[i])
		}
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	tests := []struct {
		in   string
		want string
	}{
		{"~", home},
		{"~/Videos/a.mp4", filepath.Join(home, "Videos", "a.mp4")},
		{"/abs/a.mp4", "/abs/a.mp4"},
		{"~other/a.mp4", "~other/a.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := expandHome(tt.in); got != tt.want {
				t.Errorf("expandHome(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDialBackend(t *testing.T) {
	// Setup
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()
	addr := ln.Addr().String()

	// Execute & Assert
	if err := dialBackend("http://"+addr+"/api", time.Second); err != nil {
		t.Errorf("Expected reachable backend, got %v", err)
	}

	ln.Close()
	if err := dialBackend("http://"+addr+"/api", 200*time.Millisecond); err == nil {
		t.Error("Expected an error once the listener is closed")
	}
	if err := dialBackend("://bad", time.Second); err == nil {
		t.Error("Expected an error for an invalid URL")
	}
}

func TestBuildInfo_PrefersLinkerValues(t *testing.T) {
	// Setup
	oldVersion, oldCommit, oldDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = oldVersion, oldCommit, oldDate }()
	Version, GitCommit, BuildDate = "v1.2.3", "abc1234", "2026-05-01"

	// Execute
	version, commit, date := buildInfo()

	// Assert
	if version != "v1.2.3" || commit != "abc1234" || date != "2026-05-01" {
		t.Errorf("buildInfo() = %q %q %q, want linker values", version, commit, date)
	}
}
