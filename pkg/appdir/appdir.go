package appdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "mq"

// Dirs is the on-disk layout used by mq
type Dirs struct {
	DataPath     string // History manifest
	ExportsPath  string // Conversation exports
	CachePath    string
	PreviewsPath string // Private copies handed to the player
	RuntimePath  string // Player IPC sockets
	StatePath    string // Logs
	ConfigPath   string // config.yaml
}

// New resolves XDG-compliant paths for mq
func New() (*Dirs, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	data := xdg("XDG_DATA_HOME", home, ".local", "share")
	cache := xdg("XDG_CACHE_HOME", home, ".cache")
	state := xdg("XDG_STATE_HOME", home, ".local", "state")
	config := xdg("XDG_CONFIG_HOME", home, ".config")

	runtime := os.Getenv("XDG_RUNTIME_DIR")
	if runtime == "" {
		runtime = filepath.Join(cache, "run")
	} else {
		runtime = filepath.Join(runtime, appName)
	}

	return &Dirs{
		DataPath:     data,
		ExportsPath:  filepath.Join(data, "exports"),
		CachePath:    cache,
		PreviewsPath: filepath.Join(cache, "previews"),
		RuntimePath:  runtime,
		StatePath:    state,
		ConfigPath:   filepath.Join(config, "config.yaml"),
	}, nil
}

// xdg returns $env/mq, falling back to APPDATA on Windows and then to the
// conventional path under home
func xdg(env, home string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName)
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// Initialize creates the directory structure if it doesn't exist
func (d *Dirs) Initialize() error {
	directories := []string{
		d.DataPath,
		d.ExportsPath,
		d.PreviewsPath,
		d.StatePath,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// LogPath returns the log file location
func (d *Dirs) LogPath() string {
	return filepath.Join(d.StatePath, "mq.log")
}

// ExportPath returns the full path for an export file
func (d *Dirs) ExportPath(filename string) string {
	return filepath.Join(d.ExportsPath, filename)
}

// CleanPreviews removes every preview copy
func (d *Dirs) CleanPreviews() error {
	entries, err := os.ReadDir(d.PreviewsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read previews directory: %w", err)
	}

	for _, entry := range entries {
		path := filepath.Join(d.PreviewsPath, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove %s: %w", path, err)
		}
	}
	return nil
}
