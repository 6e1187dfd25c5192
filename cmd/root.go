package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/adapters/backend"
	"github.com/kamal-hamza/mq-cli/internal/adapters/history"
	"github.com/kamal-hamza/mq-cli/internal/adapters/player"
	"github.com/kamal-hamza/mq-cli/internal/adapters/preview"
	"github.com/kamal-hamza/mq-cli/internal/core/ports"
	"github.com/kamal-hamza/mq-cli/internal/core/services"
	"github.com/kamal-hamza/mq-cli/pkg/appdir"
	"github.com/kamal-hamza/mq-cli/pkg/config"
	"github.com/kamal-hamza/mq-cli/pkg/logging"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	// Application layout and settings
	appDirs   *appdir.Dirs
	appConfig *config.Config
	appLogger *slog.Logger
	logCloser io.Closer

	// Adapters
	apiBackend    *backend.HTTPBackend
	previewStore  *preview.Store
	uploadHistory *history.FileHistory

	// Services
	transcriptPoller *services.TranscriptPoller
	uploadService    *services.UploadService

	// Global flags
	backendURLFlag string
	playerFlag     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mq",
	Short: "MQ - Ask questions about audio and video",
	Long: ui.StyleTitle.Render("MQ") + " - Media Q&A\n\n" +
		"Upload a recording, wait for its transcript, then ask questions tied to\n" +
		"the moment you are watching or listening to.",
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: shutdownApp,
	SilenceUsage:       true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().StringVar(&backendURLFlag, "backend", "", "Backend API root (overrides backend_url)")
	rootCmd.PersistentFlags().StringVar(&playerFlag, "player", "", "Playback engine: clock or mpv (overrides player)")
}

// initializeApp initializes the application components
func initializeApp(cmd *cobra.Command, args []string) error {
	// Version output needs nothing on disk
	if cmd.Name() == "version" {
		return nil
	}

	dirs, err := appdir.New()
	if err != nil {
		return fmt.Errorf("failed to resolve directories: %w", err)
	}
	if err := dirs.Initialize(); err != nil {
		return err
	}
	appDirs = dirs

	cfg, err := config.Load(appDirs.ConfigPath)
	if err != nil {
		return err
	}
	if backendURLFlag != "" {
		cfg.BackendURL = backendURLFlag
	}
	if playerFlag != "" {
		cfg.Player = playerFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg
	ui.SetTheme(cfg.ColorTheme)

	logger, closer, err := logging.Open(appDirs.LogPath(), cfg.LogLevel)
	if err != nil {
		return err
	}
	appLogger = logger.With(slog.String("command", cmd.Name()))
	logCloser = closer

	// Initialize adapters
	apiBackend = backend.NewHTTPBackend(cfg.BackendURL, cfg.RequestTimeout(), appLogger)
	previewStore = preview.NewStore(appDirs.PreviewsPath)
	uploadHistory = history.NewFileHistory(appDirs.DataPath)

	// Initialize services
	transcriptPoller = services.NewTranscriptPoller(apiBackend, cfg.StatusPollInterval(), cfg.StatusPollAttempts, appLogger)
	uploadService = services.NewUploadService(apiBackend, previewStore, transcriptPoller, cfg.MaxUploadBytes, appLogger)

	return nil
}

func shutdownApp(cmd *cobra.Command, args []string) error {
	if logCloser != nil {
		return logCloser.Close()
	}
	return nil
}

// newTransport starts the configured playback engine. The returned stop
// function shuts it down.
func newTransport(ctx context.Context) (ports.MediaTransport, func(), error) {
	if appConfig.Player == "mpv" {
		mpv, err := player.StartMPV(ctx, appConfig.MPVPath, appDirs.RuntimePath, appLogger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to start mpv: %w", err)
		}
		return mpv, func() { _ = mpv.Close() }, nil
	}
	return player.NewClockTransport(nil), func() {}, nil
}

// newController builds a session controller over transport using the
// configured clear policy
func newController(transport ports.MediaTransport) *services.SessionController {
	var opts []services.SessionOption
	if appConfig.StrictClear {
		opts = append(opts, services.WithStrictClear())
	}
	return services.NewSessionController(uploadService, apiBackend, transport, appLogger, opts...)
}

// getContext returns a context for operations
func getContext() context.Context {
	return context.Background()
}

// signalContext returns a context cancelled on Ctrl+C or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
