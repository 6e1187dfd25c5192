package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/devserver"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	devserverAddr    string
	devserverDelay   time.Duration
	devserverOrigins []string
	devserverQuiet   bool
)

var devserverCmd = &cobra.Command{
	Use:   "devserver",
	Short: "Run a local stand-in backend with canned answers",
	Long: `Serve the backend API from memory so mq can be tried offline.

Uploads get a canned transcript (optionally after --delay), and every
question gets a placeholder answer that quotes the question and position.

Point the client at it with:
  mq --backend http://localhost:3001/api chat lecture.mp4`,
	Args: cobra.NoArgs,
	RunE: runDevserver,
}

func init() {
	devserverCmd.Flags().StringVar(&devserverAddr, "addr", "localhost:3001", "Address to listen on")
	devserverCmd.Flags().DurationVar(&devserverDelay, "delay", 0, "Simulated transcription time per upload")
	devserverCmd.Flags().StringSliceVar(&devserverOrigins, "cors", nil, "Allowed CORS origins for browser clients")
	devserverCmd.Flags().BoolVarP(&devserverQuiet, "quiet", "q", false, "Do not print the access log")
}

func runDevserver(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	opts := devserver.Options{
		TranscribeAfter: devserverDelay,
		MaxUploadBytes:  appConfig.MaxUploadBytes,
		AllowedOrigins:  devserverOrigins,
		Logger:          appLogger,
	}
	if !devserverQuiet {
		opts.AccessLog = os.Stdout
	}

	fmt.Println(ui.FormatRocket("Dev backend on http://" + devserverAddr + "/api"))
	fmt.Println(ui.FormatMuted("Press Ctrl+C to stop"))
	fmt.Println()

	if err := devserver.New(opts).Serve(ctx, devserverAddr); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(ui.FormatMuted("Dev backend stopped"))
	return nil
}
