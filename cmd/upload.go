package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	uploadMime string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a recording and wait for its transcript",
	Long: `Upload an audio or video file to the backend.

The file is checked locally first (type and size), then sent with a
progress bar. The command returns once the transcript is ready and records
the upload in the local history so later commands can refer to it by name.

With no argument a fuzzy picker lists media files below the current directory.

Examples:
  mq upload lecture.mp4
  mq upload recording.bin --mime audio/mpeg`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadMime, "mime", "", "Declare the MIME type instead of detecting it")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	file, err := resolveMediaArg(args, uploadMime)
	if err != nil {
		if errors.Is(err, errCancelled) {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
		return err
	}

	fmt.Println(ui.FormatRocket("Uploading " + ui.StyleBold.Render(file.Name)))

	asset, err := uploadService.Submit(ctx, file, uploadProgress(os.Stdout))
	if err != nil {
		printError(err)
		return err
	}
	// Nothing plays the file here
	defer asset.Preview.Release()

	recordUpload(ctx, asset)

	fmt.Println(ui.FormatSuccess("Transcript ready"))
	fmt.Println()
	printAsset(asset)
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("Ask about it with: mq chat %q", file.Path)))
	return nil
}
