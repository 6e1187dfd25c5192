package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/core/ports"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	statusJSON bool
	statusWait bool
)

var statusCmd = &cobra.Command{
	Use:   "status <id|name>",
	Short: "Show transcription status for an upload",
	Long: `Ask the backend whether the transcript for an upload is ready.

The argument is a media id or the file name of an earlier upload.

Examples:
  mq status lecture.mp4
  mq status 3f2a9c1e --wait
  mq status lecture.mp4 --json`,
	Args: cobra.ExactArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Print the raw backend response")
	statusCmd.Flags().BoolVarP(&statusWait, "wait", "w", false, "Poll until the transcript is ready")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	id, rec := resolveMediaID(ctx, args[0])

	var (
		st  *ports.TranscriptStatus
		err error
	)
	if statusWait {
		fmt.Println(ui.FormatInfo("Waiting for transcript..."))
		st, err = transcriptPoller.WaitReady(ctx, id)
	} else {
		st, err = apiBackend.Status(ctx, id)
	}
	if err != nil {
		printError(err)
		return err
	}

	if statusJSON {
		fmt.Println(ui.HighlightJSON(st.Raw))
		return nil
	}

	if rec != nil {
		fmt.Println(ui.RenderKeyValue("Media", rec.Category.Icon()+" "+rec.Name))
	}
	fmt.Println(ui.RenderKeyValue("ID", id))

	switch {
	case st.Failed:
		fmt.Println(ui.FormatError("Transcription failed"))
	case st.Ready:
		fmt.Println(ui.FormatSuccess("Transcript ready"))
	default:
		fmt.Println(ui.RenderKeyValue("Progress", ui.ProgressBar(st.Progress, 30)))
	}
	if st.Message != "" {
		fmt.Println(ui.FormatMuted(st.Message))
	}
	if st.Ready && st.Transcript != "" {
		fmt.Println(ui.RenderKeyValue("Transcript", ui.Truncate(st.Transcript, 80)))
	}
	return nil
}
