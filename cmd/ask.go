package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/adapters/player"
	"github.com/kamal-hamza/mq-cli/pkg/mediatype"
	"github.com/kamal-hamza/mq-cli/pkg/timecode"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	askAt      string
	askMime    string
	askExport  bool
	askFormat  string
	askContext bool
)

var askCmd = &cobra.Command{
	Use:   "ask <file> <question...>",
	Short: "Upload a file and ask one question about it",
	Long: `Run a one-shot session: upload the file, wait for the transcript, then ask
a question as if playback were paused at --at.

Examples:
  mq ask lecture.mp4 "What is entropy?"
  mq ask lecture.mp4 --at 12:30 "What did the speaker just say about heat?"
  mq ask podcast.mp3 --at 1:02:05 --export --format html "Who is the guest?"`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askAt, "at", "0", "Playback position the question refers to (s, m:ss or h:mm:ss)")
	askCmd.Flags().StringVar(&askMime, "mime", "", "Declare the MIME type instead of detecting it")
	askCmd.Flags().BoolVarP(&askExport, "export", "e", false, "Export the conversation afterwards")
	askCmd.Flags().StringVar(&askFormat, "format", "", "Export format: markdown, json or html (default from config)")
	askCmd.Flags().BoolVar(&askContext, "context", false, "Print the supporting transcript context")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	position, err := timecode.Parse(askAt)
	if err != nil {
		return fmt.Errorf("invalid --at: %w", err)
	}

	question := strings.TrimSpace(strings.Join(args[1:], " "))
	if question == "" {
		return errors.New("question cannot be empty")
	}

	file, err := mediatype.Resolve(args[0], askMime)
	if err != nil {
		return err
	}

	// A headless playhead parked at --at stands in for the player
	clock := player.NewClockTransport(nil)
	controller := newController(clock)
	defer controller.Close()

	fmt.Println(ui.FormatRocket("Uploading " + ui.StyleBold.Render(file.Name)))
	followUpload(controller, cmd.OutOrStdout())
	asset, err := controller.SubmitFile(ctx, file)
	if err != nil {
		printError(err)
		return err
	}
	controller.SetChangeListener(nil)
	recordUpload(ctx, asset)

	if err := clock.SetPosition(ctx, position); err != nil {
		return err
	}

	fmt.Println(ui.FormatInfo(fmt.Sprintf("Asking at %s...", timecode.Format(position))))
	exchange, err := controller.Ask(ctx, question)
	if err != nil {
		printError(err)
		return err
	}

	fmt.Println()
	fmt.Println(ui.FormatTitle(asset.DisplayName()))
	fmt.Println()
	fmt.Print(ui.ConversationTable(controller.Snapshot().Entries).Render())
	fmt.Println()
	fmt.Println(exchange.Answer.Text)

	if askContext && exchange.Answer.SupportingContext != "" {
		fmt.Println()
		fmt.Println(ui.StyleContext.Render(exchange.Answer.SupportingContext))
	}

	if askExport {
		path, err := exportSession(asset, controller.Snapshot().Entries, askFormat)
		if err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(ui.FormatSuccess("Exported to " + shortenHome(path)))
	}
	return nil
}
