package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info <id|name>",
	Short: "Show backend metadata for an upload",
	Long: `Fetch what the backend knows about an upload and print it as JSON.

The argument is a media id or the file name of an earlier upload.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	id, rec := resolveMediaID(ctx, args[0])

	raw, err := apiBackend.Info(ctx, id)
	if err != nil {
		printError(err)
		return err
	}

	if rec != nil {
		fmt.Println(ui.FormatTitle(rec.Category.Icon() + " " + rec.Name))
		fmt.Println(ui.RenderKeyValue("Uploaded", rec.UploadedAt.Local().Format("2006-01-02 15:04")))
		fmt.Println(ui.RenderKeyValue("Size", domain.FormatBytes(rec.ByteSize)))
		fmt.Println()
	}
	fmt.Println(ui.HighlightJSON(raw))
	return nil
}
