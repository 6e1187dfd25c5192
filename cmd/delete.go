package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete an upload and its transcript from the backend",
	Long: `Delete the media and everything derived from it on the backend, then
drop it from the local history.

Examples:
  mq delete lecture.mp4
  mq delete 3f2a9c1e --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip the confirmation prompt")
}

func runDelete(cmd *cobra.Command, args []string) error {
	ctx := getContext()

	id, rec := resolveMediaID(ctx, args[0])

	label := id
	if rec != nil {
		label = fmt.Sprintf("%s %s %s", rec.Category.Icon(), rec.Name, ui.StyleMuted.Render("("+id+")"))
	}

	if !deleteForce {
		fmt.Println(ui.FormatWarning("You are about to delete:"))
		fmt.Printf("  %s\n\n", label)
		if !confirm("Delete it from the backend?") {
			fmt.Println(ui.FormatInfo("Operation cancelled."))
			return nil
		}
	}

	if err := apiBackend.Delete(ctx, id); err != nil {
		printError(err)
		return err
	}

	if err := uploadHistory.Delete(ctx, id); err != nil {
		fmt.Println(ui.FormatWarning("Deleted remotely, but the history could not be updated: " + err.Error()))
	}

	fmt.Println(ui.FormatSuccess("Deleted " + label))
	return nil
}
