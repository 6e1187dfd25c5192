package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var cleanExports bool

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove local preview copies",
	Long: `Remove the private copies of media handed to the player.

Copies are normally released when a session ends. Use this after a crash
to reclaim the space. With --exports, saved conversation exports are
removed as well.

Examples:
  mq clean
  mq clean --exports`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanExports, "exports", false, "Also remove exported conversations")
}

func runClean(cmd *cobra.Command, args []string) error {
	fmt.Print(ui.StyleWarning.Render("Removing preview copies... "))
	if err := appDirs.CleanPreviews(); err != nil {
		fmt.Println(ui.FormatError("Failed"))
		return err
	}
	fmt.Println(ui.FormatSuccess("Done"))

	if !cleanExports {
		return nil
	}

	if !confirm("Remove every exported conversation in " + shortenHome(appDirs.ExportsPath) + "?") {
		fmt.Println(ui.FormatInfo("Exports kept."))
		return nil
	}

	fmt.Print(ui.StyleWarning.Render("Removing exports... "))
	if err := os.RemoveAll(appDirs.ExportsPath); err != nil {
		fmt.Println(ui.FormatError("Failed"))
		return err
	}
	if err := os.MkdirAll(appDirs.ExportsPath, 0755); err != nil {
		return err
	}
	fmt.Println(ui.FormatSuccess("Done"))
	return nil
}
