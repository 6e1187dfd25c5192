package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	historyJSON  bool
	historyLimit int
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"ls"},
	Short:   "List earlier uploads (alias: ls)",
	Long: `List the uploads recorded on this machine, newest first.

Names shown here can be passed to status, info and delete.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the history as JSON")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show at most n uploads")
}

func runHistory(cmd *cobra.Command, args []string) error {
	records, err := uploadHistory.List(getContext())
	if err != nil {
		return err
	}
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	if historyJSON {
		if records == nil {
			records = []domain.MediaRecord{}
		}
		data, err := json.Marshal(records)
		if err != nil {
			return err
		}
		fmt.Println(ui.HighlightJSON(data))
		return nil
	}

	if len(records) == 0 {
		fmt.Println(ui.FormatInfo("No uploads yet. Try: mq upload <file>"))
		return nil
	}

	table := ui.NewTable([]ui.TableColumn{
		{Header: "", Width: 2},
		{Header: "NAME", MaxWidth: 40},
		{Header: "SIZE", Align: "right"},
		{Header: "UPLOADED"},
		{Header: "ID"},
	})
	for _, rec := range records {
		table.AddRow([]string{
			rec.Category.Icon(),
			rec.Name,
			domain.FormatBytes(rec.ByteSize),
			rec.UploadedAt.Local().Format("2006-01-02 15:04"),
			rec.ID,
		})
	}

	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted(fmt.Sprintf("%d uploads", len(records))))
	return nil
}
