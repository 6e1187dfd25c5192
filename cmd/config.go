package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/pkg/config"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or change the mq configuration",
	Long: `View or change settings stored in config.yaml.

Every key can also be overridden with an MQ_* environment variable
(for example MQ_BACKEND_URL), including from a .env file.`,
	RunE: runConfigList,
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every setting",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := appConfig.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Example: `  mq config set backend_url https://qa.example.com/api
  mq config set player mpv
  mq config set strict_clear true`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appDirs.ConfigPath)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Args:  cobra.NoArgs,
	RunE:  runConfigEdit,
}

func init() {
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configEditCmd)
}

func runConfigList(cmd *cobra.Command, args []string) error {
	table := ui.NewTable([]ui.TableColumn{
		{Header: "KEY"},
		{Header: "VALUE", MaxWidth: 60},
	})
	for _, key := range config.Keys() {
		value, err := appConfig.Get(key)
		if err != nil {
			return err
		}
		table.AddRow([]string{key, value})
	}
	fmt.Print(table.Render())
	fmt.Println()
	fmt.Println(ui.FormatMuted("File: " + shortenHome(appDirs.ConfigPath)))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	// Environment overrides must not leak into the saved file
	cfg, err := config.LoadFile(appDirs.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Set(args[0], args[1]); err != nil {
		return err
	}
	if err := cfg.Save(appDirs.ConfigPath); err != nil {
		return err
	}

	value, _ := cfg.Get(args[0])
	fmt.Println(ui.FormatSuccess(fmt.Sprintf("%s = %s", args[0], value)))
	return nil
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	path := appDirs.ConfigPath

	// Write the defaults first so there is something to edit
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
	}

	fmt.Println(ui.FormatInfo("Opening config: " + path))

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	c := exec.Command(editor, path)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	if err := c.Run(); err != nil {
		return err
	}

	if _, err := config.Load(path); err != nil {
		fmt.Println(ui.FormatWarning("The edited config does not validate: " + err.Error()))
	}
	return nil
}
