package cmd

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

// Set with -ldflags "-X github.com/kamal-hamza/mq-cli/cmd.Version=..."
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Display version information",
	Aliases: []string{"v"},
	Long:    `Display the current version of mq along with build information. (alias: v)`,
	Args:    cobra.NoArgs,
	Run:     runVersion,
}

func init() {
	versionCmd.Flags().BoolVarP(&versionShort, "short", "s", false, "Print only the version number")
}

func runVersion(cmd *cobra.Command, args []string) {
	version, commit, date := buildInfo()
	if versionShort {
		fmt.Println(version)
		return
	}

	fmt.Println(ui.StyleTitle.Render("MQ") + " - Media Q&A")
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Version", version))
	fmt.Println(ui.RenderKeyValue("Commit", commit))
	fmt.Println(ui.RenderKeyValue("Built", date))
	fmt.Println(ui.RenderKeyValue("Go", runtime.Version()+" "+runtime.GOOS+"/"+runtime.GOARCH))
}

// buildInfo falls back to the module and VCS stamps of `go install` builds
// when ldflags were not set
func buildInfo() (version, commit, date string) {
	version, commit, date = Version, GitCommit, BuildDate

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if commit == "unknown" && len(s.Value) >= 7 {
				commit = s.Value[:7]
			}
		case "vcs.time":
			if date == "unknown" {
				date = s.Value
			}
		}
	}
	return
}
