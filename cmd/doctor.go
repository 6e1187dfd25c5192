package cmd

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the health of your mq installation",
	Long: `Diagnose issues with your mq setup.

Checks for:
  - Data, export and preview directories
  - Configuration file existence
  - Backend reachability
  - Playback engine (mpv) when configured
  - Clipboard support
  - Leftover preview copies (--fix removes them)`,
	Run: runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Remove preview copies older than a day")
}

func runDoctor(cmd *cobra.Command, args []string) {
	fmt.Println(ui.FormatTitle("🏥 MQ Doctor"))
	fmt.Println()

	// 1. Check directories
	checkStep("Data Directory", func() error {
		return checkDir(appDirs.DataPath)
	})

	checkStep("Exports Directory", func() error {
		return checkDir(appDirs.ExportsPath)
	})

	checkStep("Previews Directory", func() error {
		return checkDir(appDirs.PreviewsPath)
	})

	// 2. Check Config
	checkStep("Configuration File", func() error {
		if _, err := os.Stat(appDirs.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("missing at %s (defaults in use)", appDirs.ConfigPath)
		}
		return nil
	})

	// 3. Check backend
	checkStep("Backend ("+appConfig.BackendURL+")", func() error {
		return dialBackend(appConfig.BackendURL, 3*time.Second)
	})

	// 4. Check tools
	if appConfig.Player == "mpv" {
		checkStep("mpv (Playback)", func() error {
			if _, err := exec.LookPath(appConfig.MPVPath); err != nil {
				return fmt.Errorf("%s not found in PATH", appConfig.MPVPath)
			}
			return nil
		})
	}

	checkStep("Clipboard", func() error {
		if clipboard.Unsupported {
			return fmt.Errorf("no clipboard utility found (copy in chat is disabled)")
		}
		return nil
	})

	fmt.Println()
	fmt.Println(ui.FormatInfo("Checking local state..."))

	checkStep("Preview Copies", func() error {
		if doctorFix {
			removed, err := previewStore.Sweep(24 * time.Hour)
			if err != nil {
				return err
			}
			if removed > 0 {
				fmt.Printf("    %s\n", ui.StyleMuted.Render(fmt.Sprintf("removed %d stale copies", removed)))
			}
			return nil
		}
		entries, err := os.ReadDir(appDirs.PreviewsPath)
		if err != nil {
			return err
		}
		if len(entries) > 0 {
			return fmt.Errorf("%d left behind (run 'mq doctor --fix' or 'mq clean')", len(entries))
		}
		return nil
	})

	checkStep("Upload History", func() error {
		_, err := uploadHistory.List(getContext())
		return err
	})
}

// checkStep runs a check function and prints the result nicely
func checkStep(name string, check func() error) {
	err := check()
	if err == nil {
		fmt.Printf("%s %s\n", ui.FormatSuccess("✔"), name)
	} else {
		fmt.Printf("%s %s\n", ui.FormatError("✘"), name)
		fmt.Printf("    %s\n", ui.StyleMuted.Render(err.Error()))
	}
}

func checkDir(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("missing at %s", path)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// dialBackend opens and closes a TCP connection to the backend host
func dialBackend(rawURL string, timeout time.Duration) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	host := u.Host
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	conn, err := net.DialTimeout("tcp", host, timeout)
	if err != nil {
		return fmt.Errorf("unreachable (try 'mq devserver' for a local backend)")
	}
	return conn.Close()
}
