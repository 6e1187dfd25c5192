package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/services"
	"github.com/kamal-hamza/mq-cli/pkg/mediatype"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var (
	watchAsk    string
	watchExport bool
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload new recordings as they appear in a folder",
	Long: `Watch a folder and upload every new audio or video file dropped into it.

Each new file replaces the previous session. If a second file arrives while
the first is still uploading, only the newer one becomes current.

Use --ask to put the same question to every new recording.

Examples:
  mq watch ~/Recordings
  mq watch . --ask "Summarize the action items" --export`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchAsk, "ask", "a", "", "Question to ask about each new recording")
	watchCmd.Flags().BoolVarP(&watchExport, "export", "e", false, "Export each answered session")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	transport, stop, err := newTransport(ctx)
	if err != nil {
		return err
	}
	defer stop()

	controller := newController(transport)
	defer controller.Close()

	fmt.Println(ui.FormatRocket("Watching " + shortenHome(dir)))
	fmt.Println(ui.FormatMuted("Drop an audio or video file into the folder. Press Ctrl+C to stop"))
	fmt.Println()

	var wg sync.WaitGroup
	arrivals := newDebouncer(appConfig.WatchDebounce(), func(path string) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			handleArrival(ctx, controller, path)
		}()
	})
	defer arrivals.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isCandidate(event) {
				continue
			}
			arrivals.Touch(event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			appLogger.Warn("watcher error", "error", err.Error())

		case <-ctx.Done():
			arrivals.Stop()
			wg.Wait()
			fmt.Println()
			fmt.Println(ui.FormatMuted("Watcher stopped"))
			return nil
		}
	}
}

// isCandidate reports whether event may be a new recording
func isCandidate(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") {
		return false
	}
	return mediatype.IsMedia(event.Name)
}

func handleArrival(ctx context.Context, controller *services.SessionController, path string) {
	if _, err := os.Stat(path); err != nil {
		// Renamed or removed before it settled
		return
	}

	file, err := mediatype.Resolve(path, "")
	if err != nil {
		fmt.Println(ui.FormatError(err.Error()))
		return
	}

	fmt.Println(ui.FormatUpload("New recording: " + ui.StyleBold.Render(file.Name)))
	asset, err := controller.SubmitFile(ctx, file)
	if err != nil {
		if errors.Is(err, domain.ErrStaleResult) {
			fmt.Println(ui.FormatMuted("Skipped " + file.Name + ": a newer file arrived"))
			return
		}
		printError(err)
		return
	}
	recordUpload(ctx, asset)
	fmt.Println(ui.FormatSuccess(asset.DisplayName() + " is ready"))

	if watchAsk == "" {
		return
	}

	exchange, err := controller.Ask(ctx, watchAsk)
	if err != nil {
		printError(err)
		return
	}
	fmt.Println(ui.EntryHeader(exchange.Answer))
	fmt.Println(exchange.Answer.Text)

	if watchExport {
		out, err := exportSession(asset, []domain.ConversationEntry{exchange.Question, exchange.Answer}, "")
		if err != nil {
			fmt.Println(ui.FormatError(err.Error()))
			return
		}
		fmt.Println(ui.FormatMuted("Exported to " + shortenHome(out)))
	}
	fmt.Println()
}

// debouncer calls fire once per path after the path has been quiet for delay.
// fire runs under the debouncer lock and must not block.
type debouncer struct {
	delay time.Duration
	fire  func(path string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fire func(path string)) *debouncer {
	return &debouncer{
		delay:  delay,
		fire:   fire,
		timers: make(map[string]*time.Timer),
	}
}

// Touch restarts the quiet period for path
func (d *debouncer) Touch(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if t, ok := d.timers[path]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		// A later Touch replaced this timer
		if d.stopped || d.timers[path] != timer {
			return
		}
		delete(d.timers, path)
		d.fire(path)
	})
	d.timers[path] = timer
}

// Stop cancels pending timers. Touch is a no-op afterwards.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for path, t := range d.timers {
		t.Stop()
		delete(d.timers, path)
	}
}
