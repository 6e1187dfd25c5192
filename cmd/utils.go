package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/services"
	"github.com/kamal-hamza/mq-cli/pkg/export"
	"github.com/kamal-hamza/mq-cli/pkg/mediatype"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

// errCancelled is returned when the user backs out of a picker or prompt
var errCancelled = errors.New("cancelled")

// maxPickerDepth bounds how far below the working directory the picker looks
const maxPickerDepth = 3

// findMediaFiles lists audio/video files under root, newest first
func findMediaFiles(root string) ([]string, error) {
	type candidate struct {
		path    string
		modTime time.Time
	}
	var found []candidate

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || strings.Count(rel, string(filepath.Separator)) >= maxPickerDepth) {
				return filepath.SkipDir
			}
			return nil
		}
		if !mediatype.IsMedia(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		found = append(found, candidate{path: path, modTime: info.ModTime()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(found, func(i, j int) bool { return found[i].modTime.After(found[j].modTime) })
	paths := make([]string, len(found))
	for i, c := range found {
		paths[i] = c.path
	}
	return paths, nil
}

// pickMediaFile shows a fuzzy finder over media files in the working directory
func pickMediaFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	files, err := findMediaFiles(cwd)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no audio or video files found under %s", cwd)
	}

	idx, err := fuzzyfinder.Find(
		files,
		func(i int) string {
			rel, _ := filepath.Rel(cwd, files[i])
			return rel
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return ""
			}
			file, err := mediatype.Resolve(files[i], "")
			if err != nil {
				return err.Error()
			}
			category, _ := domain.CategoryFromMime(file.MimeType)
			return fmt.Sprintf("%s %s\n\nType: %s\nSize: %s",
				category.Icon(), file.Name, file.MimeType, domain.FormatBytes(file.Size))
		}),
	)
	if err != nil {
		return "", errCancelled
	}
	return files[idx], nil
}

// resolveMediaArg turns a CLI argument into a MediaFile, prompting when empty
func resolveMediaArg(args []string, mimeOverride string) (domain.MediaFile, error) {
	var path string
	if len(args) > 0 && args[0] != "" {
		path = args[0]
	} else {
		picked, err := pickMediaFile()
		if err != nil {
			return domain.MediaFile{}, err
		}
		path = picked
	}
	return mediatype.Resolve(path, mimeOverride)
}

// resolveMediaID accepts a backend media id or the name of a recorded upload
func resolveMediaID(ctx context.Context, arg string) (string, *domain.MediaRecord) {
	rec, err := uploadHistory.Get(ctx, arg)
	if err != nil {
		return arg, nil
	}
	return rec.ID, rec
}

// recordUpload adds asset to the local history. Failures are logged only.
func recordUpload(ctx context.Context, asset *domain.MediaAsset) {
	if asset == nil || uploadHistory == nil {
		return
	}
	if err := uploadHistory.Save(ctx, domain.RecordOf(asset)); err != nil {
		appLogger.Warn("failed to record upload", "media_id", asset.ID, "error", err.Error())
	}
}

// uploadProgress prints upload states on a single rewritten line
func uploadProgress(w io.Writer) func(domain.UploadState) {
	return func(st domain.UploadState) {
		switch st.Phase {
		case domain.UploadUploading:
			fmt.Fprintf(w, "\r%s %s", ui.FormatUpload("Uploading"), ui.ProgressBar(st.Progress, 30))
			if st.Progress >= 100 {
				fmt.Fprintf(w, "\r\033[K%s\n", ui.FormatInfo("Waiting for transcript..."))
			}
		case domain.UploadFailed:
			fmt.Fprint(w, "\r\033[K")
		}
	}
}

// exportSession writes the conversation in the configured format
func exportSession(asset *domain.MediaAsset, entries []domain.ConversationEntry, format string) (string, error) {
	if format == "" {
		format = appConfig.ExportFormat
	}
	return export.Write(appDirs.ExportsPath, format, export.Conversation{
		Media:      domain.RecordOf(asset),
		Entries:    entries,
		ExportedAt: time.Now(),
	})
}

// printAsset prints the summary of an uploaded asset
func printAsset(asset *domain.MediaAsset) {
	fmt.Println(ui.RenderKeyValue("Media", asset.DisplayName()))
	fmt.Println(ui.RenderKeyValue("ID", asset.ID))
	fmt.Println(ui.RenderKeyValue("Type", asset.MimeType))
	fmt.Println(ui.RenderKeyValue("Size", domain.FormatBytes(asset.ByteSize)))
	if asset.TranscriptExcerpt != "" {
		fmt.Println(ui.RenderKeyValue("Transcript", ui.Truncate(asset.TranscriptExcerpt, 80)))
	}
}

// printError prints err the way the session would show it
func printError(err error) {
	if msg := domain.UserMessage(err); msg != "" {
		fmt.Println(ui.FormatError(msg))
	}
}

// confirm asks a yes/no question on stdin
func confirm(prompt string) bool {
	fmt.Print(ui.StyleWarning.Render(prompt + " (y/n): "))
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}

// shortenHome replaces the home directory prefix with ~
func shortenHome(path string) string {
	if home, err := os.UserHomeDir(); err == nil && strings.HasPrefix(path, home) {
		return "~" + strings.TrimPrefix(path, home)
	}
	return path
}

// expandHome turns a leading ~ into the home directory
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// followUpload prints the controller's upload progress while it is uploading
func followUpload(controller *services.SessionController, w io.Writer) {
	progress := uploadProgress(w)
	var mu sync.Mutex
	last := -1
	controller.SetChangeListener(func() {
		mu.Lock()
		defer mu.Unlock()
		snap := controller.Snapshot()
		if snap.State != domain.StateUploading || snap.Upload.Phase != domain.UploadUploading {
			return
		}
		if snap.Upload.Progress == last {
			return
		}
		last = snap.Upload.Progress
		progress(snap.Upload)
	})
}
