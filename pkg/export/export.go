package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/pkg/timecode"
)

// Supported formats
const (
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatHTML     = "html"
)

// Conversation is a snapshot of a session ready to be written out
type Conversation struct {
	Media      domain.MediaRecord         `json:"media"`
	Entries    []domain.ConversationEntry `json:"entries"`
	ExportedAt time.Time                  `json:"exported_at"`
}

// Extension returns the file extension for a format
func Extension(format string) (string, error) {
	switch format {
	case FormatMarkdown:
		return ".md", nil
	case FormatJSON:
		return ".json", nil
	case FormatHTML:
		return ".html", nil
	}
	return "", fmt.Errorf("unknown export format %q", format)
}

// Render writes conv to w in the given format
func Render(w io.Writer, format string, conv Conversation) error {
	switch format {
	case FormatMarkdown:
		return Markdown(w, conv)
	case FormatJSON:
		return JSON(w, conv)
	case FormatHTML:
		return HTML(w, conv)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Write renders conv into dir and returns the created file path
func Write(dir, format string, conv Conversation) (string, error) {
	ext, err := Extension(format)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(dir, Filename(conv)+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}

	if err := Render(f, format, conv); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// Filename builds a slug like "lecture-20260501-0905" without extension
func Filename(conv Conversation) string {
	base := strings.TrimSuffix(conv.Media.Name, filepath.Ext(conv.Media.Name))
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(base), "-"), "-")
	if slug == "" {
		slug = "conversation"
	}
	return slug + "-" + conv.ExportedAt.Format("20060102-1504")
}

// Markdown writes a readable transcript of the conversation
func Markdown(w io.Writer, conv Conversation) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s %s\n\n", conv.Media.Category.Icon(), conv.Media.Name)
	if conv.Media.ID != "" {
		fmt.Fprintf(&b, "- Media ID: `%s`\n", conv.Media.ID)
	}
	if conv.Media.ByteSize > 0 {
		fmt.Fprintf(&b, "- Size: %s\n", domain.FormatBytes(conv.Media.ByteSize))
	}
	fmt.Fprintf(&b, "- Exported: %s\n\n", conv.ExportedAt.Format("2006-01-02 15:04"))

	if len(conv.Entries) == 0 {
		b.WriteString("_No questions yet._\n")
	}

	for _, e := range conv.Entries {
		if e.IsQuestion() {
			fmt.Fprintf(&b, "## [%s] Q (%s)\n\n%s\n\n", timecode.Format(e.MediaPosition), e.WallClock(), e.Text)
			continue
		}
		fmt.Fprintf(&b, "**A** (%s)", e.WallClock())
		if label := e.ConfidenceLabel(); label != "" {
			fmt.Fprintf(&b, " · %s", label)
		}
		fmt.Fprintf(&b, "\n\n%s\n\n", e.Text)
		if e.SupportingContext != "" {
			for _, line := range strings.Split(strings.TrimSpace(e.SupportingContext), "\n") {
				fmt.Fprintf(&b, "> %s\n", line)
			}
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// JSON writes the conversation as indented JSON
func JSON(w io.Writer, conv Conversation) error {
	if conv.Entries == nil {
		conv.Entries = []domain.ConversationEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(conv)
}

// HTML writes a standalone page plotting each answer's confidence against
// the media position of its question
func HTML(w io.Writer, conv Conversation) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: conv.Media.Name,
			Width:     "1000px",
			Height:    "520px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    conv.Media.Category.Icon() + " " + conv.Media.Name,
			Subtitle: fmt.Sprintf("%d answers · exported %s", answerCount(conv.Entries), conv.ExportedAt.Format("2006-01-02 15:04")),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "item"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "position (s)", Type: "value", Min: 0}),
		charts.WithYAxisOpts(opts.YAxis{Name: "confidence (%)", Type: "value", Min: 0, Max: 100}),
	)

	scatter.AddSeries("answers", timeline(conv.Entries))
	return scatter.Render(w)
}

// timeline pairs each answer with the question before it. Answers
// without a confidence are plotted at 0.
func timeline(entries []domain.ConversationEntry) []opts.ScatterData {
	points := make([]opts.ScatterData, 0, len(entries)/2)
	question := ""
	for _, e := range entries {
		if e.IsQuestion() {
			question = e.Text
			continue
		}
		confidence := 0.0
		if e.Confidence != nil {
			confidence = *e.Confidence
		}
		points = append(points, opts.ScatterData{
			Name:       fmt.Sprintf("[%s] %s", timecode.Format(e.MediaPosition), question),
			Value:      []interface{}{e.MediaPosition, confidence},
			SymbolSize: 12,
		})
	}
	return points
}

func answerCount(entries []domain.ConversationEntry) int {
	n := 0
	for _, e := range entries {
		if !e.IsQuestion() {
			n++
		}
	}
	return n
}
