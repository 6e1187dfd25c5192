package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/pkg/timecode"
)

// ProgressBar renders "████░░░░ 50%" in width cells plus the label
func ProgressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	if width < 1 {
		width = 1
	}

	filled := percent * width / 100
	bar := StyleAccent.Render(strings.Repeat("█", filled)) +
		StyleMuted.Render(strings.Repeat("░", width-filled))
	return fmt.Sprintf("%s %3d%%", bar, percent)
}

// PlayIndicator renders the play/pause marker
func PlayIndicator(state domain.PlayState) string {
	if state == domain.Playing {
		return StyleSuccess.Render(IconPlay + " playing")
	}
	return StyleMuted.Render(IconPause + " paused")
}

// EntryHeader renders the one-line heading of an entry:
// "❓ [1:12] 14:05" or "💬 [1:12] 14:05 · Confidence: 87%"
func EntryHeader(e domain.ConversationEntry) string {
	icon, style := IconAnswer, StyleAnswer
	if e.IsQuestion() {
		icon, style = IconQuestion, StyleQuestion
	}

	header := style.Render(icon) + " " +
		StyleTimestamp.Render("["+timecode.Format(e.MediaPosition)+"]") + " " +
		StyleMuted.Render(e.WallClock())

	if label := e.ConfidenceLabel(); label != "" {
		header += StyleMuted.Render(" · ") + StyleConfidence.Render(label)
	}
	return header
}

// RenderEntry renders a full entry wrapped to width. A selected entry is
// marked in the gutter.
func RenderEntry(e domain.ConversationEntry, selected bool, width int) string {
	gutter := "  "
	if selected {
		gutter = StyleSelected.Render("▌ ")
	}

	bodyWidth := width - lipgloss.Width(gutter)
	if bodyWidth < 10 {
		bodyWidth = 10
	}

	style := StyleAnswer
	if e.IsQuestion() {
		style = StyleQuestion
	}

	lines := []string{EntryHeader(e), style.Width(bodyWidth).Render(e.Text)}
	if e.SupportingContext != "" {
		lines = append(lines, StyleContext.Width(bodyWidth).Render(e.SupportingContext))
	}

	var b strings.Builder
	for _, block := range lines {
		for _, line := range strings.Split(block, "\n") {
			b.WriteString(gutter)
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ConversationTable lays out entries as a table for non-interactive output
func ConversationTable(entries []domain.ConversationEntry) *Table {
	table := NewTable([]TableColumn{
		{Header: "", Width: 2},
		{Header: "POSITION", Width: 8, Align: "right"},
		{Header: "TIME", Width: 5},
		{Header: "TEXT", MaxWidth: 72},
		{Header: "CONFIDENCE", Align: "right"},
	})

	for _, e := range entries {
		icon := IconAnswer
		if e.IsQuestion() {
			icon = IconQuestion
		}
		confidence := ""
		if label := e.ConfidenceLabel(); label != "" {
			confidence = strings.TrimPrefix(label, "Confidence: ")
		}
		table.AddRow([]string{icon, timecode.Format(e.MediaPosition), e.WallClock(), e.Text, confidence})
	}
	return table
}
