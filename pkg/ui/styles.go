package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// ANSI palette indexes, so the terminal theme decides the actual colors
var (
	ColorSuccess = lipgloss.AdaptiveColor{Light: "2", Dark: "10"}
	ColorError   = lipgloss.AdaptiveColor{Light: "1", Dark: "9"}
	ColorPrimary = lipgloss.AdaptiveColor{Light: "5", Dark: "13"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "6", Dark: "14"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "8", Dark: "8"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "3", Dark: "11"}
	ColorAccent  = lipgloss.AdaptiveColor{Light: "4", Dark: "12"}
	ColorText    = lipgloss.AdaptiveColor{Light: "0", Dark: "7"}
)

// Styles are rebuilt by SetTheme
var (
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StylePrimary lipgloss.Style
	StyleInfo    lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleAccent  lipgloss.Style
	StyleTitle   lipgloss.Style
	StyleBold    lipgloss.Style

	StyleTableHeader lipgloss.Style
	StyleTableRow    lipgloss.Style
	StyleTableRowAlt lipgloss.Style
	StyleTableBorder lipgloss.Style

	// Conversation
	StyleQuestion   lipgloss.Style
	StyleAnswer     lipgloss.Style
	StyleTimestamp  lipgloss.Style
	StyleConfidence lipgloss.Style
	StyleContext    lipgloss.Style
	StyleSelected   lipgloss.Style
)

const (
	IconSuccess  = "✔"
	IconError    = "✘"
	IconRocket   = "🚀"
	IconInfo     = "ℹ"
	IconWarning  = "⚠"
	IconUpload   = "⇪"
	IconQuestion = "❓"
	IconAnswer   = "💬"
	IconPlay     = "▶"
	IconPause    = "⏸"
)

func init() {
	SetTheme("auto")
}

// SetTheme picks the light or dark side of the adaptive colors ("auto", "dark",
// "light") and rebuilds every style
func SetTheme(theme string) {
	switch theme {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}

	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	StyleSuccess = fg(ColorSuccess).Bold(true)
	StyleError = fg(ColorError).Bold(true)
	StylePrimary = fg(ColorPrimary).Bold(true)
	StyleInfo = fg(ColorInfo)
	StyleMuted = fg(ColorMuted)
	StyleWarning = fg(ColorWarning).Bold(true)
	StyleAccent = fg(ColorAccent)
	StyleTitle = fg(ColorPrimary).Bold(true).Underline(true)
	StyleBold = lipgloss.NewStyle().Bold(true)

	StyleTableHeader = fg(ColorPrimary).Bold(true)
	StyleTableRow = fg(ColorText)
	StyleTableRowAlt = fg(ColorText).Faint(true)
	StyleTableBorder = fg(ColorMuted)

	StyleQuestion = fg(ColorAccent).Bold(true)
	StyleAnswer = fg(ColorText)
	StyleTimestamp = fg(ColorInfo)
	StyleConfidence = fg(ColorSuccess)
	StyleContext = fg(ColorMuted).Italic(true).PaddingLeft(2)
	StyleSelected = fg(ColorPrimary).Bold(true)
}

func withIcon(style lipgloss.Style, icon, msg string) string {
	return style.Render(icon + " " + msg)
}

// FormatSuccess returns a success message with icon
func FormatSuccess(msg string) string { return withIcon(StyleSuccess, IconSuccess, msg) }

// FormatError returns an error message with icon
func FormatError(msg string) string { return withIcon(StyleError, IconError, msg) }

// FormatInfo returns an info message with icon
func FormatInfo(msg string) string { return withIcon(StyleInfo, IconInfo, msg) }

// FormatWarning returns a warning message with icon
func FormatWarning(msg string) string { return withIcon(StyleWarning, IconWarning, msg) }

// FormatRocket announces a long-running action
func FormatRocket(msg string) string { return withIcon(StylePrimary, IconRocket, msg) }

// FormatUpload prefixes msg with the upload glyph
func FormatUpload(msg string) string { return withIcon(StyleAccent, IconUpload, msg) }

func FormatTitle(title string) string { return StyleTitle.Render(title) }

func FormatMuted(text string) string { return StyleMuted.Render(text) }
