package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/kamal-hamza/mq-cli/internal/core/domain"
	"github.com/kamal-hamza/mq-cli/internal/core/services"
	"github.com/kamal-hamza/mq-cli/pkg/mediatype"
	"github.com/kamal-hamza/mq-cli/pkg/timecode"
	"github.com/kamal-hamza/mq-cli/pkg/ui"
)

var chatMime string

var chatCmd = &cobra.Command{
	Use:   "chat [file]",
	Short: "Upload a file and ask questions while it plays",
	Long: `Open an interactive session for one audio or video file.

The file is uploaded and transcribed, then every question you type is tied
to the current playback position. Selecting an earlier question or answer
seeks the player back to that moment.

Without a file argument, a fuzzy picker lists media in the current folder.

Keyboard Shortcuts:
  Ask:
    Enter       Send question
    Tab         Browse the conversation
    Ctrl+P      Play / pause
    Ctrl+C      Quit

  Browse:
    ↑/k ↓/j     Select entry
    Enter       Jump playback to the selected entry
    Space       Play / pause
    y           Copy the selected text
    x           Export the conversation
    c           Clear the conversation
    o           Open another file
    d           Discard the media (deletes it from the backend)
    Tab/i       Back to the question box
    ?           Show help
    q           Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatMime, "mime", "", "Declare the MIME type instead of detecting it")
}

func runChat(cmd *cobra.Command, args []string) error {
	file, err := resolveMediaArg(args, chatMime)
	if err != nil {
		if errors.Is(err, errCancelled) {
			return nil
		}
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	transport, stop, err := newTransport(ctx)
	if err != nil {
		return err
	}
	defer stop()

	controller := newController(transport)
	defer controller.Close()

	changes := make(chan struct{}, 1)
	controller.SetChangeListener(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := newChatModel(ctx, controller, changes)
	m.pendingFile = &file

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("error running chat: %w", err)
	}
	return nil
}

// sessionDriver is the part of the session controller the chat view drives
type sessionDriver interface {
	SubmitFile(ctx context.Context, file domain.MediaFile) (*domain.MediaAsset, error)
	Ask(ctx context.Context, text string) (domain.Exchange, error)
	JumpTo(ctx context.Context, entry domain.ConversationEntry) error
	TogglePlayback(ctx context.Context) error
	Clear()
	Discard(ctx context.Context, deleteRemote bool) error
	Snapshot() services.ControllerSnapshot
}

type chatMode int

const (
	chatModeAsk chatMode = iota
	chatModeBrowse
	chatModeOpen
	chatModeHelp
	chatModeConfirmDiscard
)

type chatModel struct {
	ctx     context.Context
	driver  sessionDriver
	changes <-chan struct{}
	snap    services.ControllerSnapshot

	mode      chatMode
	cursor    int
	input     textinput.Model
	pathInput textinput.Model
	viewport  viewport.Model
	spinner   spinner.Model
	help      help.Model
	keys      chatKeyMap

	width  int
	height int
	ready  bool

	message       string
	messageStyle  lipgloss.Style
	messageExpiry time.Time

	// Set before the program starts, submitted by Init
	pendingFile *domain.MediaFile
}

type chatKeyMap struct {
	Send     key.Binding
	Browse   key.Binding
	Back     key.Binding
	Up       key.Binding
	Down     key.Binding
	Jump     key.Binding
	Toggle   key.Binding
	Copy     key.Binding
	Export   key.Binding
	Clear    key.Binding
	Open     key.Binding
	Discard  key.Binding
	Help     key.Binding
	Quit     key.Binding
	ForceQ   key.Binding
	Escape   key.Binding
	Confirm  key.Binding
	Cancel   key.Binding
	PlayKeys key.Binding
}

func (k chatKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Jump, k.Toggle, k.Copy, k.Back, k.Help, k.Quit}
}

func (k chatKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Send, k.Browse, k.PlayKeys, k.ForceQ},
		{k.Up, k.Down, k.Jump, k.Toggle},
		{k.Copy, k.Export, k.Clear, k.Open, k.Discard},
		{k.Back, k.Help, k.Escape, k.Quit},
	}
}

var chatKeys = chatKeyMap{
	Send: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "ask"),
	),
	Browse: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "browse"),
	),
	Back: key.NewBinding(
		key.WithKeys("tab", "i"),
		key.WithHelp("tab/i", "ask"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "previous"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "next"),
	),
	Jump: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "jump"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "play/pause"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy"),
	),
	Export: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "export"),
	),
	Clear: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "open file"),
	),
	Discard: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "discard"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	ForceQ: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "confirm"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("n", "N", "esc"),
		key.WithHelp("n/esc", "cancel"),
	),
	PlayKeys: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "play/pause"),
	),
}

func newChatModel(ctx context.Context, driver sessionDriver, changes <-chan struct{}) chatModel {
	ti := textinput.New()
	ti.Placeholder = "Ask about what you are watching..."
	ti.CharLimit = 500
	ti.Width = 60
	ti.Prompt = ui.IconQuestion + " "
	ti.Focus()

	pi := textinput.New()
	pi.Placeholder = "path/to/recording.mp4"
	pi.CharLimit = 1024
	pi.Width = 60
	pi.Prompt = ui.IconUpload + " "

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ui.ColorAccent)

	return chatModel{
		ctx:       ctx,
		driver:    driver,
		changes:   changes,
		snap:      driver.Snapshot(),
		mode:      chatModeAsk,
		input:     ti,
		pathInput: pi,
		viewport:  vp,
		spinner:   sp,
		help:      help.New(),
		keys:      chatKeys,
	}
}

// Messages

type sessionChangedMsg struct{}

type askDoneMsg struct {
	exchange domain.Exchange
	err      error
}

type uploadDoneMsg struct {
	asset *domain.MediaAsset
	err   error
}

type statusMsg struct {
	message string
	style   lipgloss.Style
}

type clearMessageMsg struct{}

func (m chatModel) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, waitForChange(m.changes)}
	if m.pendingFile != nil {
		cmds = append(cmds, m.submitFile(*m.pendingFile))
	}
	return tea.Batch(cmds...)
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		m.pathInput.Width = max(msg.Width-6, 10)
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-8, 3)
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case chatModeBrowse:
			return m.updateBrowse(msg)
		case chatModeOpen:
			return m.updateOpen(msg)
		case chatModeHelp:
			return m.updateHelp(msg)
		case chatModeConfirmDiscard:
			return m.updateConfirmDiscard(msg)
		default:
			return m.updateAsk(msg)
		}

	case sessionChangedMsg:
		following := m.cursor >= len(m.snap.Entries)-1
		m.refresh()
		if following {
			m.selectLast()
		}
		return m, waitForChange(m.changes)

	case askDoneMsg:
		m.refresh()
		if msg.err != nil {
			// Failures recorded by the session already show in the status line
			if text := domain.UserMessage(msg.err); text != "" && m.snap.LastError == "" {
				cmd := m.flash(text, ui.StyleError)
				return m, cmd
			}
			return m, nil
		}
		m.selectLast()
		return m, nil

	case uploadDoneMsg:
		m.refresh()
		if msg.err != nil {
			if text := domain.UserMessage(msg.err); text != "" && m.snap.LastError == "" {
				cmd := m.flash(text, ui.StyleError)
				return m, cmd
			}
			return m, nil
		}
		m.cursor = 0
		m.refresh()
		recordUpload(m.ctx, msg.asset)
		cmd := m.flash(msg.asset.DisplayName()+" is ready", ui.StyleSuccess)
		return m, cmd

	case statusMsg:
		cmd := m.flash(msg.message, msg.style)
		return m, cmd

	case clearMessageMsg:
		if !time.Now().Before(m.messageExpiry) {
			m.message = ""
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m chatModel) updateAsk(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQ):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Send):
		question := strings.TrimSpace(m.input.Value())
		if question == "" {
			return m, nil
		}
		if m.snap.State != domain.StateReady {
			cmd := m.flash("Wait until the transcript is ready", ui.StyleWarning)
			return m, cmd
		}
		if m.snap.Pending {
			cmd := m.flash(domain.ErrSessionBusy.Error(), ui.StyleWarning)
			return m, cmd
		}
		m.input.Reset()
		return m, m.ask(question)

	case key.Matches(msg, m.keys.Browse):
		m.mode = chatModeBrowse
		m.input.Blur()
		if len(m.snap.Entries) > 0 && m.cursor >= len(m.snap.Entries) {
			m.cursor = len(m.snap.Entries) - 1
		}
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.PlayKeys):
		return m, m.togglePlayback()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m chatModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.snap.Entries

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Escape):
		m.mode = chatModeAsk
		m.refresh()
		cmd := m.input.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refresh()
		}

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(entries)-1 {
			m.cursor++
			m.refresh()
		}

	case key.Matches(msg, m.keys.Jump):
		if entry, ok := m.selected(); ok {
			return m, m.jumpTo(entry)
		}

	case key.Matches(msg, m.keys.Toggle):
		return m, m.togglePlayback()

	case key.Matches(msg, m.keys.Copy):
		if entry, ok := m.selected(); ok {
			return m, copyText(entry.Text)
		}

	case key.Matches(msg, m.keys.Export):
		if m.snap.Asset == nil || len(entries) == 0 {
			cmd := m.flash("Nothing to export yet", ui.StyleWarning)
			return m, cmd
		}
		return m, exportConversation(m.snap.Asset, entries)

	case key.Matches(msg, m.keys.Clear):
		m.driver.Clear()
		m.cursor = 0
		m.refresh()
		cmd := m.flash("Conversation cleared", ui.StyleMuted)
		return m, cmd

	case key.Matches(msg, m.keys.Open):
		m.mode = chatModeOpen
		m.pathInput.Reset()
		cmd := m.pathInput.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Discard):
		if m.snap.Asset != nil {
			m.mode = chatModeConfirmDiscard
		}

	case key.Matches(msg, m.keys.Help):
		m.mode = chatModeHelp
	}

	return m, nil
}

func (m chatModel) updateOpen(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQ):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Escape):
		m.mode = chatModeBrowse
		m.pathInput.Blur()
		return m, nil

	case key.Matches(msg, m.keys.Send):
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" {
			return m, nil
		}
		file, err := mediatype.Resolve(expandHome(path), "")
		if err != nil {
			cmd := m.flash(err.Error(), ui.StyleError)
			return m, cmd
		}
		m.pathInput.Blur()
		m.mode = chatModeAsk
		m.cursor = 0
		focus := m.input.Focus()
		return m, tea.Batch(focus, m.submitFile(file))
	}

	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m chatModel) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) || key.Matches(msg, m.keys.Quit) {
		m.mode = chatModeBrowse
	}
	return m, nil
}

func (m chatModel) updateConfirmDiscard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = chatModeBrowse
		m.cursor = 0
		return m, m.discard()
	case key.Matches(msg, m.keys.Cancel):
		m.mode = chatModeBrowse
	}
	return m, nil
}

// refresh re-reads the controller and re-renders the conversation
func (m *chatModel) refresh() {
	m.snap = m.driver.Snapshot()
	if m.cursor >= len(m.snap.Entries) {
		m.cursor = max(len(m.snap.Entries)-1, 0)
	}
	if !m.ready {
		return
	}

	if len(m.snap.Entries) == 0 {
		m.viewport.SetContent(ui.StyleMuted.Italic(true).Render("No questions yet."))
		m.viewport.GotoTop()
		return
	}

	var s strings.Builder
	selStart, selEnd := 0, 0
	line := 0
	for i, e := range m.snap.Entries {
		block := ui.RenderEntry(e, m.mode == chatModeBrowse && i == m.cursor, m.viewport.Width)
		height := lipgloss.Height(block)
		if i == m.cursor {
			selStart, selEnd = line, line+height
		}
		s.WriteString(block)
		s.WriteString("\n\n")
		line += height + 1
	}
	m.viewport.SetContent(s.String())

	// Keep the selected entry on screen
	if selStart < m.viewport.YOffset {
		m.viewport.SetYOffset(selStart)
	} else if selEnd > m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(selEnd - m.viewport.Height)
	}
}

func (m *chatModel) selectLast() {
	if n := len(m.snap.Entries); n > 0 {
		m.cursor = n - 1
	}
	m.refresh()
	m.viewport.GotoBottom()
}

func (m chatModel) selected() (domain.ConversationEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Entries) {
		return domain.ConversationEntry{}, false
	}
	return m.snap.Entries[m.cursor], true
}

func (m *chatModel) flash(message string, style lipgloss.Style) tea.Cmd {
	m.message = message
	m.messageStyle = style
	m.messageExpiry = time.Now().Add(3 * time.Second)
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearMessageMsg{}
	})
}

// Views

func (m chatModel) View() string {
	if !m.ready {
		return "\n  Loading session..."
	}

	switch m.mode {
	case chatModeHelp:
		return m.viewHelp()
	case chatModeConfirmDiscard:
		return m.viewConfirmDiscard()
	}

	var s strings.Builder
	s.WriteString(m.renderHeader())
	s.WriteString("\n\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	s.WriteString(m.renderStatus())
	s.WriteString("\n")
	if m.mode == chatModeOpen {
		s.WriteString(m.pathInput.View())
	} else {
		s.WriteString(m.input.View())
	}
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m chatModel) renderHeader() string {
	title := ui.StyleTitle.Render("MQ")

	var media string
	switch m.snap.State {
	case domain.StateUploading:
		if m.snap.Upload.Progress >= 100 {
			media = m.spinner.View() + " Transcribing..."
		} else {
			media = ui.IconUpload + " Uploading " + ui.ProgressBar(m.snap.Upload.Progress, 24)
		}
	case domain.StateReady:
		media = m.snap.Asset.DisplayName()
		if m.snap.Asset.ByteSize > 0 {
			media += ui.StyleMuted.Render(" · " + domain.FormatBytes(m.snap.Asset.ByteSize))
		}
	default:
		media = ui.StyleMuted.Render("No media selected (press tab, then o)")
	}

	state := domain.Paused
	if m.snap.Playing {
		state = domain.Playing
	}
	right := ui.PlayIndicator(state)

	left := title + "  " + media
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m chatModel) renderStatus() string {
	switch {
	case m.snap.Pending:
		return m.spinner.View() + ui.StyleMuted.Render(" Waiting for the answer...")
	case m.snap.LastError != "":
		return ui.FormatError(m.snap.LastError)
	case m.message != "":
		return m.messageStyle.Render(m.message)
	}
	return ""
}

func (m chatModel) renderFooter() string {
	switch m.mode {
	case chatModeOpen:
		return ui.StyleMuted.Render("enter: upload • esc: cancel")
	case chatModeAsk:
		return ui.StyleMuted.Render("enter: ask • tab: browse • ctrl+p: play/pause • ctrl+c: quit")
	}
	return m.help.ShortHelpView(m.keys.ShortHelp())
}

func (m chatModel) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(ui.ColorPrimary).
		Padding(1, 2)

	var s strings.Builder
	s.WriteString(titleStyle.Render("Keyboard Shortcuts"))
	s.WriteString("\n\n")
	s.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	s.WriteString("\n\n")
	s.WriteString(ui.StyleMuted.Render("  Press ? or esc to return"))
	return s.String()
}

func (m chatModel) viewConfirmDiscard() string {
	name := "this media"
	if m.snap.Asset != nil {
		name = m.snap.Asset.DisplayName()
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ui.ColorError).
		Padding(1, 2)

	body := ui.FormatWarning("Discard "+name+"?") + "\n\n" +
		ui.StyleMuted.Render("It will be deleted from the backend with its transcript.") + "\n\n" +
		"y: delete • n/esc: cancel"
	return "\n" + box.Render(body)
}

// Commands

func waitForChange(changes <-chan struct{}) tea.Cmd {
	if changes == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return sessionChangedMsg{}
	}
}

func (m chatModel) ask(question string) tea.Cmd {
	driver, ctx := m.driver, m.ctx
	return func() tea.Msg {
		exchange, err := driver.Ask(ctx, question)
		return askDoneMsg{exchange: exchange, err: err}
	}
}

func (m chatModel) submitFile(file domain.MediaFile) tea.Cmd {
	driver, ctx := m.driver, m.ctx
	return func() tea.Msg {
		asset, err := driver.SubmitFile(ctx, file)
		return uploadDoneMsg{asset: asset, err: err}
	}
}

func (m chatModel) jumpTo(entry domain.ConversationEntry) tea.Cmd {
	driver, ctx := m.driver, m.ctx
	return func() tea.Msg {
		if err := driver.JumpTo(ctx, entry); err != nil {
			return statusMsg{message: domain.UserMessage(err), style: ui.StyleError}
		}
		return statusMsg{
			message: fmt.Sprintf("%s Jumped to %s", ui.IconPlay, timecode.Format(entry.MediaPosition)),
			style:   ui.StyleMuted,
		}
	}
}

func (m chatModel) togglePlayback() tea.Cmd {
	driver, ctx := m.driver, m.ctx
	return func() tea.Msg {
		if err := driver.TogglePlayback(ctx); err != nil {
			return statusMsg{message: err.Error(), style: ui.StyleError}
		}
		return sessionChangedMsg{}
	}
}

func (m chatModel) discard() tea.Cmd {
	driver, ctx := m.driver, m.ctx
	var id string
	if m.snap.Asset != nil {
		id = m.snap.Asset.ID
	}
	return func() tea.Msg {
		if err := driver.Discard(ctx, true); err != nil {
			return statusMsg{message: domain.UserMessage(err), style: ui.StyleError}
		}
		if uploadHistory != nil && id != "" {
			_ = uploadHistory.Delete(ctx, id)
		}
		return statusMsg{message: "Media deleted", style: ui.StyleSuccess}
	}
}

func copyText(text string) tea.Cmd {
	return func() tea.Msg {
		if clipboard.Unsupported {
			return statusMsg{message: "Clipboard is not available", style: ui.StyleWarning}
		}
		if err := clipboard.WriteAll(text); err != nil {
			return statusMsg{message: fmt.Sprintf("Copy failed: %v", err), style: ui.StyleError}
		}
		return statusMsg{message: "Copied to clipboard", style: ui.StyleSuccess}
	}
}

func exportConversation(asset *domain.MediaAsset, entries []domain.ConversationEntry) tea.Cmd {
	return func() tea.Msg {
		path, err := exportSession(asset, entries, "")
		if err != nil {
			return statusMsg{message: fmt.Sprintf("Export failed: %v", err), style: ui.StyleError}
		}
		return statusMsg{message: "Exported to " + shortenHome(path), style: ui.StyleSuccess}
	}
}
