package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fureal/fureal/internal/conversation"
	"github.com/fureal/fureal/internal/models"
	"github.com/fureal/fureal/internal/pages"
	"github.com/fureal/fureal/internal/render"
	"github.com/fureal/fureal/internal/transcript"
)

// Sender performs one exchange and records it in the conversation
type Sender interface {
	Send(ctx context.Context, text string) (models.Message, error)
}

// AudioPlayer plays the audio resource behind a reference
type AudioPlayer interface {
	Play(ctx context.Context, ref string) error
}

// Options configures the chat model
type Options struct {
	Backend       string // Shown in the header and written to transcripts
	Render        render.Options
	TranscriptDir string
	Player        AudioPlayer
	CopyFn        func(string) error
	StartPage     string // Empty opens the chat
	Logger        *zap.Logger
}

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	exchangeDoneMsg struct {
		err error
	}
	audioDoneMsg struct {
		index int
		err   error
	}
	noticeMsg struct {
		text string
		err  error
	}
)

// Tabs in navigation order. tabChat sits between Home and About like the
// web sidebar.
const tabChat = "chat"

var tabs = []string{pages.Home, tabChat, pages.About, pages.FAQ}

// exitWords end the session when typed as a whole message
var exitWords = map[string]bool{"exit": true, "quit": true, "/exit": true, "/quit": true}

// Model represents the TUI state
type Model struct {
	ctx    context.Context
	state  *conversation.State
	sender Sender
	opts   Options
	logger *zap.Logger

	changes <-chan struct{}
	cancel  func()

	// UI components
	viewport viewport.Model
	textarea textarea.Model

	// State
	snapshot       conversation.Snapshot
	tab            int
	ready          bool
	notice         string
	err            error
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model rendering state. The model subscribes
// to state immediately; call Close when done with it.
func NewChatModel(ctx context.Context, state *conversation.State, sender Sender, opts Options) Model {
	if opts.CopyFn == nil {
		opts.CopyFn = clipboard.WriteAll
	}
	if opts.Render.Width == 0 {
		opts.Render = render.DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Type your message..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	changes, cancel := watch(state)

	m := Model{
		ctx:      ctx,
		state:    state,
		sender:   sender,
		opts:     opts,
		logger:   logger.Named("tui"),
		changes:  changes,
		cancel:   cancel,
		textarea: ta,
		snapshot: state.Snapshot(),
		tab:      tabIndex(tabChat),
	}
	if opts.StartPage != "" {
		if i := tabIndex(opts.StartPage); i >= 0 {
			m.tab = i
		}
	}
	return m
}

// Close stops listening to the conversation state. A waitForChange
// command still in flight returns nil.
func (m Model) Close() {
	if m.cancel != nil {
		m.cancel()
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		waitForChange(m.changes),
	)
}

func tabIndex(name string) int {
	for i, t := range tabs {
		if t == name {
			return i
		}
	}
	return -1
}

func (m Model) onChat() bool {
	return tabs[m.tab] == tabChat
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*250, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		inputHeight := 5
		statusHeight := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - 2
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4
		if contentWidth < 20 {
			contentWidth = 20
		}

		if !m.ready {
			m.viewport = viewport.New(contentWidth-4, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth - 4
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.refresh(true)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if !m.onChat() {
				m.tab = tabIndex(tabChat)
				m.refresh(true)
				return m, nil
			}
			return m, tea.Quit

		case "tab":
			m.tab = (m.tab + 1) % len(tabs)
			m.refresh(true)
			return m, nil

		case "shift+tab":
			m.tab = (m.tab + len(tabs) - 1) % len(tabs)
			m.refresh(true)
			return m, nil

		case "ctrl+p":
			cmd = m.playLatest()
			return m, cmd

		case "enter":
			if !m.onChat() {
				return m, nil
			}
			return m.submit()
		}

	case stateChangedMsg:
		wasComposing := m.snapshot.Composing
		m.snapshot = m.state.Snapshot()
		m.refresh(true)
		cmds = append(cmds, waitForChange(m.changes))
		if m.snapshot.Composing && !wasComposing {
			m.animationFrame = 0
			cmds = append(cmds, animationTick())
		}

	case exchangeDoneMsg:
		if msg.err != nil {
			m.logger.Warn("send rejected", zap.Error(msg.err))
			m.err = msg.err
		}

	case audioDoneMsg:
		if msg.err != nil {
			m.logger.Warn("audio playback failed", zap.Int("reply", msg.index), zap.Error(msg.err))
			m.err = msg.err
			m.notice = ""
		} else {
			m.notice = fmt.Sprintf("Finished playing reply %d", msg.index)
		}

	case noticeMsg:
		m.notice = msg.text
		m.err = msg.err

	case animationTickMsg:
		if m.snapshot.Composing {
			m.animationFrame++
			m.refresh(false)
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to the textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok && m.onChat() {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles enter on the chat tab. Blank input is ignored and kept.
func (m Model) submit() (tea.Model, tea.Cmd) {
	raw := m.textarea.Value()
	input := strings.TrimSpace(raw)
	if input == "" {
		return m, nil
	}

	if exitWords[input] {
		return m, tea.Quit
	}

	if strings.HasPrefix(input, "/") {
		m.textarea.Reset()
		return m.runCommand(input)
	}

	if m.snapshot.Composing {
		m.notice = models.AssistantName + " is still replying..."
		return m, nil
	}

	m.textarea.Reset()
	m.notice = ""
	m.err = nil
	return m, m.sendMessage(raw)
}

// runCommand executes a slash command
func (m Model) runCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]
	m.notice = ""
	m.err = nil

	switch name {
	case "/help":
		m.notice = "Commands: /play [N]  /save [md|json]  /copy  /home  /about  /faq  /chat  /exit"
		return m, nil

	case "/home", "/about", "/faq", "/chat":
		m.tab = tabIndex(strings.TrimPrefix(name, "/"))
		m.refresh(true)
		return m, nil

	case "/play":
		n := len(m.audioRefs())
		if len(args) > 0 {
			var err error
			if n, err = strconv.Atoi(args[0]); err != nil {
				m.notice = "Usage: /play [N]"
				return m, nil
			}
		}
		cmd := m.playIndex(n)
		return m, cmd

	case "/save":
		format := ""
		if len(args) > 0 {
			format = args[0]
		}
		return m, m.saveTranscript(format)

	case "/copy":
		return m, m.copyLast()
	}

	m.notice = fmt.Sprintf("Unknown command %s. Type /help", name)
	return m, nil
}

// sendMessage creates a command that runs one exchange. The conversation
// updates arrive through the state subscription.
func (m Model) sendMessage(text string) tea.Cmd {
	ctx, sender := m.ctx, m.sender
	return func() tea.Msg {
		_, err := sender.Send(ctx, text)
		return exchangeDoneMsg{err: err}
	}
}

// audioRefs returns the audio references in the conversation, oldest first
func (m Model) audioRefs() []string {
	var refs []string
	for _, msg := range m.snapshot.Messages {
		if msg.HasAudio() {
			refs = append(refs, msg.Audio)
		}
	}
	return refs
}

func (m *Model) playLatest() tea.Cmd {
	return m.playIndex(len(m.audioRefs()))
}

// playIndex plays the n-th reply with audio (1-based)
func (m *Model) playIndex(n int) tea.Cmd {
	refs := m.audioRefs()
	if len(refs) == 0 {
		m.notice = "No reply with audio yet"
		return nil
	}
	if n < 1 || n > len(refs) {
		m.notice = fmt.Sprintf("Pick a reply between 1 and %d", len(refs))
		return nil
	}
	if m.opts.Player == nil {
		m.notice = "Audio playback is not available"
		return nil
	}

	m.notice = fmt.Sprintf("Playing reply %d...", n)
	ctx, player, ref := m.ctx, m.opts.Player, refs[n-1]
	return func() tea.Msg {
		return audioDoneMsg{index: n, err: player.Play(ctx, ref)}
	}
}

func (m Model) saveTranscript(format string) tea.Cmd {
	messages := m.state.Messages()
	dir, backend := m.opts.TranscriptDir, m.opts.Backend
	return func() tea.Msg {
		f, err := transcript.ParseFormat(format)
		if err != nil {
			return noticeMsg{err: err}
		}
		if dir == "" {
			return noticeMsg{err: fmt.Errorf("no transcript directory configured")}
		}
		path, err := transcript.Save(dir, transcript.New(messages, backend), f)
		if err != nil {
			return noticeMsg{err: err}
		}
		return noticeMsg{text: "Saved transcript to " + path}
	}
}

func (m Model) copyLast() tea.Cmd {
	var text string
	for i := len(m.snapshot.Messages) - 1; i >= 0; i-- {
		if msg := m.snapshot.Messages[i]; msg.Sender == models.SenderAssistant {
			text = msg.Text
			break
		}
	}
	copyFn := m.opts.CopyFn
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			return noticeMsg{err: fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		return noticeMsg{text: "Copied the last reply to the clipboard"}
	}
}

// refresh re-renders the viewport for the active tab
func (m *Model) refresh(scroll bool) {
	if !m.ready {
		return
	}
	if m.onChat() {
		m.viewport.SetContent(m.renderMessages())
		if scroll {
			m.viewport.GotoBottom()
		}
		return
	}

	page, err := pages.Get(tabs[m.tab])
	if err != nil {
		m.viewport.SetContent(err.Error())
		return
	}
	m.viewport.SetContent(render.MarkdownOrPlain(page.Body, m.opts.Render.ForPage(m.viewport.Width-2)))
	if scroll {
		m.viewport.GotoTop()
	}
}

// renderMessages draws every message plus the typing indicator
func (m Model) renderMessages() string {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	audioIndex := 0
	for i, msg := range m.snapshot.Messages {
		if i > 0 {
			content.WriteString("\n")
		}

		if msg.IsUser() {
			label := userLabelStyle.Render("● You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(msg.Text)
			content.WriteString(label + "\n" + bubble)
		} else {
			label := assistantLabelStyle.Render("🌿 " + models.AssistantName)
			rendered := render.MarkdownOrPlain(msg.Text, m.opts.Render.ForReply(bubbleWidth-4))
			bubble := assistantBubbleStyle.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)

			if msg.HasAudio() {
				audioIndex++
				content.WriteString("\n")
				content.WriteString(audioMarkerStyle.Render(
					fmt.Sprintf("🔊 [%d] ctrl+p or /play %d", audioIndex, audioIndex),
				))
			}
		}
		content.WriteString("\n")
	}

	if m.snapshot.Composing {
		content.WriteString("\n")
		content.WriteString(m.renderTyping())
		content.WriteString("\n")
	}

	return content.String()
}

// renderTyping renders three dots with one of them lit per frame
func (m Model) renderTyping() string {
	lit := m.animationFrame % 3
	var dots strings.Builder
	for i := 0; i < 3; i++ {
		if i == lit {
			dots.WriteString(typingStyle.Render("●"))
		} else {
			dots.WriteString(hintStyle.Render("●"))
		}
	}
	return assistantLabelStyle.Render(models.AssistantName+" is typing ") + dots.String()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return typingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	sections := []string{
		m.renderHeader(contentWidth),
		messagesAreaStyle.Width(contentWidth).Height(m.viewport.Height).Render(m.viewport.View()),
	}

	if m.onChat() {
		input := lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
		sections = append(sections, inputPanelStyle.Width(contentWidth).Render(input))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	} else if m.notice != "" {
		sections = append(sections, noticeStyle.Render(m.notice))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader(width int) string {
	var items []string
	for i, t := range tabs {
		label := "Chat"
		if t != tabChat {
			if page, err := pages.Get(t); err == nil {
				label = page.Title
			}
		}
		if i == m.tab {
			items = append(items, activeTabStyle.Render(label))
		} else {
			items = append(items, tabStyle.Render(label))
		}
	}

	parts := []string{
		titleStyle.Render("🌿 fureal"),
		hintStyle.Render("  "),
		lipgloss.JoinHorizontal(lipgloss.Center, items...),
	}
	if m.opts.Backend != "" {
		parts = append(parts, hintStyle.Render("  •  "), subtitleStyle.Render(m.opts.Backend))
	}
	return headerStyle.Width(width).Render(lipgloss.JoinHorizontal(lipgloss.Center, parts...))
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	type shortcut struct{ key, desc string }

	shortcuts := []shortcut{{"Enter", "Send"}, {"Tab", "Pages"}, {"Ctrl+P", "Play"}, {"Esc", "Quit"}}
	if !m.onChat() {
		shortcuts = []shortcut{{"Tab", "Next page"}, {"↑↓", "Scroll"}, {"Esc", "Back to chat"}}
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, state *conversation.State, sender Sender, opts Options) error {
	m := NewChatModel(ctx, state, sender, opts)
	defer m.Close()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	return err
}
