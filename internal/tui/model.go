package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/aichat/internal/chat"
	"github.com/diogo/aichat/internal/models"
	"github.com/diogo/aichat/internal/render"
)

// replyMsg carries the settled outcome of a dispatch back to Update
type replyMsg struct {
	reply chat.Reply
}

// Dispatcher is the part of chat.Dispatcher the view needs
type Dispatcher interface {
	Dispatch(ctx context.Context, prompt string) chat.Reply
}

// Model represents the TUI state
type Model struct {
	dispatcher Dispatcher
	ctx        context.Context
	modelName  string
	renderOpts render.Options

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	// Conversation, input buffer and busy flag
	state   chat.State
	lastErr error
	ready   bool

	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(ctx context.Context, d Dispatcher, modelName string, opts render.Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 4000
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)
	ti.PlaceholderStyle = lipgloss.NewStyle().Foreground(colorTextDim)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	if ctx == nil {
		ctx = context.Background()
	}

	return Model{
		dispatcher: d,
		ctx:        ctx,
		modelName:  modelName,
		renderOpts: opts,
		input:      ti,
		spinner:    s,
		state:      chat.NewState(),
	}
}

// Init sets the window title once and starts the cursor blink
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle(models.WindowTitle),
		textinput.Blink,
	)
}

// Messages returns the conversation in display order
func (m Model) Messages() []models.Message {
	return m.state.Messages()
}

// Busy reports whether a request is in flight
func (m Model) Busy() bool {
	return m.state.Busy()
}

// Input returns the unsent text
func (m Model) Input() string {
	return m.state.Input()
}

// isSubmitKey reports whether msg triggers a submission.
// Terminals cannot report shift+enter, so alt+enter is the modified Enter.
func isSubmitKey(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEnter {
		return !msg.Alt
	}
	return msg.Type == tea.KeyCtrlS
}

// isModifiedEnter reports an Enter held with a modifier
func isModifiedEnter(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyEnter && msg.Alt
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "pgup", "pgdown", "up", "down":
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if isModifiedEnter(msg) {
			return m, nil
		}

		if isSubmitKey(msg) {
			return m.submit()
		}

		// The input is not editable while a request is in flight
		if m.state.Busy() {
			return m, nil
		}

		m.input, cmd = m.input.Update(msg)
		m.state = m.state.SetInput(m.input.Value())
		return m, cmd

	case replyMsg:
		m.state = m.state.Settle(msg.reply.Message)
		m.lastErr = msg.reply.Err
		m.refreshViewport()
		cmd = m.input.Focus()
		return m, cmd

	case spinner.TickMsg:
		if m.state.Busy() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)

	default:
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit applies the submission transition and starts the dispatch.
// Rejected submissions (empty input, busy) leave the model unchanged.
func (m Model) submit() (tea.Model, tea.Cmd) {
	next, prompt, err := m.state.Submit()
	if err != nil {
		return m, nil
	}

	m.state = next
	m.lastErr = nil
	m.input.Reset()
	m.input.Blur()
	m.refreshViewport()

	return m, tea.Batch(
		m.dispatch(prompt),
		m.spinner.Tick,
	)
}

// dispatch returns a command that runs the request off the event loop
func (m Model) dispatch(prompt string) tea.Cmd {
	d := m.dispatcher
	ctx := m.ctx
	return func() tea.Msg {
		if d == nil {
			return replyMsg{reply: chat.NewDispatcher(nil).Dispatch(ctx, prompt)}
		}
		return replyMsg{reply: d.Dispatch(ctx, prompt)}
	}
}

// layout sizes the components from the window dimensions
func (m *Model) layout() {
	headerHeight := 3
	inputHeight := 3
	statusHeight := 1
	borders := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - borders
	if vpHeight < 3 {
		vpHeight = 3
	}
	contentWidth := m.width - 4
	if contentWidth < 20 {
		contentWidth = 20
	}

	if !m.ready {
		m.viewport = viewport.New(contentWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = contentWidth
		m.viewport.Height = vpHeight
	}
	m.input.Width = contentWidth - 12
	m.refreshViewport()
}

// bubbleWidth caps a message bubble at 70% of the list width
func (m Model) bubbleWidth() int {
	w := m.viewport.Width * 7 / 10
	if w < 16 {
		w = 16
	}
	return w
}

// refreshViewport re-renders the conversation and scrolls to the newest message
func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// renderMessages renders every message in order, styled by sender
func (m Model) renderMessages() string {
	var content strings.Builder
	width := m.viewport.Width
	bubbleWidth := m.bubbleWidth()

	for i, msg := range m.state.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(msg, width, bubbleWidth))
		content.WriteString("\n")
	}

	if m.state.Busy() {
		content.WriteString("\n")
		content.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			m.spinner.View()+" "+loadingStyle.Render("Generating response...")))
	}

	return content.String()
}

func (m Model) renderMessage(msg models.Message, width, bubbleWidth int) string {
	if msg.IsUser() {
		label := userLabelStyle.Render("You")
		bubble := userBubbleStyle.MaxWidth(bubbleWidth).Width(fitWidth(msg.Text, bubbleWidth)).Render(msg.Text)
		block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}

	label := assistantLabelStyle.Render("✦ Assistant")
	text := render.Reply(msg.Text, m.renderOpts.WithWidth(bubbleWidth-4))
	bubble := assistantBubbleStyle.MaxWidth(bubbleWidth).Width(fitWidth(text, bubbleWidth)).Render(text)
	return lipgloss.JoinVertical(lipgloss.Left, label, bubble)
}

// fitWidth shrinks a bubble to its content, up to max
func fitWidth(text string, max int) int {
	w := lipgloss.Width(text) + 4
	if w > max {
		return max
	}
	return w
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.viewport.Width
	var sections []string

	// Header
	header := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render(models.HeaderTitle),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.modelName),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(header))

	// Messages
	body := m.viewport.View()
	if m.state.Len() == 0 {
		body = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(body))

	// Input
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(m.renderInput()))

	// Footer
	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.lastErr != nil {
		sections = append(sections, FormatError(m.lastErr))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderInput() string {
	if m.state.Busy() {
		return m.spinner.View() + " " + loadingStyle.Render("Generating response...")
	}

	send := hintStyle.Render("Send ⏎")
	if m.state.CanSubmit() {
		send = sendHintStyle.Render("Send ⏎")
	}
	return lipgloss.JoinHorizontal(lipgloss.Center,
		inputLabelStyle.Render("›"),
		m.input.View(),
		" ",
		send,
	)
}

// renderWelcome renders the placeholder shown before the first message
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 2
	content := lipgloss.JoinVertical(lipgloss.Center,
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeStyle.Width(width).Render("Start a conversation by typing a message below"),
	)

	top := (m.viewport.Height - lipgloss.Height(content)) / 2
	if top < 0 {
		top = 0
	}
	return strings.Repeat("\n", top) + content
}

// renderStatusBar renders the footer with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+S", "Send"},
		{"PgUp/PgDn", "Scroll"},
		{"Esc", "Quit"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// RunChat starts the chat TUI
func RunChat(ctx context.Context, d Dispatcher, modelName string, opts render.Options) error {
	p := tea.NewProgram(
		NewChatModel(ctx, d, modelName, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	_, err := p.Run()
	return err
}
