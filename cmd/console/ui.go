package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/npc-dialogue/internal/dialogue"
	"github.com/jwebster45206/npc-dialogue/pkg/chat"
	"github.com/jwebster45206/npc-dialogue/pkg/emotion"
	"github.com/jwebster45206/npc-dialogue/pkg/persona"
	"github.com/muesli/reflow/wordwrap"
)

type mode int

const (
	modeSelect mode = iota // choosing an NPC to walk up to
	modeIdle               // standing next to the NPC
	modeBusy               // a turn is running
)

var affectGlyphs = map[emotion.Symbol]string{
	emotion.Think:          "(-_-)",
	emotion.Idea:           "(!)*",
	emotion.Question:       "(?)",
	emotion.Like:           "<3",
	emotion.Surprise:       "(O_O)",
	emotion.Sad:            "(T_T)",
	emotion.Happy:          "(^_^)",
	emotion.Exclamation:    "(!)",
	emotion.Sleep:          "zzz",
	emotion.DotDotDot:      "...",
	emotion.No:             "(x)",
	emotion.Sweat:          "(^_^;)",
	emotion.Thought:        "o O",
	emotion.HappyOpenMouth: "(^o^)",
}

func affectGlyph(sym emotion.Symbol) string {
	if g, ok := affectGlyphs[sym]; ok {
		return g
	}
	return " "
}

type entry struct {
	speaker string
	text    string
	user    bool
}

// ConsoleUI is the BubbleTea model that hosts NPC conversations.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	ctx      context.Context
	engine   *dialogue.Engine
	host     *consoleHost
	catalog  *persona.Catalog
	keys     []string
	selected int

	mode    mode
	persona *persona.Persona
	pending *hostRequest
	menuIdx int

	transcript []entry
	affect     emotion.Symbol
	lastResult *dialogue.Result
	status     string
	err        error

	chatViewport viewport.Model
	metaViewport viewport.Model
	textarea     textarea.Model
	ready        bool
	width        int
	height       int

	showQuitModal bool
	progressTick  int
}

type turnDoneMsg struct {
	result *dialogue.Result
	err    error
}

type leftMapMsg struct {
	err error
}

type clipboardMsg struct {
	err error
}

type progressTickMsg struct{}

var (
	chatPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	userStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	affectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)

	imageBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(ctx context.Context, engine *dialogue.Engine, h *consoleHost, catalog *persona.Catalog) ConsoleUI {
	ta := textarea.New()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = chat.MaxMessageLength
	ta.SetWidth(50)
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	chatVp := viewport.New(50, 20)
	chatVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		ctx:          ctx,
		engine:       engine,
		host:         h,
		catalog:      catalog,
		keys:         catalog.Keys(),
		textarea:     ta,
		chatViewport: chatVp,
		metaViewport: metaVp,
		mode:         modeSelect,
	}
}

func (m ConsoleUI) Init() tea.Cmd {
	return nil
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()
		return m, nil

	case hostRequest:
		return m.receive(msg)

	case turnDoneMsg:
		m.mode = modeIdle
		m.pending = nil
		m.lastResult = msg.result
		m.err = msg.err
		m.textarea.Blur()
		m.refresh()
		return m, nil

	case leftMapMsg:
		m.err = msg.err
		m.mode = modeSelect
		m.persona = nil
		m.transcript = nil
		m.lastResult = nil
		m.affect = ""
		m.refresh()
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.status = errorStyle.Render("Copy failed: " + msg.err.Error())
		} else {
			m.status = loadingStyle.Render("Link copied to clipboard.")
		}
		m.refresh()
		return m, nil

	case progressTickMsg:
		if m.mode == modeBusy {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.showQuitModal = true
			return m, nil
		}
		switch m.mode {
		case modeSelect:
			return m.updateSelect(msg)
		case modeIdle:
			return m.updateIdle(msg)
		case modeBusy:
			return m.updatePending(msg)
		}
	}

	var cmd tea.Cmd
	m.chatViewport, cmd = m.chatViewport.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateSelect(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.showQuitModal = true
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(m.keys)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		if len(m.keys) == 0 {
			return m, nil
		}
		p, err := m.catalog.Get(m.keys[m.selected])
		if err != nil {
			m.err = err
			return m, nil
		}
		m.persona = p
		m.err = nil
		m.status = ""
		return m.startTurn()
	}
	return m, nil
}

func (m ConsoleUI) updateIdle(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		return m.startTurn()
	case tea.KeyEsc:
		return m, m.leaveMap()
	}
	var cmd tea.Cmd
	m.chatViewport, cmd = m.chatViewport.Update(msg)
	return m, cmd
}

// updatePending answers the host call the engine is blocked on.
func (m ConsoleUI) updatePending(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.pending == nil {
		return m, nil
	}
	req := m.pending

	switch req.kind {
	case requestText:
		if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
			m.answer(hostReply{ok: true})
		}

	case requestChoices:
		switch msg.Type {
		case tea.KeyUp:
			if m.menuIdx > 0 {
				m.menuIdx--
			}
		case tea.KeyDown:
			if m.menuIdx < len(req.choices)-1 {
				m.menuIdx++
			}
		case tea.KeyEnter:
			if len(req.choices) > 0 {
				c := req.choices[m.menuIdx]
				m.transcript = append(m.transcript, entry{speaker: "You", text: c.Text, user: true})
				m.answer(hostReply{choice: c, ok: true})
			}
		case tea.KeyEsc:
			m.answer(hostReply{ok: false})
		}

	case requestInput:
		switch msg.Type {
		case tea.KeyEnter:
			text := strings.TrimSpace(m.textarea.Value())
			if text != "" {
				m.transcript = append(m.transcript, entry{speaker: "You", text: text, user: true})
			}
			m.textarea.Reset()
			m.textarea.Blur()
			m.answer(hostReply{text: text, ok: true})
		case tea.KeyEsc:
			m.textarea.Reset()
			m.textarea.Blur()
			m.answer(hostReply{ok: false})
		default:
			var cmd tea.Cmd
			m.textarea, cmd = m.textarea.Update(msg)
			return m, cmd
		}

	case requestImage:
		switch {
		case msg.String() == "c":
			return m, copyLink(req.image.URL)
		case msg.Type == tea.KeyEnter, msg.Type == tea.KeyEsc:
			m.answer(hostReply{ok: true})
		}
	}

	m.refresh()
	return m, nil
}

func (m *ConsoleUI) receive(req hostRequest) (tea.Model, tea.Cmd) {
	switch req.kind {
	case requestAffect:
		m.affect = req.affect
		req.reply <- hostReply{ok: true}
		m.refresh()
		return *m, nil
	case requestText:
		m.transcript = append(m.transcript, entry{speaker: m.persona.Name, text: req.text})
	case requestChoices:
		m.menuIdx = 0
	case requestInput:
		m.textarea.Reset()
		m.textarea.Placeholder = req.placeholder
		m.refresh()
		m.pending = &req
		return *m, m.textarea.Focus()
	case requestImage:
		m.status = ""
	}
	m.pending = &req
	m.refresh()
	return *m, nil
}

func (m *ConsoleUI) answer(r hostReply) {
	m.pending.reply <- r
	m.pending = nil
}

func (m ConsoleUI) startTurn() (tea.Model, tea.Cmd) {
	m.mode = modeBusy
	m.progressTick = 0
	m.lastResult = nil
	m.err = nil
	m.refresh()

	ctx, engine, h, p := m.ctx, m.engine, m.host, m.persona
	run := func() tea.Msg {
		res, err := engine.Interact(ctx, h, p)
		return turnDoneMsg{result: res, err: err}
	}
	return m, tea.Batch(run, progressTick())
}

func (m ConsoleUI) leaveMap() tea.Cmd {
	ctx, engine, h, p := m.ctx, m.engine, m.host, m.persona
	return func() tea.Msg {
		return leftMapMsg{err: engine.LeaveMap(ctx, h, p)}
	}
}

func copyLink(url string) tea.Cmd {
	return func() tea.Msg {
		return clipboardMsg{err: clipboard.WriteAll(url)}
	}
}

func (m *ConsoleUI) resize() {
	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	m.chatViewport.Width = chatWidth - 2
	m.chatViewport.Height = m.height - 7
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.textarea.SetWidth(chatWidth - 4)
}

// refresh rebuilds both panels for the current width.
func (m *ConsoleUI) refresh() {
	m.chatViewport.SetContent(m.writeChatContent())
	m.chatViewport.GotoBottom()
	m.metaViewport.SetContent(m.writeMetadata())
}

func (m ConsoleUI) writeChatContent() string {
	width := m.chatViewport.Width - 6
	if width < 20 {
		width = 20
	}

	var content strings.Builder
	if m.persona != nil {
		content.WriteString(titleStyle.Render(strings.ToUpper(m.persona.Name)) + "\n\n")
	}
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width)) + "\n\n")

	for _, e := range m.transcript {
		content.WriteString(formatEntry(e, width) + "\n\n")
	}

	if m.pending != nil {
		switch m.pending.kind {
		case requestText:
			content.WriteString(promptStyle.Render("▼ Enter to continue") + "\n")
		case requestChoices:
			content.WriteString(m.renderMenu() + "\n")
		case requestInput:
			content.WriteString(speakerStyle.Render(m.pending.prompt) + "\n")
		case requestImage:
			content.WriteString(m.renderImage(width) + "\n")
		}
	} else if m.mode == modeBusy {
		content.WriteString(m.renderProgressBar() + "\n")
	} else if m.mode == modeIdle {
		content.WriteString(promptStyle.Render("Enter to talk again, Esc to walk away") + "\n")
	}

	if m.status != "" {
		content.WriteString("\n" + m.status + "\n")
	}
	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n")
	}
	return content.String()
}

func formatEntry(e entry, width int) string {
	prefix := e.speaker + ": "
	wrapped := wordwrap.String(e.text, width-len(prefix))
	if e.user {
		return userStyle.Render(prefix) + wrapped
	}
	return speakerStyle.Render(prefix) + wrapped
}

func (m ConsoleUI) renderMenu() string {
	var b strings.Builder
	b.WriteString(speakerStyle.Render(m.pending.prompt) + "\n")
	for i, c := range m.pending.choices {
		if i == m.menuIdx {
			b.WriteString(modalSelectedItemStyle.Render("▶ "+c.Text) + "\n")
		} else {
			b.WriteString(modalItemStyle.Render("  "+c.Text) + "\n")
		}
	}
	b.WriteString(promptStyle.Render("↑/↓ to choose, Enter to say it, Esc to walk away"))
	return b.String()
}

func (m ConsoleUI) renderImage(width int) string {
	img := m.pending.image
	var b strings.Builder
	b.WriteString(modalTitleStyle.Render(img.Title) + "\n")
	if img.Description != "" {
		b.WriteString(wordwrap.String(img.Description, width-6) + "\n")
	}
	b.WriteString("\n" + userStyle.Render(img.URL) + "\n\n")
	b.WriteString(promptStyle.Render("c to copy the link, Enter to close"))
	return imageBoxStyle.Width(width - 2).Render(b.String())
}

func (m ConsoleUI) writeMetadata() string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("ENCOUNTER") + "\n\n")

	content.WriteString("Player:\n")
	content.WriteString(m.host.ID() + "\n\n")

	if m.persona == nil {
		content.WriteString("NPC:\nNone nearby\n\n")
	} else {
		content.WriteString("NPC:\n")
		content.WriteString(m.persona.Name + "\n\n")
		content.WriteString("Mood:\n")
		content.WriteString(affectStyle.Render(affectGlyph(m.affect)) + " " + string(m.affect) + "\n\n")
		if m.persona.ContentRating != "" {
			content.WriteString("Rating:\n" + m.persona.ContentRating + "\n\n")
		}
	}

	if m.lastResult != nil {
		content.WriteString("Last turn:\n")
		content.WriteString(string(m.lastResult.Outcome) + "\n")
		if len(m.lastResult.Chunks) > 0 {
			content.WriteString(fmt.Sprintf("%d pages\n", len(m.lastResult.Chunks)))
		}
		if m.lastResult.Reply.Format != "" {
			content.WriteString("format: " + string(m.lastResult.Reply.Format) + "\n")
		}
		content.WriteString("\n")
	}

	content.WriteString("Commands:\n")
	content.WriteString("• Ctrl+C: Quit\n")
	content.WriteString("• Enter: Talk / Next\n")
	content.WriteString("• Esc: Walk away\n")
	content.WriteString("• c: Copy image link\n")

	return content.String()
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case hostRequest:
		// Keep the engine moving while the modal is up.
		next, _ := m.receive(msg)
		return next, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N", "esc":
				m.showQuitModal = false
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to stop talking?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderSelectModal() string {
	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Who do you approach?"))
	content.WriteString("\n\n")

	for i, key := range m.keys {
		name := key
		if p, err := m.catalog.Get(key); err == nil {
			name = p.Name
		}
		if i == m.selected {
			content.WriteString(modalSelectedItemStyle.Render(fmt.Sprintf("▶ %s", name)))
		} else {
			content.WriteString(modalItemStyle.Render(fmt.Sprintf("  %s", name)))
		}
		content.WriteString("\n")
	}
	if m.err != nil {
		content.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	content.WriteString("\n")
	content.WriteString(promptStyle.Render("Use ↑/↓ to navigate, Enter to approach, Ctrl+C to exit"))

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if !m.ready || m.width == 0 || m.height == 0 {
		return "\n  Initializing..."
	}
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.mode == modeSelect {
		return m.renderSelectModal()
	}

	chatWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - chatWidth - 6

	parts := []string{
		m.chatViewport.View(),
		"",
		separatorStyle.Render(strings.Repeat("─", chatWidth-4)),
	}
	if m.pending != nil && m.pending.kind == requestInput {
		parts = append(parts, m.textarea.View())
	}
	chatPanel := chatPanelStyle.Width(chatWidth).Height(m.height - 3).Render(
		lipgloss.JoinVertical(lipgloss.Left, parts...),
	)

	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)

	return lipgloss.JoinHorizontal(lipgloss.Top, chatPanel, metaPanel)
}

// renderProgressBar animates while the backend is thinking.
func (m ConsoleUI) renderProgressBar() string {
	usable := m.chatViewport.Width - 6
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
