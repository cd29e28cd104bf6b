package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandevgo/vizchat/internal/core"
	"github.com/sandevgo/vizchat/internal/service/chat"
	"github.com/sandevgo/vizchat/internal/service/workspace"
	"github.com/sandevgo/vizchat/internal/viz"
)

const sessionID = "tui"

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	faintStyle     = lipgloss.NewStyle().Faint(true)
	panelStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

type chunkMsg string

type turnDoneMsg struct {
	reply chat.Reply
	err   error
}

type workspaceMsg workspace.Event

type model struct {
	ctx    context.Context
	chat   *chat.Service
	router core.CmdRouter

	viewport   viewport.Model
	input      textarea.Model
	spin       spinner.Model
	transcript []string
	streaming  string

	workspace     []viz.Visualization
	showWorkspace bool

	chunks <-chan string
	done   <-chan turnDoneMsg
	events <-chan workspace.Event

	stream bool
	busy   bool
	width  int
	height int
}

func newModel(ctx context.Context, chatSvc *chat.Service, router core.CmdRouter, events <-chan workspace.Event, streaming bool) model {
	input := textarea.New()
	input.Placeholder = "Type a message, /model to switch models, ctrl+w for workspace"
	input.SetHeight(3)
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return model{
		ctx:           ctx,
		chat:          chatSvc,
		router:        router,
		viewport:      viewport.New(80, 20),
		input:         input,
		spin:          spin,
		events:        events,
		stream:        streaming,
		showWorkspace: true,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForWorkspaceEvent())
}

func (m model) waitForWorkspaceEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return nil
		}
		return workspaceMsg(ev)
	}
}

func (m model) waitForChunk() tea.Cmd {
	chunks := m.chunks
	done := m.done
	return func() tea.Msg {
		select {
		case c, ok := <-chunks:
			if ok {
				return chunkMsg(c)
			}
			return <-done
		case d := <-done:
			return d
		}
	}
}

// startTurn launches the provider call. Input stays disabled until
// turnDoneMsg arrives.
func (m *model) startTurn(text string) tea.Cmd {
	chunks := make(chan string, 16)
	done := make(chan turnDoneMsg, 1)
	m.chunks = chunks
	m.done = done
	m.busy = true

	ctx := m.ctx
	chatSvc := m.chat
	streaming := m.stream
	go func() {
		var reply chat.Reply
		var err error
		if streaming {
			reply, err = chatSvc.Stream(ctx, sessionID, text, func(c string) { chunks <- c })
		} else {
			reply, err = chatSvc.Send(ctx, sessionID, text)
		}
		close(chunks)
		done <- turnDoneMsg{reply: reply, err: err}
	}()
	return tea.Batch(m.spin.Tick, m.waitForChunk())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlW:
			m.showWorkspace = !m.showWorkspace
			m.layout()
			return m, nil
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()

			if out, handled := m.router.Execute(m.ctx, sessionID, text); handled {
				m.transcript = append(m.transcript, faintStyle.Render(out))
				m.refreshViewport()
				return m, nil
			}

			m.transcript = append(m.transcript, userStyle.Render("You: ")+text)
			m.refreshViewport()
			return m, m.startTurn(text)
		}

	case chunkMsg:
		m.streaming += string(msg)
		m.refreshViewport()
		return m, m.waitForChunk()

	case turnDoneMsg:
		m.busy = false
		m.streaming = ""
		if msg.err != nil {
			m.transcript = append(m.transcript, faintStyle.Render(fmt.Sprintf("aborted: %v", msg.err)))
		} else {
			m.transcript = append(m.transcript, assistantStyle.Render("AI: ")+msg.reply.Text)
		}
		m.refreshViewport()
		return m, nil

	case workspaceMsg:
		switch workspace.Event(msg).Kind {
		case workspace.EventAdd:
			m.workspace = append(m.workspace, workspace.Event(msg).Visualization)
		case workspace.EventClear:
			m.workspace = nil
		}
		return m, m.waitForWorkspaceEvent()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		if m.busy {
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *model) layout() {
	chatWidth := m.width
	if m.showWorkspace {
		chatWidth = m.width * 2 / 3
	}
	m.viewport.Width = chatWidth
	m.viewport.Height = m.height - m.input.Height() - 3
	m.input.SetWidth(chatWidth)
	m.refreshViewport()
}

func (m *model) refreshViewport() {
	content := strings.Join(m.transcript, "\n\n")
	if m.streaming != "" {
		content += "\n\n" + assistantStyle.Render("AI: ") + m.streaming
	}
	m.viewport.SetContent(lipgloss.NewStyle().Width(m.viewport.Width).Render(content))
	m.viewport.GotoBottom()
}

func (m model) View() string {
	status := faintStyle.Render(fmt.Sprintf("model: %s", m.chat.AI().SelectedModel()))
	if m.busy {
		status = m.spin.View() + " thinking…  " + status
	}

	chatPane := lipgloss.JoinVertical(lipgloss.Left,
		m.viewport.View(),
		status,
		m.input.View(),
	)

	if !m.showWorkspace {
		return chatPane
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chatPane, m.workspacePanel())
}

func (m model) workspacePanel() string {
	width := m.width - m.width*2/3 - 4
	if width < 20 {
		width = 20
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Workspace"))
	b.WriteString("\n\n")
	if len(m.workspace) == 0 {
		b.WriteString(faintStyle.Render("No visualizations yet."))
	}
	for _, v := range m.workspace {
		b.WriteString(renderPanelItem(v))
		b.WriteString("\n")
	}
	return panelStyle.Width(width).Height(m.height - 2).Render(b.String())
}

func renderPanelItem(v viz.Visualization) string {
	switch t := v.(type) {
	case viz.Chart:
		return fmt.Sprintf("📊 %s (%s, %d series)", t.Title, t.Type, len(t.Series))
	case viz.Table:
		return fmt.Sprintf("📋 %s (%d×%d)", t.Title, len(t.Rows), len(t.Columns))
	default:
		return v.VizTitle()
	}
}
