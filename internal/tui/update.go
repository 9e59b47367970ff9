package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/gateway"
)

// loadedMsg reports a finished tab load, refresh or chat turn.
type loadedMsg struct {
	err error
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.run(func(ctx context.Context) error {
		return m.c.Start(ctx, m.firstTab)
	}))
}

// run executes fn off the update loop and reports back with a loadedMsg.
func (m *Model) run(fn func(ctx context.Context) error) tea.Cmd {
	m.loading = true
	ctx := m.ctx
	return func() tea.Msg {
		return loadedMsg{err: fn(ctx)}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSizeMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case loadedMsg:
		return m.handleLoadedMsg(msg)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleWindowSizeMsg(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.resize()
	return m, nil
}

// chrome is the tab bar, the rule under it, the status line and the input.
const chromeHeight = 5

func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chromeHeight, 3)
	m.input.Width = max(m.width-4, 10)
	if r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(m.width-4, 20)),
	); err == nil {
		m.renderer = r
	}
	m.ready = true
	m.syncViewport()
}

func (m *Model) handleLoadedMsg(msg loadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false
	switch {
	case gateway.IsAuthRequired(msg.err):
		m.status.Set("Sign-in required: " + m.loginURL)
	case msg.err != nil:
		m.status.Set(msg.err.Error())
	}
	m.syncViewport()
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		return m, m.cycleTab(1)
	case "shift+tab":
		return m, m.cycleTab(-1)
	case "ctrl+r":
		return m, m.run(m.c.Tabs.Refresh)
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	switch m.c.Tabs.Active() {
	case console.TabChat:
		return m.handleChatKey(msg)
	case console.TabAdmin:
		return m.handleAdminKey(msg)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		turn, ok := m.c.Chat.Begin(m.input.Value())
		if !ok {
			return m, nil
		}
		m.input.Reset()
		m.syncViewport()
		return m, m.run(turn.Complete)
	case "ctrl+l":
		m.c.Chat.Clear()
		m.syncViewport()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleAdminKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "right":
		return m, m.run(m.c.Admin.Audit.Next)
	case "p", "left":
		return m, m.run(m.c.Admin.Audit.Prev)
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// cycleTab activates the tab step positions away from the current one.
func (m *Model) cycleTab(step int) tea.Cmd {
	names := m.c.Tabs.Names()
	if len(names) == 0 {
		return nil
	}
	idx := 0
	for i, n := range names {
		if n == m.c.Tabs.Active() {
			idx = i
		}
	}
	next := names[(idx+step+len(names))%len(names)]
	m.status.Set("")
	return m.run(func(ctx context.Context) error {
		return m.c.Tabs.Activate(ctx, next)
	})
}
