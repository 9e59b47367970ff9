// Package tui is the terminal front end of the operator console: a tab bar,
// one scrollable panel per tab and the chat input.
package tui

import (
	"context"
	"log/slog"
	"sync"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/refresh"
)

// Options configure the terminal UI.
type Options struct {
	Console *console.Console
	// Tab is the tab shown first; defaults to chat.
	Tab string
	// RefreshSchedule is a cron expression for reloading the active tab.
	// Empty disables periodic refresh.
	RefreshSchedule string
	// LoginURL is shown when the server asks the operator to sign in.
	LoginURL string
}

// Status collects operator notices raised outside the update loop, e.g. by
// console alerts. The model shows the latest one.
type Status struct {
	mu   sync.Mutex
	text string
}

func (s *Status) Set(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

func (s *Status) Get() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Model is the Bubble Tea model.
type Model struct {
	ctx      context.Context
	c        *console.Console
	status   *Status
	loginURL string
	firstTab string

	viewport viewport.Model
	input    textinput.Model
	renderer *glamour.TermRenderer
	width    int
	height   int
	loading  bool
	ready    bool
}

// NewModel builds a Model. status receives console alerts and may be shared
// with the console's Prompter.
func NewModel(ctx context.Context, opts Options, status *Status) *Model {
	in := textinput.New()
	in.Placeholder = "Type a message... (Enter to send, Ctrl+L to clear)"
	in.Prompt = "› "
	in.CharLimit = 8000
	in.Focus()

	tab := opts.Tab
	if tab == "" {
		tab = console.TabChat
	}
	if status == nil {
		status = &Status{}
	}
	return &Model{
		ctx:      ctx,
		c:        opts.Console,
		status:   status,
		loginURL: opts.LoginURL,
		firstTab: tab,
		viewport: viewport.New(80, 20),
		input:    in,
	}
}

// Run starts the UI and blocks until the operator quits.
func Run(ctx context.Context, opts Options, status *Status) error {
	m := NewModel(ctx, opts, status)
	program := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))

	runner := refresh.New(opts.RefreshSchedule, func(ctx context.Context) error {
		err := opts.Console.Tabs.Refresh(ctx)
		program.Send(loadedMsg{err: err})
		return err
	})
	if err := runner.Start(ctx); err != nil {
		return err
	}
	defer runner.Stop()

	_, err := program.Run()
	if err != nil {
		slog.Debug("tui exited", "error", err)
	}
	return err
}
