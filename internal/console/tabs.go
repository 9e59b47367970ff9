package console

import (
	"context"
	"fmt"
	"sync"
)

// Tab names.
const (
	TabChat   = "chat"
	TabSkills = "skills"
	TabAdmin  = "admin"
)

// Tab is a panel controller. Init must be idempotent; only the tab's own
// Reset may force the next Init to load again.
type Tab interface {
	Name() string
	Init(ctx context.Context) error
	Reset()
}

// Refresher is implemented by tabs that can reload their data in place.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// initState is the per-tab "already initialized" record.
type initState struct {
	mu   sync.Mutex
	done bool
}

// begin reports whether the caller should run the initial load, marking
// the tab initialized if so.
func (s *initState) begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.done = true
	return true
}

func (s *initState) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.done = false
}

func (s *initState) initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// PanelState is the visual state of one tab button and its panel.
type PanelState struct {
	Name         string
	ButtonActive bool
	PanelActive  bool
}

// Tabs owns which panel is visible. Exactly one tab is active once the
// first Activate has succeeded.
type Tabs struct {
	mu     sync.RWMutex
	order  []string
	tabs   map[string]Tab
	active string
}

// NewTabs registers tabs in display order.
func NewTabs(tabs ...Tab) *Tabs {
	t := &Tabs{tabs: make(map[string]Tab)}
	for _, tab := range tabs {
		t.Register(tab)
	}
	return t
}

// Register adds tab, replacing any tab with the same name.
func (t *Tabs) Register(tab Tab) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.tabs[tab.Name()]; !ok {
		t.order = append(t.order, tab.Name())
	}
	t.tabs[tab.Name()] = tab
}

// Activate shows the named tab and runs its Init.
func (t *Tabs) Activate(ctx context.Context, name string) error {
	t.mu.Lock()
	tab, ok := t.tabs[name]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("unknown tab: %s", name)
	}
	t.active = name
	t.mu.Unlock()
	return tab.Init(ctx)
}

// Active returns the active tab name, or "" before the first activation.
func (t *Tabs) Active() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// Names returns the registered tab names in display order.
func (t *Tabs) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]string(nil), t.order...)
}

// Panels returns the button/panel state of every tab in display order.
func (t *Tabs) Panels() []PanelState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]PanelState, 0, len(t.order))
	for _, name := range t.order {
		on := name == t.active
		out = append(out, PanelState{Name: name, ButtonActive: on, PanelActive: on})
	}
	return out
}

// Refresh reloads the active tab if it supports it.
func (t *Tabs) Refresh(ctx context.Context) error {
	t.mu.RLock()
	tab := t.tabs[t.active]
	t.mu.RUnlock()
	if r, ok := tab.(Refresher); ok {
		return r.Refresh(ctx)
	}
	return nil
}
