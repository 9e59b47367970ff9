package console

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

const (
	noAgentsMessage = "No agents configured yet."
	agentsNoun      = "agents"
)

// AgentsState is the last rendered agents snapshot.
type AgentsState struct {
	Agents []types.Agent
	Err    error
}

// Agents keeps the agent grid and the two agent selectors in sync with the
// server.
type Agents struct {
	api           *gateway.API
	region        *view.Region
	sessionFilter *Selector
	chatAgents    *Selector
	logger        *slog.Logger

	mu    sync.RWMutex
	state AgentsState
}

func newAgents(api *gateway.API, sessionFilter, chatAgents *Selector) *Agents {
	return &Agents{
		api:           api,
		region:        view.NewRegion("agents-grid"),
		sessionFilter: sessionFilter,
		chatAgents:    chatAgents,
		logger:        slog.Default().With("component", "agents"),
	}
}

// Load fetches every agent and re-renders the grid. Request failures are
// rendered inline; only ErrAuthRequired is returned.
func (a *Agents) Load(ctx context.Context) error {
	ticket := a.region.Begin()
	agents, err := a.api.ListAgents(ctx)
	if gateway.IsAuthRequired(err) {
		return err
	}
	state := AgentsState{Agents: agents, Err: err}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.region.Commit(ticket, RenderAgents(state)) {
		a.logger.Debug("dropped stale load")
		return nil
	}
	a.state = state
	if err == nil {
		a.sessionFilter.replace(sessionFilterOptions(agents), "")
		a.chatAgents.replace(chatAgentOptions(agents), string(types.DefaultAgentID))
	}
	return nil
}

func (a *Agents) State() AgentsState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

func (a *Agents) View() view.Fragment { return a.region.Content() }

// RenderAgents renders the agent grid for s.
func RenderAgents(s AgentsState) view.Fragment {
	if s.Err != nil {
		return view.LoadFailed(agentsNoun, s.Err)
	}
	if len(s.Agents) == 0 {
		return view.EmptyState(noAgentsMessage)
	}
	parts := make([]view.Fragment, 0, len(s.Agents))
	for _, ag := range s.Agents {
		parts = append(parts, renderAgentCard(ag))
	}
	return view.Join(parts)
}

func renderAgentCard(ag types.Agent) view.Fragment {
	id := view.EscapeHTML(string(ag.AgentID))
	var b strings.Builder
	b.WriteString(`<div class="card">`)
	b.WriteString(`<div class="card-title">` + id + `</div>`)
	b.WriteString(`<div class="card-subtitle">` + view.EscapeHTML(string(ag.DisplayName)) + `</div>`)
	b.WriteString(`<div class="card-meta">`)
	b.WriteString(string(view.Badge("badge-trust", string(ag.TrustLevel))))
	if ag.Model != "" {
		b.WriteString(string(view.Badge("badge-scope", string(ag.Model))))
	}
	b.WriteString(string(view.Badge("badge-scope", fmt.Sprintf("%d tokens", ag.MaxTokensPerRequest))))
	b.WriteString(`</div>`)
	b.WriteString(`<div class="card-actions">`)
	b.WriteString(`<button class="btn btn-sm btn-outline" data-action="edit" data-id="` + id + `">Edit</button>`)
	b.WriteString(`<button class="btn btn-sm btn-danger" data-action="delete" data-id="` + id + `">Delete</button>`)
	b.WriteString(`</div></div>`)
	return view.Fragment(b.String())
}
