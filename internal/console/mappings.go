package console

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

const (
	noMappingsMessage = "No pending identity mappings."
	principalRequired = "Please enter a jclaw principal."
)

// MappingsState is the last rendered pending-mapping snapshot.
type MappingsState struct {
	Mappings []types.IdentityMapping
	Err      error
}

// Mappings lists identity mappings awaiting approval and approves them with
// an operator-entered principal.
type Mappings struct {
	api    *gateway.API
	prompt Prompter
	region *view.Region
	logger *slog.Logger

	mu         sync.RWMutex
	state      MappingsState
	principals map[types.MappingID]string
}

func newMappings(api *gateway.API, prompt Prompter) *Mappings {
	return &Mappings{
		api:        api,
		prompt:     prompt,
		region:     view.NewRegion("mappings-list"),
		logger:     slog.Default().With("component", "mappings"),
		principals: make(map[types.MappingID]string),
	}
}

// Load fetches the pending list. A fresh render resets each principal input
// to the server's value.
func (m *Mappings) Load(ctx context.Context) error {
	ticket := m.region.Begin()
	mappings, err := m.api.ListPendingMappings(ctx)
	if gateway.IsAuthRequired(err) {
		return err
	}
	state := MappingsState{Mappings: mappings, Err: err}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.region.Commit(ticket, RenderMappings(state)) {
		m.logger.Debug("dropped stale load")
		return nil
	}
	m.state = state
	if err == nil {
		m.principals = make(map[types.MappingID]string, len(mappings))
		for _, mp := range mappings {
			m.principals[mp.ID] = string(mp.JclawPrincipal)
		}
	}
	return nil
}

// SetPrincipal records what the operator typed for mapping id.
func (m *Mappings) SetPrincipal(id types.MappingID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.principals[id] = text
}

func (m *Mappings) Principal(id types.MappingID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.principals[id]
}

// Approve submits the entered principal for id and reloads the pending list.
// A blank principal is refused before any request is made.
func (m *Mappings) Approve(ctx context.Context, id types.MappingID) error {
	principal := strings.TrimSpace(m.Principal(id))
	if principal == "" {
		return invalid(m.prompt, principalRequired)
	}
	if err := m.api.ApproveMapping(ctx, id, principal); err != nil {
		return failed(m.prompt, "Failed to approve mapping", err)
	}
	m.logger.Info("mapping approved", "mapping", id, "principal", principal)
	return m.Load(ctx)
}

func (m *Mappings) State() MappingsState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Mappings) View() view.Fragment { return m.region.Content() }

// RenderMappings renders the pending-mapping cards for s.
func RenderMappings(s MappingsState) view.Fragment {
	if s.Err != nil {
		return view.LoadFailed("mappings", s.Err)
	}
	if len(s.Mappings) == 0 {
		return view.EmptyState(noMappingsMessage)
	}
	var b strings.Builder
	for _, mp := range s.Mappings {
		title := string(mp.DisplayName)
		if title == "" {
			title = mp.ChannelUserID
		}
		id := view.EscapeHTML(string(mp.ID))
		b.WriteString(`<div class="card">`)
		b.WriteString(`<div class="card-title">` + view.EscapeHTML(title) + `</div>`)
		b.WriteString(`<div class="card-subtitle">` + view.EscapeHTML(mp.ChannelType) + ` &mdash; ` + view.EscapeHTML(mp.ChannelUserID) + `</div>`)
		b.WriteString(`<div class="card-meta">` + string(view.Badge("badge-scope", "Created "+view.FormatTimestamp(mp.CreatedAt))) + `</div>`)
		b.WriteString(`<div class="mapping-input">`)
		b.WriteString(`<input type="text" class="input" id="mapping-principal-` + id + `" placeholder="jclaw principal" value="` + view.EscapeHTML(string(mp.JclawPrincipal)) + `">`)
		b.WriteString(`<button class="btn btn-sm btn-accent" data-action="approve" data-id="` + id + `">Approve</button>`)
		b.WriteString(`</div></div>`)
	}
	return view.Fragment(b.String())
}
