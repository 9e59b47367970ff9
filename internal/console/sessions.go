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

const noSessionsMessage = "No active sessions."

// SessionsState is the last rendered session snapshot and the agent filter
// it was fetched with.
type SessionsState struct {
	Filter   types.AgentID
	Sessions []types.Session
	Err      error
}

// Sessions lists active sessions, optionally for one agent, and archives
// them.
type Sessions struct {
	api    *gateway.API
	prompt Prompter
	filter *Selector
	region *view.Region
	logger *slog.Logger

	mu    sync.RWMutex
	state SessionsState
}

func newSessions(api *gateway.API, prompt Prompter, filter *Selector) *Sessions {
	return &Sessions{
		api:    api,
		prompt: prompt,
		filter: filter,
		region: view.NewRegion("sessions-list"),
		logger: slog.Default().With("component", "sessions"),
	}
}

// Filter is the shared agent selector the list honors.
func (s *Sessions) Filter() *Selector { return s.filter }

// Load fetches sessions for the currently selected agent filter.
func (s *Sessions) Load(ctx context.Context) error {
	agentID := types.AgentID(s.filter.Value())
	ticket := s.region.Begin()
	sessions, err := s.api.ListSessions(ctx, agentID)
	if gateway.IsAuthRequired(err) {
		return err
	}
	state := SessionsState{Filter: agentID, Sessions: sessions, Err: err}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.region.Commit(ticket, RenderSessions(state)) {
		s.logger.Debug("dropped stale load")
		return nil
	}
	s.state = state
	return nil
}

// Archive asks for confirmation, archives session id and reloads the list.
func (s *Sessions) Archive(ctx context.Context, id types.SessionID) error {
	if !s.prompt.Confirm("Archive this session?") {
		return ErrDeclined
	}
	if err := s.api.ArchiveSession(ctx, id); err != nil {
		return failed(s.prompt, "Failed to archive session", err)
	}
	s.logger.Info("session archived", "session", id)
	return s.Load(ctx)
}

func (s *Sessions) State() SessionsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Sessions) View() view.Fragment { return s.region.Content() }

// RenderSessions renders the session cards for st.
func RenderSessions(st SessionsState) view.Fragment {
	if st.Err != nil {
		return view.LoadFailed("sessions", st.Err)
	}
	if len(st.Sessions) == 0 {
		return view.EmptyState(noSessionsMessage)
	}
	var b strings.Builder
	for _, sess := range st.Sessions {
		b.WriteString(`<div class="card">`)
		b.WriteString(`<div class="card-title">` + view.EscapeHTML(string(sess.AgentID)) + `</div>`)
		b.WriteString(`<div class="card-subtitle">` + view.EscapeHTML(sess.Principal) + ` &mdash; ` + view.EscapeHTML(sess.ChannelType) + `</div>`)
		b.WriteString(`<div class="card-meta">`)
		b.WriteString(string(view.Badge("badge-scope", string(sess.Scope))))
		b.WriteString(string(view.Badge("badge-scope", fmt.Sprintf("%d msgs", sess.MessageCount))))
		b.WriteString(string(view.Badge("badge-scope", fmt.Sprintf("%d tokens", sess.TotalTokens))))
		b.WriteString(`</div>`)
		b.WriteString(`<div class="card-footnote">Last active: ` + view.EscapeHTML(view.FormatTimestamp(sess.LastActiveAt)) + `</div>`)
		b.WriteString(`<div class="card-actions"><button class="btn btn-sm btn-danger" data-action="archive" data-id="` + view.EscapeHTML(string(sess.ID)) + `">Archive</button></div>`)
		b.WriteString(`</div>`)
	}
	return view.Fragment(b.String())
}
