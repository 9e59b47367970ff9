package console

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

const noAuditMessage = "No audit events found."

// AuditState is the last rendered audit window. Events, Page and TotalPages
// come from the response envelope and survive a failed load.
type AuditState struct {
	Principal  string
	EventType  types.EventType
	Events     []types.AuditEvent
	Page       int
	TotalPages int
	Err        error
}

// ShowsPager reports whether pagination controls are rendered at all.
func (s AuditState) ShowsPager() bool {
	return s.TotalPages > 1 && len(s.Events) > 0
}

// HasPrev reports whether the Prev control is rendered and enabled.
func (s AuditState) HasPrev() bool {
	return s.ShowsPager() && s.Page > 0
}

// HasNext reports whether the Next control is rendered and enabled.
func (s AuditState) HasNext() bool {
	return s.ShowsPager() && s.Page < s.TotalPages-1
}

// Audit pages through the audit log with optional principal and event type
// filters.
type Audit struct {
	api    *gateway.API
	log    *view.Region
	pager  *view.Region
	logger *slog.Logger

	mu        sync.RWMutex
	principal string
	eventType types.EventType
	state     AuditState
}

func newAudit(api *gateway.API) *Audit {
	return &Audit{
		api:    api,
		log:    view.NewRegion("audit-log"),
		pager:  view.NewRegion("audit-pagination"),
		logger: slog.Default().With("component", "audit"),
	}
}

// SetFilters sets the filters the next Load uses. Blank values mean no
// filter.
func (a *Audit) SetFilters(principal string, eventType types.EventType) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.principal = strings.TrimSpace(principal)
	a.eventType = eventType
}

// Load fetches one page of gateway.AuditPageSize events.
func (a *Audit) Load(ctx context.Context, page int) error {
	a.mu.RLock()
	q := gateway.AuditQuery{
		Page:      page,
		Size:      gateway.AuditPageSize,
		Principal: a.principal,
		EventType: a.eventType,
	}
	a.mu.RUnlock()

	ticket := a.log.Begin()
	resp, err := a.api.AuditPage(ctx, q)
	if gateway.IsAuthRequired(err) {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	state := AuditState{
		Principal:  q.Principal,
		EventType:  q.EventType,
		Events:     a.state.Events,
		Page:       a.state.Page,
		TotalPages: a.state.TotalPages,
		Err:        err,
	}
	if err == nil {
		state.Events = resp.Content
		state.Page = resp.Number
		state.TotalPages = resp.TotalPages
	}
	if !a.log.Commit(ticket, RenderAuditLog(state)) {
		a.logger.Debug("dropped stale load", "page", page)
		return nil
	}
	a.state = state
	if err == nil {
		a.pager.Set(RenderAuditPager(state))
	}
	return nil
}

// Next loads the following page. It does nothing when Next is disabled.
func (a *Audit) Next(ctx context.Context) error {
	s := a.State()
	if !s.HasNext() {
		return nil
	}
	return a.Load(ctx, s.Page+1)
}

// Prev loads the preceding page. It does nothing when Prev is disabled.
func (a *Audit) Prev(ctx context.Context) error {
	s := a.State()
	if !s.HasPrev() {
		return nil
	}
	return a.Load(ctx, s.Page-1)
}

func (a *Audit) State() AuditState {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.state
}

// View returns the log table followed by the pagination controls.
func (a *Audit) View() view.Fragment {
	return view.Join([]view.Fragment{a.log.Content(), a.pager.Content()})
}

func dash(s types.OptString) string {
	if s == "" {
		return "-"
	}
	return string(s)
}

// RenderAuditLog renders the audit table for s.
func RenderAuditLog(s AuditState) view.Fragment {
	if s.Err != nil {
		return view.LoadFailed("audit log", s.Err)
	}
	if len(s.Events) == 0 {
		return view.EmptyState(noAuditMessage)
	}
	var b strings.Builder
	b.WriteString(`<table class="audit-table"><thead><tr>`)
	b.WriteString(`<th>Time</th><th>Type</th><th>Principal</th><th>Agent</th><th>Action</th><th>Outcome</th>`)
	b.WriteString(`</tr></thead><tbody>`)
	for _, e := range s.Events {
		action := view.EscapeHTML(e.Action)
		b.WriteString(`<tr>`)
		b.WriteString(`<td>` + view.EscapeHTML(view.FormatTimestamp(e.Timestamp)) + `</td>`)
		b.WriteString(`<td>` + string(view.Badge("badge-scope", string(e.EventType))) + `</td>`)
		b.WriteString(`<td>` + view.EscapeHTML(dash(e.Principal)) + `</td>`)
		b.WriteString(`<td>` + view.EscapeHTML(dash(e.AgentID)) + `</td>`)
		b.WriteString(`<td title="` + action + `">` + action + `</td>`)
		b.WriteString(`<td>` + view.EscapeHTML(dash(e.Outcome)) + `</td>`)
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
	return view.Fragment(b.String())
}

// RenderAuditPager renders Prev / "Page N of M" / Next, or nothing when
// there is at most one page or the window is empty.
func RenderAuditPager(s AuditState) view.Fragment {
	if !s.ShowsPager() {
		return ""
	}
	disabled := func(off bool) string {
		if off {
			return " disabled"
		}
		return ""
	}
	var b strings.Builder
	b.WriteString(`<button class="btn btn-sm btn-outline" data-action="prev"` + disabled(!s.HasPrev()) + `>Prev</button>`)
	b.WriteString(`<span class="page-info">Page ` + strconv.Itoa(s.Page+1) + ` of ` + strconv.Itoa(s.TotalPages) + `</span>`)
	b.WriteString(`<button class="btn btn-sm btn-outline" data-action="next"` + disabled(!s.HasNext()) + `>Next</button>`)
	return view.Fragment(b.String())
}
