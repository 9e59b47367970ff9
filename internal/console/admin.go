package console

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/tokens"
)

// AdminTab groups the four admin lists and the agent form.
type AdminTab struct {
	Agents   *Agents
	Mappings *Mappings
	Sessions *Sessions
	Audit    *Audit
	Form     *AgentForm

	init initState
}

func newAdminTab(api *gateway.API, prompt Prompter, counter *tokens.Counter, sessionFilter, chatAgents, models *Selector) *AdminTab {
	t := &AdminTab{
		Agents:   newAgents(api, sessionFilter, chatAgents),
		Mappings: newMappings(api, prompt),
		Sessions: newSessions(api, prompt, sessionFilter),
		Audit:    newAudit(api),
	}
	t.Form = newAgentForm(api, prompt, t, counter, models)
	return t
}

func (t *AdminTab) Name() string { return TabAdmin }

// Init loads agents, pending mappings, sessions and the first audit page
// once. The loads run concurrently; each writes only its own region.
func (t *AdminTab) Init(ctx context.Context) error {
	if !t.init.begin() {
		return nil
	}
	return t.loadAll(ctx)
}

func (t *AdminTab) Reset() { t.init.reset() }

// Reload resets the tab and initializes it again, refetching every list.
func (t *AdminTab) Reload(ctx context.Context) error {
	t.Reset()
	return t.Init(ctx)
}

func (t *AdminTab) Refresh(ctx context.Context) error {
	return t.Reload(ctx)
}

func (t *AdminTab) loadAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return t.Agents.Load(ctx) })
	g.Go(func() error { return t.Mappings.Load(ctx) })
	g.Go(func() error { return t.Sessions.Load(ctx) })
	g.Go(func() error { return t.Audit.Load(ctx, 0) })
	return g.Wait()
}
