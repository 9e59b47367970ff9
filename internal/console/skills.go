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

const noSkillsMessage = "No tools registered."

// SkillsState is the last rendered tool registry.
type SkillsState struct {
	Skills []types.Skill
	Err    error
}

// SkillsTab shows the read-only tool registry.
type SkillsTab struct {
	api    *gateway.API
	region *view.Region
	init   initState
	logger *slog.Logger

	mu    sync.RWMutex
	state SkillsState
}

func newSkillsTab(api *gateway.API) *SkillsTab {
	return &SkillsTab{
		api:    api,
		region: view.NewRegion("skills-grid"),
		logger: slog.Default().With("component", "skills"),
	}
}

func (t *SkillsTab) Name() string { return TabSkills }

// Init loads the registry once.
func (t *SkillsTab) Init(ctx context.Context) error {
	if !t.init.begin() {
		return nil
	}
	return t.Load(ctx)
}

func (t *SkillsTab) Reset() { t.init.reset() }

func (t *SkillsTab) Refresh(ctx context.Context) error { return t.Load(ctx) }

func (t *SkillsTab) Load(ctx context.Context) error {
	ticket := t.region.Begin()
	skills, err := t.api.ListSkills(ctx)
	if gateway.IsAuthRequired(err) {
		return err
	}
	state := SkillsState{Skills: skills, Err: err}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.region.Commit(ticket, RenderSkills(state)) {
		t.logger.Debug("dropped stale load")
		return nil
	}
	t.state = state
	return nil
}

func (t *SkillsTab) State() SkillsState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

func (t *SkillsTab) View() view.Fragment { return t.region.Content() }

// RenderSkills renders one card per tool with its risk and approval badges.
func RenderSkills(s SkillsState) view.Fragment {
	if s.Err != nil {
		return view.LoadFailed("skills", s.Err)
	}
	if len(s.Skills) == 0 {
		return view.EmptyState(noSkillsMessage)
	}
	var b strings.Builder
	for _, sk := range s.Skills {
		b.WriteString(`<div class="card">`)
		b.WriteString(`<div class="card-title">` + view.EscapeHTML(sk.Name) + `</div>`)
		b.WriteString(`<div class="card-subtitle">` + view.EscapeHTML(sk.Description) + `</div>`)
		b.WriteString(`<div class="card-meta">`)
		b.WriteString(string(view.Badge("badge-risk-"+string(sk.RiskLevel), string(sk.RiskLevel))))
		if sk.RequiresApproval {
			b.WriteString(string(view.Badge("badge-approval", "Requires Approval")))
		}
		b.WriteString(`</div></div>`)
	}
	return view.Fragment(b.String())
}
