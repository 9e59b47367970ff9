package console

import (
	"sync"

	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

// Option is one entry of a Selector.
type Option struct {
	Value string
	Label string
}

// Selector is a single-choice list shared between controllers, e.g. the
// session agent filter fed by the agents list.
type Selector struct {
	mu      sync.RWMutex
	options []Option
	value   string
}

// NewSelector returns a Selector holding opts with the first one selected.
func NewSelector(opts ...Option) *Selector {
	s := &Selector{}
	s.replace(opts, "")
	return s
}

func (s *Selector) Options() []Option {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Option(nil), s.options...)
}

func (s *Selector) Value() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Select picks value if it is one of the options.
func (s *Selector) Select(value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.options {
		if o.Value == value {
			s.value = value
			return true
		}
	}
	return false
}

// replace swaps the option list, keeping the current value when it is still
// offered and falling back to fallback, then to the first option.
func (s *Selector) replace(opts []Option, fallback string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = opts
	has := func(v string) bool {
		for _, o := range opts {
			if o.Value == v {
				return true
			}
		}
		return false
	}
	switch {
	case has(s.value):
	case has(fallback):
		s.value = fallback
	case len(opts) > 0:
		s.value = opts[0].Value
	default:
		s.value = ""
	}
}

// Render returns the <select> markup for s.
func (s *Selector) Render(id string) view.Fragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := `<select id="` + view.EscapeHTML(id) + `">`
	for _, o := range s.options {
		sel := ""
		if o.Value == s.value {
			sel = " selected"
		}
		out += `<option value="` + view.EscapeHTML(o.Value) + `"` + sel + `>` + view.EscapeHTML(o.Label) + `</option>`
	}
	return view.Fragment(out + `</select>`)
}

const (
	allAgentsLabel    = "All Agents"
	agentDefaultLabel = "(agent default)"
)

func newSessionFilter() *Selector {
	return NewSelector(Option{Value: "", Label: allAgentsLabel})
}

func newChatAgents() *Selector {
	return NewSelector(Option{Value: string(types.DefaultAgentID), Label: string(types.DefaultAgentID)})
}

func newModels() *Selector {
	return NewSelector(Option{Value: "", Label: agentDefaultLabel})
}

// sessionFilterOptions is "All Agents" followed by every agent id.
func sessionFilterOptions(agents []types.Agent) []Option {
	opts := []Option{{Value: "", Label: allAgentsLabel}}
	for _, a := range agents {
		opts = append(opts, Option{Value: string(a.AgentID), Label: string(a.AgentID)})
	}
	return opts
}

// chatAgentOptions always starts with the synthetic default agent; a real
// agent named "default" is not listed twice.
func chatAgentOptions(agents []types.Agent) []Option {
	opts := []Option{{Value: string(types.DefaultAgentID), Label: string(types.DefaultAgentID)}}
	for _, a := range agents {
		if a.AgentID == types.DefaultAgentID {
			continue
		}
		opts = append(opts, Option{Value: string(a.AgentID), Label: string(a.AgentID)})
	}
	return opts
}

func modelOptions(models []string) []Option {
	opts := []Option{{Value: "", Label: agentDefaultLabel}}
	for _, m := range models {
		opts = append(opts, Option{Value: m, Label: m})
	}
	return opts
}
