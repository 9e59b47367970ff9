package console

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/tokens"
	"github.com/user/clawconsole/internal/types"
)

// Field names an editable agent form input.
type Field string

const (
	FieldAgentID      Field = "agentId"
	FieldDisplayName  Field = "displayName"
	FieldModel        Field = "model"
	FieldTrustLevel   Field = "trustLevel"
	FieldSystemPrompt Field = "systemPrompt"
	FieldAllowedTools Field = "allowedTools"
	FieldDeniedTools  Field = "deniedTools"
	FieldMaxTokens    Field = "maxTokens"
	FieldMaxToolCalls Field = "maxToolCalls"
)

// AgentFields holds the raw text of every form input.
type AgentFields struct {
	AgentID      string
	DisplayName  string
	Model        string
	TrustLevel   string
	SystemPrompt string
	AllowedTools string
	DeniedTools  string
	MaxTokens    string
	MaxToolCalls string
}

func blankAgentFields() AgentFields {
	return AgentFields{
		TrustLevel:   string(types.TrustStandard),
		MaxTokens:    strconv.Itoa(types.DefaultMaxTokens),
		MaxToolCalls: strconv.Itoa(types.DefaultMaxToolCalls),
	}
}

func agentFieldsFrom(a *types.Agent) AgentFields {
	f := AgentFields{
		AgentID:      string(a.AgentID),
		DisplayName:  string(a.DisplayName),
		Model:        string(a.Model),
		TrustLevel:   string(a.TrustLevel),
		SystemPrompt: string(a.SystemPrompt),
		AllowedTools: strings.Join(a.AllowedTools, ", "),
		DeniedTools:  strings.Join(a.DeniedTools, ", "),
		MaxTokens:    strconv.Itoa(orDefault(a.MaxTokensPerRequest, types.DefaultMaxTokens)),
		MaxToolCalls: strconv.Itoa(orDefault(a.MaxToolCallsPerRequest, types.DefaultMaxToolCalls)),
	}
	if f.TrustLevel == "" || a.TrustLevel == types.TrustUnknown {
		f.TrustLevel = string(types.TrustStandard)
	}
	return f
}

func orDefault(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

// ParseToolList splits comma-separated tool names, trimming each and
// dropping empties. Order is kept.
func ParseToolList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParseLimit reads the leading integer of s ("12 tokens" is 12). Anything
// unparseable or not positive yields def.
func ParseLimit(s string, def int) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return def
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// BuildAgent turns form text into the upsert body. The only rejected input
// is a blank agent id.
func BuildAgent(f AgentFields) (*types.Agent, error) {
	id := strings.TrimSpace(f.AgentID)
	if id == "" {
		return nil, validationError(agentIDRequired)
	}
	trust := types.TrustStandard
	if f.TrustLevel != "" {
		t, err := types.ParseTrustLevel(f.TrustLevel)
		if err != nil {
			return nil, validationError(err.Error())
		}
		trust = t
	}
	return &types.Agent{
		AgentID:                types.AgentID(id),
		DisplayName:            types.OptString(strings.TrimSpace(f.DisplayName)),
		Model:                  types.OptString(strings.TrimSpace(f.Model)),
		TrustLevel:             trust,
		SystemPrompt:           types.OptString(f.SystemPrompt),
		AllowedTools:           ParseToolList(f.AllowedTools),
		DeniedTools:            ParseToolList(f.DeniedTools),
		MaxTokensPerRequest:    ParseLimit(f.MaxTokens, types.DefaultMaxTokens),
		MaxToolCallsPerRequest: ParseLimit(f.MaxToolCalls, types.DefaultMaxToolCalls),
	}, nil
}

const agentIDRequired = "Agent ID is required."

// AgentForm is the create/edit modal for one agent.
type AgentForm struct {
	api     *gateway.API
	prompt  Prompter
	admin   *AdminTab
	counter *tokens.Counter
	models  *Selector
	logger  *slog.Logger

	mu       sync.Mutex
	open     bool
	idLocked bool
	title    string
	fields   AgentFields
}

func newAgentForm(api *gateway.API, prompt Prompter, admin *AdminTab, counter *tokens.Counter, models *Selector) *AgentForm {
	return &AgentForm{
		api:     api,
		prompt:  prompt,
		admin:   admin,
		counter: counter,
		models:  models,
		logger:  slog.Default().With("component", "agent-form"),
		fields:  blankAgentFields(),
	}
}

// Create opens the form blank with the agent id editable.
func (f *AgentForm) Create() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = "New Agent"
	f.fields = blankAgentFields()
	f.idLocked = false
	f.open = true
}

// Edit loads agent id into the form and locks the id field.
func (f *AgentForm) Edit(ctx context.Context, id types.AgentID) error {
	agent, err := f.api.GetAgent(ctx, id)
	if err != nil {
		return failed(f.prompt, "Failed to load agent", err)
	}
	if agent == nil {
		f.logger.Debug("no agent body, form left closed", "agent", id)
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = "Edit Agent"
	f.fields = agentFieldsFrom(agent)
	f.idLocked = true
	f.open = true
	return nil
}

// Set updates one input. Changing a locked agent id is refused.
func (f *AgentForm) Set(field Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch field {
	case FieldAgentID:
		if f.idLocked {
			return fmt.Errorf("agent id cannot be changed once created")
		}
		f.fields.AgentID = value
	case FieldDisplayName:
		f.fields.DisplayName = value
	case FieldModel:
		f.fields.Model = value
	case FieldTrustLevel:
		f.fields.TrustLevel = value
	case FieldSystemPrompt:
		f.fields.SystemPrompt = value
	case FieldAllowedTools:
		f.fields.AllowedTools = value
	case FieldDeniedTools:
		f.fields.DeniedTools = value
	case FieldMaxTokens:
		f.fields.MaxTokens = value
	case FieldMaxToolCalls:
		f.fields.MaxToolCalls = value
	default:
		return fmt.Errorf("unknown field: %s", field)
	}
	return nil
}

func (f *AgentForm) Fields() AgentFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

func (f *AgentForm) IsOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *AgentForm) IDLocked() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.idLocked
}

func (f *AgentForm) Title() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.title
}

// LoadModels fetches the model list shared with the chat model selector.
func (f *AgentForm) LoadModels(ctx context.Context) {
	loadModelOptions(ctx, f.api, f.models, f.logger)
}

// ModelSuggestions are the known model names offered for the model field.
// The field itself accepts any value.
func (f *AgentForm) ModelSuggestions() []string {
	var out []string
	for _, o := range f.models.Options() {
		if o.Value != "" {
			out = append(out, o.Value)
		}
	}
	return out
}

// PromptTokens estimates the size of the system prompt being edited.
func (f *AgentForm) PromptTokens() int {
	return f.counter.Count(f.Fields().SystemPrompt)
}

// Close hides the form without saving.
func (f *AgentForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// Save validates and upserts the agent, then closes the form and reloads the
// whole admin tab. On failure the form stays as it was.
func (f *AgentForm) Save(ctx context.Context) error {
	agent, err := BuildAgent(f.Fields())
	if err != nil {
		return invalid(f.prompt, err.Error())
	}
	if n, over := f.counter.Over(string(agent.SystemPrompt), agent.MaxTokensPerRequest); over {
		f.logger.Warn("system prompt exceeds request token limit",
			"agent", agent.AgentID, "prompt_tokens", n, "max_tokens", agent.MaxTokensPerRequest)
	}
	if err := f.api.PutAgent(ctx, agent); err != nil {
		return failed(f.prompt, "Failed to save agent", err)
	}
	f.logger.Info("agent saved", "agent", agent.AgentID)
	f.Close()
	return f.admin.Reload(ctx)
}

// Delete asks for confirmation, deletes the agent and reloads the admin tab.
func (f *AgentForm) Delete(ctx context.Context, id types.AgentID) error {
	if !f.prompt.Confirm(`Delete agent "` + string(id) + `"? This cannot be undone.`) {
		return ErrDeclined
	}
	if err := f.api.DeleteAgent(ctx, id); err != nil {
		return failed(f.prompt, "Failed to delete agent", err)
	}
	f.logger.Info("agent deleted", "agent", id)
	return f.admin.Reload(ctx)
}
