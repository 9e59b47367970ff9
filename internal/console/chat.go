package console

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

const (
	sendLabel        = "Send"
	sendingLabel     = "..."
	emptyReplyText   = "(empty response)"
	chatErrorPrefix  = "Error: "
	transcriptRegion = "chat-messages"
)

// ChatTab runs one conversation with an agent. At most one turn is in
// flight; a Send while waiting is ignored.
type ChatTab struct {
	api    *gateway.API
	agents *Selector
	models *Selector
	newID  func() types.ConversationID
	region *view.Region
	init   initState
	logger *slog.Logger

	sending atomic.Bool

	mu             sync.RWMutex
	conversationID types.ConversationID
	turns          []types.Turn
}

func newChatTab(api *gateway.API, agents, models *Selector, newID func() types.ConversationID) *ChatTab {
	if newID == nil {
		newID = types.NewConversationID
	}
	return &ChatTab{
		api:    api,
		agents: agents,
		models: models,
		newID:  newID,
		region: view.NewRegion(transcriptRegion),
		logger: slog.Default().With("component", "chat"),
	}
}

func (c *ChatTab) Name() string { return TabChat }

// Init mints the conversation id and loads the model list once.
func (c *ChatTab) Init(ctx context.Context) error {
	if !c.init.begin() {
		return nil
	}
	c.mu.Lock()
	c.conversationID = c.newID()
	c.mu.Unlock()
	c.loadModels(ctx)
	return nil
}

// Reset lets the next Init run again. The transcript is kept.
func (c *ChatTab) Reset() { c.init.reset() }

func (c *ChatTab) Refresh(ctx context.Context) error {
	c.loadModels(ctx)
	return nil
}

func (c *ChatTab) loadModels(ctx context.Context) {
	loadModelOptions(ctx, c.api, c.models, c.logger)
}

// loadModelOptions is non-critical: on any failure or an empty list sel
// keeps its current options.
func loadModelOptions(ctx context.Context, api *gateway.API, sel *Selector, logger *slog.Logger) {
	models, err := api.ListModels(ctx)
	if err != nil {
		logger.Debug("model list unavailable", "error", err)
		return
	}
	if len(models) == 0 {
		return
	}
	sel.replace(modelOptions(models), "")
}

// Agents is the agent selector turns are addressed to.
func (c *ChatTab) Agents() *Selector { return c.agents }

// Models is the per-request model override selector.
func (c *ChatTab) Models() *Selector { return c.models }

// Send runs one turn. Blank text and sends while a turn is in flight are
// no-ops. Request failures become an error entry in the transcript; only
// ErrAuthRequired is returned.
func (c *ChatTab) Send(ctx context.Context, text string) error {
	turn, ok := c.Begin(text)
	if !ok {
		return nil
	}
	return turn.Complete(ctx)
}

// PendingTurn is a turn whose user entry is already in the transcript and
// whose request has not been sent yet.
type PendingTurn struct {
	chat *ChatTab
	req  types.ChatRequest
	done atomic.Bool
}

// Begin appends the user entry and marks the tab as sending. It reports
// false for blank text or while another turn is in flight. The returned
// turn must be completed.
func (c *ChatTab) Begin(text string) (*PendingTurn, bool) {
	message := strings.TrimSpace(text)
	if message == "" {
		return nil, false
	}
	if !c.sending.CompareAndSwap(false, true) {
		return nil, false
	}

	c.mu.Lock()
	if c.conversationID == "" {
		c.conversationID = c.newID()
	}
	req := types.ChatRequest{
		Message:        message,
		AgentID:        types.AgentID(c.agents.Value()),
		ConversationID: c.conversationID,
		ModelOverride:  c.models.Value(),
	}
	c.mu.Unlock()

	c.appendTurn(types.RoleUser, message)
	return &PendingTurn{chat: c, req: req}, true
}

// Complete sends the request and appends the reply or error entry. Calls
// after the first are no-ops.
func (t *PendingTurn) Complete(ctx context.Context) error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	c := t.chat
	defer c.sending.Store(false)

	resp, err := c.api.SendChat(ctx, t.req)
	if err != nil {
		c.appendTurn(types.RoleError, chatErrorPrefix+err.Error())
		if gateway.IsAuthRequired(err) {
			return err
		}
		return nil
	}
	reply := resp.Response
	if reply == "" {
		reply = emptyReplyText
	}
	c.appendTurn(types.RoleAssistant, reply)
	return nil
}

func (c *ChatTab) appendTurn(role types.Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, types.Turn{Role: role, Content: content})
	c.region.Set(RenderTranscript(c.turns))
}

// Clear empties the transcript and starts a new conversation.
func (c *ChatTab) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = nil
	c.conversationID = c.newID()
	c.region.Set(RenderTranscript(nil))
}

// Sending reports whether a turn is awaiting its response.
func (c *ChatTab) Sending() bool { return c.sending.Load() }

// SendLabel is the send button caption.
func (c *ChatTab) SendLabel() string {
	if c.Sending() {
		return sendingLabel
	}
	return sendLabel
}

func (c *ChatTab) ConversationID() types.ConversationID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conversationID
}

func (c *ChatTab) Transcript() []types.Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]types.Turn(nil), c.turns...)
}

func (c *ChatTab) View() view.Fragment { return c.region.Content() }

// RenderTranscript renders one message block per turn.
func RenderTranscript(turns []types.Turn) view.Fragment {
	var b strings.Builder
	for _, t := range turns {
		b.WriteString(`<div class="chat-msg ` + string(t.Role) + `">` + view.EscapeHTML(t.Content) + `</div>`)
	}
	return view.Fragment(b.String())
}
