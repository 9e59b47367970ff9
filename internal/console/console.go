// Package console holds the operator console's controllers: the tab
// lifecycle, the admin entity lists, the agent form and the chat
// conversation. Front ends (CLI, TUI) drive it and read its views.
package console

import (
	"context"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/tokens"
	"github.com/user/clawconsole/internal/types"
)

// Options wires a Console.
type Options struct {
	API      *gateway.API
	Prompter Prompter
	// Counter estimates system prompt sizes; nil estimates without a
	// tokenizer.
	Counter *tokens.Counter
	// NewConversationID mints conversation ids; defaults to a UUID v4.
	NewConversationID func() types.ConversationID
}

// Console is one operator session against the admin API.
type Console struct {
	API  *gateway.API
	Tabs *Tabs

	Chat   *ChatTab
	Skills *SkillsTab
	Admin  *AdminTab
	User   *UserInfo

	SessionFilter *Selector
	ChatAgents    *Selector
	Models        *Selector
}

// New builds a Console with the chat, skills and admin tabs registered.
func New(opts Options) *Console {
	prompt := opts.Prompter
	if prompt == nil {
		prompt = StaticPrompter{}
	}
	counter := opts.Counter
	if counter == nil {
		counter = tokens.Estimate()
	}

	c := &Console{
		API:           opts.API,
		SessionFilter: newSessionFilter(),
		ChatAgents:    newChatAgents(),
		Models:        newModels(),
		User:          newUserInfo(opts.API),
	}
	c.Chat = newChatTab(opts.API, c.ChatAgents, c.Models, opts.NewConversationID)
	c.Skills = newSkillsTab(opts.API)
	c.Admin = newAdminTab(opts.API, prompt, counter, c.SessionFilter, c.ChatAgents, c.Models)
	c.Tabs = NewTabs(c.Chat, c.Skills, c.Admin)
	return c
}

// Start loads the signed-in user and activates the first tab.
func (c *Console) Start(ctx context.Context, tab string) error {
	c.User.Load(ctx)
	return c.Tabs.Activate(ctx, tab)
}
