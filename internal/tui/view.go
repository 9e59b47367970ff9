package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/user/clawconsole/internal/console"
	"github.com/user/clawconsole/internal/types"
	"github.com/user/clawconsole/internal/view"
)

func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.renderTabBar())
	b.WriteString("\n")
	b.WriteString(borderStyle.Render(strings.Repeat("─", max(m.width, 1))))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	if m.c.Tabs.Active() == console.TabChat {
		b.WriteString(m.input.View())
	} else {
		b.WriteString(mutedStyle.Render(m.helpLine()))
	}
	return b.String()
}

func (m *Model) renderTabBar() string {
	var tabs []string
	for _, p := range m.c.Tabs.Panels() {
		label := strings.ToUpper(p.Name[:1]) + p.Name[1:]
		if p.ButtonActive {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, tabStyle.Render(label))
		}
	}
	bar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	user := mutedStyle.Render(m.c.User.Name())
	gap := max(m.width-lipgloss.Width(bar)-lipgloss.Width(user), 1)
	return bar + strings.Repeat(" ", gap) + user
}

func (m *Model) renderStatus() string {
	text := m.status.Get()
	if m.loading {
		text = "Loading..."
	}
	if m.c.Tabs.Active() == console.TabChat && m.c.Chat.Sending() {
		text = "Waiting for " + m.c.Chat.Agents().Value() + m.c.Chat.SendLabel()
	}
	return statusStyle.Render(text)
}

func (m *Model) helpLine() string {
	switch m.c.Tabs.Active() {
	case console.TabAdmin:
		return "tab: switch  n/p: audit page  ctrl+r: refresh  esc: quit"
	default:
		return "tab: switch  ctrl+r: refresh  esc: quit"
	}
}

// syncViewport re-renders the active panel into the viewport.
func (m *Model) syncViewport() {
	if !m.ready {
		return
	}
	var content string
	switch m.c.Tabs.Active() {
	case console.TabChat:
		content = m.renderChat()
		m.viewport.SetContent(content)
		m.viewport.GotoBottom()
		return
	case console.TabSkills:
		content = m.markdown(m.c.Skills.View())
	case console.TabAdmin:
		content = m.renderAdmin(time.Now())
	}
	m.viewport.SetContent(content)
}

// markdown converts a console fragment and styles it with glamour.
func (m *Model) markdown(f view.Fragment) string {
	md, err := view.Markdown(f)
	if err != nil {
		return errorStyle.Render(err.Error())
	}
	return m.glamour(md)
}

func (m *Model) glamour(md string) string {
	if m.renderer == nil || md == "" {
		return md
	}
	out, err := m.renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func (m *Model) renderChat() string {
	turns := m.c.Chat.Transcript()
	if len(turns) == 0 {
		return mutedStyle.Render(fmt.Sprintf("Chatting with %s. Conversation %s.",
			m.c.Chat.Agents().Value(), m.c.Chat.ConversationID()))
	}
	width := max(m.width-2, 20)
	var b strings.Builder
	for _, t := range turns {
		switch t.Role {
		case types.RoleUser:
			b.WriteString(userStyle.Render("You"))
			b.WriteString("\n")
			b.WriteString(wordwrap.String(t.Content, width))
		case types.RoleAssistant:
			b.WriteString(assistantStyle.Render(m.c.Chat.Agents().Value()))
			b.WriteString("\n")
			b.WriteString(m.glamour(t.Content))
		default:
			b.WriteString(errorStyle.Render(wordwrap.String(t.Content, width)))
		}
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderAdmin(now time.Time) string {
	admin := m.c.Admin
	sections := []struct {
		title string
		body  string
	}{
		{"Agents", m.markdown(admin.Agents.View())},
		{"Pending identity mappings", m.markdown(admin.Mappings.View())},
		{"Sessions", renderSessions(admin.Sessions.State(), now)},
		{"Audit log", m.markdown(admin.Audit.View())},
	}
	var b strings.Builder
	for _, s := range sections {
		b.WriteString(headingStyle.Render(s.title))
		b.WriteString("\n")
		b.WriteString(s.body)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderSessions lists one session per line with a relative last-active
// time.
func renderSessions(st console.SessionsState, now time.Time) string {
	if st.Err != nil || len(st.Sessions) == 0 {
		md, _ := view.Markdown(console.RenderSessions(st))
		return md
	}
	var b strings.Builder
	for _, s := range st.Sessions {
		fmt.Fprintf(&b, "%s  %s  %s  %s  %d msgs  %d tokens  %s\n",
			s.AgentID, s.Principal, s.ChannelType, s.Scope,
			s.MessageCount, s.TotalTokens, view.RelativeTime(s.LastActiveAt, now))
	}
	return strings.TrimRight(b.String(), "\n")
}
