package console

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/types"
)

func startChat(t *testing.T, h *harness) *ChatTab {
	t.Helper()
	if err := h.c.Tabs.Activate(context.Background(), TabChat); err != nil {
		t.Fatal(err)
	}
	return h.c.Chat
}

func TestChatSendAppendsTurns(t *testing.T) {
	h := newHarness(t)
	chat := startChat(t, h)

	if err := chat.Send(context.Background(), "  hello  "); err != nil {
		t.Fatal(err)
	}
	turns := chat.Transcript()
	want := []types.Turn{
		{Role: types.RoleUser, Content: "hello"},
		{Role: types.RoleAssistant, Content: "echo: hello"},
	}
	if len(turns) != len(want) {
		t.Fatalf("expected %d turns, got %+v", len(want), turns)
	}
	for i := range want {
		if turns[i] != want[i] {
			t.Errorf("turn %d: expected %+v, got %+v", i, want[i], turns[i])
		}
	}
	wantView := `<div class="chat-msg user">hello</div><div class="chat-msg assistant">echo: hello</div>`
	if got := string(chat.View()); got != wantView {
		t.Errorf("expected %q, got %q", wantView, got)
	}
}

func TestChatBlankIsNoop(t *testing.T) {
	h := newHarness(t)
	chat := startChat(t, h)
	if err := chat.Send(context.Background(), " \n\t"); err != nil {
		t.Fatal(err)
	}
	if len(chat.Transcript()) != 0 {
		t.Error("expected empty transcript")
	}
	if got := h.api.Count(http.MethodPost, "/admin/api/chat/send"); got != 0 {
		t.Errorf("expected no send, got %d", got)
	}
}

func TestChatSendWhileInFlightIgnored(t *testing.T) {
	h := newHarness(t)
	chat := startChat(t, h)
	release := h.api.HoldChat()
	defer release()
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- chat.Send(ctx, "first") }()

	deadline := time.Now().Add(5 * time.Second)
	for !chat.Sending() {
		if time.Now().After(deadline) {
			t.Fatal("send never started")
		}
		time.Sleep(time.Millisecond)
	}
	if chat.SendLabel() != "..." {
		t.Errorf("expected busy label, got %q", chat.SendLabel())
	}
	if err := chat.Send(ctx, "second"); err != nil {
		t.Fatal(err)
	}

	release()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if got := h.api.Count(http.MethodPost, "/admin/api/chat/send"); got != 1 {
		t.Errorf("expected one network call, got %d", got)
	}
	turns := chat.Transcript()
	if len(turns) != 2 || turns[0].Content != "first" || turns[1].Content != "echo: first" {
		t.Errorf("expected a single user/assistant pair, got %+v", turns)
	}
	if chat.Sending() || chat.SendLabel() != "Send" {
		t.Error("expected send control re-enabled")
	}
}

func TestChatEmptyReply(t *testing.T) {
	h := newHarness(t)
	h.api.SetChatReply(func(types.ChatRequest) string { return "" })
	chat := startChat(t, h)
	chat.Send(context.Background(), "hi")

	turns := chat.Transcript()
	if last := turns[len(turns)-1]; last.Role != types.RoleAssistant || last.Content != "(empty response)" {
		t.Errorf("unexpected reply turn %+v", last)
	}
}

func TestChatErrorTurn(t *testing.T) {
	h := newHarness(t)
	h.api.Fail("POST /admin/api/chat/send", http.StatusInternalServerError, "model overloaded")
	chat := startChat(t, h)

	if err := chat.Send(context.Background(), "hi"); err != nil {
		t.Fatalf("expected error kept in transcript, got %v", err)
	}
	turns := chat.Transcript()
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %+v", turns)
	}
	if turns[1].Role != types.RoleError || turns[1].Content != "Error: model overloaded" {
		t.Errorf("unexpected error turn %+v", turns[1])
	}
	if chat.Sending() {
		t.Error("expected send control re-enabled after failure")
	}
}

func TestChatAuthErrorReturned(t *testing.T) {
	h := newHarness(t)
	chat := startChat(t, h)
	h.api.RejectAuth(http.StatusForbidden)

	err := chat.Send(context.Background(), "hi")
	if !errors.Is(err, gateway.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if len(h.navigations()) != 1 {
		t.Errorf("expected one login navigation, got %d", len(h.navigations()))
	}
}

func TestChatRequestFields(t *testing.T) {
	h := newHarness(t)
	h.api.SetModels("gpt-4o", "claude")
	h.api.PutAgent(seedAgent("ops"))

	seen := make(chan types.ChatRequest, 1)
	h.api.SetChatReply(func(req types.ChatRequest) string {
		seen <- req
		return "ok"
	})
	chat := startChat(t, h)
	h.c.Admin.Agents.Load(context.Background())

	if !chat.Models().Select("claude") || !chat.Agents().Select("ops") {
		t.Fatal("expected model and agent to be selectable")
	}
	chat.Send(context.Background(), "hi")

	got := <-seen
	if got.ModelOverride != "claude" || got.AgentID != "ops" || got.ConversationID != "conv-1" {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestChatDefaultModelOmitted(t *testing.T) {
	h := newHarness(t)
	h.api.SetModels("gpt-4o")
	chat := startChat(t, h)
	chat.Send(context.Background(), "hi")

	for _, r := range h.api.Requests() {
		if r.Method == http.MethodPost && r.Path == "/admin/api/chat/send" {
			if want := `{"message":"hi","agentId":"default","conversationId":"conv-1"}`; r.Body != want {
				t.Errorf("expected %s, got %s", want, r.Body)
			}
		}
	}
}

func TestChatModelsFallback(t *testing.T) {
	h := newHarness(t)
	h.api.Fail("GET /admin/api/models", http.StatusInternalServerError, "boom")
	chat := startChat(t, h)

	opts := chat.Models().Options()
	if len(opts) != 1 || opts[0].Label != "(agent default)" {
		t.Errorf("expected only the agent default option, got %+v", opts)
	}
}

func TestChatClear(t *testing.T) {
	h := newHarness(t)
	chat := startChat(t, h)
	chat.Send(context.Background(), "hi")
	first := chat.ConversationID()

	chat.Clear()
	if len(chat.Transcript()) != 0 || chat.View() != "" {
		t.Error("expected empty transcript after clear")
	}
	if chat.ConversationID() == first {
		t.Errorf("expected new conversation id, still %q", first)
	}
	if chat.ConversationID() != "conv-2" {
		t.Errorf("expected conv-2, got %q", chat.ConversationID())
	}
}

func TestChatBeginShowsUserTurnFirst(t *testing.T) {
	h := newHarness(t)
	chat := startChat(t, h)

	turn, ok := chat.Begin("hello")
	if !ok {
		t.Fatal("expected turn to begin")
	}
	if want := `<div class="chat-msg user">hello</div>`; string(chat.View()) != want {
		t.Errorf("expected %q before the reply, got %q", want, chat.View())
	}
	if _, ok := chat.Begin("again"); ok {
		t.Error("expected second begin to be refused while in flight")
	}
	if got := h.api.Count(http.MethodPost, "/admin/api/chat/send"); got != 0 {
		t.Errorf("expected no request before Complete, got %d", got)
	}

	if err := turn.Complete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := turn.Complete(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := h.api.Count(http.MethodPost, "/admin/api/chat/send"); got != 1 {
		t.Errorf("expected 1 request, got %d", got)
	}
	if chat.Sending() {
		t.Error("expected sending cleared")
	}
	if got := len(chat.Transcript()); got != 2 {
		t.Errorf("expected 2 turns, got %d", got)
	}
}
