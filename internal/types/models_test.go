// internal/types/models_test.go
package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestOptStringNull(t *testing.T) {
	agent := Agent{AgentID: "a", TrustLevel: TrustStandard}
	data, err := json.Marshal(agent)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"displayName":null`) {
		t.Errorf("expected blank displayName to be null, got %s", data)
	}
	if !strings.Contains(string(data), `"trustLevel":"STANDARD"`) {
		t.Errorf("expected trustLevel STANDARD, got %s", data)
	}
}

func TestChatRequestOmitsEmptyOverride(t *testing.T) {
	data, err := json.Marshal(ChatRequest{Message: "hi", AgentID: DefaultAgentID, ConversationID: "c1"})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "modelOverride") {
		t.Errorf("expected no modelOverride key, got %s", data)
	}

	data, err = json.Marshal(ChatRequest{Message: "hi", ModelOverride: "gpt-4o"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"modelOverride":"gpt-4o"`) {
		t.Errorf("expected modelOverride, got %s", data)
	}
}

func TestAuditPageDecode(t *testing.T) {
	body := `{"content":[{"timestamp":"2026-01-02T03:04:05Z","eventType":"CONFIG_CHANGE","principal":null,"action":"update agent"}],"number":2,"totalPages":5}`
	var page AuditPage
	if err := json.Unmarshal([]byte(body), &page); err != nil {
		t.Fatal(err)
	}
	if page.Number != 2 || page.TotalPages != 5 {
		t.Errorf("expected page 2 of 5, got %d of %d", page.Number, page.TotalPages)
	}
	if len(page.Content) != 1 {
		t.Fatalf("expected 1 event, got %d", len(page.Content))
	}
	if page.Content[0].Principal != "" {
		t.Errorf("expected null principal to decode blank, got %q", page.Content[0].Principal)
	}
}
