package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/user/clawconsole/internal/types"
)

type seenRequest struct {
	method string
	uri    string
	body   string
}

func newAPIServer(t *testing.T, reply string) (*API, <-chan seenRequest) {
	t.Helper()
	seen := make(chan seenRequest, 8)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		seen <- seenRequest{method: r.Method, uri: r.URL.RequestURI(), body: string(body)}
		if reply == "" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return NewAPI(newTestClient(t, srv, Settings{})), seen
}

func TestAPI_AgentPathEscaped(t *testing.T) {
	api, seen := newAPIServer(t, "")
	if err := api.DeleteAgent(context.Background(), "ops/bot one"); err != nil {
		t.Fatal(err)
	}
	got := <-seen
	if got.method != http.MethodDelete {
		t.Errorf("expected DELETE, got %s", got.method)
	}
	if got.uri != "/admin/api/agents/ops%2Fbot%20one" {
		t.Errorf("unexpected uri %q", got.uri)
	}
}

func TestAPI_PutAgentBodyMatchesPath(t *testing.T) {
	api, seen := newAPIServer(t, "")
	agent := &types.Agent{
		AgentID:                "helper",
		TrustLevel:             types.TrustStandard,
		AllowedTools:           []string{"a", "b"},
		MaxTokensPerRequest:    4096,
		MaxToolCallsPerRequest: 10,
	}
	if err := api.PutAgent(context.Background(), agent); err != nil {
		t.Fatal(err)
	}
	got := <-seen
	if got.method != http.MethodPut || got.uri != "/admin/api/agents/helper" {
		t.Fatalf("unexpected request %s %s", got.method, got.uri)
	}
	var body map[string]any
	if err := json.Unmarshal([]byte(got.body), &body); err != nil {
		t.Fatal(err)
	}
	if body["agentId"] != "helper" {
		t.Errorf("expected agentId in body, got %v", body["agentId"])
	}
	if body["displayName"] != nil {
		t.Errorf("expected blank displayName as null, got %v", body["displayName"])
	}
}

func TestAPI_AuditQuery(t *testing.T) {
	api, seen := newAPIServer(t, `{"content":[],"number":2,"totalPages":5}`)
	page, err := api.AuditPage(context.Background(), AuditQuery{
		Page:      2,
		Principal: "alice@example.com",
		EventType: types.EventToolCall,
	})
	if err != nil {
		t.Fatal(err)
	}
	if page.Number != 2 || page.TotalPages != 5 {
		t.Errorf("unexpected envelope %+v", page)
	}

	got := <-seen
	req, _ := http.NewRequest(http.MethodGet, got.uri, nil)
	q := req.URL.Query()
	if q.Get("page") != "2" || q.Get("size") != "20" {
		t.Errorf("expected page=2 size=20, got %q", got.uri)
	}
	if q.Get("principal") != "alice@example.com" || q.Get("eventType") != "TOOL_CALL" {
		t.Errorf("expected filters in query, got %q", got.uri)
	}
}

func TestAPI_AuditQueryOmitsEmptyFilters(t *testing.T) {
	api, seen := newAPIServer(t, `{"content":[],"number":0,"totalPages":0}`)
	if _, err := api.AuditPage(context.Background(), AuditQuery{}); err != nil {
		t.Fatal(err)
	}
	got := <-seen
	if got.uri != "/admin/api/audit?page=0&size=20" {
		t.Errorf("unexpected uri %q", got.uri)
	}
}

func TestAPI_ListSessionsFilter(t *testing.T) {
	api, seen := newAPIServer(t, `[]`)
	ctx := context.Background()

	if _, err := api.ListSessions(ctx, ""); err != nil {
		t.Fatal(err)
	}
	if got := <-seen; got.uri != "/admin/api/sessions" {
		t.Errorf("expected unfiltered uri, got %q", got.uri)
	}
	if _, err := api.ListSessions(ctx, "ops bot"); err != nil {
		t.Fatal(err)
	}
	if got := <-seen; got.uri != "/admin/api/sessions?agentId=ops+bot" {
		t.Errorf("expected filtered uri, got %q", got.uri)
	}
}

func TestAPI_SendChat(t *testing.T) {
	api, seen := newAPIServer(t, `{"response":"hi","agentId":"default"}`)
	resp, err := api.SendChat(context.Background(), types.ChatRequest{
		Message:        "hello",
		AgentID:        "default",
		ConversationID: "c-1",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Response != "hi" {
		t.Errorf("expected response hi, got %q", resp.Response)
	}

	got := <-seen
	var body map[string]any
	if err := json.Unmarshal([]byte(got.body), &body); err != nil {
		t.Fatal(err)
	}
	if _, ok := body["modelOverride"]; ok {
		t.Error("expected modelOverride to be omitted when empty")
	}
	if body["conversationId"] != "c-1" {
		t.Errorf("expected conversationId c-1, got %v", body["conversationId"])
	}
}

func TestAPI_ApproveMapping(t *testing.T) {
	api, seen := newAPIServer(t, "")
	if err := api.ApproveMapping(context.Background(), "m-1", "alice"); err != nil {
		t.Fatal(err)
	}
	got := <-seen
	if got.method != http.MethodPost || got.uri != "/admin/api/identity-mappings/m-1/approve" {
		t.Fatalf("unexpected request %s %s", got.method, got.uri)
	}
	if got.body != `{"jclawPrincipal":"alice"}` {
		t.Errorf("unexpected body %s", got.body)
	}
}

func TestAPI_GetAgentNoBody(t *testing.T) {
	for _, reply := range []string{"", "null"} {
		api, _ := newAPIServer(t, reply)
		agent, err := api.GetAgent(context.Background(), "ghost")
		if err != nil {
			t.Fatalf("reply %q: %v", reply, err)
		}
		if agent != nil {
			t.Errorf("reply %q: expected nil agent, got %+v", reply, agent)
		}
	}
}
