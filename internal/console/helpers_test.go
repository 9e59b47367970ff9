package console

import (
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/user/clawconsole/internal/fakeapi"
	"github.com/user/clawconsole/internal/gateway"
	"github.com/user/clawconsole/internal/types"
)

type recordingPrompter struct {
	mu       sync.Mutex
	answer   bool
	confirms []string
	alerts   []string
}

func (p *recordingPrompter) Confirm(message string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirms = append(p.confirms, message)
	return p.answer
}

func (p *recordingPrompter) Alert(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, message)
}

func (p *recordingPrompter) lastAlert() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.alerts) == 0 {
		return ""
	}
	return p.alerts[len(p.alerts)-1]
}

type harness struct {
	api    *fakeapi.Server
	prompt *recordingPrompter
	c      *Console

	navMu     sync.Mutex
	navigated []string
}

func (h *harness) navigations() []string {
	h.navMu.Lock()
	defer h.navMu.Unlock()
	return append([]string(nil), h.navigated...)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := fakeapi.New()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	h := &harness{api: api}
	client, err := gateway.New(gateway.Settings{
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Navigator: gateway.NavigatorFunc(func(u string) {
			h.navMu.Lock()
			defer h.navMu.Unlock()
			h.navigated = append(h.navigated, u)
		}),
	})
	if err != nil {
		t.Fatal(err)
	}

	h.prompt = &recordingPrompter{answer: true}
	n := 0
	h.c = New(Options{
		API:      gateway.NewAPI(client),
		Prompter: h.prompt,
		NewConversationID: func() types.ConversationID {
			n++
			return types.ConversationID(fmt.Sprintf("conv-%d", n))
		},
	})
	return h
}

func seedAgent(id string) types.Agent {
	return types.Agent{
		AgentID:                types.AgentID(id),
		TrustLevel:             types.TrustStandard,
		MaxTokensPerRequest:    4096,
		MaxToolCallsPerRequest: 10,
	}
}
