package console

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/user/clawconsole/internal/types"
)

func TestMappingsEmptyState(t *testing.T) {
	h := newHarness(t)
	if err := h.c.Admin.Mappings.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := `<div class="empty-state">No pending identity mappings.</div>`
	if got := string(h.c.Admin.Mappings.View()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMappingsLoadSeedsPrincipals(t *testing.T) {
	h := newHarness(t)
	h.api.AddMapping(types.IdentityMapping{ID: "m1", ChannelType: "telegram", ChannelUserID: "42", JclawPrincipal: "bob"})
	h.api.AddMapping(types.IdentityMapping{ID: "m2", ChannelType: "slack", ChannelUserID: "U7", DisplayName: "Carol"})
	ctx := context.Background()

	h.c.Admin.Mappings.Load(ctx)
	h.c.Admin.Mappings.SetPrincipal("m1", "typed")
	h.c.Admin.Mappings.Load(ctx)

	if got := h.c.Admin.Mappings.Principal("m1"); got != "bob" {
		t.Errorf("expected reload to restore server principal, got %q", got)
	}
	view := string(h.c.Admin.Mappings.View())
	if !strings.Contains(view, `<div class="card-title">42</div>`) {
		t.Errorf("expected channel user id as title fallback in %s", view)
	}
	if !strings.Contains(view, `<div class="card-title">Carol</div>`) {
		t.Errorf("expected display name title in %s", view)
	}
}

func TestApproveBlankPrincipal(t *testing.T) {
	h := newHarness(t)
	h.api.AddMapping(types.IdentityMapping{ID: "m1", ChannelType: "telegram", ChannelUserID: "42"})
	ctx := context.Background()
	h.c.Admin.Mappings.Load(ctx)
	before := h.c.Admin.Mappings.View()

	h.c.Admin.Mappings.SetPrincipal("m1", "   ")
	err := h.c.Admin.Mappings.Approve(ctx, "m1")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if h.prompt.lastAlert() != "Please enter a jclaw principal." {
		t.Errorf("unexpected alert %q", h.prompt.lastAlert())
	}
	if got := h.api.Count(http.MethodPost, "/admin/api/identity-mappings/m1/approve"); got != 0 {
		t.Errorf("expected no approve call, got %d", got)
	}
	if h.c.Admin.Mappings.View() != before {
		t.Error("expected list unchanged")
	}
}

func TestApproveReloads(t *testing.T) {
	h := newHarness(t)
	h.api.AddMapping(types.IdentityMapping{ID: "m1", ChannelType: "telegram", ChannelUserID: "42"})
	ctx := context.Background()
	h.c.Admin.Mappings.Load(ctx)

	h.c.Admin.Mappings.SetPrincipal("m1", " alice ")
	if err := h.c.Admin.Mappings.Approve(ctx, "m1"); err != nil {
		t.Fatal(err)
	}
	var body string
	for _, r := range h.api.Requests() {
		if r.Method == http.MethodPost {
			body = r.Body
		}
	}
	if body != `{"jclawPrincipal":"alice"}` {
		t.Errorf("expected trimmed principal, got %s", body)
	}
	if len(h.c.Admin.Mappings.State().Mappings) != 0 {
		t.Error("expected approved mapping to leave the pending list")
	}
}

func TestApproveFailureAlerts(t *testing.T) {
	h := newHarness(t)
	h.api.AddMapping(types.IdentityMapping{ID: "m1", ChannelType: "telegram", ChannelUserID: "42"})
	h.api.Fail("POST /admin/api/identity-mappings/{id}/approve", http.StatusConflict, "principal already mapped")
	ctx := context.Background()
	h.c.Admin.Mappings.Load(ctx)

	h.c.Admin.Mappings.SetPrincipal("m1", "alice")
	if err := h.c.Admin.Mappings.Approve(ctx, "m1"); err == nil {
		t.Fatal("expected error")
	}
	if h.prompt.lastAlert() != "Failed to approve mapping: principal already mapped" {
		t.Errorf("unexpected alert %q", h.prompt.lastAlert())
	}
	if got := h.c.Admin.Mappings.Principal("m1"); got != "alice" {
		t.Errorf("expected typed principal kept, got %q", got)
	}
}
