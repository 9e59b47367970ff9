package console

import (
	"context"
	"net/http"
	"testing"
)

func TestActivateChatTwiceLoadsOnce(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := h.c.Tabs.Activate(ctx, TabChat); err != nil {
			t.Fatal(err)
		}
		if h.c.Tabs.Active() != TabChat {
			t.Errorf("activation %d: expected chat active, got %q", i, h.c.Tabs.Active())
		}
	}
	if got := h.api.Count(http.MethodGet, "/admin/api/models"); got != 1 {
		t.Errorf("expected 1 models load, got %d", got)
	}
}

func TestActivateExactlyOnePanel(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for _, name := range []string{TabAdmin, TabSkills, TabChat, TabAdmin} {
		if err := h.c.Tabs.Activate(ctx, name); err != nil {
			t.Fatal(err)
		}
		active := 0
		for _, p := range h.c.Tabs.Panels() {
			if p.ButtonActive != p.PanelActive {
				t.Errorf("%s: button and panel disagree for %s", name, p.Name)
			}
			if p.PanelActive {
				active++
				if p.Name != name {
					t.Errorf("expected %s active, got %s", name, p.Name)
				}
			}
		}
		if active != 1 {
			t.Errorf("expected exactly one active panel, got %d", active)
		}
	}
	if got := h.api.Count(http.MethodGet, "/admin/api/agents"); got != 1 {
		t.Errorf("expected admin to load once across activations, got %d", got)
	}
}

func TestActivateUnknownTab(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.c.Tabs.Activate(ctx, TabSkills); err != nil {
		t.Fatal(err)
	}
	if err := h.c.Tabs.Activate(ctx, "billing"); err == nil {
		t.Fatal("expected error for unknown tab")
	}
	if h.c.Tabs.Active() != TabSkills {
		t.Errorf("expected active tab unchanged, got %q", h.c.Tabs.Active())
	}
}

func TestResetForcesReload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.c.Tabs.Activate(ctx, TabSkills)
	h.c.Skills.Reset()
	h.c.Tabs.Activate(ctx, TabSkills)

	if got := h.api.Count(http.MethodGet, "/admin/api/skills"); got != 2 {
		t.Errorf("expected 2 skills loads after reset, got %d", got)
	}
}

func TestRefreshActiveTab(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	if err := h.c.Tabs.Refresh(ctx); err != nil {
		t.Fatalf("refresh before activation: %v", err)
	}
	h.c.Tabs.Activate(ctx, TabAdmin)
	if err := h.c.Tabs.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if got := h.api.Count(http.MethodGet, "/admin/api/sessions"); got != 2 {
		t.Errorf("expected sessions reloaded by refresh, got %d loads", got)
	}
}

func TestStartLoadsUserInfo(t *testing.T) {
	h := newHarness(t)
	if err := h.c.Start(context.Background(), TabChat); err != nil {
		t.Fatal(err)
	}
	if h.c.User.Name() != "operator" {
		t.Errorf("expected operator, got %q", h.c.User.Name())
	}
}

func TestUserInfoFailureKeepsDefault(t *testing.T) {
	h := newHarness(t)
	h.api.Fail("GET /admin/api/userinfo", http.StatusInternalServerError, "nope")
	h.c.User.Load(context.Background())
	if h.c.User.Name() != "admin" {
		t.Errorf("expected admin fallback, got %q", h.c.User.Name())
	}
}
