package view

import (
	"errors"
	"strings"
	"testing"
)

func TestEmptyState(t *testing.T) {
	got := EmptyState("No agents configured yet.")
	want := Fragment(`<div class="empty-state">No agents configured yet.</div>`)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestLoadFailedEscapes(t *testing.T) {
	got := LoadFailed("agents", errors.New("<b>down</b>"))
	want := Fragment(`<div class="empty-state">Failed to load agents: &lt;b&gt;down&lt;/b&gt;</div>`)
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestBadge(t *testing.T) {
	got := Badge("badge-risk-HIGH", "HIGH")
	if got != `<span class="badge badge-risk-HIGH">HIGH</span>` {
		t.Errorf("unexpected badge %q", got)
	}
}

func TestMarkdown(t *testing.T) {
	md, err := Markdown(Fragment(`<div class="card"><strong>helper</strong> <em>STANDARD</em></div>`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(md, "**helper**") {
		t.Errorf("expected bold name in markdown, got %q", md)
	}

	md, err = Markdown("")
	if err != nil || md != "" {
		t.Errorf("expected empty markdown, got %q, %v", md, err)
	}
}
