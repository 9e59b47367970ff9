package view

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// Fragment is a piece of rendered console markup. Text placed in a
// Fragment must already be escaped.
type Fragment string

// EmptyState is the placeholder shown instead of a list.
func EmptyState(message string) Fragment {
	return Fragment(`<div class="empty-state">` + EscapeHTML(message) + `</div>`)
}

// LoadFailed is the inline error shown when what could not be fetched.
func LoadFailed(what string, err error) Fragment {
	return EmptyState(fmt.Sprintf("Failed to load %s: %s", what, err.Error()))
}

// Join concatenates fragments.
func Join(parts []Fragment) Fragment {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(string(p))
	}
	return Fragment(b.String())
}

// Badge renders <span class="badge CLASS">TEXT</span>.
func Badge(class, text string) Fragment {
	return Fragment(`<span class="badge ` + EscapeHTML(class) + `">` + EscapeHTML(text) + `</span>`)
}

// Markdown converts f for terminal display.
func Markdown(f Fragment) (string, error) {
	if f == "" {
		return "", nil
	}
	md, err := htmltomarkdown.ConvertString(string(f))
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(md), nil
}
