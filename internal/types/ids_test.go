// internal/types/ids_test.go
package types

import (
	"testing"
)

func TestNewConversationID(t *testing.T) {
	id := NewConversationID()
	if id == "" {
		t.Error("expected non-empty ConversationID")
	}
	if len(string(id)) != 36 {
		t.Errorf("expected UUID format, got %s", id)
	}
}

func TestNewConversationIDUnique(t *testing.T) {
	a := NewConversationID()
	b := NewConversationID()
	if a == b {
		t.Errorf("expected distinct ids, got %s twice", a)
	}
}
