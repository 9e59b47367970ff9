// internal/types/ids.go
package types

import (
	"github.com/google/uuid"
)

type AgentID string
type MappingID string
type SessionID string
type ConversationID string

// DefaultAgentID is the agent the server falls back to when none is chosen.
const DefaultAgentID AgentID = "default"

func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}
