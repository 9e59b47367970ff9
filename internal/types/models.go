// internal/types/models.go
package types

import (
	"encoding/json"
)

// OptString is a nullable string: blank values travel as JSON null and
// null decodes to "".
type OptString string

func (s OptString) MarshalJSON() ([]byte, error) {
	if s == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(s))
}

func (s *OptString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = OptString(v)
	return nil
}

const (
	DefaultMaxTokens    = 4096
	DefaultMaxToolCalls = 10
)

type Agent struct {
	AgentID                AgentID    `json:"agentId"`
	DisplayName            OptString  `json:"displayName"`
	Model                  OptString  `json:"model"`
	TrustLevel             TrustLevel `json:"trustLevel"`
	SystemPrompt           OptString  `json:"systemPrompt"`
	AllowedTools           []string   `json:"allowedTools"`
	DeniedTools            []string   `json:"deniedTools"`
	MaxTokensPerRequest    int        `json:"maxTokensPerRequest"`
	MaxToolCallsPerRequest int        `json:"maxToolCallsPerRequest"`
}

type IdentityMapping struct {
	ID             MappingID `json:"id"`
	ChannelType    string    `json:"channelType"`
	ChannelUserID  string    `json:"channelUserId"`
	DisplayName    OptString `json:"displayName"`
	CreatedAt      string    `json:"createdAt"`
	JclawPrincipal OptString `json:"jclawPrincipal"`
	Approved       bool      `json:"approved"`
}

type Session struct {
	ID           SessionID    `json:"id"`
	AgentID      AgentID      `json:"agentId"`
	Principal    string       `json:"principal"`
	ChannelType  string       `json:"channelType"`
	Scope        SessionScope `json:"scope"`
	MessageCount int          `json:"messageCount"`
	TotalTokens  int          `json:"totalTokens"`
	LastActiveAt string       `json:"lastActiveAt"`
}

type AuditEvent struct {
	Timestamp string    `json:"timestamp"`
	EventType EventType `json:"eventType"`
	Principal OptString `json:"principal"`
	AgentID   OptString `json:"agentId"`
	Action    string    `json:"action"`
	Outcome   OptString `json:"outcome"`
}

// AuditPage is the paged envelope returned by the audit endpoint.
type AuditPage struct {
	Content    []AuditEvent `json:"content"`
	Number     int          `json:"number"`
	TotalPages int          `json:"totalPages"`
}

type Skill struct {
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	RiskLevel        RiskLevel `json:"riskLevel"`
	RequiresApproval bool      `json:"requiresApproval"`
}

type UserInfo struct {
	Name        string   `json:"name"`
	Authorities []string `json:"authorities"`
}

type ApproveRequest struct {
	JclawPrincipal string `json:"jclawPrincipal"`
}

type ChatRequest struct {
	Message        string         `json:"message"`
	AgentID        AgentID        `json:"agentId"`
	ConversationID ConversationID `json:"conversationId"`
	ModelOverride  string         `json:"modelOverride,omitempty"`
}

type ChatResponse struct {
	Response string  `json:"response"`
	AgentID  AgentID `json:"agentId,omitempty"`
}

// Role tags a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleError     Role = "error"
)

// Turn is one transcript entry. It never leaves the client.
type Turn struct {
	Role    Role
	Content string
}
