package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Unknown is the variant every closed enum decodes to when the server sends
// a value outside the known set.
const Unknown = "UNKNOWN"

type TrustLevel string

const (
	TrustRestricted TrustLevel = "RESTRICTED"
	TrustStandard   TrustLevel = "STANDARD"
	TrustElevated   TrustLevel = "ELEVATED"
	TrustUnknown    TrustLevel = Unknown
)

// TrustLevels lists the selectable trust levels in display order.
var TrustLevels = []TrustLevel{TrustRestricted, TrustStandard, TrustElevated}

type SessionScope string

const (
	ScopeMain    SessionScope = "MAIN"
	ScopeDM      SessionScope = "DM"
	ScopeGroup   SessionScope = "GROUP"
	ScopeAPI     SessionScope = "API"
	ScopeUnknown SessionScope = Unknown
)

var SessionScopes = []SessionScope{ScopeMain, ScopeDM, ScopeGroup, ScopeAPI}

type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MEDIUM"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = Unknown
)

var RiskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

type EventType string

const (
	EventAuthSuccess    EventType = "AUTH_SUCCESS"
	EventAuthFailure    EventType = "AUTH_FAILURE"
	EventToolCall       EventType = "TOOL_CALL"
	EventSessionCreate  EventType = "SESSION_CREATE"
	EventSessionArchive EventType = "SESSION_ARCHIVE"
	EventConfigChange   EventType = "CONFIG_CHANGE"
	EventContentFilter  EventType = "CONTENT_FILTER"
	EventMessageRouted  EventType = "MESSAGE_ROUTED"
	EventDeliveryFailed EventType = "DELIVERY_FAILED"
	EventUnknown        EventType = Unknown
)

var EventTypes = []EventType{
	EventAuthSuccess, EventAuthFailure, EventToolCall,
	EventSessionCreate, EventSessionArchive, EventConfigChange,
	EventContentFilter, EventMessageRouted, EventDeliveryFailed,
}

// normalize maps s onto one of known, or the Unknown variant.
func normalize[T ~string](s string, known []T) T {
	if slices.Contains(known, T(s)) {
		return T(s)
	}
	return T(Unknown)
}

// parse is the strict form used for operator input.
func parse[T ~string](s string, known []T) (T, error) {
	v := normalize(strings.ToUpper(strings.TrimSpace(s)), known)
	if v == T(Unknown) {
		names := make([]string, len(known))
		for i, k := range known {
			names[i] = string(k)
		}
		return v, fmt.Errorf("invalid value %q (want one of %s)", s, strings.Join(names, ", "))
	}
	return v, nil
}

func decodeVariant[T ~string](data []byte, known []T) (T, error) {
	if string(data) == "null" {
		return T(Unknown), nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return T(Unknown), err
	}
	return normalize(s, known), nil
}

func (t *TrustLevel) UnmarshalJSON(data []byte) error {
	v, err := decodeVariant(data, TrustLevels)
	*t = v
	return err
}

func (s *SessionScope) UnmarshalJSON(data []byte) error {
	v, err := decodeVariant(data, SessionScopes)
	*s = v
	return err
}

func (r *RiskLevel) UnmarshalJSON(data []byte) error {
	v, err := decodeVariant(data, RiskLevels)
	*r = v
	return err
}

func (e *EventType) UnmarshalJSON(data []byte) error {
	v, err := decodeVariant(data, EventTypes)
	*e = v
	return err
}

// ParseTrustLevel validates operator input against the known trust levels.
func ParseTrustLevel(s string) (TrustLevel, error) { return parse(s, TrustLevels) }

// ParseEventType validates an audit filter. The empty string means "any".
func ParseEventType(s string) (EventType, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return parse(s, EventTypes)
}
