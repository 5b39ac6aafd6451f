package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Setting is a key-value record stored as JSONB in the settings table.
// (Domain, Key) is unique; writes are last-write-wins upserts.
type Setting struct {
	Domain    string          `json:"domain"`
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Well-known setting domains.
const (
	DomainDesign = "design"
	DomainApp    = "app"
	DomainSite   = "site"
)

// String returns the value as text. JSON strings are unquoted; any other
// JSON value is returned in its encoded form. Null or empty yields "".
func (s *Setting) String() string {
	if s == nil {
		return ""
	}
	return RawString(s.Value)
}

// RawString renders a raw JSON value as text, unquoting JSON strings.
func RawString(v json.RawMessage) string {
	trimmed := strings.TrimSpace(string(v))
	if trimmed == "" || trimmed == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(v, &str); err == nil {
		return str
	}
	return trimmed
}

// StringValue encodes s as a JSON string value.
func StringValue(s string) json.RawMessage {
	data, _ := json.Marshal(s)
	return data
}
