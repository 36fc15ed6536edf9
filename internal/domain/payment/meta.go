package payment

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"
	"time"
)

// MaxUnverifiedPerChannel caps the unsigned payloads kept per method and
// channel. Anyone who knows an order code can post them.
const MaxUnverifiedPerChannel = 10

// MetaEntry is one raw callback as received
type MetaEntry struct {
	ReceivedAt time.Time         `json:"received_at"`
	Payload    map[string]string `json:"payload"`
	// Unverified marks a payload whose signature did not check out
	Unverified bool `json:"unverified,omitempty"`
}

// Meta is the append-only audit log of callbacks received for a payment,
// keyed by "<method>_<channel>_<n>". Entries are never replaced or removed.
type Meta map[string]MetaEntry

// Append adds a payload under the next free key for prefix and returns the key
func (m Meta) Append(prefix string, payload map[string]string, receivedAt time.Time) string {
	n := 1
	key := fmt.Sprintf("%s_%d", prefix, n)
	for {
		if _, exists := m[key]; !exists {
			break
		}
		n++
		key = fmt.Sprintf("%s_%d", prefix, n)
	}

	m[key] = MetaEntry{
		ReceivedAt: receivedAt.UTC(),
		Payload:    maps.Clone(payload),
	}
	return key
}

// AppendUnverified adds an unsigned payload unless prefix already holds
// MaxUnverifiedPerChannel of them. It returns "" when the payload is dropped.
func (m Meta) AppendUnverified(prefix string, payload map[string]string, receivedAt time.Time) string {
	unverified := 0
	for k, e := range m {
		if e.Unverified && strings.HasPrefix(k, prefix+"_") {
			unverified++
		}
	}
	if unverified >= MaxUnverifiedPerChannel {
		return ""
	}
	key := m.Append(prefix, payload, receivedAt)
	e := m[key]
	e.Unverified = true
	m[key] = e
	return key
}

// Merge copies entries from other that are not already present
func (m Meta) Merge(other Meta) {
	for k, v := range other {
		if _, exists := m[k]; !exists {
			m[k] = v
		}
	}
}

// MarshalString encodes the meta as a JSON object string
func (m Meta) MarshalString() (string, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("payment: encode meta: %w", err)
	}
	return string(b), nil
}

// ParseMeta decodes a JSON object string into Meta; empty input yields an empty Meta
func ParseMeta(raw string) (Meta, error) {
	m := Meta{}
	if raw == "" || raw == "null" {
		return m, nil
	}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("payment: decode meta: %w", err)
	}
	return m, nil
}
