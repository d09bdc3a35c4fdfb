package telemetry

import (
	"encoding/json"
	"strings"
)

// RedactionMarker is the default placeholder substituted for blocked values.
const RedactionMarker = "***REDACTED***"

// DefaultBlocklist lists the key substrings redacted by default. Matching is
// case-insensitive and applies at every nesting depth.
func DefaultBlocklist() []string {
	return []string{"password", "token", "api_key", "apikey", "secret", "authorization"}
}

// Sanitizer redacts sensitive keys from arbitrary payloads.
type Sanitizer struct {
	blocklist []string
	marker    string
}

// NewSanitizer creates a sanitizer. Empty arguments fall back to
// DefaultBlocklist and RedactionMarker.
func NewSanitizer(blocklist []string, marker string) *Sanitizer {
	if len(blocklist) == 0 {
		blocklist = DefaultBlocklist()
	}
	if marker == "" {
		marker = RedactionMarker
	}
	lowered := make([]string, len(blocklist))
	for i, b := range blocklist {
		lowered[i] = strings.ToLower(b)
	}
	return &Sanitizer{blocklist: lowered, marker: marker}
}

// Sanitize returns a deep copy of v with every blocked key's value replaced
// by the redaction marker. The input is never mutated. Values that cannot
// be serialized are replaced wholesale by the marker.
func (s *Sanitizer) Sanitize(v any) any {
	if v == nil {
		return nil
	}

	// Round-tripping through JSON both deep-copies the payload and
	// normalizes structs and maps into a walkable shape.
	raw, err := json.Marshal(v)
	if err != nil {
		return s.marker
	}

	var clone any
	if err := json.Unmarshal(raw, &clone); err != nil {
		return s.marker
	}

	return s.redact(clone)
}

// redact walks the cloned value, replacing blocked keys at every depth.
func (s *Sanitizer) redact(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			if s.blocked(k) {
				val[k] = s.marker
			} else {
				val[k] = s.redact(child)
			}
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = s.redact(child)
		}
		return val
	default:
		return v
	}
}

// blocked reports whether a key name contains any blocked substring.
func (s *Sanitizer) blocked(key string) bool {
	lowered := strings.ToLower(key)
	for _, b := range s.blocklist {
		if strings.Contains(lowered, b) {
			return true
		}
	}
	return false
}
