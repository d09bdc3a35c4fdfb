package telemetry

import (
	"testing"
)

func TestSanitize_RedactsBlockedKeysAtEveryDepth(t *testing.T) {
	s := NewSanitizer(nil, "")

	in := map[string]any{
		"query": "find handlers",
		"auth": map[string]any{
			"api_key": "sk-12345",
			"nested": map[string]any{
				"refreshToken": "abc",
			},
		},
		"items": []any{
			map[string]any{"PASSWORD": "hunter2", "name": "ok"},
		},
	}

	out, ok := s.Sanitize(in).(map[string]any)
	if !ok {
		t.Fatalf("expected map output, got %T", s.Sanitize(in))
	}

	auth := out["auth"].(map[string]any)
	if auth["api_key"] != RedactionMarker {
		t.Errorf("api_key not redacted: %v", auth["api_key"])
	}
	nested := auth["nested"].(map[string]any)
	if nested["refreshToken"] != RedactionMarker {
		t.Errorf("key containing 'token' not redacted: %v", nested["refreshToken"])
	}
	item := out["items"].([]any)[0].(map[string]any)
	if item["PASSWORD"] != RedactionMarker {
		t.Errorf("case-insensitive match failed: %v", item["PASSWORD"])
	}
	if item["name"] != "ok" {
		t.Errorf("unblocked key was altered: %v", item["name"])
	}
	if out["query"] != "find handlers" {
		t.Errorf("top-level value altered: %v", out["query"])
	}
}

func TestSanitize_NeverMutatesInput(t *testing.T) {
	s := NewSanitizer(nil, "")

	in := map[string]any{
		"password": "hunter2",
		"deep":     map[string]any{"secretKey": "x"},
	}

	_ = s.Sanitize(in)

	if in["password"] != "hunter2" {
		t.Errorf("input mutated: %v", in["password"])
	}
	if in["deep"].(map[string]any)["secretKey"] != "x" {
		t.Error("nested input mutated")
	}
}

func TestSanitize_NilAndScalars(t *testing.T) {
	s := NewSanitizer(nil, "")

	if got := s.Sanitize(nil); got != nil {
		t.Errorf("Sanitize(nil) = %v", got)
	}
	if got := s.Sanitize("plain"); got != "plain" {
		t.Errorf("Sanitize(string) = %v", got)
	}
	if got := s.Sanitize(float64(7)); got != float64(7) {
		t.Errorf("Sanitize(number) = %v", got)
	}
}

func TestSanitize_UnserializableValue(t *testing.T) {
	s := NewSanitizer(nil, "")

	if got := s.Sanitize(func() {}); got != RedactionMarker {
		t.Errorf("unserializable input should collapse to the marker, got %v", got)
	}
}

func TestSanitize_CustomBlocklistAndMarker(t *testing.T) {
	s := NewSanitizer([]string{"ssn"}, "[hidden]")

	out := s.Sanitize(map[string]any{
		"ssn":      "123-45-6789",
		"password": "left alone with custom list",
	}).(map[string]any)

	if out["ssn"] != "[hidden]" {
		t.Errorf("custom marker not applied: %v", out["ssn"])
	}
	if out["password"] != "left alone with custom list" {
		t.Error("custom blocklist should replace the default, not extend it")
	}
}

func TestSanitize_StructsAreWalkable(t *testing.T) {
	s := NewSanitizer(nil, "")

	type loginRequest struct {
		User     string `json:"user"`
		Password string `json:"password"`
	}

	out := s.Sanitize(loginRequest{User: "dany", Password: "pw"}).(map[string]any)
	if out["password"] != RedactionMarker {
		t.Errorf("struct field not redacted: %v", out["password"])
	}
	if out["user"] != "dany" {
		t.Errorf("struct field altered: %v", out["user"])
	}
}
