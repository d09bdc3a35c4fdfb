package api

import (
	"testing"
)

func TestDecode_KnownRoute(t *testing.T) {
	body := []byte(`{
		"success": true,
		"result": {"status": "healthy", "version": "1.4.0"}
	}`)

	payload, apiErr, err := Decode(RouteHealth, body)
	if err != nil || apiErr != "" {
		t.Fatalf("Decode: err=%v apiErr=%q", err, apiErr)
	}

	h, ok := payload.(*Health)
	if !ok {
		t.Fatalf("expected *Health, got %T", payload)
	}
	if h.Status != "healthy" || h.Version != "1.4.0" {
		t.Errorf("unexpected payload: %+v", h)
	}
}

func TestDecode_RouteWithQueryString(t *testing.T) {
	body := []byte(`{"success":true,"result":{"query":"init","results":[{"file":"main.go","score":0.92}]}}`)

	payload, _, err := Decode("/search?limit=5", body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	s, ok := payload.(*SearchResults)
	if !ok {
		t.Fatalf("expected *SearchResults, got %T", payload)
	}
	if len(s.Hits) != 1 || s.Hits[0].File != "main.go" {
		t.Errorf("unexpected hits: %+v", s.Hits)
	}
}

func TestDecode_ErrorEnvelope(t *testing.T) {
	body := []byte(`{"success":false,"error":"working directory not set"}`)

	payload, apiErr, err := Decode(RouteGitStatus, body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if payload != nil {
		t.Errorf("failed envelope must not decode a payload: %T", payload)
	}
	if apiErr != "working directory not set" {
		t.Errorf("apiErr = %q", apiErr)
	}
}

func TestDecode_MemoryRoute(t *testing.T) {
	body := []byte(`{"success":true,"result":{"memories":[{"id":"m1","content":"prefers tabs","category":"style"}],"total":1}}`)

	payload, _, err := Decode(RouteMemory, body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	m, ok := payload.(*Memories)
	if !ok {
		t.Fatalf("expected *Memories, got %T", payload)
	}
	if m.Total != 1 || len(m.Entries) != 1 || m.Entries[0].Category != "style" {
		t.Errorf("unexpected payload: %+v", m)
	}
}

func TestDecode_UnknownRouteIsOpaque(t *testing.T) {
	body := []byte(`{"success":true,"result":{"nodes":[{"id":"a","kind":"file"}]}}`)

	payload, _, err := Decode("/experimental/graph", body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	o, ok := payload.(Opaque)
	if !ok {
		t.Fatalf("expected Opaque, got %T", payload)
	}
	if got := o.Get("nodes.0.kind").String(); got != "file" {
		t.Errorf("opaque path query = %q, want %q", got, "file")
	}
}

func TestDecode_MalformedBody(t *testing.T) {
	if _, _, err := Decode(RouteHealth, []byte("{nope")); err == nil {
		t.Error("expected error for malformed body")
	}
}

func TestDecode_BareResultWithoutEnvelope(t *testing.T) {
	// Some routes respond without the wrapper; the body itself is the
	// payload.
	body := []byte(`{"current":"main","branches":["main","dev"]}`)

	payload, _, err := Decode(RouteGitBranch, body)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	b, ok := payload.(*GitBranches)
	if !ok {
		t.Fatalf("expected *GitBranches, got %T", payload)
	}
	if b.Current != "main" || len(b.Branches) != 2 {
		t.Errorf("unexpected payload: %+v", b)
	}
}
