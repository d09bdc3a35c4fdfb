package fragment

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/danyQe/codedash/pkg/bus"
	"github.com/danyQe/codedash/pkg/state"
)

type stubFetcher struct {
	mu     sync.Mutex
	markup map[string]string
	fail   bool
	calls  int
}

func (f *stubFetcher) Fetch(_ context.Context, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return "", errors.New("network down")
	}
	m, ok := f.markup[path]
	if !ok {
		return "", errors.New("not found")
	}
	return m, nil
}

func (f *stubFetcher) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stubView struct {
	name      string
	log       *[]string
	initErr   error
	initPanic bool
}

func (v *stubView) Init(context.Context) error {
	if v.initPanic {
		panic("view exploded")
	}
	*v.log = append(*v.log, "init:"+v.name)
	return v.initErr
}

func (v *stubView) Teardown() {
	*v.log = append(*v.log, "teardown:"+v.name)
}

func newTestLoader(fetcher Fetcher) (*Loader, *bus.Bus, *state.Container, *RecordingContainer) {
	b := bus.New()
	st := state.New()
	content := NewRecordingContainer()
	l := NewLoader(LoaderConfig{
		Fetcher: fetcher,
		Bus:     b,
		State:   st,
		Content: content,
	})
	return l, b, st, content
}

// ── Component tests ──────────────────────────────────────────────────────

func TestLoadComponent_FetchesAndCaches(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/components/sidebar.html": `<nav class="sidebar">Nav</nav>`,
	}}
	l, b, _, _ := newTestLoader(fetcher)

	var loaded []string
	b.On(bus.EventComponentLoaded, func(args ...any) {
		loaded = append(loaded, args[0].(string))
	})

	target := NewRecordingContainer()
	rec := l.LoadComponent(context.Background(), "sidebar", target)
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.SourceKey != "/templates/components/sidebar.html" {
		t.Errorf("SourceKey = %q", rec.SourceKey)
	}
	if !strings.Contains(target.Content(), "Nav") {
		t.Errorf("container content = %q", target.Content())
	}
	if len(loaded) != 1 || loaded[0] != "sidebar" {
		t.Errorf("componentLoaded events = %v", loaded)
	}

	// Second load must not touch the network.
	before := fetcher.callCount()
	second := NewRecordingContainer()
	rec2 := l.LoadComponent(context.Background(), "sidebar", second)
	if rec2 == nil {
		t.Fatal("expected cached record")
	}
	if fetcher.callCount() != before {
		t.Errorf("cache hit fetched: %d calls", fetcher.callCount()-before)
	}
	if second.Content() != target.Content() {
		t.Error("cached render differs from original")
	}
}

func TestLoadComponent_CacheServesWhileOffline(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/components/header.html": `<header>Dash</header>`,
	}}
	l, _, _, _ := newTestLoader(fetcher)

	first := NewRecordingContainer()
	if l.LoadComponent(context.Background(), "header", first) == nil {
		t.Fatal("warm-up load failed")
	}

	fetcher.setFail(true)

	second := NewRecordingContainer()
	rec := l.LoadComponent(context.Background(), "header", second)
	if rec == nil {
		t.Fatal("expected cached record while offline")
	}
	if !strings.Contains(second.Content(), "Dash") {
		t.Errorf("offline render = %q", second.Content())
	}
}

func TestLoadComponent_FetchFailureRendersPlaceholder(t *testing.T) {
	fetcher := &stubFetcher{fail: true}
	l, b, _, _ := newTestLoader(fetcher)

	events := 0
	b.On(bus.EventComponentLoaded, func(...any) { events++ })

	target := NewRecordingContainer()
	rec := l.LoadComponent(context.Background(), "sidebar", target)
	if rec != nil {
		t.Errorf("expected no record, got %+v", rec)
	}
	if target.Content() != ErrorPlaceholder {
		t.Errorf("content = %q", target.Content())
	}
	if events != 0 {
		t.Errorf("componentLoaded fired %d times on failure", events)
	}
	if got := l.CachedComponents(); len(got) != 0 {
		t.Errorf("failure cached a component: %v", got)
	}
}

func TestLoadComponent_SanitizesMarkup(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/components/widget.html": `<div>ok</div><script>alert(1)</script>`,
	}}
	l, _, _, _ := newTestLoader(fetcher)

	target := NewRecordingContainer()
	rec := l.LoadComponent(context.Background(), "widget", target)
	if rec == nil {
		t.Fatal("expected a record")
	}
	if strings.Contains(target.Content(), "script") {
		t.Errorf("script survived sanitization: %q", target.Content())
	}
	if !strings.Contains(target.Content(), "ok") {
		t.Errorf("safe markup lost: %q", target.Content())
	}
}

func TestInvalidateComponent_ForcesRefetch(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/components/sidebar.html": `<nav>v1</nav>`,
	}}
	l, _, _, _ := newTestLoader(fetcher)

	l.LoadComponent(context.Background(), "sidebar", NewRecordingContainer())
	fetcher.markup["/templates/components/sidebar.html"] = `<nav>v2</nav>`
	l.InvalidateComponent("sidebar")

	target := NewRecordingContainer()
	l.LoadComponent(context.Background(), "sidebar", target)
	if !strings.Contains(target.Content(), "v2") {
		t.Errorf("stale markup after invalidation: %q", target.Content())
	}
}

// ── Section tests ────────────────────────────────────────────────────────

func TestLoadSection_AlwaysFetches(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/sections/git.html": `<section>Git</section>`,
	}}
	l, _, _, content := newTestLoader(fetcher)

	l.LoadSection(context.Background(), "git")
	l.LoadSection(context.Background(), "git")
	if fetcher.callCount() != 2 {
		t.Errorf("fetch calls = %d, want 2", fetcher.callCount())
	}
	if !strings.Contains(content.Content(), "Git") {
		t.Errorf("content = %q", content.Content())
	}
}

func TestLoadSection_ViewLifecycle(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/sections/git.html":    `<section>Git</section>`,
		"/templates/sections/search.html": `<section>Search</section>`,
	}}
	l, b, st, _ := newTestLoader(fetcher)

	var log []string
	l.Registry().Register("git", &stubView{name: "git", log: &log})
	l.Registry().Register("search", &stubView{name: "search", log: &log})

	var loaded []string
	b.On(bus.EventSectionLoaded, func(args ...any) {
		loaded = append(loaded, args[0].(string))
	})

	l.LoadSection(context.Background(), "git")
	l.LoadSection(context.Background(), "search")

	want := []string{"init:git", "teardown:git", "init:search"}
	if len(log) != len(want) {
		t.Fatalf("lifecycle = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("lifecycle = %v, want %v", log, want)
		}
	}

	if got := st.Get("currentSection").String(); got != "search" {
		t.Errorf("currentSection = %q", got)
	}
	if l.ActiveSection() != "search" {
		t.Errorf("ActiveSection = %q", l.ActiveSection())
	}
	if len(loaded) != 2 || loaded[1] != "search" {
		t.Errorf("sectionLoaded events = %v", loaded)
	}
}

func TestLoadSection_ViewPanicIsolated(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/sections/broken.html": `<section>Broken</section>`,
		"/templates/sections/logs.html":   `<section>Logs</section>`,
	}}
	l, _, _, _ := newTestLoader(fetcher)

	var log []string
	l.Registry().Register("broken", &stubView{name: "broken", log: &log, initPanic: true})
	l.Registry().Register("logs", &stubView{name: "logs", log: &log})

	l.LoadSection(context.Background(), "broken")
	l.LoadSection(context.Background(), "logs")

	if l.ActiveSection() != "logs" {
		t.Errorf("ActiveSection = %q", l.ActiveSection())
	}
	if len(log) == 0 || log[len(log)-1] != "init:logs" {
		t.Errorf("lifecycle = %v", log)
	}
}

func TestLoadSection_FetchFailureKeepsView(t *testing.T) {
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/sections/git.html": `<section>Git</section>`,
	}}
	l, b, st, content := newTestLoader(fetcher)

	var log []string
	l.Registry().Register("git", &stubView{name: "git", log: &log})

	l.LoadSection(context.Background(), "git")

	events := 0
	b.On(bus.EventSectionLoaded, func(...any) { events++ })
	fetcher.setFail(true)

	if rec := l.LoadSection(context.Background(), "missing"); rec != nil {
		t.Errorf("expected no record, got %+v", rec)
	}
	if content.Content() != ErrorPlaceholder {
		t.Errorf("content = %q", content.Content())
	}
	if events != 0 {
		t.Errorf("sectionLoaded fired %d times on failure", events)
	}
	// The failed load must not tear the active view down or advance state.
	if l.ActiveSection() != "git" {
		t.Errorf("ActiveSection = %q", l.ActiveSection())
	}
	if got := st.Get("currentSection").String(); got != "git" {
		t.Errorf("currentSection = %q", got)
	}
	for _, entry := range log {
		if entry == "teardown:git" {
			t.Error("failed load tore the active view down")
		}
	}
}
