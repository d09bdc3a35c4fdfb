package fragment

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/danyQe/codedash/pkg/bus"
	"github.com/danyQe/codedash/pkg/logging"
	"github.com/danyQe/codedash/pkg/state"
)

// LoaderConfig carries the loader dependencies.
type LoaderConfig struct {
	Fetcher  Fetcher
	Bus      *bus.Bus
	State    *state.Container
	Registry *Registry

	// Content is the container section markup renders into.
	Content Container

	// Policy sanitizes fetched markup. Defaults to the UGC policy extended
	// with the structural and form elements dashboard fragments use; script
	// and event-handler content stays stripped.
	Policy *bluemonday.Policy
}

func defaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("nav", "section", "header", "footer", "aside", "main",
		"article", "button", "form", "label", "select", "option", "textarea",
		"input", "canvas")
	p.AllowAttrs("class", "id").Globally()
	p.AllowAttrs("type", "name", "value", "placeholder", "disabled").
		OnElements("input", "button", "select", "option", "textarea")
	return p
}

// Loader resolves fragments and manages the active section view.
type Loader struct {
	fetcher  Fetcher
	bus      *bus.Bus
	state    *state.Container
	registry *Registry
	content  Container
	policy   *bluemonday.Policy
	log      *slog.Logger

	mu         sync.Mutex
	cache      map[string]*Record
	activeView View
	activeName string
}

// NewLoader creates a loader.
func NewLoader(cfg LoaderConfig) *Loader {
	policy := cfg.Policy
	if policy == nil {
		policy = defaultPolicy()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	return &Loader{
		fetcher:  cfg.Fetcher,
		bus:      cfg.Bus,
		state:    cfg.State,
		registry: registry,
		content:  cfg.Content,
		policy:   policy,
		log:      logging.Nop(),
		cache:    make(map[string]*Record),
	}
}

// SetLogger sets the logger used by the loader.
func (l *Loader) SetLogger(log *slog.Logger) {
	if log != nil {
		l.log = log
	}
}

// Registry returns the view registry.
func (l *Loader) Registry() *Registry {
	return l.registry
}

// LoadComponent renders a component fragment into the given container. A
// cached component renders without touching the network; a miss fetches,
// sanitizes and caches the markup. Fetch failures render a placeholder and
// return no record.
func (l *Loader) LoadComponent(ctx context.Context, name string, container Container) *Record {
	key := componentPath(name)

	l.mu.Lock()
	rec, hit := l.cache[key]
	l.mu.Unlock()

	if hit {
		container.SetContent(rec.CachedMarkup)
		return rec
	}

	raw, err := l.fetcher.Fetch(ctx, key)
	if err != nil {
		l.log.Warn("component fetch failed", "component", name, "error", err)
		container.SetContent(ErrorPlaceholder)
		return nil
	}

	rec = &Record{
		Name:         name,
		SourceKey:    key,
		CachedMarkup: l.policy.Sanitize(raw),
		LoadedAt:     time.Now(),
	}

	l.mu.Lock()
	l.cache[key] = rec
	l.mu.Unlock()

	container.SetContent(rec.CachedMarkup)
	l.emit(bus.EventComponentLoaded, name)
	return rec
}

// LoadSection fetches a section fragment and renders it into the content
// container. Sections are never cached. On success the previous view is
// torn down, the section's view is initialized, currentSection is updated
// and sectionLoaded fires. Fetch failures render a placeholder and leave
// the previous view active.
func (l *Loader) LoadSection(ctx context.Context, name string) *Record {
	raw, err := l.fetcher.Fetch(ctx, sectionPath(name))
	if err != nil {
		l.log.Warn("section fetch failed", "section", name, "error", err)
		l.content.SetContent(ErrorPlaceholder)
		return nil
	}

	rec := &Record{
		Name:      name,
		SourceKey: sectionPath(name),
		LoadedAt:  time.Now(),
	}
	l.content.SetContent(l.policy.Sanitize(raw))

	l.swapView(ctx, name)

	if l.state != nil {
		if err := l.state.Set("currentSection", name); err != nil {
			l.log.Warn("state update failed", "section", name, "error", err)
		}
	}
	l.emit(bus.EventSectionLoaded, name)
	return rec
}

// ActiveSection returns the name of the section whose view is active.
func (l *Loader) ActiveSection() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.activeName
}

// InvalidateComponent drops a component from the cache so the next load
// fetches it again.
func (l *Loader) InvalidateComponent(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, componentPath(name))
}

// ClearCache drops all cached components.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*Record)
}

// CachedComponents returns the names of the cached components.
func (l *Loader) CachedComponents() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, 0, len(l.cache))
	for _, rec := range l.cache {
		names = append(names, rec.Name)
	}
	return names
}

// swapView tears the active view down and initializes the next one. Both
// calls are isolated so a faulty view cannot break navigation.
func (l *Loader) swapView(ctx context.Context, name string) {
	l.mu.Lock()
	prev, prevName := l.activeView, l.activeName
	next, _ := l.registry.Lookup(name)
	l.activeView, l.activeName = next, name
	l.mu.Unlock()

	if prev != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					l.log.Error("view teardown panicked", "section", prevName, "panic", r)
				}
			}()
			prev.Teardown()
		}()
	}

	if next != nil {
		func() {
			defer func() {
				if r := recover(); r != nil {
					l.log.Error("view init panicked", "section", name, "panic", r)
				}
			}()
			if err := next.Init(ctx); err != nil {
				l.log.Error("view init failed", "section", name, "error", err)
			}
		}()
	}
}

func (l *Loader) emit(event string, args ...any) {
	if l.bus != nil {
		l.bus.Emit(event, args...)
	}
}
