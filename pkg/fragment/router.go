package fragment

import (
	"context"
	"log/slog"
	"sync"

	"github.com/danyQe/codedash/pkg/bus"
	"github.com/danyQe/codedash/pkg/logging"
)

// GenericIcon is used for sections missing from the metadata table.
const GenericIcon = "file"

// mobileBreakpoint is the viewport width, in CSS pixels, at or below which
// the sidebar renders as an overlay.
const mobileBreakpoint = 768

// SectionMeta is the display metadata for a section.
type SectionMeta struct {
	Title string
	Icon  string
}

// defaultSectionMeta covers the built-in dashboard sections.
var defaultSectionMeta = map[string]SectionMeta{
	"overview":  {Title: "Overview", Icon: "home"},
	"search":    {Title: "Code Search", Icon: "search"},
	"git":       {Title: "Git", Icon: "git-branch"},
	"sessions":  {Title: "Sessions", Icon: "clock"},
	"memory":    {Title: "Memory", Icon: "database"},
	"files":     {Title: "Files", Icon: "folder"},
	"logs":      {Title: "Logs", Icon: "terminal"},
	"telemetry": {Title: "API Calls", Icon: "activity"},
	"settings":  {Title: "Settings", Icon: "settings"},
}

// Location abstracts the address the dashboard is reachable at. Navigation
// records the active section in the location fragment so reloads land on
// the same section.
type Location interface {
	Fragment() string
	SetFragment(fragment string)
}

// MemoryLocation is an in-memory Location.
type MemoryLocation struct {
	mu       sync.Mutex
	fragment string
}

// Fragment returns the current fragment.
func (l *MemoryLocation) Fragment() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.fragment
}

// SetFragment replaces the fragment.
func (l *MemoryLocation) SetFragment(fragment string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fragment = fragment
}

// Overlay is the collapsible navigation surface on narrow viewports.
type Overlay interface {
	Open() bool
	Close()
}

// RouterConfig carries the router dependencies.
type RouterConfig struct {
	Loader   *Loader
	Bus      *bus.Bus
	Location Location

	// Sections lists the navigable targets, in nav order.
	Sections []string

	// Meta overrides the built-in section metadata table.
	Meta map[string]SectionMeta

	// Overlay and ViewportWidth drive the auto-close behavior on narrow
	// viewports. Both optional.
	Overlay       Overlay
	ViewportWidth func() int
}

// Router drives section navigation: it loads the section fragment, keeps
// exactly one nav target highlighted, updates the header title and the
// location fragment, and announces the change on the bus.
type Router struct {
	loader        *Loader
	bus           *bus.Bus
	location      Location
	sections      []string
	meta          map[string]SectionMeta
	overlay       Overlay
	viewportWidth func() int
	log           *slog.Logger

	mu     sync.Mutex
	active string
	title  string
	icon   string
}

// NewRouter creates a router.
func NewRouter(cfg RouterConfig) *Router {
	meta := cfg.Meta
	if meta == nil {
		meta = defaultSectionMeta
	}
	return &Router{
		loader:        cfg.Loader,
		bus:           cfg.Bus,
		location:      cfg.Location,
		sections:      cfg.Sections,
		meta:          meta,
		overlay:       cfg.Overlay,
		viewportWidth: cfg.ViewportWidth,
		log:           logging.Nop(),
	}
}

// SetLogger sets the logger used by the router.
func (r *Router) SetLogger(log *slog.Logger) {
	if log != nil {
		r.log = log
	}
}

// Navigate switches the dashboard to a section. The section fragment is
// loaded fresh; nav state, header title and location fragment update even
// when the load renders the error placeholder, so retrying is a plain
// re-navigation.
func (r *Router) Navigate(ctx context.Context, section string) {
	r.loader.LoadSection(ctx, section)

	title, icon := r.Meta(section)

	r.mu.Lock()
	r.active = section
	r.title = title
	r.icon = icon
	r.mu.Unlock()

	if r.location != nil {
		r.location.SetFragment(section)
	}

	r.closeOverlayIfNarrow()
	if r.bus != nil {
		r.bus.Emit(bus.EventSectionChanged, section)
	}
}

// NavigateFromLocation resolves the location fragment and navigates there,
// falling back to the first declared section when the fragment is empty or
// unknown.
func (r *Router) NavigateFromLocation(ctx context.Context) {
	target := ""
	if r.location != nil {
		target = r.location.Fragment()
	}
	if !r.known(target) {
		if len(r.sections) == 0 {
			return
		}
		target = r.sections[0]
	}
	r.Navigate(ctx, target)
}

// Active returns the highlighted nav target. Exactly one target is active
// after any navigation.
func (r *Router) Active() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Title returns the current header title and icon.
func (r *Router) Title() (string, string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.title, r.icon
}

// Sections returns the navigable targets in nav order.
func (r *Router) Sections() []string {
	out := make([]string, len(r.sections))
	copy(out, r.sections)
	return out
}

// Meta resolves display metadata for a section. Unknown sections fall back
// to the raw token and the generic icon.
func (r *Router) Meta(section string) (title, icon string) {
	if m, ok := r.meta[section]; ok {
		return m.Title, m.Icon
	}
	return section, GenericIcon
}

func (r *Router) known(section string) bool {
	for _, s := range r.sections {
		if s == section {
			return true
		}
	}
	return false
}

func (r *Router) closeOverlayIfNarrow() {
	if r.overlay == nil || !r.overlay.Open() {
		return
	}
	if r.viewportWidth == nil || r.viewportWidth() <= mobileBreakpoint {
		r.overlay.Close()
	}
}
