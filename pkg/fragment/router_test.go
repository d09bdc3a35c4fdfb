package fragment

import (
	"context"
	"testing"

	"github.com/danyQe/codedash/pkg/bus"
)

type stubOverlay struct {
	open   bool
	closes int
}

func (o *stubOverlay) Open() bool { return o.open }
func (o *stubOverlay) Close()     { o.open = false; o.closes++ }

func newTestRouter(t *testing.T, cfg RouterConfig) (*Router, *bus.Bus) {
	t.Helper()
	fetcher := &stubFetcher{markup: map[string]string{
		"/templates/sections/overview.html": `<section>Overview</section>`,
		"/templates/sections/git.html":      `<section>Git</section>`,
		"/templates/sections/search.html":   `<section>Search</section>`,
	}}
	l, b, _, _ := newTestLoader(fetcher)
	cfg.Loader = l
	cfg.Bus = b
	if cfg.Sections == nil {
		cfg.Sections = []string{"overview", "git", "search"}
	}
	return NewRouter(cfg), b
}

func TestNavigate_HighlightAndTitle(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{})

	r.Navigate(context.Background(), "git")

	if r.Active() != "git" {
		t.Errorf("Active = %q", r.Active())
	}
	title, icon := r.Title()
	if title != "Git" || icon != "git-branch" {
		t.Errorf("Title = %q/%q", title, icon)
	}

	// Navigating again must move the single highlight, not add one.
	r.Navigate(context.Background(), "search")
	if r.Active() != "search" {
		t.Errorf("Active = %q after second navigation", r.Active())
	}
}

func TestNavigate_UnknownSectionFallsBack(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{})

	r.Navigate(context.Background(), "experimental")

	title, icon := r.Title()
	if title != "experimental" {
		t.Errorf("title = %q, want raw token", title)
	}
	if icon != GenericIcon {
		t.Errorf("icon = %q, want %q", icon, GenericIcon)
	}
}

func TestNavigate_UpdatesLocationFragment(t *testing.T) {
	loc := &MemoryLocation{}
	r, _ := newTestRouter(t, RouterConfig{Location: loc})

	r.Navigate(context.Background(), "git")
	if loc.Fragment() != "git" {
		t.Errorf("fragment = %q", loc.Fragment())
	}
}

func TestNavigate_EmitsSectionChanged(t *testing.T) {
	r, b := newTestRouter(t, RouterConfig{})

	var changed []string
	b.On(bus.EventSectionChanged, func(args ...any) {
		changed = append(changed, args[0].(string))
	})

	r.Navigate(context.Background(), "git")
	if len(changed) != 1 || changed[0] != "git" {
		t.Errorf("sectionChanged events = %v", changed)
	}
}

func TestNavigate_ClosesOverlayOnNarrowViewport(t *testing.T) {
	overlay := &stubOverlay{open: true}
	r, _ := newTestRouter(t, RouterConfig{
		Overlay:       overlay,
		ViewportWidth: func() int { return 390 },
	})

	r.Navigate(context.Background(), "git")
	if overlay.open {
		t.Error("overlay stayed open on a narrow viewport")
	}
}

func TestNavigate_KeepsOverlayOnWideViewport(t *testing.T) {
	overlay := &stubOverlay{open: true}
	r, _ := newTestRouter(t, RouterConfig{
		Overlay:       overlay,
		ViewportWidth: func() int { return 1440 },
	})

	r.Navigate(context.Background(), "git")
	if !overlay.open {
		t.Error("overlay closed on a wide viewport")
	}
}

func TestNavigateFromLocation(t *testing.T) {
	loc := &MemoryLocation{}
	loc.SetFragment("search")
	r, _ := newTestRouter(t, RouterConfig{Location: loc})

	r.NavigateFromLocation(context.Background())
	if r.Active() != "search" {
		t.Errorf("Active = %q", r.Active())
	}
}

func TestNavigateFromLocation_EmptyFragmentUsesFirstSection(t *testing.T) {
	r, _ := newTestRouter(t, RouterConfig{Location: &MemoryLocation{}})

	r.NavigateFromLocation(context.Background())
	if r.Active() != "overview" {
		t.Errorf("Active = %q", r.Active())
	}
}

func TestNavigateFromLocation_UnknownFragmentUsesFirstSection(t *testing.T) {
	loc := &MemoryLocation{}
	loc.SetFragment("bogus")
	r, _ := newTestRouter(t, RouterConfig{Location: loc})

	r.NavigateFromLocation(context.Background())
	if r.Active() != "overview" {
		t.Errorf("Active = %q", r.Active())
	}
}
