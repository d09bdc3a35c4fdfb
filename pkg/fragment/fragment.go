package fragment

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Fragment source path templates. Components are cacheable, sections are
// always fresh.
const (
	componentPathTemplate = "/templates/components/%s.html"
	sectionPathTemplate   = "/templates/sections/%s.html"
)

// ErrorPlaceholder is rendered into a container when a fragment cannot be
// fetched.
const ErrorPlaceholder = `<div class="fragment-error">Failed to load content</div>`

// Record describes a resolved fragment. Component records are retained in
// the cache; section records are transient.
type Record struct {
	Name         string
	SourceKey    string
	CachedMarkup string
	LoadedAt     time.Time
}

// Container receives rendered fragment markup.
type Container interface {
	SetContent(markup string)
}

// RecordingContainer is an in-memory Container for tests and headless use.
type RecordingContainer struct {
	mu      sync.Mutex
	content string
	sets    int
}

// NewRecordingContainer creates an empty recording container.
func NewRecordingContainer() *RecordingContainer {
	return &RecordingContainer{}
}

// SetContent replaces the container content.
func (c *RecordingContainer) SetContent(markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.content = markup
	c.sets++
}

// Content returns the current content.
func (c *RecordingContainer) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

// Sets returns how many times the content was replaced.
func (c *RecordingContainer) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// Fetcher retrieves fragment markup by source path.
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// HTTPFetcher fetches fragments from the dashboard host.
type HTTPFetcher struct {
	baseURL string
	http    *http.Client
}

// NewHTTPFetcher creates a fetcher rooted at baseURL.
func NewHTTPFetcher(baseURL string, httpClient *http.Client) *HTTPFetcher {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// Fetch retrieves one fragment. Non-2xx statuses are errors.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+path, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fragment %s: status %d", path, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// componentPath and sectionPath derive the source key for a fragment name.
func componentPath(name string) string {
	return fmt.Sprintf(componentPathTemplate, name)
}

func sectionPath(name string) string {
	return fmt.Sprintf(sectionPathTemplate, name)
}
