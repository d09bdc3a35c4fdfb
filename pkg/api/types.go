package api

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Control-plane routes consumed by the dashboard.
const (
	RouteHealth     = "/health"
	RouteSearch     = "/search"
	RouteGit        = "/git"
	RouteGitStatus  = "/git/status"
	RouteGitLog     = "/git/log"
	RouteGitBranch  = "/git/branches"
	RouteSession    = "/session"
	RouteMemory     = "/memory"
	RouteProject    = "/project"
	RouteDirectory  = "/directory"
	RouteLogs       = "/logs"
	RouteWorkingDir = "/working-directory"
)

// Envelope is the uniform response wrapper produced by the control plane.
// Result carries the route-specific payload; Error is set on failures.
type Envelope struct {
	Success   bool            `json:"success"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp,omitempty"`
}

// Payload is the closed set of decoded route payloads.
type Payload interface {
	payload()
}

// Health is the /health payload.
type Health struct {
	Status           string `json:"status"`
	Version          string `json:"version,omitempty"`
	WorkingDirectory string `json:"working_directory,omitempty"`
}

func (Health) payload() {}

// SearchHit is one semantic search result.
type SearchHit struct {
	File    string  `json:"file"`
	Score   float64 `json:"score"`
	Snippet string  `json:"snippet,omitempty"`
	Symbol  string  `json:"symbol,omitempty"`
}

// SearchResults is the /search payload.
type SearchResults struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"results"`
}

func (SearchResults) payload() {}

// GitStatus is the /git/status payload.
type GitStatus struct {
	Branch    string   `json:"branch"`
	Dirty     bool     `json:"dirty"`
	Modified  []string `json:"modified,omitempty"`
	Untracked []string `json:"untracked,omitempty"`
}

func (GitStatus) payload() {}

// GitCommit is one entry of the /git/log payload.
type GitCommit struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// GitLog is the /git/log payload.
type GitLog struct {
	Commits []GitCommit `json:"commits"`
}

func (GitLog) payload() {}

// GitBranches is the /git/branches payload.
type GitBranches struct {
	Current  string   `json:"current"`
	Branches []string `json:"branches"`
}

func (GitBranches) payload() {}

// Session is the /session payload.
type Session struct {
	ID        string `json:"id"`
	Goal      string `json:"goal,omitempty"`
	Branch    string `json:"branch,omitempty"`
	StartedAt string `json:"started_at,omitempty"`
	Active    bool   `json:"active"`
}

func (Session) payload() {}

// MemoryEntry is one stored memory item.
type MemoryEntry struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Category  string `json:"category,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Memories is the /memory payload.
type Memories struct {
	Entries []MemoryEntry `json:"memories"`
	Total   int           `json:"total,omitempty"`
}

func (Memories) payload() {}

// Project is the /project payload.
type Project struct {
	Name      string `json:"name"`
	Root      string `json:"root"`
	Language  string `json:"language,omitempty"`
	FileCount int    `json:"file_count,omitempty"`
}

func (Project) payload() {}

// Opaque wraps a payload for a route outside the known set. Callers query
// it by dotted path.
type Opaque struct {
	raw []byte
}

func (Opaque) payload() {}

// Get returns the value at a dotted path inside the opaque payload.
func (o Opaque) Get(path string) gjson.Result {
	return gjson.GetBytes(o.raw, path)
}

// Raw returns the underlying bytes.
func (o Opaque) Raw() []byte {
	return o.raw
}

// Decode unwraps an envelope body and decodes the route payload. Unknown
// routes yield an Opaque payload; a failed envelope returns its error
// message and a nil payload.
func Decode(route string, body []byte) (Payload, string, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, "", err
	}
	if env.Error != "" {
		return nil, env.Error, nil
	}

	result := []byte(env.Result)
	if len(result) == 0 {
		result = body
	}

	payload, err := decodeRoute(route, result)
	if err != nil {
		return nil, "", err
	}
	return payload, "", nil
}

// decodeRoute maps a route to its typed payload.
func decodeRoute(route string, result []byte) (Payload, error) {
	var p Payload
	switch normalize(route) {
	case RouteHealth:
		p = &Health{}
	case RouteSearch:
		p = &SearchResults{}
	case RouteGitStatus:
		p = &GitStatus{}
	case RouteGitLog:
		p = &GitLog{}
	case RouteGitBranch:
		p = &GitBranches{}
	case RouteSession:
		p = &Session{}
	case RouteMemory:
		p = &Memories{}
	case RouteProject:
		p = &Project{}
	default:
		return Opaque{raw: result}, nil
	}
	if err := json.Unmarshal(result, p); err != nil {
		return nil, err
	}
	return p, nil
}

// normalize strips query strings and trailing slashes from a route.
func normalize(route string) string {
	if i := strings.IndexByte(route, '?'); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
