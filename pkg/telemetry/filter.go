package telemetry

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// Filter selects history entries. All criteria are optional and combine
// with AND semantics; a zero Filter matches everything.
type Filter struct {
	// Route matches the entry route exactly.
	Route string

	// Status matches the entry status exactly.
	Status Status

	// Method matches the entry method exactly.
	Method string

	// From and To bound the entry timestamp, inclusive. Zero values are
	// open ends.
	From time.Time
	To   time.Time

	// Search is a case-insensitive substring matched against the route,
	// the user-action label, and the serialized request/response.
	Search string

	// Where is an optional expression evaluated per entry, e.g.
	// `durationMs > 100 && status == "error"`. Available fields: route,
	// method, status, statusCode, durationMs, userAction.
	Where string
}

// compile prepares the Where program, if any.
func (f *Filter) compile() (*vm.Program, error) {
	if f == nil || f.Where == "" {
		return nil, nil
	}
	program, err := expr.Compile(f.Where, expr.Env(whereEnv(&Entry{})), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid where expression: %w", err)
	}
	return program, nil
}

// matches reports whether e satisfies the filter's plain criteria.
func (f *Filter) matches(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.Route != "" && e.Route != f.Route {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.Method != "" && e.Method != f.Method {
		return false
	}
	if !f.From.IsZero() && e.Timestamp.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && e.Timestamp.After(f.To) {
		return false
	}
	if f.Search != "" && !searchMatches(e, f.Search) {
		return false
	}
	return true
}

// searchMatches performs the case-insensitive substring search across the
// route, the user-action label, and the serialized payloads.
func searchMatches(e *Entry, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(e.Route), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(e.UserAction), needle) {
		return true
	}
	for _, payload := range []any{e.Request, e.Response} {
		if payload == nil {
			continue
		}
		raw, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		if strings.Contains(strings.ToLower(string(raw)), needle) {
			return true
		}
	}
	return false
}

// whereEnv exposes an entry to the Where expression.
func whereEnv(e *Entry) map[string]any {
	return map[string]any{
		"route":      e.Route,
		"method":     e.Method,
		"status":     string(e.Status),
		"statusCode": e.StatusCode,
		"durationMs": e.DurationMs,
		"userAction": e.UserAction,
	}
}

// whereMatches evaluates the compiled Where program against e. Evaluation
// faults exclude the entry rather than failing the whole query.
func whereMatches(program *vm.Program, e *Entry) bool {
	if program == nil {
		return true
	}
	out, err := expr.Run(program, whereEnv(e))
	if err != nil {
		return false
	}
	ok, _ := out.(bool)
	return ok
}
