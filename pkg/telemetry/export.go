package telemetry

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/pretty"
)

// ExportPayload is the JSON export shape.
type ExportPayload struct {
	ExportDate time.Time `json:"exportDate"`
	Stats      Summary   `json:"stats"`
	History    []*Entry  `json:"history"`
}

// csvHeader is the fixed CSV header row.
const csvHeader = "Timestamp,Route,Method,Status,Duration,User Action"

// Export returns the filtered history and current stats as pretty-printed
// JSON.
func (e *Engine) Export(filter *Filter) ([]byte, error) {
	history, err := e.History(filter)
	if err != nil {
		return nil, err
	}

	payload := ExportPayload{
		ExportDate: time.Now(),
		Stats:      e.GetStats(),
		History:    history,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return pretty.Pretty(raw), nil
}

// ExportCSV returns the filtered history as CSV: the fixed header followed
// by one quoted-field row per entry.
func (e *Engine) ExportCSV(filter *Filter) ([]byte, error) {
	history, err := e.History(filter)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')

	for _, entry := range history {
		fields := []string{
			entry.Timestamp.Format(time.RFC3339),
			entry.Route,
			entry.Method,
			string(entry.Status),
			formatDuration(entry.DurationMs),
			entry.UserAction,
		}
		for i, f := range fields {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quoteCSV(f))
		}
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// quoteCSV wraps a field in double quotes, doubling embedded quotes.
func quoteCSV(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// formatDuration renders a millisecond duration for the CSV row.
func formatDuration(ms int64) string {
	return strconv.FormatInt(ms, 10) + "ms"
}
