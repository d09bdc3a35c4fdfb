// Package prefs persists user preferences for the dashboard through the
// store adapter. A missing or unreadable record loads as zero-value
// preferences; callers treat absent fields as defaults.
package prefs

import (
	"encoding/json"
	"log/slog"

	"github.com/danyQe/codedash/pkg/store"
)

// Preferences is the durable user preferences record.
type Preferences struct {
	AutoRefresh      bool   `json:"autoRefresh,omitempty"`
	RefreshInterval  int    `json:"refreshInterval,omitempty"` // milliseconds
	CompactMode      bool   `json:"compactMode,omitempty"`
	ShowTimestamps   bool   `json:"showTimestamps,omitempty"`
	Theme            string `json:"theme,omitempty"` // light, dark, system
	SidebarCollapsed bool   `json:"sidebarCollapsed,omitempty"`
}

// Load reads preferences from the store adapter. Absence or a parse
// failure yields zero-value preferences, never an error.
func Load(kv store.KV, log *slog.Logger) Preferences {
	var p Preferences

	raw, ok := kv.Get(store.KeyPreferences)
	if !ok {
		return p
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		if log != nil {
			log.Warn("preferences unreadable, using defaults", "error", err)
		}
		return Preferences{}
	}
	return p
}

// Save writes preferences through the store adapter. Failures are logged
// and swallowed.
func Save(kv store.KV, p Preferences, log *slog.Logger) {
	raw, err := json.Marshal(p)
	if err != nil {
		if log != nil {
			log.Warn("preferences serialization failed", "error", err)
		}
		return
	}
	if err := kv.Set(store.KeyPreferences, raw); err != nil && log != nil {
		log.Warn("preferences save failed", "error", err)
	}
}
