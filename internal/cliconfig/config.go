package cliconfig

// Configuration sources, in ascending precedence.
const (
	SourceDefault = "default"
	SourceGlobal  = "global"
	SourceLocal   = "local"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// DefaultServerURL is the control-plane address the dashboard talks to
// when nothing else is configured.
const DefaultServerURL = "http://localhost:8000"

// Profile is a named control-plane target, for switching between local,
// staging and CI deployments without editing the main settings.
type Profile struct {
	// ServerURL is the control-plane base URL.
	ServerURL string `yaml:"serverUrl"`

	// AssetURL overrides where fragment markup is fetched from. Empty
	// means the server URL.
	AssetURL string `yaml:"assetUrl,omitempty"`

	// Description is an optional human-readable note.
	Description string `yaml:"description,omitempty"`
}

// CLIConfig is the resolved dashboard configuration.
type CLIConfig struct {
	// ServerURL is the control-plane base URL.
	ServerURL string `yaml:"serverUrl,omitempty"`

	// AssetURL is where fragment markup is fetched from. Empty means the
	// server URL.
	AssetURL string `yaml:"assetUrl,omitempty"`

	// DataDir is where call history, stats and preferences persist.
	// Empty selects the platform default data directory.
	DataDir string `yaml:"dataDir,omitempty"`

	// LogLevel and LogFormat configure operational logging.
	LogLevel  string `yaml:"logLevel,omitempty"`
	LogFormat string `yaml:"logFormat,omitempty"`

	// HistoryCap bounds the retained call history.
	HistoryCap int `yaml:"historyCap,omitempty"`

	// Sections overrides the navigable section list.
	Sections []string `yaml:"sections,omitempty"`

	// Verbose enables configuration-source reporting.
	Verbose bool `yaml:"verbose,omitempty"`

	// Profiles holds named control-plane targets; CurrentProfile selects
	// one. A selected profile overrides ServerURL and AssetURL.
	Profiles       map[string]*Profile `yaml:"profiles,omitempty"`
	CurrentProfile string              `yaml:"currentProfile,omitempty"`

	// ConfigFile is the explicit config path, when one was given.
	ConfigFile string `yaml:"-"`

	// Sources records which layer set each field.
	Sources map[string]string `yaml:"-"`
}

// NewDefault returns the built-in configuration.
func NewDefault() *CLIConfig {
	return &CLIConfig{
		ServerURL:  DefaultServerURL,
		LogLevel:   "info",
		LogFormat:  "text",
		HistoryCap: 1000,
		Sources: map[string]string{
			"serverUrl":  SourceDefault,
			"logLevel":   SourceDefault,
			"logFormat":  SourceDefault,
			"historyCap": SourceDefault,
		},
	}
}

// Merge overlays src onto dst, tagging every overridden field with the
// given source name.
func Merge(dst, src *CLIConfig, source string) {
	if src == nil {
		return
	}
	if dst.Sources == nil {
		dst.Sources = make(map[string]string)
	}
	if src.ServerURL != "" {
		dst.ServerURL = src.ServerURL
		dst.Sources["serverUrl"] = source
	}
	if src.AssetURL != "" {
		dst.AssetURL = src.AssetURL
		dst.Sources["assetUrl"] = source
	}
	if src.DataDir != "" {
		dst.DataDir = src.DataDir
		dst.Sources["dataDir"] = source
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
		dst.Sources["logLevel"] = source
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
		dst.Sources["logFormat"] = source
	}
	if src.HistoryCap > 0 {
		dst.HistoryCap = src.HistoryCap
		dst.Sources["historyCap"] = source
	}
	if len(src.Sections) > 0 {
		dst.Sections = src.Sections
		dst.Sources["sections"] = source
	}
	if src.Verbose {
		dst.Verbose = true
		dst.Sources["verbose"] = source
	}
	if len(src.Profiles) > 0 {
		if dst.Profiles == nil {
			dst.Profiles = make(map[string]*Profile)
		}
		for name, p := range src.Profiles {
			dst.Profiles[name] = p
		}
		dst.Sources["profiles"] = source
	}
	if src.CurrentProfile != "" {
		dst.CurrentProfile = src.CurrentProfile
		dst.Sources["currentProfile"] = source
	}
}

// ApplyProfile resolves the selected profile, overriding the server and
// asset URLs. An unknown profile name is ignored.
func (c *CLIConfig) ApplyProfile(name string) {
	if name == "" {
		name = c.CurrentProfile
	}
	if name == "" {
		return
	}
	p, ok := c.Profiles[name]
	if !ok || p == nil {
		return
	}
	if p.ServerURL != "" {
		c.ServerURL = p.ServerURL
		c.Sources["serverUrl"] = "profile:" + name
	}
	if p.AssetURL != "" {
		c.AssetURL = p.AssetURL
		c.Sources["assetUrl"] = "profile:" + name
	}
}
