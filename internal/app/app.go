package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danyQe/codedash/pkg/bus"
	"github.com/danyQe/codedash/pkg/client"
	"github.com/danyQe/codedash/pkg/fragment"
	"github.com/danyQe/codedash/pkg/logging"
	"github.com/danyQe/codedash/pkg/prefs"
	"github.com/danyQe/codedash/pkg/state"
	"github.com/danyQe/codedash/pkg/store"
	"github.com/danyQe/codedash/pkg/telemetry"
)

// DefaultSections is the built-in navigation order.
var DefaultSections = []string{
	"overview", "search", "git", "sessions", "memory",
	"files", "logs", "telemetry", "settings",
}

// Config assembles an App.
type Config struct {
	// ServerURL is the control-plane base URL.
	ServerURL string

	// AssetURL is where fragment markup is fetched from. Empty means
	// ServerURL.
	AssetURL string

	// DataDir is where history, stats, preferences and state persist.
	// Empty with InMemory false selects the platform default directory.
	DataDir string

	// InMemory disables persistence entirely; everything lives in RAM.
	InMemory bool

	// HistoryCap bounds retained call history. Zero uses the engine
	// default.
	HistoryCap int

	// Sections overrides the navigation order. Empty uses
	// DefaultSections.
	Sections []string

	// Content receives rendered section markup. Nil installs an
	// in-memory container.
	Content fragment.Container

	// Location tracks the active section across reloads. Nil installs an
	// in-memory location.
	Location fragment.Location

	// HTTPClient overrides the transport for both API calls and fragment
	// fetches.
	HTTPClient *http.Client

	// Logger is the operational logger. Nil discards logs.
	Logger *slog.Logger

	// LogRing, when set, retains recent log records for the logs section.
	LogRing *logging.RingHandler
}

// App is the assembled dashboard runtime.
type App struct {
	Store     store.KV
	Bus       *bus.Bus
	State     *state.Container
	Telemetry *telemetry.Engine
	Client    *client.Client
	Loader    *fragment.Loader
	Router    *fragment.Router
	LogRing   *logging.RingHandler

	log      *slog.Logger
	prefs    prefs.Preferences
	sections []string
}

// New assembles the runtime. Construction wires dependencies but performs
// no I/O beyond opening the store; call Start to hydrate persisted data
// and land on the initial section.
func New(cfg Config) (*App, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}

	kv, err := openStore(cfg, log)
	if err != nil {
		return nil, err
	}

	b := bus.New()
	b.SetLogger(log)

	st := state.New()
	st.SetLogger(log)

	tel := telemetry.New(telemetry.Config{
		HistoryCap: cfg.HistoryCap,
		Store:      kv,
	})
	tel.SetLogger(log)

	// Clears are announced on the bus so views outside the telemetry
	// section can react.
	tel.Subscribe(func(n telemetry.Notification) {
		if n.Cleared {
			b.Emit(bus.EventTelemetryCleared)
		}
	})

	c := client.New(client.Config{
		BaseURL:    cfg.ServerURL,
		HTTPClient: cfg.HTTPClient,
		Telemetry:  tel,
		Bus:        b,
	})
	c.SetLogger(log)

	assetURL := cfg.AssetURL
	if assetURL == "" {
		assetURL = cfg.ServerURL
	}
	content := cfg.Content
	if content == nil {
		content = fragment.NewRecordingContainer()
	}
	loader := fragment.NewLoader(fragment.LoaderConfig{
		Fetcher: fragment.NewHTTPFetcher(assetURL, cfg.HTTPClient),
		Bus:     b,
		State:   st,
		Content: content,
	})
	loader.SetLogger(log)

	location := cfg.Location
	if location == nil {
		location = &fragment.MemoryLocation{}
	}
	sections := cfg.Sections
	if len(sections) == 0 {
		sections = DefaultSections
	}
	router := fragment.NewRouter(fragment.RouterConfig{
		Loader:   loader,
		Bus:      b,
		Location: location,
		Sections: sections,
	})
	router.SetLogger(log)

	a := &App{
		Store:     kv,
		Bus:       b,
		State:     st,
		Telemetry: tel,
		Client:    c,
		Loader:    loader,
		Router:    router,
		LogRing:   cfg.LogRing,
		log:       log,
		sections:  sections,
	}
	a.registerViews()
	return a, nil
}

func openStore(cfg Config, log *slog.Logger) (store.KV, error) {
	if cfg.InMemory {
		return store.NewMemoryStore(), nil
	}
	fs, err := store.NewFileStore(store.Config{DataDir: cfg.DataDir})
	if err != nil {
		return nil, err
	}
	fs.SetLogger(log)
	return fs, nil
}

// Start hydrates persisted data and navigates to the initial section: the
// one recorded in the location fragment, or the first declared section.
func (a *App) Start(ctx context.Context) {
	a.Telemetry.LoadHistory()
	a.State.Load(a.Store)
	a.prefs = prefs.Load(a.Store, a.log)

	a.Router.NavigateFromLocation(ctx)
	a.log.Info("dashboard runtime started",
		"instance", a.Client.InstanceID(),
		"sections", len(a.sections))
}

// Preferences returns the loaded preferences record.
func (a *App) Preferences() prefs.Preferences {
	return a.prefs
}

// SetPreferences replaces and persists the preferences record.
func (a *App) SetPreferences(p prefs.Preferences) {
	a.prefs = p
	prefs.Save(a.Store, p, a.log)
}

// Close flushes persisted data and releases the store.
func (a *App) Close() error {
	a.Telemetry.Persist()
	a.State.Save(a.Store)
	prefs.Save(a.Store, a.prefs, a.log)
	return a.Store.Close()
}
