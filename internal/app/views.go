package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/danyQe/codedash/pkg/api"
	"github.com/danyQe/codedash/pkg/client"
	"github.com/danyQe/codedash/pkg/logging"
	"github.com/danyQe/codedash/pkg/telemetry"
)

// registerViews binds the built-in section views. Each publishes its data
// under "views.<section>" in the state container. Callers may replace any
// binding through Loader.Registry() before Start.
func (a *App) registerViews() {
	reg := a.Loader.Registry()
	reg.Register("overview", &routeView{app: a, route: api.RouteHealth, action: "viewOverview", statePath: "views.overview"})
	reg.Register("git", &routeView{app: a, route: api.RouteGitStatus, action: "viewGit", statePath: "views.git"})
	reg.Register("sessions", &routeView{app: a, route: api.RouteSession, action: "viewSessions", statePath: "views.sessions"})
	reg.Register("memory", &routeView{app: a, route: api.RouteMemory, action: "viewMemory", statePath: "views.memory"})
	reg.Register("files", &routeView{app: a, route: api.RouteDirectory, action: "viewFiles", statePath: "views.files"})
	reg.Register("telemetry", &telemetryView{app: a})
	reg.Register("logs", &logsView{app: a})
	reg.Register("settings", &settingsView{app: a})
}

// routeView fetches one control-plane route when its section becomes
// active and publishes the decoded payload into the state container.
type routeView struct {
	app       *App
	route     string
	action    string
	statePath string
}

func (v *routeView) Init(ctx context.Context) error {
	res := v.app.Client.Request(ctx, http.MethodGet, v.route, &client.Options{UserAction: v.action})
	if !res.Success {
		return fmt.Errorf("%s: %s", v.route, res.Error)
	}

	payload, apiErr, err := api.Decode(v.route, res.Raw)
	if err != nil {
		return fmt.Errorf("%s: %w", v.route, err)
	}
	if apiErr != "" {
		return errors.New(apiErr)
	}
	return v.app.State.Set(v.statePath, payload)
}

func (*routeView) Teardown() {}

// telemetryView mirrors the aggregate call statistics into state and keeps
// them live while the section is visible.
type telemetryView struct {
	app   *App
	unsub func()
}

func (v *telemetryView) Init(context.Context) error {
	if err := v.publish(); err != nil {
		return err
	}
	v.unsub = v.app.Telemetry.Subscribe(func(telemetry.Notification) {
		_ = v.publish()
	})
	return nil
}

func (v *telemetryView) publish() error {
	return v.app.State.Set("views.telemetry", v.app.Telemetry.GetStats())
}

func (v *telemetryView) Teardown() {
	if v.unsub != nil {
		v.unsub()
		v.unsub = nil
	}
}

// logsView publishes the retained client-side log records.
type logsView struct {
	app *App
}

func (v *logsView) Init(context.Context) error {
	records := []logging.RingRecord{}
	if v.app.LogRing != nil {
		records = v.app.LogRing.Records()
	}
	return v.app.State.Set("views.logs", records)
}

func (*logsView) Teardown() {}

// settingsView publishes the current preferences record.
type settingsView struct {
	app *App
}

func (v *settingsView) Init(context.Context) error {
	return v.app.State.Set("views.settings", v.app.Preferences())
}

func (*settingsView) Teardown() {}
