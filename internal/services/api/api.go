// Package api provides the HTTP API for the application
package api

import (
	"toolgate/internal/platform/config"
	"toolgate/internal/platform/logger"
	phttp "toolgate/internal/platform/net/http"
	"toolgate/internal/platform/store"

	"toolgate/internal/modkit"
	"toolgate/internal/modkit/httpkit"
	"toolgate/internal/modkit/module"
	"toolgate/internal/modkit/swaggerkit"

	metamod "toolgate/internal/services/api/meta/module"

	analyticsmod "toolgate/internal/services/analytics/module"
	eventsmod "toolgate/internal/services/events/module"
	visitorsmod "toolgate/internal/services/visitors/module"

	// Worker modules (own the Enqueuer and Cleaner ports)
	janitormod "toolgate/internal/services/janitor/module"
	statsqmod "toolgate/internal/services/statsq/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	// shared deps for modules
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	// Construct the WORKER statsq module first and extract its Enqueuer port
	sqOpts := statsqmod.FromConfig(deps.Cfg)
	workerStatsq := statsqmod.New(deps, sqOpts)
	enq := module.MustPortsOf[statsqmod.Ports](workerStatsq).Enqueuer

	// The janitor owns retention; analytics borrows its Cleaner port
	janitor := janitormod.New(deps)
	cleaner := module.MustPortsOf[janitormod.Ports](janitor).Cleaner

	visitors := visitorsmod.New(deps, modkit.WithPorts(visitorsmod.Ports{Enqueuer: enq}))
	events := eventsmod.New(deps, modkit.WithPorts(eventsmod.Ports{Enqueuer: enq}))
	analytics := analyticsmod.New(deps, modkit.WithPorts(analyticsmod.Ports{Cleaner: cleaner}))

	mods := []module.Module{
		metamod.New(deps),
		visitors,
		events,
		analytics,
		workerStatsq, // include workers so their ports are registered
		janitor,
	}

	// versioned API with a common middleware stack
	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		// Swagger + profiler
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			// register each module's ports under its own name (for cross-module lookups)
			module.Register(m.Name(), m.Ports())

			// mount module routes under its Prefix()
			m.MountRoutes(api)
		}
	})
}
