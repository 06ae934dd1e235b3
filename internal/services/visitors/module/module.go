// Package module wires visitors into the API using modkit
package module

import (
	"net/http"

	modkit "toolgate/internal/modkit"
	"toolgate/internal/modkit/httpkit"

	sqdom "toolgate/internal/services/statsq/domain"
	vhttp "toolgate/internal/services/visitors/http"
	vrepo "toolgate/internal/services/visitors/repo"
	vsvc "toolgate/internal/services/visitors/service"
)

// Module implements the visitors API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc vsvc.Service
}

// Ports declares the required injected worker port(s) for this API module
type Ports struct {
	Enqueuer sqdom.EnqueuePort
}

// New constructs the visitors module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("visitors"),
		modkit.WithPrefix("/visitors"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Enqueuer == nil {
		panic("visitors module requires Enqueuer port (from services/statsq)")
	}

	svc := vsvc.New(deps.PG, vrepo.NewPG(), vsvc.Options{
		Enqueuer: injected.Enqueuer,
	})

	m := &Module{
		deps:      deps,
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		swaggerOn: b.SwaggerOn,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	m.ports = adaptVisitorPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		vhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return m.name }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return m.prefix }
