// Package module wires analytics into the API using modkit
package module

import (
	"net/http"

	modkit "toolgate/internal/modkit"
	"toolgate/internal/modkit/httpkit"

	ahttp "toolgate/internal/services/analytics/http"
	arepo "toolgate/internal/services/analytics/repo"
	asvc "toolgate/internal/services/analytics/service"
	jandom "toolgate/internal/services/janitor/domain"
)

// Module implements the analytics API module
type Module struct {
	deps   modkit.Deps
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     any
	swaggerOn bool

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc asvc.Service
}

// Ports declares the required injected port(s) for this API module
type Ports struct {
	Cleaner jandom.CleanPort
}

// New constructs the analytics module
func New(deps modkit.Deps, opts ...modkit.Option) modkit.Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("analytics"),
		modkit.WithPrefix("/analytics"),
	}, opts...)...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Cleaner == nil {
		panic("analytics module requires Cleaner port (from services/janitor)")
	}

	svc := asvc.New(deps.PG, arepo.NewPG(), asvc.Options{
		Archive: arepo.NewArchive(deps.CH),
		Cleaner: injected.Cleaner,
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
	m.ports = adaptAnalyticsPort{svc: svc}

	external := b.Register
	m.register = func(r httpkit.Router) {
		ahttp.Register(r, m.svc)
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
