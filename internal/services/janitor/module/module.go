// Package module wires up the janitor service as a modkit.Module
package module

import (
	"toolgate/internal/modkit"
	"toolgate/internal/modkit/httpkit"
	modreg "toolgate/internal/modkit/module"
	"toolgate/internal/modkit/repokit"

	jandom "toolgate/internal/services/janitor/domain"
	janrepo "toolgate/internal/services/janitor/repo"
	janservice "toolgate/internal/services/janitor/service"
)

// Ports exported by the janitor module
type Ports struct {
	Runner  jandom.RunnerPort
	Cleaner jandom.CleanPort
}

// Module implements modkit.Module for the janitor
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs and wires the janitor module using deps.Cfg
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := janservice.New(
		repokit.TxRunner(deps.PG),
		janrepo.NewPG(),
		deps.CH,
		janservice.Config{
			RetentionDays: opts.RetentionDays,
			Interval:      opts.Interval,
		},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc, Cleaner: svc}
	return m
}

// Name returns the module name
func (m *Module) Name() string { return "janitor" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Prefix returns the module config prefix (none)
func (m *Module) Prefix() string { return "" }

// MountRoutes is a no-op: the janitor has no HTTP routes
func (m *Module) MountRoutes(_ httpkit.Router) {}

// Register convenience: allow others to resolve our ports via registry
func Register(deps modkit.Deps) {
	modreg.Register("janitor", New(deps).Ports())
}
