package module

import (
	"context"

	"toolgate/internal/services/visitors/domain"
	vsvc "toolgate/internal/services/visitors/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptVisitorPort exposes service methods as module ports for cross-module usage
type adaptVisitorPort struct{ svc vsvc.Service }

func (a adaptVisitorPort) Check(ctx context.Context, in domain.CheckInput) (domain.CheckResult, error) {
	return a.svc.Check(ctx, in)
}

func (a adaptVisitorPort) Use(ctx context.Context, in domain.UseInput) (domain.UseResult, error) {
	return a.svc.Use(ctx, in)
}

func (a adaptVisitorPort) Convert(ctx context.Context, in domain.ConvertInput) (domain.ConvertResult, error) {
	return a.svc.Convert(ctx, in)
}

func (a adaptVisitorPort) Summary(ctx context.Context, in domain.SummaryInput) (domain.Summary, error) {
	return a.svc.Summary(ctx, in)
}
