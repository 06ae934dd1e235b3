package module

import (
	"context"

	"toolgate/internal/services/analytics/domain"
	asvc "toolgate/internal/services/analytics/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptAnalyticsPort exposes service methods as module ports for cross-module usage
type adaptAnalyticsPort struct{ svc asvc.Service }

func (a adaptAnalyticsPort) Funnel(ctx context.Context, in domain.FunnelInput) (domain.FunnelReport, error) {
	return a.svc.Funnel(ctx, in)
}

func (a adaptAnalyticsPort) Daily(ctx context.Context, in domain.DailyInput) (domain.DailyReport, error) {
	return a.svc.Daily(ctx, in)
}
