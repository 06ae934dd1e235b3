package module

import (
	"context"

	"toolgate/internal/services/events/domain"
	esvc "toolgate/internal/services/events/service"
)

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// adaptEventPort exposes service methods as module ports for cross-module usage
type adaptEventPort struct{ svc esvc.Service }

func (a adaptEventPort) Track(ctx context.Context, in domain.TrackInput) (domain.TrackResult, error) {
	return a.svc.Track(ctx, in)
}

func (a adaptEventPort) PatchScreenTime(ctx context.Context, in domain.ScreenTimeInput) (domain.ScreenTimeResult, error) {
	return a.svc.PatchScreenTime(ctx, in)
}

func (a adaptEventPort) SessionCount(ctx context.Context, in domain.SessionCountInput) (domain.SessionCountResult, error) {
	return a.svc.SessionCount(ctx, in)
}
