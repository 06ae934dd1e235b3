package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	Funnel(ctx context.Context, in FunnelInput) (FunnelReport, error)
	Tools(ctx context.Context, in ToolsInput) (ToolsReport, error)
	Devices(ctx context.Context, in DevicesInput) (DevicesReport, error)
	Active(ctx context.Context, in ActiveInput) (ActiveReport, error)
	Daily(ctx context.Context, in DailyInput) (DailyReport, error)
	Usage(ctx context.Context, in UsageInput) (UsageReport, error)
	Cleanup(ctx context.Context, in CleanupInput) (CleanupResult, error)
}

// Rate returns part/whole as a percentage, zero when whole is zero
func Rate(part, whole int64) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
