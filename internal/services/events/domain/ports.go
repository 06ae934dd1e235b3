package domain

import "context"

// ServicePort is consumed by handlers and other modules
type ServicePort interface {
	// Track appends one attempt record; it never gates the tool
	Track(ctx context.Context, in TrackInput) (TrackResult, error)

	// PatchScreenTime sets dwell time on the session's latest event today
	PatchScreenTime(ctx context.Context, in ScreenTimeInput) (ScreenTimeResult, error)

	// SessionCount counts the session's attempts today
	SessionCount(ctx context.Context, in SessionCountInput) (SessionCountResult, error)
}
