package domain

import (
	"context"
	"time"
)

// FunnelDay is one day of ledger activity bound for the archive
type FunnelDay struct {
	Day         string
	Visitors    int64
	Uses        int64
	LimitHits   int64
	Conversions int64
}

// FinishInfo records the outcome of one janitor day
type FinishInfo struct {
	Status   string
	Deleted  int64
	Archived int
	TotalMS  int
	ErrText  string
}

// StorageRepo is the relational surface the janitor drives
type StorageRepo interface {
	// NextDayNeedingWork claims the oldest finished day without a
	// completed run, ok=false when fully caught up
	NextDayNeedingWork(ctx context.Context) (time.Time, bool, error)

	// Start transitions the day's run row to running
	Start(ctx context.Context, day time.Time) error

	// Finish records the run outcome and releases the day
	Finish(ctx context.Context, day time.Time, info FinishInfo) error

	// FunnelForDay aggregates ledger activity for one day
	FunnelForDay(ctx context.Context, day time.Time) (FunnelDay, error)

	// DeleteExpired removes unconverted ledgers older than the window
	DeleteExpired(ctx context.Context, retentionDays int) (int64, error)
}
