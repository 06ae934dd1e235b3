// Package domain defines the janitor ports and run records
package domain

import (
	"context"
	"time"
)

// DefaultRetentionDays is how long unconverted ledgers are kept
const DefaultRetentionDays = 7

// RunResult summarizes one janitor day
type RunResult struct {
	Day        string    `json:"day"`
	Deleted    int64     `json:"deleted"`
	Archived   int       `json:"archived"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// RunnerPort drives the daily retention and rollup cycle
type RunnerPort interface {
	// RunOnce processes the oldest day still needing work, false when idle
	RunOnce(ctx context.Context) (RunResult, bool, error)

	// Run loops RunOnce on a cadence until the context ends
	Run(ctx context.Context) error
}

// CleanPort deletes expired unconverted ledgers on demand
type CleanPort interface {
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}
