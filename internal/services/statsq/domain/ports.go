// Package domain defines the async stats queue ports and job types
package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Job kinds the worker knows how to handle
const (
	KindToolCounter = "tool_counter"
	KindLimitHit    = "limit_hit"
	KindConversion  = "conversion_recorded"
)

// Job is one queued stats task
type Job struct {
	ID          string
	Kind        string
	Payload     json.RawMessage
	Attempts    int
	RunAfter    time.Time
	LeasedUntil *time.Time
	CreatedAt   time.Time
}

// ToolCounterPayload bumps the rolling per-tool counter
type ToolCounterPayload struct {
	ToolName string `json:"tool_name"`
	Uses     int    `json:"uses"`
}

// LimitHitPayload records a visitor crossing the lifetime ceiling
type LimitHitPayload struct {
	VisitorKey string `json:"visitor_key"`
	ToolName   string `json:"tool_name"`
	DeviceType string `json:"device_type,omitempty"`
}

// ConversionPayload records a signup attribution
type ConversionPayload struct {
	VisitorKey string `json:"visitor_key"`
	UserID     string `json:"user_id"`
	LimitTool  string `json:"limit_tool,omitempty"`
}

// EnqueuePort accepts stats jobs for asynchronous processing
// enqueue failures are the caller's to swallow; stats never gate tools
type EnqueuePort interface {
	Enqueue(ctx context.Context, kind string, payload any) error
}

// WorkerPort (run loop) is separate
type WorkerPort interface {
	Run(ctx context.Context) error
}
