// Package domain holds the operation event model
package domain

import (
	"time"

	ident "toolgate/internal/services/ident/domain"
)

// Event is one append-only record of a tool attempt
type Event struct {
	ID            string
	ActorID       string
	SessionID     string
	VisitorKey    string
	ToolName      string
	ToolCategory  string
	FileCount     int
	TotalFileSize int64
	ProcessingMs  int64
	ScreenTimeSec int
	Completed     bool
	Success       bool
	ErrorMessage  string
	DeviceType    ident.DeviceType
	UserAgent     string
	IP            string
	CreatedAt     time.Time
}
