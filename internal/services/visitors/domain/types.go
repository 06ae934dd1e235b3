// Package domain holds the visitor ledger model and the pure limit logic
package domain

import (
	"time"

	ident "toolgate/internal/services/ident/domain"
)

// FileRecord is one processed file remembered for duplicate detection
type FileRecord struct {
	ContentHash string    `json:"hash"`
	FileName    string    `json:"name"`
	FileSize    int64     `json:"size"`
	ToolName    string    `json:"tool"`
	ProcessedAt time.Time `json:"at"`
}

// ToolUse is one entry in a ledger's tool history
type ToolUse struct {
	ToolName      string    `json:"tool"`
	UsedAt        time.Time `json:"at"`
	FileCount     int       `json:"files"`
	TotalFileSize int64     `json:"bytes"`
}

// Conversion tracks the limit latch and the signup attribution
type Conversion struct {
	HitLimit           bool       `json:"hit_limit"`
	HitLimitAt         *time.Time `json:"hit_limit_at,omitempty"`
	LimitToolName      string     `json:"limit_tool,omitempty"`
	Converted          bool       `json:"converted"`
	ConvertedAt        *time.Time `json:"converted_at,omitempty"`
	ConvertedUserID    string     `json:"converted_user_id,omitempty"`
	ConvertedSessionID string     `json:"converted_session_id,omitempty"`
}

// Session is soft telemetry, never authoritative for limit decisions
type Session struct {
	SessionID     string     `json:"session_id,omitempty"`
	LastActivity  *time.Time `json:"last_activity,omitempty"`
	PagesVisited  []string   `json:"pages_visited,omitempty"`
	TimeOnSiteSec int        `json:"time_on_site_sec,omitempty"`
}

// Ledger is the per-visitor record of lifetime usage and conversion state
// container fields are always present, possibly empty, never nil-checked
type Ledger struct {
	ID           string
	VisitorKey   string
	Kind         ident.IDKind
	CookieID     string
	IP           string
	LifetimeUses int
	FirstUseAt   *time.Time
	LastUseAt    *time.Time
	DeviceType   ident.DeviceType
	UserAgent    string
	Referrer     string
	RecentFiles  []FileRecord
	ToolHistory  []ToolUse
	Conversion   Conversion
	Session      Session
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
