package domain

import "time"

// Signals carries the raw identity signals every visitor call starts from
type Signals struct {
	CookieID  string `json:"cookie_id,omitempty" validate:"omitempty,max=128" example:"anon_9f8e7d6c"`
	IP        string `json:"ip,omitempty" validate:"omitempty,max=64" example:"203.0.113.5"`
	UserAgent string `json:"user_agent,omitempty" validate:"omitempty,max=1024"`
	Referrer  string `json:"referrer,omitempty" validate:"omitempty,max=2048"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

// CheckInput asks whether the visitor may run another tool
type CheckInput struct {
	Signals Signals `json:"signals"`
}

// CheckResult is the limit decision for a visitor
// when Trackable is false every gate reports open
type CheckResult struct {
	VisitorKey     string `json:"visitor_key,omitempty"`
	TrackingMethod string `json:"tracking_method,omitempty" example:"cookie"`
	Trackable      bool   `json:"trackable"`
	CurrentUsage   int    `json:"current_usage"`
	MaxUsage       int    `json:"max_usage" example:"2"`
	CanUse         bool   `json:"can_use"`
	AtLimit        bool   `json:"at_limit"`
	IsNewVisitor   bool   `json:"is_new_visitor"`
}

// FileMeta describes the file being processed, for duplicate detection
type FileMeta struct {
	ContentHash string `json:"content_hash" validate:"omitempty,len=64,hexadecimal"`
	FileName    string `json:"file_name,omitempty" validate:"omitempty,max=512"`
	FileSize    int64  `json:"file_size,omitempty" validate:"omitempty,min=0"`
}

// UseInput records one tool use against the ledger
type UseInput struct {
	Signals       Signals   `json:"signals"`
	ToolName      string    `json:"tool_name" validate:"required,min=1,max=64" example:"merge"`
	FileCount     int       `json:"file_count,omitempty" validate:"omitempty,min=1"`
	TotalFileSize int64     `json:"total_file_size,omitempty" validate:"omitempty,min=0"`
	File          *FileMeta `json:"file,omitempty"`
}

// UseResult reports the post-increment ledger state
type UseResult struct {
	VisitorKey   string `json:"visitor_key,omitempty"`
	Trackable    bool   `json:"trackable"`
	IsDuplicate  bool   `json:"is_duplicate"`
	CurrentUsage int    `json:"current_usage"`
	MaxUsage     int    `json:"max_usage" example:"2"`
	HitLimit     bool   `json:"hit_limit"`
	AtLimit      bool   `json:"at_limit"`
}

// ConvertInput attributes a signup back to the visitor that produced it
type ConvertInput struct {
	Signals   Signals `json:"signals"`
	UserID    string  `json:"user_id" validate:"required,min=1,max=64"`
	SessionID string  `json:"session_id,omitempty" validate:"omitempty,max=128"`
}

// ConvertResult reports what, if anything, was attributed
type ConvertResult struct {
	Attributed    bool       `json:"attributed"`
	AlreadyDone   bool       `json:"already_done"`
	ConvertedAt   *time.Time `json:"converted_at,omitempty"`
	LimitToolName string     `json:"limit_tool,omitempty"`
	MinutesToConv float64    `json:"minutes_to_conversion,omitempty"`
}

// SummaryInput fetches the usage summary for a visitor key
type SummaryInput struct {
	Signals Signals `json:"signals"`
}

// SummaryTool is one tool line in a visitor summary
type SummaryTool struct {
	ToolName  string    `json:"tool_name"`
	UsedAt    time.Time `json:"used_at"`
	FileCount int       `json:"file_count"`
}

// Summary is the admin-facing view of one ledger
type Summary struct {
	VisitorKey   string        `json:"visitor_key"`
	Found        bool          `json:"found"`
	CurrentUsage int           `json:"current_usage"`
	MaxUsage     int           `json:"max_usage" example:"2"`
	CanUse       bool          `json:"can_use"`
	ToolsUsed    []SummaryTool `json:"tools_used"`
	HitLimit     bool          `json:"hit_limit"`
	Converted    bool          `json:"converted"`
	DeviceType   string        `json:"device_type,omitempty"`
	FirstUseAt   *time.Time    `json:"first_use_at,omitempty"`
	LastUseAt    *time.Time    `json:"last_use_at,omitempty"`
}
