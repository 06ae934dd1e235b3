package domain

// TrackInput records one tool attempt
type TrackInput struct {
	ToolName      string `json:"tool_name" validate:"required,min=1,max=64" example:"merge"`
	ActorID       string `json:"actor_id,omitempty" validate:"omitempty,max=64"`
	SessionID     string `json:"session_id,omitempty" validate:"omitempty,max=128"`
	CookieID      string `json:"cookie_id,omitempty" validate:"omitempty,max=128"`
	FileCount     int    `json:"file_count,omitempty" validate:"omitempty,min=0"`
	TotalFileSize int64  `json:"total_file_size,omitempty" validate:"omitempty,min=0"`
	ProcessingMs  int64  `json:"processing_ms,omitempty" validate:"omitempty,min=0"`
	ScreenTimeSec int    `json:"screen_time_sec,omitempty" validate:"omitempty,min=0"`
	Completed     bool   `json:"completed,omitempty"`
	Success       bool   `json:"success"`
	ErrorMessage  string `json:"error_message,omitempty" validate:"omitempty,max=2048"`
	UserAgent     string `json:"user_agent,omitempty" validate:"omitempty,max=1024"`
	IP            string `json:"ip,omitempty" validate:"omitempty,max=64"`
}

// TrackResult echoes the stored event identity
type TrackResult struct {
	EventID      string `json:"event_id"`
	ToolCategory string `json:"tool_category"`
	DeviceType   string `json:"device_type"`
}

// ScreenTimeInput patches dwell time onto a session's latest event
type ScreenTimeInput struct {
	SessionID     string `json:"session_id" validate:"required,min=1,max=128"`
	ScreenTimeSec int    `json:"screen_time_sec" validate:"required,min=1"`
}

// ScreenTimeResult reports whether an event was patched
type ScreenTimeResult struct {
	Updated bool `json:"updated"`
}

// SessionCountInput asks how many attempts a session made today
type SessionCountInput struct {
	SessionID string `json:"session_id" validate:"required,min=1,max=128"`
}

// SessionCountResult is today's per-session attempt count
type SessionCountResult struct {
	SessionID string `json:"session_id"`
	Count     int    `json:"count"`
}
