// Package domain holds the analytics report shapes
package domain

import "time"

// Default report windows in days
const (
	DefaultFunnelDays = 30
	DefaultToolsDays  = 7
	DefaultTopN       = 10
)

// FunnelInput selects the funnel window
type FunnelInput struct {
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=365" example:"30"`
}

// LagSlice is an average time-to-conversion bucket
type LagSlice struct {
	Key        string  `json:"key"`
	AvgMinutes float64 `json:"avg_minutes"`
	Count      int64   `json:"count"`
}

// FunnelReport is the visitor -> limit -> signup funnel
// rates are percentages in [0,100] and are zero when the
// denominator is zero
type FunnelReport struct {
	Days                  int        `json:"days"`
	TotalVisitors         int64      `json:"total_visitors"`
	HitLimit              int64      `json:"hit_limit"`
	Converted             int64      `json:"converted"`
	AvgUsageCount         float64    `json:"avg_usage_count"`
	TotalToolUsage        int64      `json:"total_tool_usage"`
	LimitRate             float64    `json:"limit_rate"`
	ConversionRate        float64    `json:"conversion_rate"`
	OverallConversionRate float64    `json:"overall_conversion_rate"`
	LagByTool             []LagSlice `json:"lag_by_tool"`
	LagByDevice           []LagSlice `json:"lag_by_device"`
}

// ToolsInput selects the tool report window
type ToolsInput struct {
	Days  int `json:"days,omitempty" validate:"omitempty,min=1,max=365" example:"7"`
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"10"`
}

// ToolCount is one row of the popular-tools ranking
type ToolCount struct {
	ToolName       string `json:"tool_name"`
	Category       string `json:"category"`
	Uses           int64  `json:"uses"`
	UniqueVisitors int64  `json:"unique_visitors"`
}

// SignupTool is one tool visitors ran before converting
type SignupTool struct {
	ToolName       string  `json:"tool_name"`
	Count          int64   `json:"count"`
	AvgFileSize    float64 `json:"avg_file_size"`
	UniqueVisitors int64   `json:"unique_visitors"`
}

// ToolsReport ranks tools by usage and by pre-signup appearance
type ToolsReport struct {
	Days         int          `json:"days"`
	Popular      []ToolCount  `json:"popular"`
	BeforeSignup []SignupTool `json:"before_signup"`
}

// DevicesInput selects the device report window
type DevicesInput struct {
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=365" example:"30"`
}

// DeviceSlice is one device bucket with its share of visitors
type DeviceSlice struct {
	DeviceType string  `json:"device_type"`
	Visitors   int64   `json:"visitors"`
	Converted  int64   `json:"converted"`
	Share      float64 `json:"share"`
}

// DevicesReport is the device distribution
type DevicesReport struct {
	Days    int           `json:"days"`
	Devices []DeviceSlice `json:"devices"`
}

// ActiveInput selects the most-active ranking
type ActiveInput struct {
	Days  int `json:"days,omitempty" validate:"omitempty,min=1,max=365" example:"30"`
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"10"`
}

// ActiveVisitor is one row of the most-active ranking
type ActiveVisitor struct {
	VisitorKey string     `json:"visitor_key"`
	DeviceType string     `json:"device_type"`
	TotalUsage int64      `json:"total_usage"`
	HitLimit   bool       `json:"hit_limit"`
	Converted  bool       `json:"converted"`
	LastUseAt  *time.Time `json:"last_use_at,omitempty"`
}

// ActiveReport ranks visitors by lifetime usage
type ActiveReport struct {
	Days     int             `json:"days"`
	Visitors []ActiveVisitor `json:"visitors"`
}

// DailyInput selects the daily trend window
type DailyInput struct {
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=365" example:"30"`
}

// DailyPoint is one day of the funnel trend
// Archived marks points served from the columnar rollup
type DailyPoint struct {
	Day         string `json:"day"`
	Visitors    int64  `json:"visitors"`
	Uses        int64  `json:"uses"`
	LimitHits   int64  `json:"limit_hits"`
	Conversions int64  `json:"conversions"`
	Archived    bool   `json:"archived,omitempty"`
}

// DailyReport is the funnel trend over the window
type DailyReport struct {
	Days  int          `json:"days"`
	Trend []DailyPoint `json:"trend"`
}

// UsageInput selects the per-day per-tool usage window
type UsageInput struct {
	Days int `json:"days,omitempty" validate:"omitempty,min=1,max=365" example:"7"`
}

// UsageRow is one day and tool of operation stats
type UsageRow struct {
	Day             string  `json:"day"`
	ToolName        string  `json:"tool_name"`
	Count           int64   `json:"count"`
	TotalFileSize   int64   `json:"total_file_size"`
	AvgProcessingMs float64 `json:"avg_processing_ms"`
}

// UsageReport is the per-day per-tool usage breakdown
type UsageReport struct {
	Days int        `json:"days"`
	Rows []UsageRow `json:"rows"`
}

// CleanupInput triggers retention deletion
type CleanupInput struct {
	RetentionDays int `json:"retention_days,omitempty" validate:"omitempty,min=1,max=365" example:"7"`
}

// CleanupResult reports what retention removed
type CleanupResult struct {
	RetentionDays int   `json:"retention_days"`
	Deleted       int64 `json:"deleted"`
}
