package module

import (
	"time"

	"toolgate/internal/platform/config"
)

// Options for the janitor module
type Options struct {
	RetentionDays int
	Interval      time.Duration
}

// FromConfig fills options from environment
// CORE_JANITOR_RETENTION_DAYS (default 7) is how long unconverted ledgers live
// CORE_JANITOR_INTERVAL (default 1h) is the pause between idle sweeps
func FromConfig(cfg config.Conf) Options {
	j := cfg.Prefix("CORE_JANITOR_")
	return Options{
		RetentionDays: j.MayInt("RETENTION_DAYS", 7),
		Interval:      j.MayDuration("INTERVAL", time.Hour),
	}
}
