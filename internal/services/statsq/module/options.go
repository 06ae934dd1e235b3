package module

import (
	"time"

	"toolgate/internal/platform/config"
)

// Options controls the statsq worker
type Options struct {
	Concurrency    int
	QueueTakeBatch int
	RetryBaseMs    int
	MaxAttempts    int
}

// FromConfig reads with STATSQ_ prefix
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("STATSQ_")
	return Options{
		Concurrency:    c.MayInt("WORKER_CONCURRENCY", 2),
		QueueTakeBatch: c.MayInt("QUEUE_TAKE_BATCH", 64),
		RetryBaseMs:    int(c.MayDuration("RETRY_BASE", 500*time.Millisecond).Milliseconds()),
		MaxAttempts:    c.MayInt("MAX_ATTEMPTS", 5),
	}
}
