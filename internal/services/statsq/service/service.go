// Package service implements the stats queue worker and enqueue service
package service

import (
	"context"
	"encoding/json"
	"time"

	"toolgate/internal/modkit"
	"toolgate/internal/modkit/repokit"

	dom "toolgate/internal/services/statsq/domain"
	sqrepo "toolgate/internal/services/statsq/repo"
)

// Service implements both worker+enqueue ports
type Service interface {
	dom.WorkerPort
	dom.EnqueuePort
}

// Config controls the worker
type Config struct {
	Concurrency    int
	QueueTakeBatch int
	RetryBaseMs    int
	MaxAttempts    int
}

// Svc implements the stats queue worker and enqueue service
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[sqrepo.Repo]
	repo   sqrepo.Repo

	cfg  Config
	deps modkit.Deps
}

// New constructs the service
func New(deps modkit.Deps, cfg Config) *Svc {
	b := sqrepo.NewPG()
	return &Svc{
		db:     deps.PG,
		binder: b,
		repo:   b.Bind(deps.PG),
		cfg:    cfg,
		deps:   deps,
	}
}

// Enqueue serializes the payload and inserts one job
func (s *Svc) Enqueue(ctx context.Context, kind string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.repo.Enqueue(ctx, kind, raw)
	return err
}

func durationMs(ms int) time.Duration {
	if ms <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
