// Package service provides the janitor implementation
package service

import (
	"context"
	"time"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/platform/logger"
	"toolgate/internal/platform/store"
	jandom "toolgate/internal/services/janitor/domain"
)

// Config controls cadence and retention behavior
type Config struct {
	// RetentionDays is the unconverted-ledger retention window
	RetentionDays int

	// Interval is the pause between idle sweeps of Run
	Interval time.Duration
}

// Service wires TxRunner + Binder into the janitor operations
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[jandom.StorageRepo]
	CH     store.Clickhouse
	Cfg    Config
}

// New constructs the janitor service
func New(db repokit.TxRunner, binder repokit.Binder[jandom.StorageRepo], ch store.Clickhouse, cfg Config) *Service {
	if db == nil {
		panic("janitor.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("janitor.Service requires a non nil Repo binder")
	}
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = jandom.DefaultRetentionDays
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	return &Service{DB: db, Binder: binder, CH: ch, Cfg: cfg}
}

// Cleanup deletes expired unconverted ledgers on demand
func (s *Service) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		retentionDays = s.Cfg.RetentionDays
	}
	var deleted int64
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		n, e := s.Binder.Bind(q).DeleteExpired(ctx, retentionDays)
		deleted = n
		return e
	})
	if err != nil {
		return 0, err
	}
	logger.Named("janitor").Info().Int("retention_days", retentionDays).
		Int64("deleted", deleted).Msg("retention cleanup")
	return deleted, nil
}

// RunOnce processes the oldest day still needing work
// the day's funnel is rolled into the columnar archive, then expired
// ledgers are pruned; ok=false means fully caught up
func (s *Service) RunOnce(ctx context.Context) (jandom.RunResult, bool, error) {
	l := logger.Named("janitor")

	var (
		day time.Time
		ok  bool
	)
	err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		d, claimed, e := s.Binder.Bind(q).NextDayNeedingWork(ctx)
		day, ok = d, claimed
		return e
	})
	if err != nil || !ok {
		return jandom.RunResult{}, false, err
	}

	start := time.Now().UTC()
	res := jandom.RunResult{Day: day.Format("2006-01-02"), StartedAt: start}

	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).Start(ctx, day)
	}); err != nil {
		return jandom.RunResult{}, false, err
	}

	runErr := s.applyDay(ctx, day, &res)

	status := "done"
	errText := ""
	if runErr != nil {
		status = "error"
		errText = runErr.Error()
	}
	res.FinishedAt = time.Now().UTC()

	finErr := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		return s.Binder.Bind(q).Finish(ctx, day, jandom.FinishInfo{
			Status:   status,
			Deleted:  res.Deleted,
			Archived: res.Archived,
			TotalMS:  int(res.FinishedAt.Sub(start).Milliseconds()),
			ErrText:  errText,
		})
	})
	if runErr != nil {
		l.Error().Err(runErr).Str("day", res.Day).Msg("janitor day failed")
		return res, true, runErr
	}
	if finErr != nil {
		return res, true, finErr
	}
	l.Info().Str("day", res.Day).Int64("deleted", res.Deleted).
		Int("archived", res.Archived).Msg("janitor day done")
	return res, true, nil
}

func (s *Service) applyDay(ctx context.Context, day time.Time, res *jandom.RunResult) error {
	var funnel jandom.FunnelDay
	if err := s.DB.Tx(ctx, func(q repokit.Queryer) error {
		f, e := s.Binder.Bind(q).FunnelForDay(ctx, day)
		funnel = f
		return e
	}); err != nil {
		return err
	}

	if s.CH != nil && funnel.Visitors > 0 {
		rows := [][]any{{
			funnel.Day, funnel.Visitors, funnel.Uses, funnel.LimitHits, funnel.Conversions,
		}}
		if err := s.CH.Insert(ctx, "toolgate.funnel_daily", rows); err != nil {
			return err
		}
		res.Archived = 1
	}

	return s.DB.Tx(ctx, func(q repokit.Queryer) error {
		n, e := s.Binder.Bind(q).DeleteExpired(ctx, s.Cfg.RetentionDays)
		res.Deleted = n
		return e
	})
}

// Run loops RunOnce until the context ends, sleeping when caught up
func (s *Service) Run(ctx context.Context) error {
	l := logger.Named("janitor")
	ticker := time.NewTicker(s.Cfg.Interval)
	defer ticker.Stop()

	for {
		// drain the backlog before sleeping
		for {
			_, ok, err := s.RunOnce(ctx)
			if err != nil {
				l.Error().Err(err).Msg("janitor sweep error")
				break
			}
			if !ok {
				break
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
