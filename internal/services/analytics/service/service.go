// Package service assembles the analytics reports
package service

import (
	"context"
	"time"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/platform/logger"
	"toolgate/internal/services/analytics/domain"
	"toolgate/internal/services/analytics/repo"

	jandom "toolgate/internal/services/janitor/domain"
)

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	Repo    repo.Repo
	binder  repokit.Binder[repo.Repo]
	db      repokit.TxRunner
	archive repo.Archive
	cleaner jandom.CleanPort
}

// Options control service behavior
type Options struct {
	// Archive is optional; daily trends fall back to relational data
	Archive repo.Archive

	// Cleaner is required; retention lives with the janitor
	Cleaner jandom.CleanPort
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("analytics.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("analytics.Service requires a non nil Repo binder")
	}
	if opt.Cleaner == nil {
		panic("analytics.Service requires a non nil CleanPort (janitor)")
	}
	return &Svc{
		Repo:    binder.Bind(db),
		binder:  binder,
		db:      db,
		archive: opt.Archive,
		cleaner: opt.Cleaner,
	}
}

func windowDays(days, def int) (int, time.Time) {
	if days <= 0 {
		days = def
	}
	return days, time.Now().UTC().AddDate(0, 0, -days)
}

// Funnel reports the visitor -> limit -> signup funnel over the window
func (s *Svc) Funnel(ctx context.Context, in domain.FunnelInput) (domain.FunnelReport, error) {
	days, since := windowDays(in.Days, domain.DefaultFunnelDays)

	t, err := s.Repo.Funnel(ctx, since)
	if err != nil {
		return domain.FunnelReport{}, err
	}
	byTool, err := s.Repo.LagByTool(ctx, since)
	if err != nil {
		return domain.FunnelReport{}, err
	}
	byDevice, err := s.Repo.LagByDevice(ctx, since)
	if err != nil {
		return domain.FunnelReport{}, err
	}

	return domain.FunnelReport{
		Days:                  days,
		TotalVisitors:         t.TotalVisitors,
		HitLimit:              t.HitLimit,
		Converted:             t.Converted,
		AvgUsageCount:         t.AvgUsageCount,
		TotalToolUsage:        t.TotalToolUsage,
		LimitRate:             domain.Rate(t.HitLimit, t.TotalVisitors),
		ConversionRate:        domain.Rate(t.Converted, t.HitLimit),
		OverallConversionRate: domain.Rate(t.Converted, t.TotalVisitors),
		LagByTool:             byTool,
		LagByDevice:           byDevice,
	}, nil
}

// Tools ranks tools by successful usage and by pre-signup appearance
func (s *Svc) Tools(ctx context.Context, in domain.ToolsInput) (domain.ToolsReport, error) {
	days, since := windowDays(in.Days, domain.DefaultToolsDays)
	limit := in.Limit
	if limit <= 0 {
		limit = domain.DefaultTopN
	}

	popular, err := s.Repo.PopularTools(ctx, since, limit)
	if err != nil {
		return domain.ToolsReport{}, err
	}
	signup, err := s.Repo.ToolsBeforeSignup(ctx, since, limit)
	if err != nil {
		return domain.ToolsReport{}, err
	}
	return domain.ToolsReport{Days: days, Popular: popular, BeforeSignup: signup}, nil
}

// Devices reports the device distribution with per-device share
func (s *Svc) Devices(ctx context.Context, in domain.DevicesInput) (domain.DevicesReport, error) {
	days, since := windowDays(in.Days, domain.DefaultFunnelDays)

	devices, err := s.Repo.Devices(ctx, since)
	if err != nil {
		return domain.DevicesReport{}, err
	}
	var total int64
	for _, d := range devices {
		total += d.Visitors
	}
	for i := range devices {
		devices[i].Share = domain.Rate(devices[i].Visitors, total)
	}
	return domain.DevicesReport{Days: days, Devices: devices}, nil
}

// Active ranks visitors by lifetime usage
func (s *Svc) Active(ctx context.Context, in domain.ActiveInput) (domain.ActiveReport, error) {
	days, since := windowDays(in.Days, domain.DefaultFunnelDays)
	limit := in.Limit
	if limit <= 0 {
		limit = domain.DefaultTopN
	}

	visitors, err := s.Repo.MostActive(ctx, since, limit)
	if err != nil {
		return domain.ActiveReport{}, err
	}
	return domain.ActiveReport{Days: days, Visitors: visitors}, nil
}

// Daily returns the funnel trend, merging archived days from the
// columnar rollup under the live relational days
func (s *Svc) Daily(ctx context.Context, in domain.DailyInput) (domain.DailyReport, error) {
	days, since := windowDays(in.Days, domain.DefaultFunnelDays)

	live, err := s.Repo.DailyTrend(ctx, since)
	if err != nil {
		return domain.DailyReport{}, err
	}

	points := map[string]domain.DailyPoint{}
	if s.archive != nil {
		from := since.Format("2006-01-02")
		to := time.Now().UTC().Format("2006-01-02")
		archived, err := s.archive.DailyBetween(ctx, from, to)
		if err != nil {
			// the archive is an accelerator, not a source of truth
			logger.Named("analytics").Warn().Err(err).Msg("archive read failed, serving live trend only")
		}
		for _, p := range archived {
			points[p.Day] = p
		}
	}
	for _, p := range live {
		points[p.Day] = p
	}

	trend := make([]domain.DailyPoint, 0, len(points))
	day := since
	for !day.After(time.Now().UTC()) {
		k := day.Format("2006-01-02")
		if p, ok := points[k]; ok {
			trend = append(trend, p)
		}
		day = day.AddDate(0, 0, 1)
	}
	return domain.DailyReport{Days: days, Trend: trend}, nil
}

// Usage breaks operation stats down by day and tool
func (s *Svc) Usage(ctx context.Context, in domain.UsageInput) (domain.UsageReport, error) {
	days, since := windowDays(in.Days, domain.DefaultToolsDays)

	rows, err := s.Repo.UsageByDay(ctx, since)
	if err != nil {
		return domain.UsageReport{}, err
	}
	return domain.UsageReport{Days: days, Rows: rows}, nil
}

// Cleanup triggers retention deletion through the janitor
func (s *Svc) Cleanup(ctx context.Context, in domain.CleanupInput) (domain.CleanupResult, error) {
	days := in.RetentionDays
	if days <= 0 {
		days = jandom.DefaultRetentionDays
	}
	deleted, err := s.cleaner.Cleanup(ctx, days)
	if err != nil {
		return domain.CleanupResult{}, err
	}
	return domain.CleanupResult{RetentionDays: days, Deleted: deleted}, nil
}
