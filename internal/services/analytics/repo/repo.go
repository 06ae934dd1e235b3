// Package repo provides postgres and clickhouse access for analytics
package repo

import (
	"context"
	"time"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/services/analytics/domain"
)

// FunnelTotals are the raw funnel counters over a window
type FunnelTotals struct {
	TotalVisitors  int64
	HitLimit       int64
	Converted      int64
	AvgUsageCount  float64
	TotalToolUsage int64
}

// Repo is the relational analytics surface
type Repo interface {
	Funnel(ctx context.Context, since time.Time) (FunnelTotals, error)
	LagByTool(ctx context.Context, since time.Time) ([]domain.LagSlice, error)
	LagByDevice(ctx context.Context, since time.Time) ([]domain.LagSlice, error)
	Devices(ctx context.Context, since time.Time) ([]domain.DeviceSlice, error)
	PopularTools(ctx context.Context, since time.Time, limit int) ([]domain.ToolCount, error)
	ToolsBeforeSignup(ctx context.Context, since time.Time, limit int) ([]domain.SignupTool, error)
	MostActive(ctx context.Context, since time.Time, limit int) ([]domain.ActiveVisitor, error)
	DailyTrend(ctx context.Context, since time.Time) ([]domain.DailyPoint, error)
	UsageByDay(ctx context.Context, since time.Time) ([]domain.UsageRow, error)
}

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the Repo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func (r *queries) Funnel(ctx context.Context, since time.Time) (FunnelTotals, error) {
	const sql = `
select
  count(*),
  count(*) filter (where hit_limit),
  count(*) filter (where converted),
  coalesce(avg(lifetime_use_count), 0),
  coalesce(sum(lifetime_use_count), 0)
from visitor_ledgers
where created_at >= $1
`
	var t FunnelTotals
	err := r.q.QueryRow(ctx, sql, since).
		Scan(&t.TotalVisitors, &t.HitLimit, &t.Converted, &t.AvgUsageCount, &t.TotalToolUsage)
	return t, err
}

func (r *queries) LagByTool(ctx context.Context, since time.Time) ([]domain.LagSlice, error) {
	const sql = `
select coalesce(limit_tool, 'unknown'),
       avg(extract(epoch from converted_at - hit_limit_at) / 60),
       count(*)
from visitor_ledgers
where converted and hit_limit_at is not null and converted_at is not null
  and created_at >= $1
group by 1
order by 3 desc
`
	return r.lagSlices(ctx, sql, since)
}

func (r *queries) LagByDevice(ctx context.Context, since time.Time) ([]domain.LagSlice, error) {
	const sql = `
select device_type,
       avg(extract(epoch from converted_at - hit_limit_at) / 60),
       count(*)
from visitor_ledgers
where converted and hit_limit_at is not null and converted_at is not null
  and created_at >= $1
group by 1
order by 3 desc
`
	return r.lagSlices(ctx, sql, since)
}

func (r *queries) lagSlices(ctx context.Context, sql string, since time.Time) ([]domain.LagSlice, error) {
	rows, err := r.q.Query(ctx, sql, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.LagSlice{}
	for rows.Next() {
		var s domain.LagSlice
		if err := rows.Scan(&s.Key, &s.AvgMinutes, &s.Count); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *queries) Devices(ctx context.Context, since time.Time) ([]domain.DeviceSlice, error) {
	const sql = `
select device_type,
       count(*),
       count(*) filter (where converted)
from visitor_ledgers
where created_at >= $1
group by 1
order by 2 desc
`
	rows, err := r.q.Query(ctx, sql, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.DeviceSlice{}
	for rows.Next() {
		var d domain.DeviceSlice
		if err := rows.Scan(&d.DeviceType, &d.Visitors, &d.Converted); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *queries) PopularTools(ctx context.Context, since time.Time, limit int) ([]domain.ToolCount, error) {
	const sql = `
select tool_name, tool_category,
       count(*),
       count(distinct coalesce(visitor_key, ip_address))
from operation_events
where success and created_at >= $1
group by 1, 2
order by 3 desc
limit $2
`
	rows, err := r.q.Query(ctx, sql, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ToolCount{}
	for rows.Next() {
		var t domain.ToolCount
		if err := rows.Scan(&t.ToolName, &t.Category, &t.Uses, &t.UniqueVisitors); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *queries) ToolsBeforeSignup(ctx context.Context, since time.Time, limit int) ([]domain.SignupTool, error) {
	const sql = `
select h->>'tool',
       count(*),
       coalesce(avg((h->>'bytes')::bigint), 0),
       count(distinct l.visitor_key)
from visitor_ledgers l,
     jsonb_array_elements(l.tool_history) h
where l.converted and l.created_at >= $1
group by 1
order by 2 desc
limit $2
`
	rows, err := r.q.Query(ctx, sql, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.SignupTool{}
	for rows.Next() {
		var t domain.SignupTool
		if err := rows.Scan(&t.ToolName, &t.Count, &t.AvgFileSize, &t.UniqueVisitors); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *queries) MostActive(ctx context.Context, since time.Time, limit int) ([]domain.ActiveVisitor, error) {
	const sql = `
select visitor_key, device_type, lifetime_use_count, hit_limit, converted, last_use_at
from visitor_ledgers
where created_at >= $1
order by lifetime_use_count desc, last_use_at desc nulls last
limit $2
`
	rows, err := r.q.Query(ctx, sql, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.ActiveVisitor{}
	for rows.Next() {
		var v domain.ActiveVisitor
		if err := rows.Scan(&v.VisitorKey, &v.DeviceType, &v.TotalUsage, &v.HitLimit, &v.Converted, &v.LastUseAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *queries) DailyTrend(ctx context.Context, since time.Time) ([]domain.DailyPoint, error) {
	const sql = `
select to_char(date_trunc('day', created_at), 'YYYY-MM-DD'),
       count(*),
       coalesce(sum(lifetime_use_count), 0),
       count(*) filter (where hit_limit),
       count(*) filter (where converted)
from visitor_ledgers
where created_at >= $1
group by 1
order by 1
`
	rows, err := r.q.Query(ctx, sql, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.DailyPoint{}
	for rows.Next() {
		var p domain.DailyPoint
		if err := rows.Scan(&p.Day, &p.Visitors, &p.Uses, &p.LimitHits, &p.Conversions); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *queries) UsageByDay(ctx context.Context, since time.Time) ([]domain.UsageRow, error) {
	const sql = `
select to_char(date_trunc('day', created_at), 'YYYY-MM-DD'),
       tool_name,
       count(*),
       coalesce(sum(total_file_size), 0),
       coalesce(avg(processing_ms), 0)
from operation_events
where created_at >= $1
group by 1, 2
order by 1, 3 desc
`
	rows, err := r.q.Query(ctx, sql, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.UsageRow{}
	for rows.Next() {
		var u domain.UsageRow
		if err := rows.Scan(&u.Day, &u.ToolName, &u.Count, &u.TotalFileSize, &u.AvgProcessingMs); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
