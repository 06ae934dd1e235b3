// Package repo provides postgres access for janitor runs
package repo

import (
	"context"
	stdsql "database/sql"
	"errors"
	"time"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/services/janitor/domain"
)

type (
	// PG is a binder that can bind the repo to a Queryer or TxRunner
	PG struct{}
	// queries implements the StorageRepo interface
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder that can bind the repo to a Queryer or TxRunner
func NewPG() repokit.Binder[domain.StorageRepo] { return PG{} }

// Bind wires a Queryer to the repo
func (PG) Bind(q repokit.Queryer) domain.StorageRepo { return &queries{q: q} }

func (r *queries) NextDayNeedingWork(ctx context.Context) (time.Time, bool, error) {
	// walk days from the oldest ledger up to yesterday, skipping days
	// with a completed run; the claim itself happens in Start
	const sql = `
select d::date
from generate_series(
  coalesce((select min(created_at)::date from visitor_ledgers), current_date),
  current_date - 1,
  interval '1 day'
) d
where not exists (
  select 1 from janitor_runs r where r.day = d::date and r.status = 'done'
)
order by 1
limit 1
`
	var day time.Time
	if err := r.q.QueryRow(ctx, sql).Scan(&day); err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return day, true, nil
}

func (r *queries) Start(ctx context.Context, day time.Time) error {
	const sql = `
insert into janitor_runs (day, status, started_at)
values ($1, 'running', now())
on conflict (day) do update
set status = 'running', started_at = now(), finished_at = null, err_text = null
where janitor_runs.status <> 'done'
`
	_, err := r.q.Exec(ctx, sql, day)
	return err
}

func (r *queries) Finish(ctx context.Context, day time.Time, info domain.FinishInfo) error {
	const sql = `
update janitor_runs set
  status = $2,
  deleted = $3,
  archived = $4,
  total_ms = $5,
  err_text = nullif($6,''),
  finished_at = now()
where day = $1
`
	_, err := r.q.Exec(ctx, sql, day, info.Status, info.Deleted, info.Archived, info.TotalMS, info.ErrText)
	return err
}

func (r *queries) FunnelForDay(ctx context.Context, day time.Time) (domain.FunnelDay, error) {
	const sql = `
select to_char($1::date, 'YYYY-MM-DD'),
       count(*),
       coalesce(sum(lifetime_use_count), 0),
       count(*) filter (where hit_limit),
       count(*) filter (where converted)
from visitor_ledgers
where created_at >= $1::date and created_at < $1::date + interval '1 day'
`
	var f domain.FunnelDay
	err := r.q.QueryRow(ctx, sql, day).
		Scan(&f.Day, &f.Visitors, &f.Uses, &f.LimitHits, &f.Conversions)
	return f, err
}

func (r *queries) DeleteExpired(ctx context.Context, retentionDays int) (int64, error) {
	const sql = `
delete from visitor_ledgers
where created_at < now() - make_interval(days => $1)
  and not converted
`
	tag, err := r.q.Exec(ctx, sql, retentionDays)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
