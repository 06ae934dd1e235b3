// Package repo provides postgres access for the stats job queue
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/services/statsq/domain"
)

// Repo is the persistence surface for the stats queue and counters
type Repo interface {
	// Enqueue inserts one job ready to run immediately
	Enqueue(ctx context.Context, kind string, payload json.RawMessage) (string, error)

	// Lease takes up to limit ready jobs for leaseFor
	Lease(ctx context.Context, limit int, leaseFor time.Duration) ([]domain.Job, error)

	// Complete removes a finished job
	Complete(ctx context.Context, jobID string) error

	// Fail clears the lease and schedules a retry, or drops the job
	// once attempts reach maxAttempts
	Fail(ctx context.Context, jobID string, errText string, nextAt time.Time, maxAttempts int) error

	// BumpUses adds n to a tool's rolling use counter
	BumpUses(ctx context.Context, tool string, n int) error

	// BumpLimitHits adds one to a tool's limit-hit counter
	BumpLimitHits(ctx context.Context, tool string) error

	// BumpConversions adds one to a tool's conversion counter
	BumpConversions(ctx context.Context, tool string) error
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

func (r *queries) Enqueue(ctx context.Context, kind string, payload json.RawMessage) (string, error) {
	id := uuid.NewString()
	const sql = `
insert into stat_jobs (id, kind, payload, attempts, run_after, created_at, updated_at)
values ($1, $2, $3, 0, now(), now(), now())
`
	if _, err := r.q.Exec(ctx, sql, id, kind, string(payload)); err != nil {
		return "", err
	}
	return id, nil
}

func (r *queries) Lease(ctx context.Context, limit int, leaseFor time.Duration) ([]domain.Job, error) {
	const sqlq = `
with ready as (
  select id from stat_jobs
  where run_after <= now()
    and (leased_until is null or leased_until <= now())
  order by run_after asc
  limit $1
  for update skip locked
), upd as (
  update stat_jobs j
  set leased_until = now() + $2::interval, updated_at = now()
  where j.id in (select id from ready)
  returning j.*
)
select id, kind, payload, attempts, run_after, leased_until, created_at from upd
`
	rows, err := r.q.Query(ctx, sqlq, limit, leaseFor.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Job
	for rows.Next() {
		var (
			j   domain.Job
			raw []byte
		)
		if err := rows.Scan(&j.ID, &j.Kind, &raw, &j.Attempts, &j.RunAfter, &j.LeasedUntil, &j.CreatedAt); err != nil {
			return nil, err
		}
		j.Payload = json.RawMessage(raw)
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *queries) Complete(ctx context.Context, jobID string) error {
	const sql = `delete from stat_jobs where id = $1`
	_, err := r.q.Exec(ctx, sql, jobID)
	return err
}

func (r *queries) Fail(ctx context.Context, jobID, errText string, nextAt time.Time, maxAttempts int) error {
	const del = `delete from stat_jobs where id = $1 and attempts + 1 >= $2`
	tag, err := r.q.Exec(ctx, del, jobID, maxAttempts)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	const upd = `
update stat_jobs set
  attempts = attempts + 1,
  last_error = nullif($2,''),
  run_after = $3,
  leased_until = null,
  updated_at = now()
where id = $1
`
	_, err = r.q.Exec(ctx, upd, jobID, errText, nextAt)
	return err
}

func (r *queries) BumpUses(ctx context.Context, tool string, n int) error {
	const sql = `
insert into tool_counters (tool_name, uses, last_used_at)
values ($1, $2, now())
on conflict (tool_name) do update
set uses = tool_counters.uses + excluded.uses, last_used_at = now()
`
	_, err := r.q.Exec(ctx, sql, tool, n)
	return err
}

func (r *queries) BumpLimitHits(ctx context.Context, tool string) error {
	const sql = `
insert into tool_counters (tool_name, limit_hits, last_used_at)
values ($1, 1, now())
on conflict (tool_name) do update
set limit_hits = tool_counters.limit_hits + 1, last_used_at = now()
`
	_, err := r.q.Exec(ctx, sql, tool)
	return err
}

func (r *queries) BumpConversions(ctx context.Context, tool string) error {
	const sql = `
insert into tool_counters (tool_name, conversions, last_used_at)
values ($1, 1, now())
on conflict (tool_name) do update
set conversions = tool_counters.conversions + 1, last_used_at = now()
`
	_, err := r.q.Exec(ctx, sql, tool)
	return err
}
