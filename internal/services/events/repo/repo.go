// Package repo provides postgres access for operation events
package repo

import (
	"context"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/services/events/domain"
)

// Repo is the persistence surface for operation events
type Repo interface {
	// Insert appends one event record
	Insert(ctx context.Context, ev *domain.Event) error

	// PatchScreenTime sets dwell time on the session's most recent
	// event from today, reporting whether a row was touched
	PatchScreenTime(ctx context.Context, sessionID string, screenTimeSec int) (bool, error)

	// SessionCountToday counts the session's events since midnight UTC
	SessionCountToday(ctx context.Context, sessionID string) (int, error)
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

func (r *queries) Insert(ctx context.Context, ev *domain.Event) error {
	const sql = `
insert into operation_events (
  id, actor_id, session_id, visitor_key,
  tool_name, tool_category, file_count, total_file_size,
  processing_ms, screen_time_sec, completed, success, error_message,
  device_type, user_agent, ip_address, created_at
) values (
  $1, nullif($2,''), nullif($3,''), nullif($4,''),
  $5, $6, $7, $8,
  $9, $10, $11, $12, nullif($13,''),
  $14, nullif($15,''), nullif($16,''), now()
)
`
	_, err := r.q.Exec(ctx, sql,
		ev.ID, ev.ActorID, ev.SessionID, ev.VisitorKey,
		ev.ToolName, ev.ToolCategory, ev.FileCount, ev.TotalFileSize,
		ev.ProcessingMs, ev.ScreenTimeSec, ev.Completed, ev.Success, ev.ErrorMessage,
		string(ev.DeviceType), ev.UserAgent, ev.IP,
	)
	return err
}

func (r *queries) PatchScreenTime(ctx context.Context, sessionID string, screenTimeSec int) (bool, error) {
	const sql = `
update operation_events set screen_time_sec = $2
where id = (
  select id from operation_events
  where session_id = $1 and created_at >= date_trunc('day', now())
  order by created_at desc
  limit 1
)
`
	tag, err := r.q.Exec(ctx, sql, sessionID, screenTimeSec)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *queries) SessionCountToday(ctx context.Context, sessionID string) (int, error) {
	const sql = `
select count(*) from operation_events
where session_id = $1 and created_at >= date_trunc('day', now())
`
	var n int
	if err := r.q.QueryRow(ctx, sql, sessionID).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
