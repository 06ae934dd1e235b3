// Package repo provides postgres access for visitor ledgers
package repo

import (
	"context"
	stdsql "database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/services/visitors/domain"

	ident "toolgate/internal/services/ident/domain"
)

// UseUpdate is what the atomic increment hands back
// Latched is true only for the call whose increment tripped the limit
type UseUpdate struct {
	LifetimeUses int
	HitLimit     bool
	Latched      bool
	HitLimitAt   *time.Time
	LimitTool    string
}

// AttributeUpdate is the outcome of a conversion write
type AttributeUpdate struct {
	Attributed  bool
	AlreadyDone bool
	Missing     bool
	ConvertedAt *time.Time
	HitLimitAt  *time.Time
	LimitTool   string
}

// Repo is the persistence surface for visitor ledgers
type Repo interface {
	// GetByKey fetches a ledger by visitor key, nil when absent
	GetByKey(ctx context.Context, visitorKey string) (*domain.Ledger, error)

	// GetByIPWithoutCookie fetches the IP-keyed ledger that has no cookie yet
	GetByIPWithoutCookie(ctx context.Context, ip string) (*domain.Ledger, error)

	// Rekey upgrades an IP-keyed ledger to the cookie key, never the reverse
	Rekey(ctx context.Context, id, cookieID string) error

	// Insert creates a zero-counter ledger, ignoring a concurrent insert
	Insert(ctx context.Context, l *domain.Ledger) error

	// Touch refreshes soft metadata without counting anything
	Touch(ctx context.Context, visitorKey string, device ident.DeviceType, userAgent, referrer string) error

	// RecordUse atomically increments the counter, appends history, and
	// latches the limit, evaluating against the post-increment value;
	// the update reports whether this call is the one that latched
	RecordUse(ctx context.Context, visitorKey, toolName string, fileCount int, totalFileSize int64, sessionID string, device ident.DeviceType, userAgent, referrer string) (UseUpdate, error)

	// AppendFile records a processed file, evicting oldest past the cap
	AppendFile(ctx context.Context, visitorKey string, f domain.FileRecord) error

	// Attribute marks a conversion exactly once per ledger
	Attribute(ctx context.Context, visitorKey, userID, sessionID string) (AttributeUpdate, error)

	// AttributeRecentByIP attributes the freshest limit-hit ledger for an
	// IP within the lookback window, for signup flows without a cookie
	AttributeRecentByIP(ctx context.Context, ip, userID, sessionID string, lookback time.Duration) (AttributeUpdate, error)
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

const ledgerCols = `
id, visitor_key, id_kind, coalesce(cookie_id,''), ip_address,
lifetime_use_count, first_use_at, last_use_at,
device_type, coalesce(user_agent,''), coalesce(referrer,'direct'),
recent_files, tool_history,
hit_limit, hit_limit_at, coalesce(limit_tool,''),
converted, converted_at, coalesce(converted_user_id,''), coalesce(converted_session_id,''),
coalesce(session_id,''), session_last_seen, pages_visited, time_on_site_sec,
created_at, updated_at
`

func scanLedger(row interface{ Scan(...any) error }) (*domain.Ledger, error) {
	var (
		l           domain.Ledger
		kind        string
		device      string
		recentRaw   []byte
		historyRaw  []byte
		pagesRaw    []byte
		sessionLast *time.Time
	)
	err := row.Scan(
		&l.ID, &l.VisitorKey, &kind, &l.CookieID, &l.IP,
		&l.LifetimeUses, &l.FirstUseAt, &l.LastUseAt,
		&device, &l.UserAgent, &l.Referrer,
		&recentRaw, &historyRaw,
		&l.Conversion.HitLimit, &l.Conversion.HitLimitAt, &l.Conversion.LimitToolName,
		&l.Conversion.Converted, &l.Conversion.ConvertedAt, &l.Conversion.ConvertedUserID, &l.Conversion.ConvertedSessionID,
		&l.Session.SessionID, &sessionLast, &pagesRaw, &l.Session.TimeOnSiteSec,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Kind = ident.IDKind(kind)
	l.DeviceType = ident.DeviceType(device)
	l.Session.LastActivity = sessionLast

	// legacy rows may carry null containers; absent means empty
	l.RecentFiles = []domain.FileRecord{}
	l.ToolHistory = []domain.ToolUse{}
	l.Session.PagesVisited = []string{}
	if len(recentRaw) > 0 {
		_ = json.Unmarshal(recentRaw, &l.RecentFiles)
	}
	if len(historyRaw) > 0 {
		_ = json.Unmarshal(historyRaw, &l.ToolHistory)
	}
	if len(pagesRaw) > 0 {
		_ = json.Unmarshal(pagesRaw, &l.Session.PagesVisited)
	}
	return &l, nil
}

func (r *queries) GetByKey(ctx context.Context, visitorKey string) (*domain.Ledger, error) {
	const sql = `select ` + ledgerCols + ` from visitor_ledgers where visitor_key = $1`
	l, err := scanLedger(r.q.QueryRow(ctx, sql, visitorKey))
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *queries) GetByIPWithoutCookie(ctx context.Context, ip string) (*domain.Ledger, error) {
	const sql = `
select ` + ledgerCols + `
from visitor_ledgers
where ip_address = $1 and id_kind = 'ip' and cookie_id is null
order by created_at desc
limit 1
`
	l, err := scanLedger(r.q.QueryRow(ctx, sql, ip))
	if err != nil {
		if errors.Is(err, stdsql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func (r *queries) Rekey(ctx context.Context, id, cookieID string) error {
	const sql = `
update visitor_ledgers
set visitor_key = $2, cookie_id = $2, id_kind = 'cookie', updated_at = now()
where id = $1 and id_kind = 'ip'
`
	_, err := r.q.Exec(ctx, sql, id, cookieID)
	return err
}

func (r *queries) Insert(ctx context.Context, l *domain.Ledger) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	const sql = `
insert into visitor_ledgers (
  id, visitor_key, id_kind, cookie_id, ip_address,
  lifetime_use_count, device_type, user_agent, referrer,
  recent_files, tool_history, pages_visited, session_id,
  created_at, updated_at
) values (
  $1, $2, $3, nullif($4,''), $5,
  0, $6, nullif($7,''), coalesce(nullif($8,''),'direct'),
  '[]'::jsonb, '[]'::jsonb, '[]'::jsonb, nullif($9,''),
  now(), now()
)
on conflict (visitor_key) do nothing
`
	_, err := r.q.Exec(ctx, sql,
		l.ID, l.VisitorKey, string(l.Kind), l.CookieID, l.IP,
		string(l.DeviceType), l.UserAgent, l.Referrer, l.Session.SessionID,
	)
	return err
}

func (r *queries) Touch(ctx context.Context, visitorKey string, device ident.DeviceType, userAgent, referrer string) error {
	const sql = `
update visitor_ledgers set
  device_type = case when device_type = 'desktop' or device_type = '' then $2 else device_type end,
  user_agent  = coalesce(user_agent, nullif($3,'')),
  referrer    = case when referrer is null or referrer = 'direct' then coalesce(nullif($4,''),'direct') else referrer end,
  updated_at  = now()
where visitor_key = $1
`
	_, err := r.q.Exec(ctx, sql, visitorKey, string(device), userAgent, referrer)
	return err
}

func (r *queries) RecordUse(
	ctx context.Context,
	visitorKey, toolName string,
	fileCount int,
	totalFileSize int64,
	sessionID string,
	device ident.DeviceType,
	userAgent, referrer string,
) (UseUpdate, error) {
	use := domain.ToolUse{
		ToolName:      toolName,
		UsedAt:        time.Now().UTC(),
		FileCount:     fileCount,
		TotalFileSize: totalFileSize,
	}
	useJSON, err := json.Marshal(use)
	if err != nil {
		return UseUpdate{}, err
	}

	// single statement so concurrent uses of one visitor cannot race the
	// counter; the latch compares against the post-increment value, and the
	// locked prev self-join hands back whether this call was the one that
	// tripped it
	const sql = `
update visitor_ledgers v set
  lifetime_use_count = v.lifetime_use_count + 1,
  first_use_at = coalesce(v.first_use_at, now()),
  last_use_at  = now(),
  tool_history = case
    when jsonb_array_length(v.tool_history) >= $3 then (v.tool_history - 0) || $2::jsonb
    else v.tool_history || $2::jsonb
  end,
  hit_limit_at = case
    when not v.hit_limit and v.lifetime_use_count + 1 >= $4 then now()
    else v.hit_limit_at
  end,
  limit_tool = case
    when not v.hit_limit and v.lifetime_use_count + 1 >= $4 then $5
    else v.limit_tool
  end,
  hit_limit   = v.hit_limit or v.lifetime_use_count + 1 >= $4,
  device_type = $6,
  user_agent  = coalesce(nullif($7,''), v.user_agent),
  referrer    = coalesce(nullif($8,''), v.referrer, 'direct'),
  session_id  = coalesce(nullif($9,''), v.session_id),
  session_last_seen = now(),
  updated_at  = now()
from (
  select id, hit_limit as was_hit
  from visitor_ledgers
  where visitor_key = $1
  for update
) prev
where v.id = prev.id
returning v.lifetime_use_count, v.hit_limit, (v.hit_limit and not prev.was_hit),
  v.hit_limit_at, coalesce(v.limit_tool,'')
`
	var out UseUpdate
	err = r.q.QueryRow(ctx, sql,
		visitorKey, string(useJSON), domain.ToolHistoryCap, domain.LifetimeLimit, toolName,
		string(device), userAgent, referrer, sessionID,
	).Scan(&out.LifetimeUses, &out.HitLimit, &out.Latched, &out.HitLimitAt, &out.LimitTool)
	if err != nil {
		return UseUpdate{}, err
	}
	return out, nil
}

func (r *queries) AppendFile(ctx context.Context, visitorKey string, f domain.FileRecord) error {
	if f.ProcessedAt.IsZero() {
		f.ProcessedAt = time.Now().UTC()
	}
	fileJSON, err := json.Marshal(f)
	if err != nil {
		return err
	}
	const sql = `
update visitor_ledgers set
  recent_files = case
    when jsonb_array_length(recent_files) >= $3 then (recent_files - 0) || $2::jsonb
    else recent_files || $2::jsonb
  end,
  updated_at = now()
where visitor_key = $1
`
	_, err = r.q.Exec(ctx, sql, visitorKey, string(fileJSON), domain.RecentFilesCap)
	return err
}

func (r *queries) Attribute(ctx context.Context, visitorKey, userID, sessionID string) (AttributeUpdate, error) {
	const upd = `
update visitor_ledgers set
  converted = true,
  converted_at = now(),
  converted_user_id = $2,
  converted_session_id = coalesce(nullif($3,''), session_id),
  updated_at = now()
where visitor_key = $1 and not converted
returning converted_at, hit_limit_at, coalesce(limit_tool,'')
`
	var out AttributeUpdate
	err := r.q.QueryRow(ctx, upd, visitorKey, userID, sessionID).
		Scan(&out.ConvertedAt, &out.HitLimitAt, &out.LimitTool)
	if err == nil {
		out.Attributed = true
		return out, nil
	}
	if !errors.Is(err, stdsql.ErrNoRows) {
		return AttributeUpdate{}, err
	}

	// either already converted or no ledger at all
	const sel = `
select converted_at, hit_limit_at, coalesce(limit_tool,'')
from visitor_ledgers
where visitor_key = $1 and converted
`
	err = r.q.QueryRow(ctx, sel, visitorKey).
		Scan(&out.ConvertedAt, &out.HitLimitAt, &out.LimitTool)
	if err == nil {
		out.AlreadyDone = true
		return out, nil
	}
	if errors.Is(err, stdsql.ErrNoRows) {
		out.Missing = true
		return out, nil
	}
	return AttributeUpdate{}, err
}

func (r *queries) AttributeRecentByIP(ctx context.Context, ip, userID, sessionID string, lookback time.Duration) (AttributeUpdate, error) {
	const sql = `
update visitor_ledgers set
  converted = true,
  converted_at = now(),
  converted_user_id = $2,
  converted_session_id = coalesce(nullif($3,''), session_id),
  updated_at = now()
where id = (
  select id from visitor_ledgers
  where ip_address = $1
    and hit_limit
    and not converted
    and hit_limit_at >= now() - $4::interval
  order by hit_limit_at desc
  limit 1
)
  and not converted
returning converted_at, hit_limit_at, coalesce(limit_tool,'')
`
	var out AttributeUpdate
	err := r.q.QueryRow(ctx, sql, ip, userID, sessionID, lookback.String()).
		Scan(&out.ConvertedAt, &out.HitLimitAt, &out.LimitTool)
	if err == nil {
		out.Attributed = true
		return out, nil
	}
	if errors.Is(err, stdsql.ErrNoRows) {
		out.Missing = true
		return out, nil
	}
	return AttributeUpdate{}, err
}
