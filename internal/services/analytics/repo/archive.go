package repo

import (
	"context"

	"toolgate/internal/platform/store"
	"toolgate/internal/services/analytics/domain"
)

// Archive reads rolled-up funnel days from the columnar store
type Archive interface {
	// DailyBetween returns archived funnel points for [fromDay, toDay]
	DailyBetween(ctx context.Context, fromDay, toDay string) ([]domain.DailyPoint, error)
}

// NewArchive wraps the clickhouse seam; ch may be nil when disabled
func NewArchive(ch store.Clickhouse) Archive { return &archive{ch: ch} }

type archive struct{ ch store.Clickhouse }

func (a *archive) DailyBetween(ctx context.Context, fromDay, toDay string) ([]domain.DailyPoint, error) {
	if a.ch == nil {
		return nil, nil
	}
	const sql = `
SELECT toString(day), visitors, uses, limit_hits, conversions
FROM toolgate.funnel_daily
WHERE day >= toDate(?) AND day <= toDate(?)
ORDER BY day
`
	rows, err := a.ch.Query(ctx, sql, fromDay, toDay)
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
		p.Archived = true
		out = append(out, p)
	}
	return out, rows.Err()
}
