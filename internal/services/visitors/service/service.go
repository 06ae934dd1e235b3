// Package service contains the visitor limit and attribution workflows
package service

import (
	"context"
	"time"

	"toolgate/internal/modkit/repokit"
	"toolgate/internal/platform/logger"
	"toolgate/internal/services/visitors/domain"
	"toolgate/internal/services/visitors/repo"

	ident "toolgate/internal/services/ident/domain"
	sqdom "toolgate/internal/services/statsq/domain"
)

// ConversionLookback bounds IP-based attribution to recent limit hits
const ConversionLookback = 24 * time.Hour

// Service is the public service port
type Service interface{ domain.ServicePort }

// Svc implements the service port
type Svc struct {
	Repo     repo.Repo
	binder   repokit.Binder[repo.Repo]
	db       repokit.TxRunner
	enqueuer sqdom.EnqueuePort
}

// Options control service behavior
type Options struct {
	// Enqueuer is required; stats jobs flow through the worker queue
	Enqueuer sqdom.EnqueuePort
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("visitors.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("visitors.Service requires a non nil Repo binder")
	}
	if opt.Enqueuer == nil {
		panic("visitors.Service requires a non nil EnqueuePort (statsq worker)")
	}
	return &Svc{
		Repo:     binder.Bind(db),
		binder:   binder,
		db:       db,
		enqueuer: opt.Enqueuer,
	}
}

// Check evaluates the lifetime limit for the visitor behind the signals
//
// Errors from storage degrade to an open gate rather than blocking the
// tool; a broken counter must never lock paying work out
func (s *Svc) Check(ctx context.Context, in domain.CheckInput) (domain.CheckResult, error) {
	id := ident.Resolve(in.Signals.CookieID, in.Signals.IP)
	if !id.Trackable {
		return openResult(id), nil
	}

	var (
		led   *domain.Ledger
		fresh bool
	)
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		l, created, err := s.getOrCreate(ctx, r, id, in.Signals)
		if err != nil {
			return err
		}
		led, fresh = l, created
		return r.Touch(ctx, l.VisitorKey,
			ident.DetectDevice(in.Signals.UserAgent), in.Signals.UserAgent, in.Signals.Referrer)
	})
	if err != nil {
		logger.Named("visitors").Warn().Err(err).
			Str("visitor_key", id.VisitorKey).Msg("limit check degraded to open")
		return openResult(id), nil
	}

	return domain.CheckResult{
		VisitorKey:     led.VisitorKey,
		TrackingMethod: string(id.Kind),
		Trackable:      true,
		CurrentUsage:   led.LifetimeUses,
		MaxUsage:       domain.LifetimeLimit,
		CanUse:         domain.CanProceed(led.LifetimeUses),
		AtLimit:        domain.AtLimit(led.LifetimeUses),
		IsNewVisitor:   fresh,
	}, nil
}

// Use records one tool use and reports the post-increment ledger state
func (s *Svc) Use(ctx context.Context, in domain.UseInput) (domain.UseResult, error) {
	id := ident.Resolve(in.Signals.CookieID, in.Signals.IP)
	if !id.Trackable {
		return domain.UseResult{Trackable: false, MaxUsage: domain.LifetimeLimit}, nil
	}

	device := ident.DetectDevice(in.Signals.UserAgent)
	fileCount := in.FileCount
	if fileCount == 0 {
		fileCount = 1
	}

	var (
		key string
		dup bool
		upd repo.UseUpdate
	)
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		l, _, err := s.getOrCreate(ctx, r, id, in.Signals)
		if err != nil {
			return err
		}
		key = l.VisitorKey

		// a repeat of the same file through the same tool does not
		// burn a use; reruns on a flaky connection stay free
		if in.File != nil && domain.IsDuplicate(l, in.File.ContentHash, in.ToolName) {
			dup = true
			upd = repo.UseUpdate{
				LifetimeUses: l.LifetimeUses,
				HitLimit:     l.Conversion.HitLimit,
				HitLimitAt:   l.Conversion.HitLimitAt,
				LimitTool:    l.Conversion.LimitToolName,
			}
			return nil
		}

		upd, err = r.RecordUse(ctx, key, in.ToolName, fileCount, in.TotalFileSize,
			in.Signals.SessionID, device, in.Signals.UserAgent, in.Signals.Referrer)
		if err != nil {
			return err
		}

		if in.File != nil && in.File.ContentHash != "" {
			return r.AppendFile(ctx, key, domain.FileRecord{
				ContentHash: in.File.ContentHash,
				FileName:    ident.CanonicalFileName(in.File.FileName),
				FileSize:    in.File.FileSize,
				ToolName:    in.ToolName,
			})
		}
		return nil
	})
	if err != nil {
		return domain.UseResult{}, err
	}

	if !dup {
		s.enqueue(ctx, sqdom.KindToolCounter, sqdom.ToolCounterPayload{ToolName: in.ToolName, Uses: 1})
	}
	// the latch report comes from the update itself, so two requests
	// racing past the ceiling cannot both claim the limit hit
	if upd.Latched {
		s.enqueue(ctx, sqdom.KindLimitHit, sqdom.LimitHitPayload{
			VisitorKey: key,
			ToolName:   in.ToolName,
			DeviceType: string(device),
		})
	}

	return domain.UseResult{
		VisitorKey:   key,
		Trackable:    true,
		IsDuplicate:  dup,
		CurrentUsage: upd.LifetimeUses,
		MaxUsage:     domain.LifetimeLimit,
		HitLimit:     upd.HitLimit,
		AtLimit:      domain.AtLimit(upd.LifetimeUses),
	}, nil
}

// Convert attributes a signup back to the visitor that produced it
func (s *Svc) Convert(ctx context.Context, in domain.ConvertInput) (domain.ConvertResult, error) {
	id := ident.Resolve(in.Signals.CookieID, in.Signals.IP)
	if !id.Trackable {
		return domain.ConvertResult{}, nil
	}

	var att repo.AttributeUpdate
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		a, err := r.Attribute(ctx, id.VisitorKey, in.UserID, in.SessionID)
		if err != nil {
			return err
		}
		if a.Missing && id.Kind == ident.KindCookie && id.IP != "" {
			// cookie was minted after the limit hit; fall back to the
			// freshest limit-hit ledger for the same address
			a, err = r.AttributeRecentByIP(ctx, id.IP, in.UserID, in.SessionID, ConversionLookback)
			if err != nil {
				return err
			}
		}
		att = a
		return nil
	})
	if err != nil {
		return domain.ConvertResult{}, err
	}

	out := domain.ConvertResult{
		Attributed:    att.Attributed,
		AlreadyDone:   att.AlreadyDone,
		ConvertedAt:   att.ConvertedAt,
		LimitToolName: att.LimitTool,
	}
	if att.ConvertedAt != nil && att.HitLimitAt != nil {
		out.MinutesToConv = att.ConvertedAt.Sub(*att.HitLimitAt).Minutes()
	}
	if att.Attributed {
		s.enqueue(ctx, sqdom.KindConversion, sqdom.ConversionPayload{
			VisitorKey: id.VisitorKey,
			UserID:     in.UserID,
			LimitTool:  att.LimitTool,
		})
	}
	return out, nil
}

// Summary returns the admin view of one ledger
func (s *Svc) Summary(ctx context.Context, in domain.SummaryInput) (domain.Summary, error) {
	id := ident.Resolve(in.Signals.CookieID, in.Signals.IP)
	if !id.Trackable {
		return domain.Summary{Found: false, CanUse: true, MaxUsage: domain.LifetimeLimit}, nil
	}

	l, err := s.Repo.GetByKey(ctx, id.VisitorKey)
	if err != nil {
		return domain.Summary{}, err
	}
	if l == nil {
		return domain.Summary{
			VisitorKey: id.VisitorKey,
			Found:      false,
			CanUse:     true,
			MaxUsage:   domain.LifetimeLimit,
			ToolsUsed:  []domain.SummaryTool{},
		}, nil
	}

	tools := make([]domain.SummaryTool, 0, len(l.ToolHistory))
	for _, u := range l.ToolHistory {
		tools = append(tools, domain.SummaryTool{
			ToolName:  u.ToolName,
			UsedAt:    u.UsedAt,
			FileCount: u.FileCount,
		})
	}
	return domain.Summary{
		VisitorKey:   l.VisitorKey,
		Found:        true,
		CurrentUsage: l.LifetimeUses,
		MaxUsage:     domain.LifetimeLimit,
		CanUse:       domain.CanProceed(l.LifetimeUses),
		ToolsUsed:    tools,
		HitLimit:     l.Conversion.HitLimit,
		Converted:    l.Conversion.Converted,
		DeviceType:   string(l.DeviceType),
		FirstUseAt:   l.FirstUseAt,
		LastUseAt:    l.LastUseAt,
	}, nil
}

// getOrCreate finds the ledger for an identity inside the caller's tx,
// upgrading an IP-keyed row to the cookie key before falling back to a
// fresh insert
func (s *Svc) getOrCreate(ctx context.Context, r repo.Repo, id ident.Identity, sig domain.Signals) (*domain.Ledger, bool, error) {
	l, err := r.GetByKey(ctx, id.VisitorKey)
	if err != nil {
		return nil, false, err
	}
	if l != nil {
		return l, false, nil
	}

	if id.Kind == ident.KindCookie && id.IP != "" {
		prior, err := r.GetByIPWithoutCookie(ctx, id.IP)
		if err != nil {
			return nil, false, err
		}
		if prior != nil {
			if err := r.Rekey(ctx, prior.ID, id.CookieID); err != nil {
				return nil, false, err
			}
			prior.VisitorKey = id.VisitorKey
			prior.Kind = ident.KindCookie
			prior.CookieID = id.CookieID
			return prior, false, nil
		}
	}

	fresh := &domain.Ledger{
		VisitorKey: id.VisitorKey,
		Kind:       id.Kind,
		CookieID:   id.CookieID,
		IP:         id.IP,
		DeviceType: ident.DetectDevice(sig.UserAgent),
		UserAgent:  sig.UserAgent,
		Referrer:   sig.Referrer,
	}
	fresh.Session.SessionID = sig.SessionID
	if err := r.Insert(ctx, fresh); err != nil {
		return nil, false, err
	}

	// a racing request may have inserted first; the conflict clause
	// makes the reselect authoritative either way
	l, err = r.GetByKey(ctx, id.VisitorKey)
	if err != nil {
		return nil, false, err
	}
	if l == nil {
		return fresh, true, nil
	}
	return l, l.LifetimeUses == 0, nil
}

func (s *Svc) enqueue(ctx context.Context, kind string, payload any) {
	if err := s.enqueuer.Enqueue(ctx, kind, payload); err != nil {
		logger.Named("visitors").Warn().Err(err).Str("kind", kind).Msg("stats enqueue failed")
	}
}

func openResult(id ident.Identity) domain.CheckResult {
	return domain.CheckResult{
		VisitorKey:     id.VisitorKey,
		TrackingMethod: string(id.Kind),
		Trackable:      false,
		CurrentUsage:   0,
		MaxUsage:       domain.LifetimeLimit,
		CanUse:         true,
	}
}
