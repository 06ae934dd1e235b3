// Package service contains the operation event workflows
package service

import (
	"context"

	"github.com/oklog/ulid/v2"

	"toolgate/internal/core/toolcat"
	"toolgate/internal/modkit/repokit"
	"toolgate/internal/platform/logger"
	"toolgate/internal/services/events/domain"
	"toolgate/internal/services/events/repo"

	ident "toolgate/internal/services/ident/domain"
	sqdom "toolgate/internal/services/statsq/domain"
)

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
	// Enqueuer is required; counter bumps ride the worker queue
	Enqueuer sqdom.EnqueuePort
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("events.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("events.Service requires a non nil Repo binder")
	}
	if opt.Enqueuer == nil {
		panic("events.Service requires a non nil EnqueuePort (statsq worker)")
	}
	return &Svc{
		Repo:     binder.Bind(db),
		binder:   binder,
		db:       db,
		enqueuer: opt.Enqueuer,
	}
}

// Track appends one attempt record
func (s *Svc) Track(ctx context.Context, in domain.TrackInput) (domain.TrackResult, error) {
	id := ident.Resolve(in.CookieID, in.IP)
	device := ident.DetectDevice(in.UserAgent)

	ev := &domain.Event{
		ID:            ulid.Make().String(),
		ActorID:       in.ActorID,
		SessionID:     in.SessionID,
		VisitorKey:    id.VisitorKey,
		ToolName:      in.ToolName,
		ToolCategory:  toolcat.Category(in.ToolName),
		FileCount:     in.FileCount,
		TotalFileSize: in.TotalFileSize,
		ProcessingMs:  in.ProcessingMs,
		ScreenTimeSec: in.ScreenTimeSec,
		Completed:     in.Completed,
		Success:       in.Success,
		ErrorMessage:  in.ErrorMessage,
		DeviceType:    device,
		UserAgent:     in.UserAgent,
		IP:            in.IP,
	}
	if err := s.Repo.Insert(ctx, ev); err != nil {
		return domain.TrackResult{}, err
	}

	if in.Success {
		if err := s.enqueuer.Enqueue(ctx, sqdom.KindToolCounter,
			sqdom.ToolCounterPayload{ToolName: in.ToolName, Uses: 1}); err != nil {
			logger.Named("events").Warn().Err(err).
				Str("tool", in.ToolName).Msg("counter enqueue failed")
		}
	}

	return domain.TrackResult{
		EventID:      ev.ID,
		ToolCategory: ev.ToolCategory,
		DeviceType:   string(device),
	}, nil
}

// PatchScreenTime sets dwell time on the session's latest event today
func (s *Svc) PatchScreenTime(ctx context.Context, in domain.ScreenTimeInput) (domain.ScreenTimeResult, error) {
	ok, err := s.Repo.PatchScreenTime(ctx, in.SessionID, in.ScreenTimeSec)
	if err != nil {
		return domain.ScreenTimeResult{}, err
	}
	return domain.ScreenTimeResult{Updated: ok}, nil
}

// SessionCount counts the session's attempts today
func (s *Svc) SessionCount(ctx context.Context, in domain.SessionCountInput) (domain.SessionCountResult, error) {
	n, err := s.Repo.SessionCountToday(ctx, in.SessionID)
	if err != nil {
		return domain.SessionCountResult{}, err
	}
	return domain.SessionCountResult{SessionID: in.SessionID, Count: n}, nil
}
