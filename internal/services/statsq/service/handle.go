package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	dom "toolgate/internal/services/statsq/domain"
)

// handleJob dispatches one leased job to its kind handler
// handler errors requeue with backoff until the attempt ceiling drops
// the job; unknown kinds complete immediately so they cannot wedge
// the queue
func (s *Svc) handleJob(ctx context.Context, j dom.Job) error {
	var err error
	switch j.Kind {
	case dom.KindToolCounter:
		err = s.handleToolCounter(ctx, j.Payload)
	case dom.KindLimitHit:
		err = s.handleLimitHit(ctx, j.Payload)
	case dom.KindConversion:
		err = s.handleConversion(ctx, j.Payload)
	default:
		return s.repo.Complete(ctx, j.ID)
	}

	if err != nil {
		return s.repo.Fail(ctx, j.ID, err.Error(), nextAfter(j.Attempts, s.cfg.RetryBaseMs), s.cfg.MaxAttempts)
	}
	return s.repo.Complete(ctx, j.ID)
}

func (s *Svc) handleToolCounter(ctx context.Context, raw json.RawMessage) error {
	var p dom.ToolCounterPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("tool_counter payload: %w", err)
	}
	if p.ToolName == "" {
		return fmt.Errorf("tool_counter payload missing tool_name")
	}
	n := p.Uses
	if n <= 0 {
		n = 1
	}
	return s.repo.BumpUses(ctx, p.ToolName, n)
}

func (s *Svc) handleLimitHit(ctx context.Context, raw json.RawMessage) error {
	var p dom.LimitHitPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("limit_hit payload: %w", err)
	}
	if p.ToolName == "" {
		return fmt.Errorf("limit_hit payload missing tool_name")
	}
	return s.repo.BumpLimitHits(ctx, p.ToolName)
}

func (s *Svc) handleConversion(ctx context.Context, raw json.RawMessage) error {
	var p dom.ConversionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("conversion payload: %w", err)
	}
	// conversions without a known limit tool still count somewhere
	tool := p.LimitTool
	if tool == "" {
		tool = "unknown"
	}
	return s.repo.BumpConversions(ctx, tool)
}

func nextAfter(attempt int, baseMs int) time.Time {
	back := durationMs(baseMs)
	// simple exponential w/ cap ~30s
	ms := int64(back/time.Millisecond) << uint(attempt)
	if ms > int64(30*time.Second/time.Millisecond) {
		ms = int64(30 * time.Second / time.Millisecond)
	}
	return time.Now().UTC().Add(time.Duration(ms) * time.Millisecond)
}
