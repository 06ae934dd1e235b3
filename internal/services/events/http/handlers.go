// Package http provides http transport for operation events
package http

import (
	stdhttp "net/http"

	"toolgate/internal/modkit/httpkit"
	"toolgate/internal/services/events/domain"
	svc "toolgate/internal/services/events/service"

	identdom "toolgate/internal/services/ident/domain"
)

// Register mounts the router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.TrackInput](r, "/track", h.track)
	httpkit.PostJSON[domain.ScreenTimeInput](r, "/screen-time", h.screenTime)
	httpkit.PostJSON[domain.SessionCountInput](r, "/session-count", h.sessionCount)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /events/track Events track
// @Summary Record one tool attempt
// @Tags events
// @Accept json
// @Produce json
// @Param payload body domain.TrackInput true "Track"
// @Success 200 {object} domain.TrackResult "ok"
// @Failure 422 {object} httpkit.Envelope "validation"
// @Router /events/track [post]
func (h *handlers) track(r *stdhttp.Request, in domain.TrackInput) (any, error) {
	in.IP = identdom.RealIP(r)
	if in.UserAgent == "" {
		in.UserAgent = r.UserAgent()
	}
	return h.svc.Track(r.Context(), in)
}

// swagger:route POST /events/screen-time Events screenTime
// @Summary Patch dwell time onto the session's latest event
// @Tags events
// @Accept json
// @Produce json
// @Param payload body domain.ScreenTimeInput true "ScreenTime"
// @Success 200 {object} domain.ScreenTimeResult "ok"
// @Router /events/screen-time [post]
func (h *handlers) screenTime(r *stdhttp.Request, in domain.ScreenTimeInput) (any, error) {
	return h.svc.PatchScreenTime(r.Context(), in)
}

// swagger:route POST /events/session-count Events sessionCount
// @Summary Count the session's attempts today
// @Tags events
// @Produce json
// @Param payload body domain.SessionCountInput true "SessionCount"
// @Success 200 {object} domain.SessionCountResult "ok"
// @Router /events/session-count [post]
func (h *handlers) sessionCount(r *stdhttp.Request, in domain.SessionCountInput) (any, error) {
	return h.svc.SessionCount(r.Context(), in)
}
