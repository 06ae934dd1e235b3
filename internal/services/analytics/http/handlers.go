// Package http provides http transport for analytics
package http

import (
	stdhttp "net/http"

	"toolgate/internal/modkit/httpkit"
	"toolgate/internal/services/analytics/domain"
	svc "toolgate/internal/services/analytics/service"
)

// Register mounts the router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.FunnelInput](r, "/funnel", h.funnel)
	httpkit.PostJSON[domain.ToolsInput](r, "/tools", h.tools)
	httpkit.PostJSON[domain.DevicesInput](r, "/devices", h.devices)
	httpkit.PostJSON[domain.ActiveInput](r, "/active", h.active)
	httpkit.PostJSON[domain.DailyInput](r, "/daily", h.daily)
	httpkit.PostJSON[domain.UsageInput](r, "/usage", h.usage)
	httpkit.PostJSON[domain.CleanupInput](r, "/cleanup", h.cleanup)
}

type handlers struct{ svc svc.Service }

// swagger:route POST /analytics/funnel Analytics funnel
// @Summary Visitor to signup funnel
// @Tags analytics
// @Accept json
// @Produce json
// @Param payload body domain.FunnelInput true "Funnel"
// @Success 200 {object} domain.FunnelReport "ok"
// @Router /analytics/funnel [post]
func (h *handlers) funnel(r *stdhttp.Request, in domain.FunnelInput) (any, error) {
	return h.svc.Funnel(r.Context(), in)
}

// swagger:route POST /analytics/tools Analytics tools
// @Summary Popular tools and tools used before signup
// @Tags analytics
// @Accept json
// @Produce json
// @Param payload body domain.ToolsInput true "Tools"
// @Success 200 {object} domain.ToolsReport "ok"
// @Router /analytics/tools [post]
func (h *handlers) tools(r *stdhttp.Request, in domain.ToolsInput) (any, error) {
	return h.svc.Tools(r.Context(), in)
}

// swagger:route POST /analytics/devices Analytics devices
// @Summary Device distribution
// @Tags analytics
// @Accept json
// @Produce json
// @Param payload body domain.DevicesInput true "Devices"
// @Success 200 {object} domain.DevicesReport "ok"
// @Router /analytics/devices [post]
func (h *handlers) devices(r *stdhttp.Request, in domain.DevicesInput) (any, error) {
	return h.svc.Devices(r.Context(), in)
}

// swagger:route POST /analytics/active Analytics active
// @Summary Most active visitors
// @Tags analytics
// @Accept json
// @Produce json
// @Param payload body domain.ActiveInput true "Active"
// @Success 200 {object} domain.ActiveReport "ok"
// @Router /analytics/active [post]
func (h *handlers) active(r *stdhttp.Request, in domain.ActiveInput) (any, error) {
	return h.svc.Active(r.Context(), in)
}

// swagger:route POST /analytics/daily Analytics daily
// @Summary Daily funnel trend
// @Tags analytics
// @Accept json
// @Produce json
// @Param payload body domain.DailyInput true "Daily"
// @Success 200 {object} domain.DailyReport "ok"
// @Router /analytics/daily [post]
func (h *handlers) daily(r *stdhttp.Request, in domain.DailyInput) (any, error) {
	return h.svc.Daily(r.Context(), in)
}

// swagger:route POST /analytics/usage Analytics usage
// @Summary Per-day per-tool usage stats
// @Tags analytics
// @Accept json
// @Produce json
// @Param payload body domain.UsageInput true "Usage"
// @Success 200 {object} domain.UsageReport "ok"
// @Router /analytics/usage [post]
func (h *handlers) usage(r *stdhttp.Request, in domain.UsageInput) (any, error) {
	return h.svc.Usage(r.Context(), in)
}

// swagger:route POST /analytics/cleanup Analytics cleanup
// @Summary Delete expired unconverted ledgers
// @Tags analytics
// @Accept json
// @Produce json
// @Param payload body domain.CleanupInput true "Cleanup"
// @Success 200 {object} domain.CleanupResult "ok"
// @Router /analytics/cleanup [post]
func (h *handlers) cleanup(r *stdhttp.Request, in domain.CleanupInput) (any, error) {
	return h.svc.Cleanup(r.Context(), in)
}
