// Package http provides http transport for visitors
package http

import (
	stdhttp "net/http"

	"toolgate/internal/modkit/httpkit"
	identdom "toolgate/internal/services/ident/domain"
	"toolgate/internal/services/visitors/domain"
	svc "toolgate/internal/services/visitors/service"
)

// Register mounts the router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.CheckInput](r, "/check", h.check)
	httpkit.PostJSON[domain.UseInput](r, "/use", h.use)
	httpkit.PostJSON[domain.ConvertInput](r, "/convert", h.convert)
	httpkit.PostJSON[domain.SummaryInput](r, "/summary", h.summary)
}

type handlers struct{ svc svc.Service }

// hydrate fills signals the client cannot be trusted to supply
func hydrate(r *stdhttp.Request, sig *domain.Signals) {
	sig.IP = identdom.RealIP(r)
	if sig.UserAgent == "" {
		sig.UserAgent = r.UserAgent()
	}
	if sig.Referrer == "" {
		sig.Referrer = r.Referer()
	}
}

// swagger:route POST /visitors/check Visitors check
// @Summary Check whether the visitor may run another tool
// @Tags visitors
// @Accept json
// @Produce json
// @Param payload body domain.CheckInput true "Check"
// @Success 200 {object} domain.CheckResult "ok"
// @Router /visitors/check [post]
func (h *handlers) check(r *stdhttp.Request, in domain.CheckInput) (any, error) {
	hydrate(r, &in.Signals)
	return h.svc.Check(r.Context(), in)
}

// swagger:route POST /visitors/use Visitors use
// @Summary Record one tool use against the visitor ledger
// @Tags visitors
// @Accept json
// @Produce json
// @Param payload body domain.UseInput true "Use"
// @Success 200 {object} domain.UseResult "ok"
// @Failure 422 {object} httpkit.Envelope "validation"
// @Router /visitors/use [post]
func (h *handlers) use(r *stdhttp.Request, in domain.UseInput) (any, error) {
	hydrate(r, &in.Signals)
	return h.svc.Use(r.Context(), in)
}

// swagger:route POST /visitors/convert Visitors convert
// @Summary Attribute a signup to the visitor behind the signals
// @Tags visitors
// @Accept json
// @Produce json
// @Param payload body domain.ConvertInput true "Convert"
// @Success 200 {object} domain.ConvertResult "ok"
// @Router /visitors/convert [post]
func (h *handlers) convert(r *stdhttp.Request, in domain.ConvertInput) (any, error) {
	hydrate(r, &in.Signals)
	return h.svc.Convert(r.Context(), in)
}

// swagger:route POST /visitors/summary Visitors summary
// @Summary Usage summary for one visitor
// @Tags visitors
// @Accept json
// @Produce json
// @Param payload body domain.SummaryInput true "Summary"
// @Success 200 {object} domain.Summary "ok"
// @Router /visitors/summary [post]
func (h *handlers) summary(r *stdhttp.Request, in domain.SummaryInput) (any, error) {
	hydrate(r, &in.Signals)
	return h.svc.Summary(r.Context(), in)
}
