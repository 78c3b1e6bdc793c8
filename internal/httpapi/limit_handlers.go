package httpapi

import (
	"net/http"
	"strings"

	"cantio.org/internal/audit"
	"cantio.org/internal/authz"
	"cantio.org/internal/limits"
	"cantio.org/internal/obs"
	"cantio.org/internal/roles"
)

type resourceUsage struct {
	Current    int                 `json:"current"`
	Limit      int                 `json:"limit"`
	Percentage float64             `json:"percentage"`
	Level      limits.WarningLevel `json:"level"`
}

type usageResponse struct {
	Tier            limits.Tier                       `json:"tier"`
	Description     string                            `json:"description"`
	Usage           limits.Usage                      `json:"usage"`
	Resources       map[limits.Resource]resourceUsage `json:"resources"`
	RecommendedTier limits.Tier                       `json:"recommended_tier"`
}

// handleUsage reports per-resource consumption against the organization's
// tier quotas, with warning levels and the cheapest tier that fits current
// usage.
func (a *API) handleUsage(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	session, ok := a.sessionForOrg(w, r, orgID)
	if !ok {
		return
	}
	if _, ok := a.requireDecision(w, r, session, authz.RequirePermission(roles.PermViewUsageStats)); !ok {
		return
	}

	tier, err := a.store.Tier(r.Context(), orgID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "subscription lookup failed")
		return
	}
	usage, err := a.store.UsageStats(r.Context(), orgID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "usage lookup failed")
		return
	}

	resources := make(map[limits.Resource]resourceUsage, len(limits.Resources))
	quota := limits.QuotaFor(tier)
	for _, res := range limits.Resources {
		pct := limits.UsagePercentage(tier, usage, res)
		resources[res] = resourceUsage{
			Current:    usage.Count(res),
			Limit:      quota.Cap(res),
			Percentage: pct,
			Level:      limits.WarnLevel(pct),
		}
	}
	writeJSON(w, http.StatusOK, usageResponse{
		Tier:            tier,
		Description:     limits.TierDescription(tier),
		Usage:           usage,
		Resources:       resources,
		RecommendedTier: limits.RecommendedTier(usage),
	})
}

type limitCheckResponse struct {
	limits.CheckResult
	Upgrade *limits.UpgradeInfo `json:"upgrade,omitempty"`
}

// handleLimitCheck answers "could one more X be created right now" without
// creating anything.
func (a *API) handleLimitCheck(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	session, ok := a.sessionForOrg(w, r, orgID)
	if !ok {
		return
	}
	if _, ok := a.requireDecision(w, r, session, authz.RequirePermission(roles.PermViewUsageStats)); !ok {
		return
	}

	resource := limits.Resource(strings.TrimSpace(r.URL.Query().Get("resource")))
	if resource == "" {
		writeError(w, r, http.StatusBadRequest, "resource query parameter is required")
		return
	}
	known := false
	for _, res := range limits.Resources {
		if res == resource {
			known = true
			break
		}
	}
	if !known {
		writeError(w, r, http.StatusBadRequest, "unknown resource")
		return
	}

	result, err := a.checkLimit(w, r, orgID, resource)
	if err != nil {
		return
	}
	writeJSON(w, http.StatusOK, checkResponse(result))
}

// handleCreateChurch gates church creation on both the permission matrix and
// the churches quota. A quota denial is 402 with the upgrade suggestion.
func (a *API) handleCreateChurch(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	session, ok := a.sessionForOrg(w, r, orgID)
	if !ok {
		return
	}
	if _, ok := a.requireDecision(w, r, session, authz.RequirePermission(roles.PermCreateChurch)); !ok {
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	result, err := a.checkLimit(w, r, orgID, limits.ResourceChurches)
	if err != nil {
		return
	}
	if !result.Allowed {
		writeJSON(w, http.StatusPaymentRequired, checkResponse(result))
		return
	}

	id, err := a.store.CreateChurch(r.Context(), orgID, req.Name)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "church creation failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "churches.created", map[string]any{
		"church_id": id,
		"name":      req.Name,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

// handleCreateMinistry mirrors handleCreateChurch for the ministries quota.
func (a *API) handleCreateMinistry(w http.ResponseWriter, r *http.Request, orgID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	session, ok := a.sessionForOrg(w, r, orgID)
	if !ok {
		return
	}
	if _, ok := a.requireDecision(w, r, session, authz.RequirePermission(roles.PermCreateMinistry)); !ok {
		return
	}

	var req struct {
		Name     string `json:"name"`
		ChurchID string `json:"church_id"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, r, http.StatusBadRequest, "name is required")
		return
	}

	result, err := a.checkLimit(w, r, orgID, limits.ResourceMinistries)
	if err != nil {
		return
	}
	if !result.Allowed {
		writeJSON(w, http.StatusPaymentRequired, checkResponse(result))
		return
	}

	id, err := a.store.CreateMinistry(r.Context(), orgID, req.ChurchID, req.Name)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "ministry creation failed")
		return
	}
	_ = audit.LogEvent(r.Context(), "ministries.created", map[string]any{
		"ministry_id": id,
		"name":        req.Name,
	})
	writeJSON(w, http.StatusCreated, map[string]any{"id": id, "name": req.Name})
}

// checkLimit loads tier and usage and runs the quota check. A non-nil error
// means the response has already been written.
func (a *API) checkLimit(w http.ResponseWriter, r *http.Request, orgID string, resource limits.Resource) (limits.CheckResult, error) {
	tier, err := a.store.Tier(r.Context(), orgID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "subscription lookup failed")
		return limits.CheckResult{}, err
	}
	usage, err := a.store.UsageStats(r.Context(), orgID)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "usage lookup failed")
		return limits.CheckResult{}, err
	}
	result := limits.CheckLimit(tier, usage, resource)
	obs.ObserveLimitCheck(string(resource), result.Allowed)
	return result, nil
}

func checkResponse(result limits.CheckResult) limitCheckResponse {
	resp := limitCheckResponse{CheckResult: result}
	if !result.Allowed {
		if info, ok := limits.UpgradeFor(result.Tier, result.Kind); ok {
			resp.Upgrade = &info
		}
	}
	return resp
}
