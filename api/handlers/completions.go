package handlers

import (
	"net/http"

	"github.com/routeforge/gateway/api"
	"github.com/routeforge/gateway/internal/router"
	"github.com/routeforge/gateway/types"
	"go.uber.org/zap"
)

// =============================================================================
// 💬 路由补全接口 Handler
// =============================================================================

// CompletionHandler exposes the routing core over HTTP.
type CompletionHandler struct {
	router *router.Router
	logger *zap.Logger
}

// NewCompletionHandler creates a completion handler over an already-wired Router.
func NewCompletionHandler(r *router.Router, logger *zap.Logger) *CompletionHandler {
	return &CompletionHandler{router: r, logger: logger}
}

// HandleCompletion routes one chat completion request through the full
// pipeline: optimization, complexity analysis, budget admission, cache
// lookup, provider selection and fallback execution.
// @Summary Route a chat completion
// @Description Routes a prompt to the best available provider under budget and cache policy
// @Tags completions
// @Accept json
// @Produce json
// @Param request body api.CompletionRequest true "completion request"
// @Success 200 {object} api.CompletionResponse "routed response, or an in-band denial/failure with success=false"
// @Failure 400 {object} Response "invalid request"
// @Failure 401 {object} Response "unauthorized"
// @Failure 500 {object} Response "internal error"
// @Router /v1/chat/completions [post]
func (h *CompletionHandler) HandleCompletion(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.CompletionRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if err := h.validateCompletionRequest(&req); err != nil {
		WriteError(w, err, h.logger)
		return
	}

	routerReq := h.convertToRouterRequest(&req)

	resp := h.router.Route(r.Context(), routerReq)

	if !resp.Success {
		// Budget denial, provider exhaustion, and any other router-level
		// outcome are in-band business results, not transport errors —
		// they are reported as HTTP 200 with success=false, per the
		// Error-prefix convention the Router already applied.
		code := resp.ErrorCode
		if code == "" {
			code = types.ErrInternalError
		}
		h.logger.Warn("completion request denied or failed in-band",
			zap.String("request_id", resp.RequestID),
			zap.String("error_code", string(code)),
			zap.String("error", resp.Error),
		)
		WriteBusinessFailure(w, resp.RequestID, code, resp.Error)
		return
	}

	h.logger.Info("routed completion",
		zap.String("request_id", resp.RequestID),
		zap.String("provider_id", resp.ProviderID),
		zap.Bool("cache_hit", resp.CacheHit),
		zap.Float64("latency_ms", resp.LatencyMs),
	)

	WriteSuccess(w, h.convertToAPIResponse(resp))
}

func (h *CompletionHandler) validateCompletionRequest(req *api.CompletionRequest) *types.Error {
	if req.Prompt == "" {
		return types.NewError(types.ErrInvalidRequest, "prompt is required")
	}
	if req.Temperature < 0 || req.Temperature > 2 {
		return types.NewError(types.ErrInvalidRequest, "temperature must be between 0 and 2")
	}
	return nil
}

func (h *CompletionHandler) convertToRouterRequest(req *api.CompletionRequest) *types.Request {
	priority := types.PriorityNormal
	if req.Priority != "" {
		priority = types.Priority(req.Priority)
	}
	return &types.Request{
		Prompt:       req.Prompt,
		UserID:       req.UserID,
		TeamID:       req.TeamID,
		CompanyID:    req.CompanyID,
		Priority:     priority,
		Temperature:  req.Temperature,
		MaxTokens:    req.MaxTokens,
		Provider:     req.Provider,
		Requirements: req.Requirements,
	}
}

func (h *CompletionHandler) convertToAPIResponse(resp *types.Response) *api.CompletionResponse {
	return &api.CompletionResponse{
		RequestID:  resp.RequestID,
		Content:    resp.Content,
		ProviderID: resp.ProviderID,
		Model:      resp.Model,
		Tokens: api.TokenUsage{
			PromptTokens:     resp.Tokens.PromptTokens,
			CompletionTokens: resp.Tokens.CompletionTokens,
			TotalTokens:      resp.Tokens.TotalTokens,
		},
		CostUSD:    resp.CostUSD,
		LatencyMs:  resp.LatencyMs,
		CacheHit:   resp.CacheHit,
		CacheLevel: string(resp.CacheLevel),
		Diagnostics: api.RouteDiagnostics{
			ComplexityTier:       string(resp.Diagnostics.ComplexityTier),
			OptimizationRatio:    resp.Diagnostics.OptimizationRatio,
			AdmissionStatus:      string(resp.Diagnostics.AdmissionStatus),
			ProviderSelectReason: resp.Diagnostics.ProviderSelectReason,
			LevelsChecked:        resp.Diagnostics.LevelsChecked,
			LookupTimeMs:         resp.Diagnostics.LookupTimeMs,
		},
	}
}
