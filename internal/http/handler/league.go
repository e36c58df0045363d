package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"memebattles/internal/http/handler/middleware"
	"memebattles/internal/http/payload"
	"memebattles/internal/league/claim"
	"memebattles/internal/league/epoch"
	"memebattles/internal/league/model"
	"memebattles/internal/league/operator"
	tokenIssuer "memebattles/pkg/jwt"
)

var (
	Authenticate   = "POST /league/authenticate"
	IssueNonce     = "POST /league/nonce"
	SettleClaim    = "POST /league/claim"
	RecordPayout   = "POST /league/claim/record"
	OperatorPayout = "POST /league/payouts"
	GetEpoch       = "GET /league/epoch"
	GetPool        = "GET /league/pool"
	GetLeaderboard = "GET /league/leaderboard"
	GetUnpaid      = "GET /league/unpaid"
)

type LeagueHandler struct {
	logs             *zap.SugaredLogger
	requestValidator RequestValidator
	claims           ClaimService
	pools            PoolService
	boards           BoardService
	operators        OperatorService
	clock            clockwork.Clock
}

func NewLeagueHandler(
	logger *zap.SugaredLogger,
	requestValidator RequestValidator,
	claimService ClaimService,
	poolService PoolService,
	boardService BoardService,
	operatorService OperatorService,
	clock clockwork.Clock,
) *LeagueHandler {
	return &LeagueHandler{
		logs:             logger,
		requestValidator: requestValidator,
		claims:           claimService,
		pools:            poolService,
		boards:           boardService,
		operators:        operatorService,
		clock:            clock,
	}
}

func (h *LeagueHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	var auth payload.AuthRequest
	err := h.requestValidator.DecodeAndValidateJSONPayload(r, &auth)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not authenticate",
			Error:   fmt.Errorf("invalid request payload: %w", err).Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("failed to decode and validate request payload",
			"error", err,
			"handler", Authenticate,
			"request_id", requestId)
		return
	}

	token, err := h.operators.Authenticate(r.Context(), auth.Operator, auth.Password)
	if err != nil {
		resp := Response{
			Message: "Login failed",
		}
		httpCode := http.StatusInternalServerError
		if errors.Is(err, operator.ErrOperatorNotFound) || errors.Is(err, operator.ErrIncorrectPassword) {
			httpCode = http.StatusUnauthorized
			resp.Error = err.Error()
		} else {
			resp.Error = "unexpected error occurred"
		}
		h.respond(w, resp, httpCode, requestId)
		h.logs.Errorw("authentication failed",
			"error", err,
			"handler", Authenticate,
			"request_id", requestId)
		return
	}

	resp := map[string]string{
		"token": token,
	}
	h.respond(w, resp, http.StatusOK, requestId)
}

func (h *LeagueHandler) HandleIssueNonce(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	var req payload.NonceRequest
	err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not issue nonce",
			Error:   fmt.Errorf("invalid request payload: %w", err).Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("failed to decode and validate request payload",
			"error", err,
			"handler", IssueNonce,
			"request_id", requestId)
		return
	}

	nonce, expiresAt, err := h.claims.Nonce(r.Context(), req.ChainID, req.Address)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not issue nonce",
			Error:   err.Error(),
		}, claimErrorStatus(err),
			requestId)
		h.logs.Errorw("failed to issue nonce",
			"error", err,
			"handler", IssueNonce,
			"request_id", requestId)
		return
	}

	resp := map[string]string{
		"nonce":     nonce,
		"expiresAt": expiresAt.Format(time.RFC3339),
	}
	h.respond(w, resp, http.StatusOK, requestId)
}

func (h *LeagueHandler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	var req payload.ClaimRequest
	err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not settle claim",
			Error:   fmt.Errorf("invalid request payload: %w", err).Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("failed to decode and validate request payload",
			"error", err,
			"handler", SettleClaim,
			"request_id", requestId)
		return
	}

	claimReq, err := req.ToClaimRequest()
	if err != nil {
		h.respond(w, Response{
			Message: "Could not settle claim",
			Error:   err.Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("invalid claim parameters",
			"error", err,
			"handler", SettleClaim,
			"request_id", requestId)
		return
	}

	result, err := h.claims.Claim(r.Context(), claimReq)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not settle claim",
			Error:   err.Error(),
		}, claimErrorStatus(err),
			requestId)
		h.logs.Errorw("failed to settle claim",
			"error", err,
			"slot", claimReq.Slot.String(),
			"handler", SettleClaim,
			"request_id", requestId)
		return
	}

	h.logs.Infow("claim settled",
		"slot", claimReq.Slot.String(),
		"status", result.Status,
		"handler", SettleClaim,
		"request_id", requestId)
	h.respond(w, toClaimResultView(result), http.StatusOK, requestId)
}

func (h *LeagueHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	var req payload.RecordRequest
	err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not record payout",
			Error:   fmt.Errorf("invalid request payload: %w", err).Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("failed to decode and validate request payload",
			"error", err,
			"handler", RecordPayout,
			"request_id", requestId)
		return
	}

	claimReq, err := req.ToClaimRequest()
	if err != nil {
		h.respond(w, Response{
			Message: "Could not record payout",
			Error:   err.Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("invalid record parameters",
			"error", err,
			"handler", RecordPayout,
			"request_id", requestId)
		return
	}

	result, err := h.claims.Record(r.Context(), claimReq)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not record payout",
			Error:   err.Error(),
		}, claimErrorStatus(err),
			requestId)
		h.logs.Errorw("failed to record payout",
			"error", err,
			"slot", claimReq.Slot.String(),
			"handler", RecordPayout,
			"request_id", requestId)
		return
	}

	h.logs.Infow("payout recorded",
		"slot", claimReq.Slot.String(),
		"tx_hash", result.TxHash,
		"handler", RecordPayout,
		"request_id", requestId)
	h.respond(w, toClaimResultView(result), http.StatusOK, requestId)
}

// HandleOperatorPayout records a payout the operator executed directly from
// the vault, closing out a slot reported by the unpaid export. The claimant
// plays no part here, so the route is gated on the operator token instead of
// a claim signature.
func (h *LeagueHandler) HandleOperatorPayout(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	operatorName, ok := h.authorizeOperator(w, r, OperatorPayout, requestId)
	if !ok {
		return
	}

	var req payload.OperatorPayoutRequest
	err := h.requestValidator.DecodeAndValidateJSONPayload(r, &req)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not record payout",
			Error:   fmt.Errorf("invalid request payload: %w", err).Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("failed to decode and validate request payload",
			"error", err,
			"handler", OperatorPayout,
			"request_id", requestId)
		return
	}

	slot, err := req.ToSlotID()
	if err != nil {
		h.respond(w, Response{
			Message: "Could not record payout",
			Error:   err.Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("invalid payout parameters",
			"error", err,
			"handler", OperatorPayout,
			"request_id", requestId)
		return
	}

	result, err := h.claims.RecordOperator(r.Context(), slot, req.TxHash)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not record payout",
			Error:   err.Error(),
		}, claimErrorStatus(err),
			requestId)
		h.logs.Errorw("failed to record operator payout",
			"error", err,
			"slot", slot.String(),
			"handler", OperatorPayout,
			"request_id", requestId)
		return
	}

	h.logs.Infow("operator payout recorded",
		"operator", operatorName,
		"slot", slot.String(),
		"tx_hash", result.TxHash,
		"handler", OperatorPayout,
		"request_id", requestId)
	h.respond(w, toClaimResultView(result), http.StatusOK, requestId)
}

func (h *LeagueHandler) HandleGetEpoch(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	query, period, ok := h.leagueQuery(w, r, GetEpoch, requestId)
	if !ok {
		return
	}

	window := epoch.At(period, query.Offset, h.clock.Now())
	h.respond(w, toEpochView(query.ChainID, period, window), http.StatusOK, requestId)
}

func (h *LeagueHandler) HandleGetPool(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	query, period, ok := h.leagueQuery(w, r, GetPool, requestId)
	if !ok {
		return
	}

	window := epoch.At(period, query.Offset, h.clock.Now())
	breakdown, err := h.pools.Breakdown(r.Context(), query.ChainID, period, window)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not compute prize pool",
			Error:   err.Error(),
		}, http.StatusInternalServerError,
			requestId)
		h.logs.Errorw("failed to compute prize pool",
			"error", err,
			"handler", GetPool,
			"request_id", requestId)
		return
	}

	h.respond(w, toPoolView(breakdown), http.StatusOK, requestId)
}

func (h *LeagueHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	query, period, ok := h.leagueQuery(w, r, GetLeaderboard, requestId)
	if !ok {
		return
	}

	category, err := model.ParseCategory(query.Category)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not rank leaderboard",
			Error:   err.Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("invalid category parameter",
			"error", err,
			"handler", GetLeaderboard,
			"request_id", requestId)
		return
	}

	window := epoch.At(period, query.Offset, h.clock.Now())
	entries, err := h.boards.Rank(r.Context(), query.ChainID, category, window)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not rank leaderboard",
			Error:   err.Error(),
		}, http.StatusInternalServerError,
			requestId)
		h.logs.Errorw("failed to rank leaderboard",
			"error", err,
			"handler", GetLeaderboard,
			"request_id", requestId)
		return
	}

	resp := map[string]any{
		"chainId":  query.ChainID,
		"period":   string(period),
		"category": string(category),
		"entries":  toEntryViews(entries),
	}
	h.respond(w, resp, http.StatusOK, requestId)
}

func (h *LeagueHandler) HandleGetUnpaid(w http.ResponseWriter, r *http.Request) {
	requestId := h.requestID(r)

	operatorName, ok := h.authorizeOperator(w, r, GetUnpaid, requestId)
	if !ok {
		return
	}

	values, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not build unpaid report",
			Error:   fmt.Errorf("parse query parameters: %w", err).Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("failed to parse query parameters", "error", err, "handler", GetUnpaid, "request_id", requestId)
		return
	}

	query, err := payload.ParseLeagueQuery(values)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not build unpaid report",
			Error:   err.Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("invalid query parameters", "error", err, "handler", GetUnpaid, "request_id", requestId)
		return
	}

	report, err := h.claims.Unpaid(r.Context(), query.ChainID)
	if err != nil {
		h.respond(w, Response{
			Message: "Could not build unpaid report",
			Error:   err.Error(),
		}, http.StatusInternalServerError,
			requestId)
		h.logs.Errorw("failed to build unpaid report",
			"error", err,
			"handler", GetUnpaid,
			"request_id", requestId)
		return
	}

	h.logs.Infow("unpaid report exported",
		"operator", operatorName,
		"chain_id", query.ChainID,
		"handler", GetUnpaid,
		"request_id", requestId)
	h.respond(w, toReportView(report), http.StatusOK, requestId)
}

// authorizeOperator gates the operator-only routes on the AUTH_TOKEN header.
func (h *LeagueHandler) authorizeOperator(w http.ResponseWriter, r *http.Request, route, requestId string) (string, bool) {
	authToken := r.Header.Get("AUTH_TOKEN")
	if authToken == "" {
		h.respond(w, Response{
			Message: "Authentication failed",
			Error:   "AUTH_TOKEN header is required",
		}, http.StatusUnauthorized,
			requestId)
		h.logs.Errorw("missing AUTH_TOKEN header", "handler", route, "request_id", requestId)
		return "", false
	}

	operatorName, err := h.operators.Authorize(authToken)
	if err != nil {
		h.respond(w, Response{
			Message: "Authentication failed",
			Error:   err.Error(),
		}, http.StatusUnauthorized,
			requestId)
		h.logs.Errorw("operator token rejected",
			"error", err,
			"handler", route,
			"request_id", requestId)
		return "", false
	}
	return operatorName, true
}

// leagueQuery parses and validates the shared chainId/period/offset query
// parameters of the read endpoints.
func (h *LeagueHandler) leagueQuery(w http.ResponseWriter, r *http.Request, route, requestId string) (payload.LeagueQuery, model.Period, bool) {
	values, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		h.respond(w, Response{
			Message: "Request failed",
			Error:   fmt.Errorf("parse query parameters: %w", err).Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("failed to parse query parameters", "error", err, "handler", route, "request_id", requestId)
		return payload.LeagueQuery{}, "", false
	}

	query, err := payload.ParseLeagueQuery(values)
	if err == nil {
		err = query.Validate()
	}
	if err != nil {
		h.respond(w, Response{
			Message: "Request failed",
			Error:   err.Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("invalid query parameters", "error", err, "handler", route, "request_id", requestId)
		return payload.LeagueQuery{}, "", false
	}

	period, err := model.ParsePeriod(query.Period)
	if err != nil {
		h.respond(w, Response{
			Message: "Request failed",
			Error:   err.Error(),
		}, http.StatusBadRequest,
			requestId)
		h.logs.Errorw("invalid period parameter", "error", err, "handler", route, "request_id", requestId)
		return payload.LeagueQuery{}, "", false
	}

	return query, period, true
}

func (h *LeagueHandler) requestID(r *http.Request) string {
	requestId := ""
	reqIdCtx := r.Context().Value(middleware.RequestIDKey)
	if reqIdCtx != nil {
		requestId = reqIdCtx.(string)
	}
	return requestId
}

func (h *LeagueHandler) respond(w http.ResponseWriter, resp any, code int, requestId string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, oopsErr, http.StatusInternalServerError)
		h.logs.Errorw("failed to encode response",
			"error", err,
			"request_id", requestId)
	}
}

// claimErrorStatus maps the settlement error taxonomy onto HTTP codes:
// validation 400, authentication 401, missing slot 404, recipient 403,
// lifecycle conflicts 409, anything else 500.
func claimErrorStatus(err error) int {
	switch {
	case errors.Is(err, claim.ErrBadRequest),
		errors.Is(err, model.ErrBadPeriod),
		errors.Is(err, model.ErrBadCategory):
		return http.StatusBadRequest
	case errors.Is(err, claim.ErrBadSignature),
		errors.Is(err, claim.ErrSignerMismatch),
		errors.Is(err, model.ErrNonceNotFound),
		errors.Is(err, model.ErrNonceExpired),
		errors.Is(err, model.ErrNonceUsed),
		errors.Is(err, tokenIssuer.ErrTokenNotValid),
		errors.Is(err, tokenIssuer.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, claim.ErrRecipientMismatch):
		return http.StatusForbidden
	case errors.Is(err, model.ErrSlotNotFound):
		return http.StatusNotFound
	case errors.Is(err, claim.ErrClaimNotOpen),
		errors.Is(err, claim.ErrClaimExpired),
		errors.Is(err, claim.ErrSlotSwept):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
