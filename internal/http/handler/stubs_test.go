package handler_test

import (
	"context"
	"errors"
	"net/http"
	"time"

	"memebattles/internal/http/payload"
	"memebattles/internal/league/claim"
	"memebattles/internal/league/epoch"
	"memebattles/internal/league/leaderboard"
	"memebattles/internal/league/model"
	"memebattles/internal/league/pool"
)

// stubClaims scripts the settlement coordinator surface and records the
// requests it receives.
type stubClaims struct {
	nonce       string
	nonceExpiry time.Time
	nonceErr    error

	claimResult claim.Result
	claimErr    error
	claimCalls  int
	lastClaim   claim.Request

	recordResult claim.Result
	recordErr    error

	operatorResult claim.Result
	operatorErr    error
	operatorCalls  int
	lastSlot       model.SlotID
	lastTxHash     string

	report    claim.Report
	reportErr error
}

func (s *stubClaims) Nonce(ctx context.Context, chainID int64, address string) (string, time.Time, error) {
	if s.nonceErr != nil {
		return "", time.Time{}, s.nonceErr
	}
	return s.nonce, s.nonceExpiry, nil
}

func (s *stubClaims) Claim(ctx context.Context, req claim.Request) (claim.Result, error) {
	s.claimCalls++
	s.lastClaim = req
	if s.claimErr != nil {
		return claim.Result{}, s.claimErr
	}
	return s.claimResult, nil
}

func (s *stubClaims) Record(ctx context.Context, req claim.Request) (claim.Result, error) {
	if s.recordErr != nil {
		return claim.Result{}, s.recordErr
	}
	return s.recordResult, nil
}

func (s *stubClaims) RecordOperator(ctx context.Context, id model.SlotID, txHash string) (claim.Result, error) {
	s.operatorCalls++
	s.lastSlot = id
	s.lastTxHash = txHash
	if s.operatorErr != nil {
		return claim.Result{}, s.operatorErr
	}
	return s.operatorResult, nil
}

func (s *stubClaims) Unpaid(ctx context.Context, chainID int64) (claim.Report, error) {
	if s.reportErr != nil {
		return claim.Report{}, s.reportErr
	}
	return s.report, nil
}

type stubPools struct {
	breakdown pool.Breakdown
	err       error
}

func (s *stubPools) Breakdown(ctx context.Context, chainID int64, period model.Period, window epoch.Window) (pool.Breakdown, error) {
	if s.err != nil {
		return pool.Breakdown{}, s.err
	}
	return s.breakdown, nil
}

type stubBoards struct {
	entries []leaderboard.Entry
	err     error
}

func (s *stubBoards) Rank(ctx context.Context, chainID int64, category model.Category, window epoch.Window) ([]leaderboard.Entry, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.entries, nil
}

type stubOperators struct {
	token   string
	authErr error

	operatorName string
	authorizeErr error
}

func (s *stubOperators) Authenticate(ctx context.Context, name, password string) (string, error) {
	if s.authErr != nil {
		return "", s.authErr
	}
	return s.token, nil
}

func (s *stubOperators) Authorize(token string) (string, error) {
	if s.authorizeErr != nil {
		return "", s.authorizeErr
	}
	return s.operatorName, nil
}

// stubValidator decodes with the real validator unless scripted to fail.
type stubValidator struct {
	err   error
	calls int
}

var errStubDecode = errors.New("stub decode failure")

func (s *stubValidator) DecodeAndValidateJSONPayload(r *http.Request, object any) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return payload.DecodeValidator{}.DecodeAndValidateJSONPayload(r, object)
}
