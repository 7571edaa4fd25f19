package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-creator-match/external/fpl"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
}

func TestMapError_DomainErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		reason string
	}{
		{name: "not found", err: fmt.Errorf("%w: fetch squad: remote 404", usecase.ErrNotFound), status: http.StatusNotFound, reason: "notFound"},
		{name: "retries exhausted", err: fmt.Errorf("fetch squad: %w", &resilience.ExhaustedRetriesError{Attempts: 3, Last: errors.New("timeout")}), status: http.StatusServiceUnavailable, reason: "dependencyUnavailable"},
		{name: "circuit open", err: fmt.Errorf("fetch bootstrap: %w", resilience.ErrCircuitOpen), status: http.StatusServiceUnavailable, reason: "dependencyUnavailable"},
		{name: "skipped pages", err: fmt.Errorf("%w: 5 in a row", usecase.ErrTooManySkippedPages), status: http.StatusBadGateway, reason: "upstreamUnstable"},
		{name: "store write", err: fmt.Errorf("%w: commit page 3: disk full", usecase.ErrStoreWrite), status: http.StatusInternalServerError, reason: "storeWriteFailed"},
		{name: "invalid upstream squad", err: fmt.Errorf("decode squad: %w", squad.ErrInvalidArmband), status: http.StatusBadGateway, reason: "invalidUpstreamSquad"},
		{
			name: "malformed upstream squad",
			err: fmt.Errorf("fetch squad of manager 7: %w", &fpl.RemoteFault{
				Op: "picks", StatusCode: http.StatusOK, Kind: fpl.FaultPermanent,
				Err: fmt.Errorf("malformed fpl payload: manager 7: %w", squad.ErrInvalidSquadSize),
			}),
			status: http.StatusBadGateway,
			reason: "invalidUpstreamSquad",
		},
		{
			name:   "permanent upstream fault",
			err:    fmt.Errorf("fetch squad of manager 7: %w", &fpl.RemoteFault{Op: "picks", StatusCode: http.StatusForbidden, Kind: fpl.FaultPermanent}),
			status: http.StatusBadGateway,
			reason: "upstreamRejected",
		},
		{
			name:   "transient upstream fault",
			err:    fmt.Errorf("fetch bootstrap: %w", &fpl.RemoteFault{Op: "bootstrap", StatusCode: http.StatusBadGateway, Kind: fpl.FaultTransient}),
			status: http.StatusInternalServerError,
			reason: "internalError",
		},
		{name: "unknown", err: errors.New("boom"), status: http.StatusInternalServerError, reason: "internalError"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err)
			if got.HTTPStatus != tt.status {
				t.Fatalf("mapError(%v) status=%d want=%d", tt.err, got.HTTPStatus, tt.status)
			}
			if got.Reason != tt.reason {
				t.Fatalf("mapError(%v) reason=%q want=%q", tt.err, got.Reason, tt.reason)
			}
		})
	}
}
