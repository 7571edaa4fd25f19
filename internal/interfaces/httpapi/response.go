package httpapi

import (
	"context"
	"errors"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "fpl-creator-match"
)

// Responses follow the Google JSON style guide envelope.
type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
}

type errorRule struct {
	targets []error
	mapped  mappedError
}

// First matching rule wins.
var errorRules = []errorRule{
	{[]error{usecase.ErrInvalidInput}, mappedError{http.StatusBadRequest, "invalidInput", "INVALID_ARGUMENT"}},
	{[]error{usecase.ErrNotFound}, mappedError{http.StatusNotFound, "notFound", "NOT_FOUND"}},
	{[]error{usecase.ErrUnauthorized}, mappedError{http.StatusUnauthorized, "unauthorized", "UNAUTHENTICATED"}},
	{
		[]error{usecase.ErrDependencyUnavailable, resilience.ErrExhaustedRetries, resilience.ErrCircuitOpen},
		mappedError{http.StatusServiceUnavailable, "dependencyUnavailable", "UNAVAILABLE"},
	},
	{[]error{context.DeadlineExceeded}, mappedError{http.StatusGatewayTimeout, "deadlineExceeded", "DEADLINE_EXCEEDED"}},
	{[]error{usecase.ErrTooManySkippedPages}, mappedError{http.StatusBadGateway, "upstreamUnstable", "UNAVAILABLE"}},
	{[]error{usecase.ErrStoreWrite}, mappedError{http.StatusInternalServerError, "storeWriteFailed", "INTERNAL"}},
	{
		[]error{squad.ErrInvalidSquadSize, squad.ErrDuplicatePlayerInSquad, squad.ErrInvalidArmband},
		mappedError{http.StatusBadGateway, "invalidUpstreamSquad", "UNAVAILABLE"},
	},
}

var (
	internalMapped         = mappedError{http.StatusInternalServerError, "internalError", "INTERNAL"}
	upstreamRejectedMapped = mappedError{http.StatusBadGateway, "upstreamRejected", "UNAVAILABLE"}
)

// upstreamFault is what the FPL client reports for a failed call.
type upstreamFault interface {
	HTTPStatus() int
	Transient() bool
}

func mapError(err error) mappedError {
	for _, rule := range errorRules {
		for _, target := range rule.targets {
			if errors.Is(err, target) {
				return rule.mapped
			}
		}
	}
	// Permanent upstream faults that no rule claimed (404 becomes ErrNotFound).
	var fault upstreamFault
	if errors.As(err, &fault) && !fault.Transient() {
		return upstreamRejectedMapped
	}
	return internalMapped
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(_ context.Context, w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, googleResponseEnvelope{APIVersion: googleAPIVersion, Data: data})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	markSpanFailure(ctx, mapped.HTTPStatus, err)
	writeJSON(w, mapped.HTTPStatus, errorEnvelope(mapped, err.Error()))
}

// writeInternalError hides the cause from the client.
func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	err := errors.New("internal server error")
	markSpanFailure(ctx, internalMapped.HTTPStatus, err)
	writeJSON(w, internalMapped.HTTPStatus, errorEnvelope(internalMapped, err.Error()))
}

func errorEnvelope(mapped mappedError, msg string) googleResponseEnvelope {
	return googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: msg,
			Status:  mapped.Status,
			Errors:  []googleErrorItem{{Domain: errorDomain, Reason: mapped.Reason, Message: msg}},
		},
	}
}
