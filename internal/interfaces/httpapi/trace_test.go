package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestHandlerSpanName(t *testing.T) {
	assert.Equal(t, "httpapi.Handler.GetComparison", handlerSpanName("GetComparison"))
}

func TestStartHandlerSpan_UntracedRequestStaysNoop(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	ctx, span := startHandlerSpan(req, "Healthz")
	defer span.End()

	assert.False(t, span.IsRecording())
	assert.Equal(t, req.Context(), ctx)
}

func TestMarkSpanFailure_OnlyServerErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	ctx, clientSpan := tracer.Start(context.Background(), "client")
	markSpanFailure(ctx, http.StatusBadRequest, errors.New("bad top"))
	clientSpan.End()

	ctx, serverSpan := tracer.Start(context.Background(), "server")
	markSpanFailure(ctx, http.StatusServiceUnavailable, errors.New("fpl down"))
	serverSpan.End()

	ended := recorder.Ended()
	if assert.Len(t, ended, 2) {
		assert.Empty(t, ended[0].Events())
		assert.Equal(t, "Error", ended[1].Status().Code.String())
	}
}
