package httpapi

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("fpl-creator-match/internal/interfaces/httpapi")

// startHandlerSpan opens "httpapi.Handler.<op>" under the request span.
// Requests the tracing middleware filtered out stay untraced.
func startHandlerSpan(r *http.Request, op string) (context.Context, trace.Span) {
	ctx := r.Context()
	if !trace.SpanContextFromContext(ctx).IsValid() {
		return ctx, trace.SpanFromContext(ctx)
	}
	return apiTracer.Start(ctx, handlerSpanName(op),
		trace.WithAttributes(attribute.String("http.route", r.Pattern)),
	)
}

func handlerSpanName(op string) string {
	return "httpapi.Handler." + op
}

// markSpanFailure flags server-side failures only; 4xx answers are expected.
func markSpanFailure(ctx context.Context, status int, err error) {
	span := trace.SpanFromContext(ctx)
	if status < http.StatusInternalServerError || !span.IsRecording() {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
