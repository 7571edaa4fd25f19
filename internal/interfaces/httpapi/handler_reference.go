package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

func (h *Handler) ListReferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ListReferences")
	defer span.End()

	if h.comparer == nil {
		writeError(ctx, w, fmt.Errorf("%w: comparison service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	refs, err := h.comparer.References(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list references failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	if refs == nil {
		refs = []squad.Reference{}
	}

	out := referencesDTO{Items: refs}
	if h.refresher != nil {
		out.SchedulerState = h.refresher.State().String()
		if next := h.refresher.NextRun(); !next.IsZero() {
			out.NextRunAt = &next
		}
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetIngestionProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetIngestionProgress")
	defer span.End()

	if h.progress == nil {
		writeError(ctx, w, fmt.Errorf("%w: manager store is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	progress, err := h.progress.GetProgress(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get ingestion progress failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	stored, err := h.progress.Count(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "count managers failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, progressDTO{
		Progress:       progress,
		StoredManagers: stored,
	})
}
