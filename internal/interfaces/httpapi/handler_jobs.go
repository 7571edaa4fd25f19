package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

func (h *Handler) RefreshReferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RefreshReferences")
	defer span.End()

	if h.refresher == nil {
		writeError(ctx, w, fmt.Errorf("%w: scheduler is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req refreshReferencesRequest
	if err := decodeJobPayload(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.refresher.TriggerWith(ctx, usecase.RefreshInput{Force: req.Force})
	if err != nil {
		h.logger.WarnContext(ctx, "refresh references job failed", "force", req.Force, "error", err)
		writeError(ctx, w, err)
		return
	}
	if result.Coalesced {
		writeSuccess(ctx, w, http.StatusAccepted, result)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunIngestion(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "RunIngestion")
	defer span.End()

	if h.ingestion == nil {
		writeError(ctx, w, fmt.Errorf("%w: ingestion is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req runIngestionRequest
	if err := decodeJobPayload(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	resume := true
	if req.Resume != nil {
		resume = *req.Resume
	}
	result, err := h.ingestion.RunBatch(ctx, usecase.IngestionInput{
		ResumeFromCheckpoint: resume,
		MaxPages:             req.MaxPages,
		RetrySkipped:         req.RetrySkipped,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ingestion job failed",
			"run_id", result.RunID,
			"next_page", result.NextPage,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
