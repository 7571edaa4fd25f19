package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

func (h *Handler) ResolveManager(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "ResolveManager")
	defer span.End()

	if h.resolver == nil {
		writeError(ctx, w, fmt.Errorf("%w: resolver is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	query := resolveQuery{Query: r.URL.Query().Get("q")}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	resolution, err := h.resolver.Resolve(ctx, query.Query)
	if err != nil {
		h.logger.ErrorContext(ctx, "resolve manager failed", "query", query.Query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, resolution)
}

func (h *Handler) GetSquad(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetSquad")
	defer span.End()

	if h.squads == nil {
		writeError(ctx, w, fmt.Errorf("%w: squad service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	managerID, err := parseManagerID(r.PathValue("managerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, managerPath{ManagerID: managerID}); err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot, err := h.squads.GetSquad(ctx, managerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get squad failed", "manager_id", managerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshot)
}

func (h *Handler) GetComparison(w http.ResponseWriter, r *http.Request) {
	ctx, span := startHandlerSpan(r, "GetComparison")
	defer span.End()

	if h.comparer == nil {
		writeError(ctx, w, fmt.Errorf("%w: comparison service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	managerID, err := parseManagerID(r.PathValue("managerID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	top, err := parseIntQuery(r, "top", h.defaultTop)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	query := comparisonQuery{ManagerID: managerID, Top: top}
	if err := h.validateRequest(ctx, query); err != nil {
		writeError(ctx, w, err)
		return
	}

	comparison, err := h.comparer.Compare(ctx, query.ManagerID, query.Top)
	if err != nil {
		h.logger.WarnContext(ctx, "compare squad failed", "manager_id", managerID, "top", top, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, toComparisonDTO(comparison))
}
