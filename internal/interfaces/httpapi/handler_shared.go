package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

const maxJobPayloadBytes = 64 << 10

var strictJSON = sonic.Config{DisallowUnknownFields: true}.Froze()

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type resolveQuery struct {
	Query string `validate:"max=100"`
}

type managerPath struct {
	ManagerID int64 `validate:"gt=0"`
}

type comparisonQuery struct {
	ManagerID int64 `validate:"gt=0"`
	Top       int   `validate:"gte=1,lte=50"`
}

type refreshReferencesRequest struct {
	Force bool `json:"force"`
}

type runIngestionRequest struct {
	Resume       *bool `json:"resume"`
	MaxPages     int   `json:"max_pages" validate:"gte=0,lte=100000"`
	RetrySkipped bool  `json:"retry_skipped"`
}

type matchDTO struct {
	TeamName        string    `json:"team_name"`
	ManagerID       int64     `json:"manager_id"`
	Gameweek        int       `json:"gameweek"`
	Score           float64   `json:"score"`
	Percent         float64   `json:"percent"`
	SharedCount     int       `json:"shared_count"`
	SharedPlayerIDs []int64   `json:"shared_player_ids"`
	RefreshedAt     time.Time `json:"refreshed_at"`
}

type comparisonDTO struct {
	Target  squad.Snapshot `json:"target"`
	Matches []matchDTO     `json:"matches"`
}

type referencesDTO struct {
	Items          []squad.Reference `json:"items"`
	SchedulerState string            `json:"scheduler_state,omitempty"`
	NextRunAt      *time.Time        `json:"next_run_at,omitempty"`
}

type progressDTO struct {
	Progress       manager.Progress `json:"progress"`
	StoredManagers int              `json:"stored_managers"`
}

func toComparisonDTO(in usecase.Comparison) comparisonDTO {
	out := comparisonDTO{
		Target:  in.Target,
		Matches: make([]matchDTO, 0, len(in.Matches)),
	}
	for _, match := range in.Matches {
		shared := match.Shared
		if shared == nil {
			shared = []int64{}
		}
		out.Matches = append(out.Matches, matchDTO{
			TeamName:        match.Reference.TeamName,
			ManagerID:       match.Reference.ManagerID,
			Gameweek:        match.Reference.Snapshot.Gameweek,
			Score:           match.Score,
			Percent:         match.Percent(),
			SharedCount:     len(shared),
			SharedPlayerIDs: shared,
			RefreshedAt:     match.Reference.RefreshedAt,
		})
	}
	return out
}

func parseManagerID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: manager id must be numeric", usecase.ErrInvalidInput)
	}
	return id, nil
}

func parseIntQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return value, nil
}

// decodeJobPayload treats an empty body as the zero request.
func decodeJobPayload(r *http.Request, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxJobPayloadBytes))
	if err != nil {
		return fmt.Errorf("%w: read payload: %v", usecase.ErrInvalidInput, err)
	}
	if strings.TrimSpace(string(body)) == "" {
		return nil
	}
	if err := strictJSON.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}
