package httpapi

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/scheduler"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
)

type ManagerResolver interface {
	Resolve(ctx context.Context, query string) (usecase.Resolution, error)
}

type SquadReader interface {
	GetSquad(ctx context.Context, managerID int64) (squad.Snapshot, error)
}

type SquadComparer interface {
	Compare(ctx context.Context, managerID int64, topN int) (usecase.Comparison, error)
	References(ctx context.Context) ([]squad.Reference, error)
}

type ProgressReader interface {
	GetProgress(ctx context.Context) (manager.Progress, error)
	Count(ctx context.Context) (int, error)
}

type BatchRunner interface {
	RunBatch(ctx context.Context, input usecase.IngestionInput) (usecase.IngestionResult, error)
}

// RefreshTrigger is the scheduler surface exposed over HTTP.
type RefreshTrigger interface {
	TriggerWith(ctx context.Context, input usecase.RefreshInput) (scheduler.TriggerResult, error)
	State() scheduler.State
	NextRun() time.Time
}

// Dependencies groups the services behind the HTTP surface. A nil field
// turns its routes into 503 responses.
type Dependencies struct {
	Resolver   ManagerResolver
	Squads     SquadReader
	Comparer   SquadComparer
	Progress   ProgressReader
	Ingestion  BatchRunner
	Refresher  RefreshTrigger
	DefaultTop int
}

type Handler struct {
	resolver   ManagerResolver
	squads     SquadReader
	comparer   SquadComparer
	progress   ProgressReader
	ingestion  BatchRunner
	refresher  RefreshTrigger
	defaultTop int
	logger     *logging.Logger
	validator  *validator.Validate
}

func NewHandler(deps Dependencies, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	defaultTop := deps.DefaultTop
	if defaultTop <= 0 {
		defaultTop = squad.DefaultTopN
	}

	return &Handler{
		resolver:   deps.Resolver,
		squads:     deps.Squads,
		comparer:   deps.Comparer,
		progress:   deps.Progress,
		ingestion:  deps.Ingestion,
		refresher:  deps.Refresher,
		defaultTop: defaultTop,
		logger:     logger.Named("httpapi"),
		validator:  validator.New(),
	}
}
