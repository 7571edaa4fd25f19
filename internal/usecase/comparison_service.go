package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/cache"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
)

type Comparison struct {
	Target  squad.Snapshot `json:"target"`
	Matches []squad.Match  `json:"matches"`
}

// ComparisonService ranks squads against the stored creator references.
type ComparisonService struct {
	squads     *SquadService
	refs       squad.ReferenceRepository
	store      cache.Store
	references cache.Class
	logger     *logging.Logger
}

func NewComparisonService(squads *SquadService, refs squad.ReferenceRepository, store cache.Store, cfg CacheConfig, logger *logging.Logger) *ComparisonService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ComparisonService{
		squads:     squads,
		refs:       refs,
		store:      store,
		references: cfg.referenceClass(),
		logger:     logger.Named("comparison"),
	}
}

func (s *ComparisonService) Rank(ctx context.Context, target squad.Snapshot, topN int) ([]squad.Match, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ComparisonService.Rank")
	defer span.End()

	if topN < 0 {
		return nil, fmt.Errorf("%w: top must not be negative", ErrInvalidInput)
	}

	refs, err := s.References(ctx)
	if err != nil {
		return nil, err
	}
	return squad.Rank(target, refs, topN), nil
}

func (s *ComparisonService) Compare(ctx context.Context, managerID int64, topN int) (Comparison, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ComparisonService.Compare")
	defer span.End()

	target, err := s.squads.GetSquad(ctx, managerID)
	if err != nil {
		markSpanError(span, err)
		return Comparison{}, err
	}
	matches, err := s.Rank(ctx, target, topN)
	if err != nil {
		return Comparison{}, err
	}

	s.logger.DebugContext(ctx, "squad compared", "manager_id", managerID, "matches", len(matches))
	return Comparison{Target: target, Matches: matches}, nil
}

// References lists the stored reference squads through the reference cache.
func (s *ComparisonService) References(ctx context.Context) ([]squad.Reference, error) {
	refs, err := cache.GetOrFetch(ctx, s.store, s.references, referenceListKey(s.references), s.refs.ListReferences)
	if err != nil {
		return nil, fmt.Errorf("list reference squads: %w", err)
	}
	return refs, nil
}

func referenceListKey(class cache.Class) string {
	return class.Key("list")
}
