package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/cache"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
)

const (
	defaultReferenceTTL = 5 * time.Minute
	defaultSquadTTL     = time.Minute
)

// CacheConfig sets the two TTL classes: slow-changing reference data and a
// manager's live squad.
type CacheConfig struct {
	ReferenceTTL time.Duration
	SquadTTL     time.Duration
}

func (c CacheConfig) referenceClass() cache.Class {
	ttl := c.ReferenceTTL
	if ttl <= 0 {
		ttl = defaultReferenceTTL
	}
	return cache.Class{Name: "reference", TTL: ttl}
}

func (c CacheConfig) squadClass() cache.Class {
	ttl := c.SquadTTL
	if ttl <= 0 {
		ttl = defaultSquadTTL
	}
	return cache.Class{Name: "squad", TTL: ttl}
}

type SquadService struct {
	source     SquadSource
	retrier    *resilience.Retrier
	store      cache.Store
	references cache.Class
	squads     cache.Class
	logger     *logging.Logger
}

func NewSquadService(source SquadSource, retrier *resilience.Retrier, store cache.Store, cfg CacheConfig, logger *logging.Logger) *SquadService {
	if logger == nil {
		logger = logging.Default()
	}
	return &SquadService{
		source:     source,
		retrier:    retrier,
		store:      store,
		references: cfg.referenceClass(),
		squads:     cfg.squadClass(),
		logger:     logger.Named("squad"),
	}
}

// GetSquad returns the manager's squad for the current gameweek with player
// names, positions and formation filled in.
func (s *SquadService) GetSquad(ctx context.Context, managerID int64) (squad.Snapshot, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SquadService.GetSquad")
	defer span.End()

	if managerID <= 0 {
		return squad.Snapshot{}, fmt.Errorf("%w: manager id must be positive", ErrInvalidInput)
	}

	boot, err := s.Bootstrap(ctx)
	if err != nil {
		return squad.Snapshot{}, err
	}

	key := s.squads.Key(managerID, boot.CurrentGameweek)
	snapshot, err := cache.GetOrFetch(ctx, s.store, s.squads, key, func(ctx context.Context) (squad.Snapshot, error) {
		return resilience.Execute(ctx, s.retrier, func(ctx context.Context) (squad.Snapshot, error) {
			return s.source.FetchSquad(ctx, managerID, boot.CurrentGameweek)
		})
	})
	if err != nil {
		err = mapRemoteError(fmt.Sprintf("fetch squad of manager %d", managerID), err)
		markSpanError(span, err)
		return squad.Snapshot{}, err
	}

	return snapshot.Enrich(boot.Players), nil
}

// Bootstrap returns the season static data from the reference cache.
func (s *SquadService) Bootstrap(ctx context.Context) (Bootstrap, error) {
	boot, err := cache.GetOrFetch(ctx, s.store, s.references, s.references.Key("bootstrap"), func(ctx context.Context) (Bootstrap, error) {
		return resilience.Execute(ctx, s.retrier, s.source.FetchBootstrap)
	})
	if err != nil {
		return Bootstrap{}, mapRemoteError("fetch bootstrap", err)
	}
	return boot, nil
}

// mapRemoteError turns an upstream 404 into ErrNotFound; other errors keep
// their type so callers can still inspect the fault.
func mapRemoteError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var status interface{ HTTPStatus() int }
	if errors.As(err, &status) && status.HTTPStatus() == http.StatusNotFound {
		return fmt.Errorf("%w: %s: %w", ErrNotFound, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
