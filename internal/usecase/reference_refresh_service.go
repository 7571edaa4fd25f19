package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/cache"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/id"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/metrics"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
)

const (
	RefreshStatusUpdated  = "updated"
	RefreshStatusUpToDate = "up_to_date"
	RefreshStatusFailed   = "failed"

	defaultRefreshWorkers = 4
)

type RefreshInput struct {
	Force bool
}

type RefreshItem struct {
	TeamName   string `json:"team_name"`
	ManagerID  int64  `json:"manager_id"`
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
	Message    string `json:"message,omitempty"`
}

type RefreshResult struct {
	RunID      string        `json:"run_id"`
	Gameweek   int           `json:"gameweek"`
	Total      int           `json:"total"`
	Succeeded  int           `json:"succeeded"`
	Failed     int           `json:"failed"`
	UpToDate   int           `json:"up_to_date"`
	Items      []RefreshItem `json:"items"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

type RefreshConfig struct {
	Creators   []squad.Creator
	MaxWorkers int
}

// ReferenceRefreshService re-fetches every creator squad for the current
// gameweek and stores it as a reference.
type ReferenceRefreshService struct {
	source     SquadSource
	refs       squad.ReferenceRepository
	retrier    *resilience.Retrier
	store      cache.Store
	references cache.Class
	idGen      id.Generator
	creators   []squad.Creator
	workers    int
	now        func() time.Time
	logger     *logging.Logger
}

func NewReferenceRefreshService(
	source SquadSource,
	refs squad.ReferenceRepository,
	retrier *resilience.Retrier,
	store cache.Store,
	cacheCfg CacheConfig,
	idGen id.Generator,
	cfg RefreshConfig,
	logger *logging.Logger,
) *ReferenceRefreshService {
	if logger == nil {
		logger = logging.Default()
	}
	creators := cfg.Creators
	if len(creators) == 0 {
		creators = DefaultCreators()
	}
	workers := cfg.MaxWorkers
	if workers <= 0 {
		workers = defaultRefreshWorkers
	}
	return &ReferenceRefreshService{
		source:     source,
		refs:       refs,
		retrier:    retrier,
		store:      store,
		references: cacheCfg.referenceClass(),
		idGen:      idGen,
		creators:   creators,
		workers:    workers,
		now:        time.Now,
		logger:     logger.Named("reference_refresh"),
	}
}

func (s *ReferenceRefreshService) Creators() []squad.Creator {
	return append([]squad.Creator(nil), s.creators...)
}

// RefreshAll never fails because of a single creator; failed items keep the
// previously stored snapshot. It fails only when the gameweek is unknown.
func (s *ReferenceRefreshService) RefreshAll(ctx context.Context, input RefreshInput) (RefreshResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReferenceRefreshService.RefreshAll")
	defer span.End()

	runID, err := s.idGen.NewID()
	if err != nil {
		return RefreshResult{}, fmt.Errorf("generate run id: %w", err)
	}
	result := RefreshResult{
		RunID:     runID,
		Total:     len(s.creators),
		StartedAt: s.now().UTC(),
	}

	metrics.ReferenceRefreshRunning.Set(1)
	defer func() {
		metrics.ReferenceRefreshRunning.Set(0)
		metrics.ReferenceRefreshDuration.Observe(time.Since(result.StartedAt).Seconds())
	}()

	boot, err := resilience.Execute(ctx, s.retrier, s.source.FetchBootstrap)
	if err != nil {
		return result, mapRemoteError("fetch bootstrap", err)
	}
	if boot.CurrentGameweek <= 0 {
		return result, fmt.Errorf("%w: no current gameweek", ErrDependencyUnavailable)
	}
	result.Gameweek = boot.CurrentGameweek

	logger := s.logger.With("run_id", runID, "gameweek", boot.CurrentGameweek, "force", input.Force)
	logger.InfoContext(ctx, "reference refresh started", "creators", len(s.creators))

	pool, err := ants.NewPool(s.workers)
	if err != nil {
		return result, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	items := make(chan RefreshItem, len(s.creators))
	var succeeded, failed, upToDate atomic.Int32

	var workers sync.WaitGroup
	for _, creator := range s.creators {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			item := s.refreshOne(ctx, logger, creator, boot, input.Force)
			switch item.Status {
			case RefreshStatusUpdated:
				succeeded.Add(1)
			case RefreshStatusUpToDate:
				upToDate.Add(1)
			default:
				failed.Add(1)
			}
			metrics.ReferenceRefreshTotal.WithLabelValues(item.Status).Inc()
			items <- item
		}); err != nil {
			workers.Done()
			return result, fmt.Errorf("submit refresh task: %w", err)
		}
	}

	workers.Wait()
	close(items)

	for item := range items {
		result.Items = append(result.Items, item)
	}
	sort.SliceStable(result.Items, func(i, j int) bool {
		return result.Items[i].TeamName < result.Items[j].TeamName
	})

	result.Succeeded = int(succeeded.Load())
	result.Failed = int(failed.Load())
	result.UpToDate = int(upToDate.Load())
	result.FinishedAt = s.now().UTC()

	s.evictReferences(ctx)

	logger.InfoContext(ctx, "reference refresh finished",
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"up_to_date", result.UpToDate,
	)
	return result, nil
}

func (s *ReferenceRefreshService) refreshOne(ctx context.Context, logger *logging.Logger, creator squad.Creator, boot Bootstrap, force bool) RefreshItem {
	start := time.Now()
	item := RefreshItem{TeamName: creator.DisplayName(), ManagerID: creator.ManagerID}

	fail := func(err error) RefreshItem {
		item.Status = RefreshStatusFailed
		item.Message = err.Error()
		item.DurationMs = time.Since(start).Milliseconds()
		logger.WarnContext(ctx, "reference refresh failed",
			"team_name", item.TeamName,
			"manager_id", item.ManagerID,
			"error", err,
		)
		return item
	}

	if !force {
		stored, ok, err := s.refs.GetReference(ctx, item.TeamName)
		if err != nil {
			return fail(fmt.Errorf("read stored reference: %w", err))
		}
		if ok && stored.Snapshot.Gameweek == boot.CurrentGameweek {
			item.Status = RefreshStatusUpToDate
			item.DurationMs = time.Since(start).Milliseconds()
			return item
		}
	}

	snapshot, err := resilience.Execute(ctx, s.retrier, func(ctx context.Context) (squad.Snapshot, error) {
		return s.source.FetchSquad(ctx, creator.ManagerID, boot.CurrentGameweek)
	})
	if err != nil {
		return fail(mapRemoteError("fetch squad", err))
	}

	ref := squad.Reference{
		TeamName:    item.TeamName,
		ManagerID:   creator.ManagerID,
		Snapshot:    snapshot.Enrich(boot.Players),
		RefreshedAt: s.now().UTC(),
	}
	if err := s.refs.UpsertReference(ctx, ref); err != nil {
		return fail(fmt.Errorf("%w: upsert reference: %w", ErrStoreWrite, err))
	}

	item.Status = RefreshStatusUpdated
	item.DurationMs = time.Since(start).Milliseconds()
	return item
}

func (s *ReferenceRefreshService) evictReferences(ctx context.Context) {
	deleter, ok := s.store.(interface {
		Delete(ctx context.Context, key string)
	})
	if !ok {
		return
	}
	deleter.Delete(ctx, referenceListKey(s.references))
}
