package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	idgen "github.com/riskibarqy/fpl-creator-match/internal/platform/id"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/metrics"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
)

type IngestionConfig struct {
	// MaxPages is the default batch size when the input does not set one.
	MaxPages            int
	MinDelay            time.Duration
	MaxDelay            time.Duration
	MaxConsecutiveSkips int
}

type IngestionInput struct {
	ResumeFromCheckpoint bool
	MaxPages             int
	// RetrySkipped fetches previously skipped pages before the main walk.
	RetrySkipped bool
}

type IngestionResult struct {
	RunID            string           `json:"run_id"`
	StartPage        int              `json:"start_page"`
	NextPage         int              `json:"next_page"`
	PagesCommitted   int              `json:"pages_committed"`
	// PagesRejected counts committed pages whose every record failed validation.
	PagesRejected    int              `json:"pages_rejected"`
	ManagersUpserted int              `json:"managers_upserted"`
	RecordsRejected  int              `json:"records_rejected"`
	SkippedPages     []int            `json:"skipped_pages"`
	RecoveredPages   []int            `json:"recovered_pages"`
	Exhausted        bool             `json:"exhausted"`
	Cancelled        bool             `json:"cancelled"`
	Progress         manager.Progress `json:"progress"`
	StartedAt        time.Time        `json:"started_at"`
	FinishedAt       time.Time        `json:"finished_at"`
}

// IngestionService copies the overall league roster into the manager store,
// one committed page at a time.
type IngestionService struct {
	source  StandingsSource
	repo    manager.Repository
	retrier *resilience.Retrier
	idGen   idgen.Generator
	cfg     IngestionConfig
	logger  *logging.Logger
	now     func() time.Time
}

func NewIngestionService(
	source StandingsSource,
	repo manager.Repository,
	retrier *resilience.Retrier,
	idGen idgen.Generator,
	cfg IngestionConfig,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("ingestion")
	if idGen == nil {
		idGen = idgen.NewUUIDGenerator("ingest")
	}
	if cfg.MinDelay <= 0 && cfg.MaxDelay <= 0 {
		cfg.MinDelay = defaultPagerMinDelay
		cfg.MaxDelay = defaultPagerMaxDelay
	}

	return &IngestionService{
		source:  source,
		repo:    repo,
		retrier: retrier,
		idGen:   idGen,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// RunBatch ingests standings pages until the listing ends, the batch size is
// reached or ctx is cancelled. Cancellation is not an error: the result is
// marked Cancelled and the checkpoint covers every committed page.
func (s *IngestionService) RunBatch(ctx context.Context, input IngestionInput) (IngestionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.RunBatch")
	defer span.End()

	runID, err := s.idGen.NewID()
	if err != nil {
		return IngestionResult{}, fmt.Errorf("generate run id: %w", err)
	}
	logger := s.logger.With("run_id", runID)

	progress, err := s.repo.GetProgress(ctx)
	if err != nil {
		return IngestionResult{}, fmt.Errorf("load checkpoint: %w", err)
	}

	result := IngestionResult{
		RunID:          runID,
		StartPage:      1,
		SkippedPages:   []int{},
		RecoveredPages: []int{},
		Progress:       progress,
		StartedAt:      s.now().UTC(),
	}
	if input.ResumeFromCheckpoint {
		result.StartPage = progress.NextPage()
	}
	maxPages := input.MaxPages
	if maxPages <= 0 {
		maxPages = s.cfg.MaxPages
	}

	if err := s.repo.MarkBatchStarted(ctx, result.StartedAt); err != nil {
		return result, storeWriteError("mark batch started", err)
	}

	logger.InfoContext(ctx, "ingestion batch started",
		"start_page", result.StartPage,
		"max_pages", maxPages,
		"resume", input.ResumeFromCheckpoint,
		"retry_skipped", input.RetrySkipped,
	)

	if input.RetrySkipped {
		if err := s.retrySkippedPages(ctx, &result, logger); err != nil {
			return s.finish(ctx, result, err, logger)
		}
	}

	pager := NewStandingsPager(s.source, s.retrier, PagerConfig{
		StartPage:           result.StartPage,
		MaxPages:            maxPages,
		MinDelay:            s.cfg.MinDelay,
		MaxDelay:            s.cfg.MaxDelay,
		MaxConsecutiveSkips: s.cfg.MaxConsecutiveSkips,
		OnSkip: func(ctx context.Context, skip PageSkip) error {
			metrics.IngestionPagesTotal.WithLabelValues("skipped").Inc()
			result.SkippedPages = append(result.SkippedPages, skip.Page)
			if err := s.repo.RecordSkippedPage(ctx, skip.Page, skip.Err.Error()); err != nil {
				return storeWriteError(fmt.Sprintf("record skipped page %d", skip.Page), err)
			}
			return nil
		},
	}, logger)

	for {
		page, ok, err := pager.Next(ctx)
		result.NextPage = pager.Position()
		if err != nil {
			return s.finish(ctx, result, err, logger)
		}
		if !ok {
			break
		}
		if err := s.commit(ctx, page, &result, logger); err != nil {
			return s.finish(ctx, result, err, logger)
		}
	}

	result.Exhausted = pager.Exhausted()
	return s.finish(ctx, result, nil, logger)
}

func (s *IngestionService) retrySkippedPages(ctx context.Context, result *IngestionResult, logger *logging.Logger) error {
	skipped, err := s.repo.ListSkippedPages(ctx)
	if err != nil {
		return fmt.Errorf("list skipped pages: %w", err)
	}

	for _, item := range skipped {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := resilience.Execute(ctx, s.retrier, func(ctx context.Context) (StandingsPage, error) {
			return s.source.FetchStandingsPage(ctx, item.Page)
		})
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrDependencyUnavailable) {
				return err
			}
			logger.WarnContext(ctx, "skipped page still failing", "page", item.Page, "attempts", item.Attempts+1, "error", err)
			if err := s.repo.RecordSkippedPage(ctx, item.Page, err.Error()); err != nil {
				return storeWriteError(fmt.Sprintf("record skipped page %d", item.Page), err)
			}
			continue
		}

		if len(page.Managers) == 0 && page.SkippedRecords == 0 {
			logger.WarnContext(ctx, "skipped page came back empty", "page", item.Page)
			if err := s.repo.RecordSkippedPage(ctx, item.Page, "page returned no entries"); err != nil {
				return storeWriteError(fmt.Sprintf("record skipped page %d", item.Page), err)
			}
			continue
		}
		if err := s.commit(ctx, page, result, logger); err != nil {
			return err
		}
		result.RecoveredPages = append(result.RecoveredPages, item.Page)
	}
	return nil
}

func (s *IngestionService) commit(ctx context.Context, page StandingsPage, result *IngestionResult, logger *logging.Logger) error {
	progress, err := s.repo.CommitPage(ctx, page.Page, page.Managers)
	if err != nil {
		return storeWriteError(fmt.Sprintf("commit page %d", page.Page), err)
	}

	result.Progress = progress
	result.ManagersUpserted += len(page.Managers)
	result.RecordsRejected += page.SkippedRecords
	outcome := "committed"
	if len(page.Managers) == 0 {
		outcome = "rejected"
		result.PagesRejected++
	} else {
		result.PagesCommitted++
	}

	metrics.IngestionPagesTotal.WithLabelValues(outcome).Inc()
	metrics.IngestionManagersUpserted.Add(float64(len(page.Managers)))
	metrics.IngestionLastPage.Set(float64(progress.LastPage))

	logger.InfoContext(ctx, "standings page committed",
		"page", page.Page,
		"result", outcome,
		"managers", len(page.Managers),
		"rejected", page.SkippedRecords,
		"total_managers", progress.TotalManagersFetched,
	)
	return nil
}

func (s *IngestionService) finish(ctx context.Context, result IngestionResult, err error, logger *logging.Logger) (IngestionResult, error) {
	result.FinishedAt = s.now().UTC()
	// The run may have been cancelled; the end marker must still land.
	if markErr := s.repo.MarkBatchFinished(context.WithoutCancel(ctx), result.FinishedAt); markErr != nil {
		logger.ErrorContext(ctx, "mark batch finished failed", "error", markErr)
	}

	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) && ctx.Err() != nil {
		result.Cancelled = true
		err = nil
	}

	if err != nil {
		logger.ErrorContext(ctx, "ingestion batch failed",
			"pages_committed", result.PagesCommitted,
			"skipped_pages", result.SkippedPages,
			"error", err,
		)
		return result, err
	}

	logger.InfoContext(ctx, "ingestion batch finished",
		"pages_committed", result.PagesCommitted,
		"pages_rejected", result.PagesRejected,
		"managers_upserted", result.ManagersUpserted,
		"skipped_pages", result.SkippedPages,
		"recovered_pages", result.RecoveredPages,
		"cancelled", result.Cancelled,
		"exhausted", result.Exhausted,
		"last_page", result.Progress.LastPage,
	)
	return result, nil
}

func storeWriteError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreWrite, op, err)
}
