package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
)

const (
	defaultPagerMinDelay            = 500 * time.Millisecond
	defaultPagerMaxDelay            = 2 * time.Second
	defaultPagerMaxConsecutiveSkips = 5
)

type PagerConfig struct {
	StartPage int
	// MaxPages bounds how many pages one walk may request. 0 means no bound.
	MaxPages            int
	MinDelay            time.Duration
	MaxDelay            time.Duration
	MaxConsecutiveSkips int
	// OnSkip is called for every page given up on. A returned error ends the walk.
	OnSkip func(ctx context.Context, skip PageSkip) error
}

type PageSkip struct {
	Page int
	Err  error
}

// StandingsPager walks the standings listing one page per Next call.
// Position reports where a new pager should start to continue the walk.
type StandingsPager struct {
	source  StandingsSource
	retrier *resilience.Retrier
	cfg     PagerConfig
	logger  *logging.Logger

	next             int
	attempted        int
	consecutiveSkips int
	done             bool
	exhausted        bool
	skipped          []PageSkip

	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

func NewStandingsPager(source StandingsSource, retrier *resilience.Retrier, cfg PagerConfig, logger *logging.Logger) *StandingsPager {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.StartPage < 1 {
		cfg.StartPage = 1
	}
	if cfg.MaxPages < 0 {
		cfg.MaxPages = 0
	}
	if cfg.MinDelay < 0 {
		cfg.MinDelay = 0
	}
	if cfg.MaxDelay < cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay
	}
	if cfg.MaxConsecutiveSkips <= 0 {
		cfg.MaxConsecutiveSkips = defaultPagerMaxConsecutiveSkips
	}

	return &StandingsPager{
		source:  source,
		retrier: retrier,
		cfg:     cfg,
		logger:  logger,
		next:    cfg.StartPage,
		sleep:   sleepWithContext,
		jitter:  rand.Float64,
	}
}

// Next returns the next fetched page. ok is false once the listing is
// exhausted, a page comes back with no entries, or MaxPages pages were
// attempted.
func (p *StandingsPager) Next(ctx context.Context) (StandingsPage, bool, error) {
	for {
		if p.done {
			return StandingsPage{}, false, nil
		}
		if p.cfg.MaxPages > 0 && p.attempted >= p.cfg.MaxPages {
			p.done = true
			return StandingsPage{}, false, nil
		}
		if err := ctx.Err(); err != nil {
			return StandingsPage{}, false, err
		}
		if p.attempted > 0 {
			if err := p.sleep(ctx, p.politeDelay()); err != nil {
				return StandingsPage{}, false, err
			}
		}

		pageNumber := p.next
		page, err := resilience.Execute(ctx, p.retrier, func(ctx context.Context) (StandingsPage, error) {
			return p.source.FetchStandingsPage(ctx, pageNumber)
		})
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return StandingsPage{}, false, ctxErr
			}
			if errors.Is(err, ErrDependencyUnavailable) {
				p.done = true
				return StandingsPage{}, false, err
			}

			p.next++
			p.attempted++
			if skipErr := p.skip(ctx, PageSkip{Page: pageNumber, Err: err}); skipErr != nil {
				p.done = true
				return StandingsPage{}, false, skipErr
			}
			continue
		}

		// No entries at all means the walk ran past the end of the roster.
		// Position stays on this page so the next walk asks for it again.
		if len(page.Managers) == 0 && page.SkippedRecords == 0 {
			p.done = true
			p.exhausted = true
			p.logger.InfoContext(ctx, "standings listing ended", "page", pageNumber)
			return StandingsPage{}, false, nil
		}

		p.next++
		p.attempted++
		p.consecutiveSkips = 0
		if !page.HasNext {
			p.done = true
			p.exhausted = true
		}
		return page, true, nil
	}
}

func (p *StandingsPager) Position() int {
	return p.next
}

// Exhausted reports whether upstream said there are no further pages.
func (p *StandingsPager) Exhausted() bool {
	return p.exhausted
}

func (p *StandingsPager) Skipped() []PageSkip {
	out := make([]PageSkip, len(p.skipped))
	copy(out, p.skipped)
	return out
}

func (p *StandingsPager) skip(ctx context.Context, skip PageSkip) error {
	p.skipped = append(p.skipped, skip)
	p.consecutiveSkips++
	p.logger.WarnContext(ctx, "skip standings page", "page", skip.Page, "consecutive", p.consecutiveSkips, "error", skip.Err)

	if p.cfg.OnSkip != nil {
		if err := p.cfg.OnSkip(ctx, skip); err != nil {
			return err
		}
	}
	if p.consecutiveSkips > p.cfg.MaxConsecutiveSkips {
		return fmt.Errorf("%w: %d in a row, last page %d", ErrTooManySkippedPages, p.consecutiveSkips, skip.Page)
	}
	return nil
}

func (p *StandingsPager) politeDelay() time.Duration {
	span := p.cfg.MaxDelay - p.cfg.MinDelay
	if span <= 0 {
		return p.cfg.MinDelay
	}
	return p.cfg.MinDelay + time.Duration(p.jitter()*float64(span))
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
