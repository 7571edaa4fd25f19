package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	_ "time/tzdata"

	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/metrics"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
	"github.com/robfig/cron/v3"
	"github.com/sourcegraph/conc"
)

const (
	DefaultLocation   = "Europe/London"
	defaultRunTimeout = 15 * time.Minute
)

// DefaultSpecs run the refresh at 17:00 and midnight UK time.
var DefaultSpecs = []string{"0 17 * * *", "0 0 * * *"}

type State int32

const (
	StateIdle State = iota
	StateRunning
)

func (s State) String() string {
	if s == StateRunning {
		return "running"
	}
	return "idle"
}

// Runner is the job the scheduler owns.
type Runner interface {
	RefreshAll(ctx context.Context, input usecase.RefreshInput) (usecase.RefreshResult, error)
}

type Config struct {
	Location   string
	Specs      []string
	RunTimeout time.Duration
}

type TriggerResult struct {
	Coalesced bool                   `json:"coalesced"`
	Result    *usecase.RefreshResult `json:"result,omitempty"`
}

// Scheduler runs the reference refresh on cron ticks and on demand. At most
// one run is in flight; overlapping triggers are coalesced into it.
type Scheduler struct {
	runner  Runner
	cron    *cron.Cron
	specs   []string
	timeout time.Duration
	logger  *logging.Logger

	state atomic.Int32
	runs  conc.WaitGroup

	baseCtx context.Context
	cancel  context.CancelFunc
	stop    sync.Once
}

func New(runner Runner, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if runner == nil {
		return nil, fmt.Errorf("scheduler runner is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Location == "" {
		cfg.Location = DefaultLocation
	}
	if len(cfg.Specs) == 0 {
		cfg.Specs = DefaultSpecs
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = defaultRunTimeout
	}

	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("load scheduler location %q: %w", cfg.Location, err)
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		runner:  runner,
		cron:    cron.New(cron.WithLocation(loc)),
		specs:   append([]string(nil), cfg.Specs...),
		timeout: cfg.RunTimeout,
		logger:  logger.Named("scheduler"),
		baseCtx: baseCtx,
		cancel:  cancel,
	}

	for _, spec := range s.specs {
		if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
			cancel()
			return nil, fmt.Errorf("schedule %q: %w", spec, err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "specs", s.specs, "next_run", s.NextRun())
}

// Stop halts the cron clock and waits for an in-flight run. When ctx ends
// first the run is cancelled.
func (s *Scheduler) Stop(ctx context.Context) error {
	var err error
	s.stop.Do(func() {
		cronDone := s.cron.Stop()

		done := make(chan struct{})
		go func() {
			defer close(done)
			<-cronDone.Done()
			if recovered := s.runs.WaitAndRecover(); recovered != nil {
				s.logger.Error("refresh run panicked", "panic", recovered.String())
			}
		}()

		select {
		case <-done:
		case <-ctx.Done():
			s.cancel()
			<-done
			err = ctx.Err()
		}
		s.cancel()
		s.logger.Info("scheduler stopped")
	})
	return err
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) NextRun() time.Time {
	var next time.Time
	for _, entry := range s.cron.Entries() {
		if entry.Next.IsZero() {
			continue
		}
		if next.IsZero() || entry.Next.Before(next) {
			next = entry.Next
		}
	}
	return next
}

// Trigger runs a scheduled refresh now unless one is already running.
func (s *Scheduler) Trigger(ctx context.Context) (TriggerResult, error) {
	return s.trigger(ctx, "manual", usecase.RefreshInput{})
}

// TriggerWith is Trigger with explicit refresh options such as Force.
func (s *Scheduler) TriggerWith(ctx context.Context, input usecase.RefreshInput) (TriggerResult, error) {
	return s.trigger(ctx, "manual", input)
}

func (s *Scheduler) tick() {
	if _, err := s.trigger(s.baseCtx, "cron", usecase.RefreshInput{}); err != nil {
		s.logger.Error("scheduled refresh failed", "error", err)
	}
}

func (s *Scheduler) trigger(ctx context.Context, source string, input usecase.RefreshInput) (TriggerResult, error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		metrics.SchedulerTriggersTotal.WithLabelValues(source, "coalesced").Inc()
		s.logger.InfoContext(ctx, "refresh already running, trigger coalesced", "source", source)
		return TriggerResult{Coalesced: true}, nil
	}
	metrics.SchedulerTriggersTotal.WithLabelValues(source, "ran").Inc()

	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stopOnShutdown := context.AfterFunc(s.baseCtx, cancel)
	defer stopOnShutdown()

	var (
		result   usecase.RefreshResult
		err      error
		finished bool
	)
	done := make(chan struct{})
	s.runs.Go(func() {
		defer close(done)
		defer s.state.Store(int32(StateIdle))
		result, err = s.runner.RefreshAll(runCtx, input)
		finished = true
	})
	<-done

	if !finished {
		return TriggerResult{}, fmt.Errorf("refresh references: run panicked")
	}
	if err != nil {
		return TriggerResult{}, fmt.Errorf("refresh references: %w", err)
	}
	return TriggerResult{Result: &result}, nil
}
