package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/fpl-creator-match/internal/config"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
)

// Stack holds every telemetry component started for a process.
type Stack struct {
	stopUptrace   func(context.Context) error
	stopPyroscope func() error
	pprof         *http.Server
	logger        *logging.Logger
}

// Start brings up tracing, profiling and pprof as configured. Components that
// are disabled cost nothing.
func Start(cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("observability")

	stopUptrace, err := InitUptrace(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init uptrace: %w", err)
	}
	stopPyroscope, err := InitPyroscope(cfg, logger)
	if err != nil {
		_ = stopUptrace(context.Background())
		return nil, err
	}

	return &Stack{
		stopUptrace:   stopUptrace,
		stopPyroscope: stopPyroscope,
		pprof:         StartPprofServer(cfg, logger),
		logger:        logger,
	}, nil
}

// Shutdown flushes exporters; errors from every component are joined.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	if err := stopPprofServer(ctx, s.pprof); err != nil {
		errs = append(errs, fmt.Errorf("stop pprof: %w", err))
	}
	if err := s.stopPyroscope(); err != nil {
		errs = append(errs, fmt.Errorf("stop pyroscope: %w", err))
	}
	if err := s.stopUptrace(ctx); err != nil {
		errs = append(errs, fmt.Errorf("stop uptrace: %w", err))
	}
	return errors.Join(errs...)
}
