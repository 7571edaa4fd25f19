package fpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/metrics"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL   = "https://fantasy.premierleague.com/api"
	defaultReferer   = "https://fantasy.premierleague.com/"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 6 << 20

	// OverallLeagueID is the classic league every manager belongs to.
	OverallLeagueID int64 = 314

	opStandings = "standings"
	opPicks     = "picks"
	opBootstrap = "bootstrap"
)

var recordValidator = validator.New(validator.WithRequiredStructEnabled())

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	LeagueID       int64
	Timeout        time.Duration
	UserAgent      string
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads the public FPL API. It never retries; callers wrap it in a
// resilience.Retrier.
type Client struct {
	httpClient *http.Client
	baseURL    string
	leagueID   int64
	userAgent  string
	timeout    time.Duration
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight[[]byte]
	now        func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	logger = logger.Named("fpl")

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = timeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	leagueID := cfg.LeagueID
	if leagueID <= 0 {
		leagueID = OverallLeagueID
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		leagueID:   leagueID,
		userAgent:  userAgent,
		timeout:    httpClient.Timeout,
		logger:     logger,
		now:        time.Now,
	}

	if cfg.CircuitBreaker.Enabled {
		breakerCfg := cfg.CircuitBreaker
		if breakerCfg.OnStateChange == nil {
			breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
				metrics.CircuitState.WithLabelValues("fpl").Set(metrics.BoolGauge(to != resilience.CircuitStateClosed))
				logger.Warn("fpl circuit breaker state changed", "from", from, "to", to)
			}
		}
		c.breaker = resilience.NewCircuitBreaker(breakerCfg)
	}

	return c
}

func (c *Client) FetchStandingsPage(ctx context.Context, page int) (usecase.StandingsPage, error) {
	if page <= 0 {
		return usecase.StandingsPage{}, permanentFault(opStandings, 0, crerr.Wrapf(errInvalidArgument, "page must be positive, got %d", page))
	}

	path := fmt.Sprintf("/leagues-classic/%d/standings/?page_standings=%d", c.leagueID, page)
	var env standingsEnvelope
	if err := c.getJSON(ctx, opStandings, path, &env); err != nil {
		return usecase.StandingsPage{}, err
	}

	results, hasNext := env.Results, env.HasNext
	if env.Standings != nil {
		results, hasNext = env.Standings.Results, env.Standings.HasNext
	} else if env.Results == nil {
		return usecase.StandingsPage{}, permanentFault(opStandings, http.StatusOK, crerr.Wrap(errMalformedPayload, "standings results are missing"))
	}

	out := usecase.StandingsPage{
		Page:     page,
		HasNext:  hasNext,
		Managers: make([]manager.Manager, 0, len(results)),
	}
	for idx, entry := range results {
		record := standingRecord{
			ManagerID:   entry.managerID(),
			ManagerName: strings.TrimSpace(entry.PlayerName),
			TeamName:    strings.TrimSpace(entry.EntryName),
		}
		if err := recordValidator.Struct(record); err != nil {
			out.SkippedRecords++
			c.logger.WarnContext(ctx, "skip invalid standings record",
				"page", page,
				"index", idx,
				"manager_id", record.ManagerID,
				"error", permanentFault(opStandings, http.StatusOK, crerr.Wrap(errMalformedPayload, err.Error())),
			)
			continue
		}
		out.Managers = append(out.Managers, manager.Manager{
			ID:       record.ManagerID,
			Name:     record.ManagerName,
			TeamName: record.TeamName,
		})
	}

	return out, nil
}

func (c *Client) FetchSquad(ctx context.Context, managerID int64, gameweek int) (squad.Snapshot, error) {
	if managerID <= 0 {
		return squad.Snapshot{}, permanentFault(opPicks, 0, crerr.Wrapf(errInvalidArgument, "manager id must be positive, got %d", managerID))
	}
	if gameweek <= 0 {
		return squad.Snapshot{}, permanentFault(opPicks, 0, crerr.Wrapf(errInvalidArgument, "gameweek must be positive, got %d", gameweek))
	}

	path := fmt.Sprintf("/entry/%d/event/%d/picks/", managerID, gameweek)
	var env picksEnvelope
	if err := c.getJSON(ctx, opPicks, path, &env); err != nil {
		return squad.Snapshot{}, err
	}

	snapshot := squad.Snapshot{
		ManagerID: managerID,
		Gameweek:  gameweek,
		Picks:     make([]squad.Pick, 0, len(env.Picks)),
		FetchedAt: c.now().UTC(),
	}
	if env.EntryHistory != nil && env.EntryHistory.Event > 0 {
		snapshot.Gameweek = env.EntryHistory.Event
	}
	for _, p := range env.Picks {
		snapshot.Picks = append(snapshot.Picks, squad.Pick{
			PlayerID:      p.Element,
			Slot:          p.Position,
			Multiplier:    p.Multiplier,
			IsCaptain:     p.IsCaptain,
			IsViceCaptain: p.IsViceCaptain,
		})
	}
	if err := snapshot.Validate(); err != nil {
		return squad.Snapshot{}, permanentFault(opPicks, http.StatusOK, fmt.Errorf("%w: manager %d: %w", errMalformedPayload, managerID, err))
	}

	return snapshot, nil
}

func (c *Client) FetchBootstrap(ctx context.Context) (usecase.Bootstrap, error) {
	var env bootstrapEnvelope
	if err := c.getJSON(ctx, opBootstrap, "/bootstrap-static/", &env); err != nil {
		return usecase.Bootstrap{}, err
	}
	if len(env.Events) == 0 && len(env.Elements) == 0 {
		return usecase.Bootstrap{}, permanentFault(opBootstrap, http.StatusOK, crerr.Wrap(errMalformedPayload, "bootstrap has no events or elements"))
	}

	players := make(map[int64]squad.Player, len(env.Elements))
	for _, el := range env.Elements {
		if el.ID <= 0 {
			continue
		}
		players[el.ID] = squad.Player{
			ID:       el.ID,
			WebName:  strings.TrimSpace(el.WebName),
			Position: squad.PositionFromElementType(el.ElementType),
			TeamID:   el.Team,
		}
	}

	return usecase.Bootstrap{
		CurrentGameweek: currentGameweek(env.Events),
		Players:         players,
	}, nil
}

// currentGameweek prefers the live event, then the upcoming one, then 1.
func currentGameweek(events []bootstrapEvent) int {
	for _, ev := range events {
		if ev.IsCurrent && ev.ID > 0 {
			return ev.ID
		}
	}
	for _, ev := range events {
		if ev.IsNext && ev.ID > 0 {
			return ev.ID
		}
	}
	return 1
}

func (c *Client) getJSON(ctx context.Context, op, path string, target any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "op", op, "state", c.breaker.State())
			return fmt.Errorf("%w: fpl api is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	// Concurrent callers share the request, so it runs detached from any one
	// caller and is bounded by the client timeout instead.
	reqCtx := context.WithoutCancel(ctx)
	raw, err, shared := c.flight.Do(ctx, fullURL, func() ([]byte, error) {
		ctx, cancel := context.WithTimeout(reqCtx, c.timeout)
		defer cancel()
		raw, reqErr := c.execute(ctx, op, fullURL)
		c.recordOutcome(reqErr)
		return raw, reqErr
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.logger.WarnContext(ctx, "fpl request failed", "op", op, "path", path, "shared", shared, "error", err)
		return err
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return permanentFault(op, http.StatusOK, crerr.Wrapf(errMalformedPayload, "decode %s payload: %v", op, err))
	}
	return nil
}

func (c *Client) execute(ctx context.Context, op, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, permanentFault(op, 0, crerr.Wrapf(errInvalidArgument, "build request: %v", err))
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", defaultReferer)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(op, "error", start)
		return nil, transientFault(op, 0, crerr.Wrapf(errTransport, "send request: %v", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, readErr := buf.ReadFrom(io.LimitReader(resp.Body, maxResponseBytes+1))
	c.observe(op, strconv.Itoa(resp.StatusCode), start)
	if readErr != nil {
		return nil, transientFault(op, resp.StatusCode, crerr.Wrapf(errTransport, "read response body: %v", readErr))
	}
	if buf.Len() > maxResponseBytes {
		return nil, permanentFault(op, resp.StatusCode, crerr.Wrapf(errBodyTooLarge, "limit=%d", maxResponseBytes))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cause := crerr.Wrapf(errUnexpectedStatus, "body=%s", abbreviateBody(buf.B))
		return nil, &RemoteFault{Op: op, StatusCode: resp.StatusCode, Kind: classifyStatus(resp.StatusCode), Err: cause}
	}

	raw := make([]byte, buf.Len())
	copy(raw, buf.B)
	return raw, nil
}

// recordOutcome feeds the breaker; only dependency-side faults count.
func (c *Client) recordOutcome(err error) {
	if c.breaker == nil {
		return
	}
	if err == nil {
		c.breaker.RecordSuccess()
		return
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return
	}
	var fault *RemoteFault
	if errors.As(err, &fault) && fault.Transient() {
		c.breaker.RecordFailure()
		return
	}
	c.breaker.RecordSuccess()
}

func (c *Client) observe(op, status string, start time.Time) {
	metrics.APIRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
