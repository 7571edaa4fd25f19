package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/logging"
	"github.com/riskibarqy/fpl-creator-match/internal/scheduler"
	"github.com/riskibarqy/fpl-creator-match/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJobToken = "job-secret"

type stubResolver struct {
	query string
	out   usecase.Resolution
	err   error
}

func (s *stubResolver) Resolve(_ context.Context, query string) (usecase.Resolution, error) {
	s.query = query
	return s.out, s.err
}

type stubSquads struct {
	out map[int64]squad.Snapshot
}

func (s *stubSquads) GetSquad(_ context.Context, managerID int64) (squad.Snapshot, error) {
	snapshot, ok := s.out[managerID]
	if !ok {
		return squad.Snapshot{}, fmt.Errorf("%w: fetch squad %d", usecase.ErrNotFound, managerID)
	}
	return snapshot, nil
}

type stubComparer struct {
	topN int
	out  usecase.Comparison
	refs []squad.Reference
	err  error
}

func (s *stubComparer) Compare(_ context.Context, managerID int64, topN int) (usecase.Comparison, error) {
	s.topN = topN
	if s.err != nil {
		return usecase.Comparison{}, s.err
	}
	out := s.out
	out.Target.ManagerID = managerID
	return out, nil
}

func (s *stubComparer) References(context.Context) ([]squad.Reference, error) {
	return s.refs, s.err
}

type stubProgress struct {
	progress manager.Progress
	count    int
}

func (s *stubProgress) GetProgress(context.Context) (manager.Progress, error) {
	return s.progress, nil
}

func (s *stubProgress) Count(context.Context) (int, error) {
	return s.count, nil
}

type stubIngestion struct {
	input usecase.IngestionInput
	calls int
}

func (s *stubIngestion) RunBatch(_ context.Context, input usecase.IngestionInput) (usecase.IngestionResult, error) {
	s.input = input
	s.calls++
	return usecase.IngestionResult{RunID: "ingest-1", StartPage: 1, NextPage: 3, PagesCommitted: 2}, nil
}

type stubRefresher struct {
	input     usecase.RefreshInput
	coalesced bool
	next      time.Time
}

func (s *stubRefresher) TriggerWith(_ context.Context, input usecase.RefreshInput) (scheduler.TriggerResult, error) {
	s.input = input
	if s.coalesced {
		return scheduler.TriggerResult{Coalesced: true}, nil
	}
	return scheduler.TriggerResult{Result: &usecase.RefreshResult{RunID: "refresh-1", Gameweek: 12, Total: 2, Succeeded: 2}}, nil
}

func (s *stubRefresher) State() scheduler.State { return scheduler.StateIdle }

func (s *stubRefresher) NextRun() time.Time { return s.next }

type routerFixture struct {
	resolver  *stubResolver
	squads    *stubSquads
	comparer  *stubComparer
	progress  *stubProgress
	ingestion *stubIngestion
	refresher *stubRefresher
	router    http.Handler
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	f := &routerFixture{
		resolver: &stubResolver{out: usecase.Resolution{Status: usecase.ResolutionUnique, Query: "Haaland Hopes", ManagerID: 42}},
		squads: &stubSquads{out: map[int64]squad.Snapshot{
			42: {ManagerID: 42, Gameweek: 12, Formation: "3-4-3"},
		}},
		comparer: &stubComparer{
			out: usecase.Comparison{Matches: []squad.Match{
				{Reference: squad.Reference{TeamName: "FPL Focal", ManagerID: 200}, Score: 0.5, Shared: []int64{1, 2}},
			}},
			refs: []squad.Reference{{TeamName: "FPL Focal", ManagerID: 200}},
		},
		progress:  &stubProgress{progress: manager.Progress{LastPage: 2, TotalManagersFetched: 3}, count: 3},
		ingestion: &stubIngestion{},
		refresher: &stubRefresher{next: time.Date(2026, 10, 17, 17, 0, 0, 0, time.UTC)},
	}
	handler := NewHandler(Dependencies{
		Resolver:  f.resolver,
		Squads:    f.squads,
		Comparer:  f.comparer,
		Progress:  f.progress,
		Ingestion: f.ingestion,
		Refresher: f.refresher,
	}, logging.NewNop())
	f.router = NewRouter(handler, logging.NewNop(), RouterConfig{
		InternalJobToken: testJobToken,
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("# metrics\n"))
		}),
	})
	return f
}

func (f *routerFixture) do(t *testing.T, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var envelope map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &envelope))
	}
	return rec, envelope
}

func dataOf(t *testing.T, envelope map[string]any) map[string]any {
	t.Helper()
	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %v", envelope)
	return data
}

func errorStatusOf(t *testing.T, envelope map[string]any) string {
	t.Helper()
	errObj, ok := envelope["error"].(map[string]any)
	require.True(t, ok, "expected error object, got %v", envelope)
	status, _ := errObj["status"].(string)
	return status
}

func TestRouter_Healthz(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/healthz", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", dataOf(t, body)["status"])
}

func TestRouter_MetricsMounted(t *testing.T) {
	f := newRouterFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/metrics", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# metrics")
}

func TestRouter_ResolveManager(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/managers/resolve?q=Haaland+Hopes", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Haaland Hopes", f.resolver.query)
	data := dataOf(t, body)
	assert.Equal(t, "unique", data["status"])
	assert.EqualValues(t, 42, data["manager_id"])
}

func TestRouter_ResolveManager_RejectsLongQuery(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/managers/resolve?q="+strings.Repeat("a", 101), "", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorStatusOf(t, body))
	assert.Empty(t, f.resolver.query)
}

func TestRouter_GetSquad(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/managers/42/squad", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, body)
	assert.EqualValues(t, 42, data["manager_id"])
	assert.Equal(t, "3-4-3", data["formation"])
}

func TestRouter_GetSquad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		code   int
		status string
	}{
		{name: "non numeric id", path: "/v1/managers/abc/squad", code: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{name: "zero id", path: "/v1/managers/0/squad", code: http.StatusBadRequest, status: "INVALID_ARGUMENT"},
		{name: "unknown manager", path: "/v1/managers/7/squad", code: http.StatusNotFound, status: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newRouterFixture(t)

			rec, body := f.do(t, http.MethodGet, tt.path, "", nil)

			require.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.status, errorStatusOf(t, body))
		})
	}
}

func TestRouter_GetComparison_DefaultTop(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/managers/42/comparison", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, squad.DefaultTopN, f.comparer.topN)

	data := dataOf(t, body)
	matches, ok := data["matches"].([]any)
	require.True(t, ok)
	require.Len(t, matches, 1)
	match := matches[0].(map[string]any)
	assert.Equal(t, "FPL Focal", match["team_name"])
	assert.EqualValues(t, 50, match["percent"])
	assert.EqualValues(t, 2, match["shared_count"])
}

func TestRouter_GetComparison_InvalidTop(t *testing.T) {
	for _, top := range []string{"0", "-1", "abc", "51"} {
		t.Run(top, func(t *testing.T) {
			f := newRouterFixture(t)

			rec, body := f.do(t, http.MethodGet, "/v1/managers/42/comparison?top="+top, "", nil)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_ARGUMENT", errorStatusOf(t, body))
			assert.Zero(t, f.comparer.topN)
		})
	}
}

func TestRouter_GetComparison_DependencyFailure(t *testing.T) {
	f := newRouterFixture(t)
	f.comparer.err = fmt.Errorf("%w: circuit open", usecase.ErrDependencyUnavailable)

	rec, body := f.do(t, http.MethodGet, "/v1/managers/42/comparison?top=5", "", nil)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "UNAVAILABLE", errorStatusOf(t, body))
	assert.Equal(t, 5, f.comparer.topN)
}

func TestRouter_ListReferences(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/references", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, body)
	assert.Equal(t, "idle", data["scheduler_state"])
	assert.Equal(t, "2026-10-17T17:00:00Z", data["next_run_at"])
	items, ok := data["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)
}

func TestRouter_IngestionProgress(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodGet, "/v1/ingestion/progress", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	data := dataOf(t, body)
	assert.EqualValues(t, 3, data["stored_managers"])
	progress := data["progress"].(map[string]any)
	assert.EqualValues(t, 2, progress["last_page"])
}

func TestRouter_InternalJobs_RequireToken(t *testing.T) {
	f := newRouterFixture(t)

	rec, body := f.do(t, http.MethodPost, "/v1/internal/jobs/refresh-references", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHENTICATED", errorStatusOf(t, body))

	rec, _ = f.do(t, http.MethodPost, "/v1/internal/jobs/ingest", "", map[string]string{internalJobTokenHeader: "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Zero(t, f.ingestion.calls)
}

func TestRouter_RefreshReferences(t *testing.T) {
	f := newRouterFixture(t)
	headers := map[string]string{internalJobTokenHeader: testJobToken}

	rec, body := f.do(t, http.MethodPost, "/v1/internal/jobs/refresh-references", `{"force":true}`, headers)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.refresher.input.Force)
	result := dataOf(t, body)["result"].(map[string]any)
	assert.Equal(t, "refresh-1", result["run_id"])
}

func TestRouter_RefreshReferences_Coalesced(t *testing.T) {
	f := newRouterFixture(t)
	f.refresher.coalesced = true

	rec, body := f.do(t, http.MethodPost, "/v1/internal/jobs/refresh-references", "", map[string]string{internalJobTokenHeader: testJobToken})

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, true, dataOf(t, body)["coalesced"])
	assert.False(t, f.refresher.input.Force)
}

func TestRouter_RunIngestion(t *testing.T) {
	f := newRouterFixture(t)
	headers := map[string]string{internalJobTokenHeader: testJobToken}

	rec, body := f.do(t, http.MethodPost, "/v1/internal/jobs/ingest", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.IngestionInput{ResumeFromCheckpoint: true}, f.ingestion.input)
	assert.Equal(t, "ingest-1", dataOf(t, body)["run_id"])

	rec, _ = f.do(t, http.MethodPost, "/v1/internal/jobs/ingest", `{"resume":false,"max_pages":10,"retry_skipped":true}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.IngestionInput{ResumeFromCheckpoint: false, MaxPages: 10, RetrySkipped: true}, f.ingestion.input)
}

func TestRouter_RunIngestion_RejectsBadPayload(t *testing.T) {
	headers := map[string]string{internalJobTokenHeader: testJobToken}
	for name, payload := range map[string]string{
		"unknown field":  `{"pages":3}`,
		"negative pages": `{"max_pages":-1}`,
		"malformed":      `{"max_pages":`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newRouterFixture(t)

			rec, body := f.do(t, http.MethodPost, "/v1/internal/jobs/ingest", payload, headers)

			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "INVALID_ARGUMENT", errorStatusOf(t, body))
			assert.Zero(t, f.ingestion.calls)
		})
	}
}

func TestRouter_MissingDependency(t *testing.T) {
	router := NewRouter(NewHandler(Dependencies{}, logging.NewNop()), logging.NewNop(), RouterConfig{InternalJobToken: testJobToken})

	req := httptest.NewRequest(http.MethodGet, "/v1/managers/42/squad", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	handler := recoverPanic(logging.NewNop(), http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/references", nil))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internalError")
}
