package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/infrastructure/repository/memory"
	squadmock "github.com/riskibarqy/fpl-creator-match/internal/mocks/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testCreators = []squad.Creator{
	{Name: "FPL Focal", ManagerID: 200},
	{Name: "FPL Harry", ManagerID: 1320},
	{ManagerID: 999},
}

func newTestRefresh(source SquadSource, refs squad.ReferenceRepository, store cache.Store) *ReferenceRefreshService {
	return NewReferenceRefreshService(source, refs, testRetrier(), store, CacheConfig{}, fixedID("refresh-1"), RefreshConfig{
		Creators:   testCreators,
		MaxWorkers: 2,
	}, nil)
}

func TestReferenceRefreshService_RefreshAllKeepsGoingOnFailure(t *testing.T) {
	t.Parallel()

	source := &fakeSquads{
		gameweek: 12,
		squads: map[int64][]int64{
			200:  rangeIDs(1, 15),
			1320: rangeIDs(30, 15),
		},
		failures: map[int64]error{999: &remoteFault{status: 503, transient: true}},
	}
	refs := memory.NewReferenceRepository()
	seedReference(t, refs, "Manager 999", 999, rangeIDs(60, 15))

	result, err := newTestRefresh(source, refs, nil).RefreshAll(t.Context(), RefreshInput{})
	require.NoError(t, err)

	assert.Equal(t, "refresh-1", result.RunID)
	assert.Equal(t, 12, result.Gameweek)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.UpToDate)
	require.Len(t, result.Items, 3)
	assert.Equal(t, "FPL Focal", result.Items[0].TeamName)
	assert.Equal(t, "Manager 999", result.Items[2].TeamName)
	assert.Equal(t, RefreshStatusFailed, result.Items[2].Status)
	assert.NotEmpty(t, result.Items[2].Message)

	stored, ok, err := refs.GetReference(t.Context(), "FPL Harry")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 12, stored.Snapshot.Gameweek)

	// the failed creator keeps its previous snapshot
	previous, ok, err := refs.GetReference(t.Context(), "Manager 999")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 9, previous.Snapshot.Gameweek)
}

func TestReferenceRefreshService_SkipsUpToDateUnlessForced(t *testing.T) {
	t.Parallel()

	source := &fakeSquads{
		gameweek: 9,
		squads: map[int64][]int64{
			200:  rangeIDs(1, 15),
			1320: rangeIDs(30, 15),
			999:  rangeIDs(60, 15),
		},
	}
	refs := memory.NewReferenceRepository()
	seedReference(t, refs, "FPL Focal", 200, rangeIDs(1, 15))
	service := newTestRefresh(source, refs, nil)

	result, err := service.RefreshAll(t.Context(), RefreshInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.UpToDate)
	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, source.SquadCalls(200))

	forced, err := service.RefreshAll(t.Context(), RefreshInput{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 0, forced.UpToDate)
	assert.Equal(t, 3, forced.Succeeded)
	assert.Equal(t, 1, source.SquadCalls(200))
}

func TestReferenceRefreshService_EvictsReferenceCache(t *testing.T) {
	t.Parallel()

	source := &fakeSquads{gameweek: 4, squads: map[int64][]int64{
		200:  rangeIDs(1, 15),
		1320: rangeIDs(30, 15),
		999:  rangeIDs(60, 15),
	}}
	refs := memory.NewReferenceRepository()
	store := cache.NewMemoryStore(time.Minute)
	comparison := NewComparisonService(nil, refs, store, CacheConfig{}, nil)

	before, err := comparison.References(t.Context())
	require.NoError(t, err)
	assert.Empty(t, before)

	_, err = newTestRefresh(source, refs, store).RefreshAll(t.Context(), RefreshInput{})
	require.NoError(t, err)

	after, err := comparison.References(t.Context())
	require.NoError(t, err)
	assert.Len(t, after, 3)
}

func TestReferenceRefreshService_BootstrapFailureAbortsRun(t *testing.T) {
	t.Parallel()

	refs := squadmock.NewReferenceRepository(t)
	source := &fakeSquads{bootstrapErr: &remoteFault{status: 404}}

	_, err := newTestRefresh(source, refs, nil).RefreshAll(t.Context(), RefreshInput{})
	require.ErrorIs(t, err, ErrNotFound)
	refs.AssertNotCalled(t, "UpsertReference", mock.Anything, mock.Anything)
}

func TestReferenceRefreshService_StoreFailureMarksItemFailed(t *testing.T) {
	t.Parallel()

	refs := squadmock.NewReferenceRepository(t)
	refs.On("GetReference", mock.Anything, mock.Anything).Return(squad.Reference{}, false, nil)
	refs.On("UpsertReference", mock.Anything, mock.Anything).Return(errors.New("read only"))

	source := &fakeSquads{gameweek: 4, squads: map[int64][]int64{
		200:  rangeIDs(1, 15),
		1320: rangeIDs(30, 15),
		999:  rangeIDs(60, 15),
	}}

	result, err := newTestRefresh(source, refs, nil).RefreshAll(t.Context(), RefreshInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Failed)
	for _, item := range result.Items {
		assert.Contains(t, item.Message, "read only")
	}
}

func TestReferenceRefreshService_StoreReadFailureIsNotAWriteFailure(t *testing.T) {
	t.Parallel()

	refs := squadmock.NewReferenceRepository(t)
	refs.On("GetReference", mock.Anything, mock.Anything).Return(squad.Reference{}, false, errors.New("connection reset"))

	source := &fakeSquads{gameweek: 4}

	result, err := newTestRefresh(source, refs, nil).RefreshAll(t.Context(), RefreshInput{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Failed)
	for _, item := range result.Items {
		assert.Equal(t, RefreshStatusFailed, item.Status)
		assert.Contains(t, item.Message, "read stored reference: connection reset")
		assert.NotContains(t, item.Message, ErrStoreWrite.Error())
	}
	refs.AssertNotCalled(t, "UpsertReference", mock.Anything, mock.Anything)
	assert.Zero(t, source.SquadCalls(200))
}
