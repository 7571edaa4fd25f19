package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
	"github.com/riskibarqy/fpl-creator-match/internal/platform/resilience"
)

type remoteFault struct {
	status    int
	transient bool
}

func (f *remoteFault) Error() string   { return fmt.Sprintf("remote status %d", f.status) }
func (f *remoteFault) Transient() bool { return f.transient }
func (f *remoteFault) HTTPStatus() int { return f.status }

type fakeStandings struct {
	mu        sync.Mutex
	pages     map[int]StandingsPage
	failures  map[int]error
	requested []int
	onFetch   func(page int)
}

func (f *fakeStandings) FetchStandingsPage(ctx context.Context, page int) (StandingsPage, error) {
	f.mu.Lock()
	f.requested = append(f.requested, page)
	hook := f.onFetch
	err := f.failures[page]
	out, ok := f.pages[page]
	f.mu.Unlock()

	if hook != nil {
		hook(page)
	}
	if err := ctx.Err(); err != nil {
		return StandingsPage{}, err
	}
	if err != nil {
		return StandingsPage{}, err
	}
	if !ok {
		return StandingsPage{Page: page}, nil
	}
	return out, nil
}

func (f *fakeStandings) Requested() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.requested...)
}

type fakeSquads struct {
	mu            sync.Mutex
	gameweek      int
	players       map[int64]squad.Player
	squads        map[int64][]int64
	failures      map[int64]error
	bootstrapErr  error
	squadCalls    map[int64]int
	bootstrapHits int
}

func (f *fakeSquads) FetchSquad(ctx context.Context, managerID int64, gameweek int) (squad.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.squadCalls == nil {
		f.squadCalls = make(map[int64]int)
	}
	f.squadCalls[managerID]++

	if err := f.failures[managerID]; err != nil {
		return squad.Snapshot{}, err
	}
	ids, ok := f.squads[managerID]
	if !ok {
		return squad.Snapshot{}, &remoteFault{status: 404}
	}
	return snapshotOf(managerID, gameweek, ids), nil
}

func (f *fakeSquads) FetchBootstrap(context.Context) (Bootstrap, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bootstrapHits++
	if f.bootstrapErr != nil {
		return Bootstrap{}, f.bootstrapErr
	}
	return Bootstrap{CurrentGameweek: f.gameweek, Players: f.players}, nil
}

func (f *fakeSquads) SquadCalls(managerID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.squadCalls[managerID]
}

type fixedID string

func (f fixedID) NewID() (string, error) { return string(f), nil }

func testRetrier() *resilience.Retrier {
	return resilience.NewRetrier(resilience.RetryPolicy{
		MaxAttempts: 2,
		BaseDelay:   0,
		MaxDelay:    time.Millisecond,
	}, resilience.DefaultClassifier)
}

// rangeIDs returns n consecutive player ids starting at from.
func rangeIDs(from int64, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = from + int64(i)
	}
	return out
}

func snapshotOf(managerID int64, gameweek int, ids []int64) squad.Snapshot {
	picks := make([]squad.Pick, len(ids))
	for i, id := range ids {
		picks[i] = squad.Pick{PlayerID: id, Slot: i + 1, Multiplier: 1}
	}
	if len(picks) > 1 {
		picks[0].IsCaptain = true
		picks[0].Multiplier = 2
		picks[1].IsViceCaptain = true
	}
	return squad.Snapshot{ManagerID: managerID, Gameweek: gameweek, Picks: picks, FetchedAt: time.Now().UTC()}
}

func standingsPage(page int, hasNext bool, managers ...manager.Manager) StandingsPage {
	return StandingsPage{Page: page, Managers: managers, HasNext: hasNext}
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
