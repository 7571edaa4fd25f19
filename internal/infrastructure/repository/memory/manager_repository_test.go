package memory

import (
	"context"
	"testing"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
)

func TestManagerRepository_CommitPageScenario(t *testing.T) {
	ctx := context.Background()
	repo := NewManagerRepository(nil)

	if _, err := repo.CommitPage(ctx, 1, []manager.Manager{
		{ID: 1, Name: "A", TeamName: "Team A"},
		{ID: 2, Name: "B", TeamName: "Team B"},
	}); err != nil {
		t.Fatalf("commit page 1: %v", err)
	}
	progress, err := repo.CommitPage(ctx, 2, []manager.Manager{{ID: 3, Name: "C", TeamName: "Team C"}})
	if err != nil {
		t.Fatalf("commit page 2: %v", err)
	}

	if progress.LastPage != 2 || progress.TotalManagersFetched != 3 {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}

func TestManagerRepository_FindByNameRanksExactFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewManagerRepository([]manager.Manager{
		{ID: 1, Name: "Bonfield Fan", TeamName: "Sam's XI"},
		{ID: 2, Name: "Lee", TeamName: "bonfield"},
		{ID: 3, Name: "Amy", TeamName: "The Bonfield Army"},
	})

	got, err := repo.FindByName(ctx, "Bonfield", 0)
	if err != nil {
		t.Fatalf("find by name: %v", err)
	}
	if len(got) != 3 || got[0].ID != 2 || got[1].ID != 1 || got[2].ID != 3 {
		t.Fatalf("unexpected order: %+v", got)
	}
}

func TestManagerRepository_RecommitAddsOnlyNewManagersToTotal(t *testing.T) {
	ctx := context.Background()
	repo := NewManagerRepository(nil)

	page := []manager.Manager{{ID: 1, Name: "A", TeamName: "Team A"}, {ID: 2, Name: "B", TeamName: "Team B"}}
	if _, err := repo.CommitPage(ctx, 1, page); err != nil {
		t.Fatalf("commit page 1: %v", err)
	}
	progress, err := repo.CommitPage(ctx, 1, page)
	if err != nil {
		t.Fatalf("recommit page 1: %v", err)
	}
	if progress.TotalManagersFetched != 2 {
		t.Fatalf("recommit changed total: %+v", progress)
	}

	progress, err = repo.CommitPage(ctx, 2, []manager.Manager{{ID: 2, Name: "B", TeamName: "Renamed"}, {ID: 3, Name: "C", TeamName: "Team C"}})
	if err != nil {
		t.Fatalf("commit page 2: %v", err)
	}
	if progress.TotalManagersFetched != 3 {
		t.Fatalf("unexpected total: %+v", progress)
	}
}
