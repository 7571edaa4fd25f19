package usecase

import (
	"context"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/manager"
	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
)

// StandingsPage is one page of the overall league listing. Records that
// failed validation are dropped and counted in SkippedRecords.
type StandingsPage struct {
	Page           int
	Managers       []manager.Manager
	HasNext        bool
	SkippedRecords int
}

// Bootstrap is the season-wide static data the squad features need.
type Bootstrap struct {
	CurrentGameweek int                    `json:"current_gameweek"`
	Players         map[int64]squad.Player `json:"players"`
}

type StandingsSource interface {
	FetchStandingsPage(ctx context.Context, page int) (StandingsPage, error)
}

type SquadSource interface {
	FetchSquad(ctx context.Context, managerID int64, gameweek int) (squad.Snapshot, error)
	FetchBootstrap(ctx context.Context) (Bootstrap, error)
}
