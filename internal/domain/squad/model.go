package squad

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

const (
	SquadSize    = 15
	StartingSize = 11
)

var (
	ErrInvalidSquadSize       = errors.New("invalid squad size")
	ErrDuplicatePlayerInSquad = errors.New("duplicate player in squad")
	ErrInvalidArmband         = errors.New("squad needs exactly one captain and one vice captain")
)

// Position is the FPL element type of a player.
type Position string

const (
	PositionGoalkeeper Position = "GKP"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

// PositionFromElementType maps the upstream element_type code.
func PositionFromElementType(elementType int) Position {
	switch elementType {
	case 1:
		return PositionGoalkeeper
	case 2:
		return PositionDefender
	case 3:
		return PositionMidfielder
	case 4:
		return PositionForward
	default:
		return ""
	}
}

// Player is a catalogue entry from the season bootstrap.
type Player struct {
	ID       int64    `json:"id"`
	WebName  string   `json:"web_name"`
	Position Position `json:"position"`
	TeamID   int64    `json:"team_id"`
}

type Pick struct {
	PlayerID      int64    `json:"player_id"`
	Slot          int      `json:"slot"`
	Multiplier    int      `json:"multiplier"`
	IsCaptain     bool     `json:"is_captain"`
	IsViceCaptain bool     `json:"is_vice_captain"`
	PlayerName    string   `json:"player_name,omitempty"`
	Position      Position `json:"position,omitempty"`
}

// Snapshot is a manager's squad for one gameweek.
type Snapshot struct {
	ManagerID int64     `json:"manager_id"`
	Gameweek  int       `json:"gameweek"`
	Picks     []Pick    `json:"picks"`
	Formation string    `json:"formation,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
}

func (s Snapshot) Validate() error {
	if s.ManagerID <= 0 {
		return fmt.Errorf("manager id must be positive")
	}
	if s.Gameweek <= 0 {
		return fmt.Errorf("gameweek must be positive")
	}
	if len(s.Picks) != SquadSize {
		return fmt.Errorf("%w: expected %d, got %d", ErrInvalidSquadSize, SquadSize, len(s.Picks))
	}

	seen := make(map[int64]struct{}, len(s.Picks))
	captains, vices := 0, 0
	for _, pick := range s.Picks {
		if pick.PlayerID <= 0 {
			return fmt.Errorf("player id must be positive")
		}
		if _, exists := seen[pick.PlayerID]; exists {
			return fmt.Errorf("%w: %d", ErrDuplicatePlayerInSquad, pick.PlayerID)
		}
		seen[pick.PlayerID] = struct{}{}
		if pick.IsCaptain {
			captains++
		}
		if pick.IsViceCaptain {
			vices++
		}
	}
	if captains != 1 || vices != 1 {
		return fmt.Errorf("%w: captains=%d vice=%d", ErrInvalidArmband, captains, vices)
	}

	return nil
}

// PlayerIDs returns the pick ids in slot order.
func (s Snapshot) PlayerIDs() []int64 {
	out := make([]int64, 0, len(s.Picks))
	for _, pick := range s.Picks {
		out = append(out, pick.PlayerID)
	}
	return out
}

func (s Snapshot) Captain() (Pick, bool) {
	for _, pick := range s.Picks {
		if pick.IsCaptain {
			return pick, true
		}
	}
	return Pick{}, false
}

// Enrich fills pick names and positions from the catalogue and derives the
// formation. Unknown players are left as they are.
func (s Snapshot) Enrich(players map[int64]Player) Snapshot {
	if len(players) == 0 {
		return s
	}
	picks := make([]Pick, len(s.Picks))
	copy(picks, s.Picks)
	for i := range picks {
		p, ok := players[picks[i].PlayerID]
		if !ok {
			continue
		}
		picks[i].PlayerName = p.WebName
		picks[i].Position = p.Position
	}
	s.Picks = picks
	s.Formation = DeriveFormation(picks)
	return s
}

// DeriveFormation reads the starting eleven as DEF-MID-FWD, e.g. "3-4-3".
// It returns "" while any starter has no known position.
func DeriveFormation(picks []Pick) string {
	var def, mid, fwd, starters int
	for _, pick := range picks {
		if pick.Slot < 1 || pick.Slot > StartingSize {
			continue
		}
		starters++
		switch pick.Position {
		case PositionGoalkeeper:
		case PositionDefender:
			def++
		case PositionMidfielder:
			mid++
		case PositionForward:
			fwd++
		default:
			return ""
		}
	}
	if starters != StartingSize {
		return ""
	}
	return strconv.Itoa(def) + "-" + strconv.Itoa(mid) + "-" + strconv.Itoa(fwd)
}
