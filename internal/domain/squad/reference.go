package squad

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Reference is a creator's squad, keyed by its team name.
type Reference struct {
	TeamName    string    `json:"team_name"`
	ManagerID   int64     `json:"manager_id"`
	Snapshot    Snapshot  `json:"snapshot"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

func (r Reference) Validate() error {
	if strings.TrimSpace(r.TeamName) == "" {
		return fmt.Errorf("reference team name is required")
	}
	if r.ManagerID <= 0 {
		return fmt.Errorf("reference manager id must be positive")
	}
	return r.Snapshot.Validate()
}

// Creator is a curated account whose squad is tracked as a reference.
type Creator struct {
	Name      string
	ManagerID int64
}

// DisplayName falls back to "Manager {id}" for unnamed creators.
func (c Creator) DisplayName() string {
	if name := strings.TrimSpace(c.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Manager %d", c.ManagerID)
}

// ReferenceRepository persists reference squads. Writes replace in place.
type ReferenceRepository interface {
	ListReferences(ctx context.Context) ([]Reference, error)
	GetReference(ctx context.Context, teamName string) (Reference, bool, error)
	UpsertReference(ctx context.Context, ref Reference) error
}
