package sqlstore

import "time"

type referenceTableModel struct {
	TeamName    string    `db:"team_name"`
	ManagerID   int64     `db:"manager_id"`
	Gameweek    int       `db:"gameweek"`
	Picks       string    `db:"picks"`
	Formation   string    `db:"formation"`
	FetchedAt   time.Time `db:"fetched_at"`
	RefreshedAt time.Time `db:"refreshed_at"`
}
