package sqlstore

import "time"

type managerTableModel struct {
	ManagerID   int64     `db:"manager_id"`
	ManagerName string    `db:"manager_name"`
	TeamName    string    `db:"team_name"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type progressTableModel struct {
	LastPage             int        `db:"last_page"`
	LastManagerCount     int        `db:"last_manager_count"`
	TotalManagersFetched int        `db:"total_managers_fetched"`
	LastBatchStartTime   *time.Time `db:"last_batch_start_time"`
	LastBatchEndTime     *time.Time `db:"last_batch_end_time"`
	UpdatedAt            time.Time  `db:"updated_at"`
}

type skippedPageTableModel struct {
	Page      int       `db:"page"`
	Attempts  int       `db:"attempts"`
	Reason    string    `db:"reason"`
	SkippedAt time.Time `db:"skipped_at"`
}
