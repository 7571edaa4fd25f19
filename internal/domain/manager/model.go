package manager

import (
	"fmt"
	"strings"
	"time"
)

// Manager is one entry of the overall classic league.
type Manager struct {
	ID        int64     `json:"manager_id"`
	Name      string    `json:"manager_name"`
	TeamName  string    `json:"team_name"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (m Manager) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("manager id must be positive")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("manager name is required")
	}
	if strings.TrimSpace(m.TeamName) == "" {
		return fmt.Errorf("manager team name is required")
	}

	return nil
}

// Progress is the ingestion checkpoint. There is exactly one.
type Progress struct {
	LastPage             int        `json:"last_page"`
	LastManagerCount     int        `json:"last_manager_count"`
	TotalManagersFetched int        `json:"total_managers_fetched"`
	LastBatchStartTime   *time.Time `json:"last_batch_start_time,omitempty"`
	LastBatchEndTime     *time.Time `json:"last_batch_end_time,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// NextPage is the first page a resumed run should request.
func (p Progress) NextPage() int {
	if p.LastPage > 0 {
		return p.LastPage + 1
	}
	return 1
}

// SkippedPage records a standings page that could not be ingested.
type SkippedPage struct {
	Page      int       `json:"page"`
	Attempts  int       `json:"attempts"`
	Reason    string    `json:"reason"`
	SkippedAt time.Time `json:"skipped_at"`
}
