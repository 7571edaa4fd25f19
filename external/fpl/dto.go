package fpl

// standingsEnvelope accepts the nested league payload and the flat shape.
type standingsEnvelope struct {
	Standings *standingsBlock `json:"standings"`
	Results   []standingEntry `json:"results"`
	HasNext   bool            `json:"has_next"`
}

type standingsBlock struct {
	HasNext bool            `json:"has_next"`
	Page    int             `json:"page"`
	Results []standingEntry `json:"results"`
}

type standingEntry struct {
	ID         int64  `json:"id"`
	Entry      int64  `json:"entry"`
	PlayerName string `json:"player_name"`
	EntryName  string `json:"entry_name"`
}

// standingRecord is what a standings row must satisfy to be stored.
type standingRecord struct {
	ManagerID   int64  `validate:"required,gt=0"`
	ManagerName string `validate:"required,max=200"`
	TeamName    string `validate:"required,max=200"`
}

func (e standingEntry) managerID() int64 {
	if e.Entry > 0 {
		return e.Entry
	}
	return e.ID
}

type picksEnvelope struct {
	Picks        []pickEntry   `json:"picks"`
	EntryHistory *entryHistory `json:"entry_history"`
}

type pickEntry struct {
	Element       int64 `json:"element"`
	Position      int   `json:"position"`
	Multiplier    int   `json:"multiplier"`
	IsCaptain     bool  `json:"is_captain"`
	IsViceCaptain bool  `json:"is_vice_captain"`
}

type entryHistory struct {
	Event int `json:"event"`
}

type bootstrapEnvelope struct {
	Events   []bootstrapEvent   `json:"events"`
	Elements []bootstrapElement `json:"elements"`
}

type bootstrapEvent struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	IsNext    bool `json:"is_next"`
}

type bootstrapElement struct {
	ID          int64  `json:"id"`
	WebName     string `json:"web_name"`
	ElementType int    `json:"element_type"`
	Team        int64  `json:"team"`
}
