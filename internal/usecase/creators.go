package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/riskibarqy/fpl-creator-match/internal/domain/squad"
)

// DefaultCreators is the curated roster tracked when REFERENCE_SQUADS is unset.
func DefaultCreators() []squad.Creator {
	return []squad.Creator{
		{Name: "Lets Talk FPL", ManagerID: 44},
		{Name: "FPL Focal", ManagerID: 200},
		{Name: "FPL Harry", ManagerID: 1320},
		{Name: "FPL Raptor", ManagerID: 1587},
		{Name: "FPL Pickle", ManagerID: 14501},
		{Name: "FPL Mate", ManagerID: 16267},
		{Name: "Ben Crellin", ManagerID: 6586},
		{Name: "Az Phillips", ManagerID: 441},
		{Name: "Kelly Somers", ManagerID: 1924811},
		{Name: "Julien Laurens", ManagerID: 1514450},
		{Name: "Sam Bonfield", ManagerID: 260},
		{Name: "Lee Bonfield", ManagerID: 341},
		{Name: "Holly Shand", ManagerID: 135},
		{Name: "Ian Irwing", ManagerID: 7577129},
		{Name: "FPL Sonaldo", ManagerID: 16725},
		{Name: "Pras", ManagerID: 3570},
		{Name: "Gianni Buttice", ManagerID: 17614},
		{Name: "BigMan Bakar", ManagerID: 963},
		{Name: "Yelena", ManagerID: 251},
		{Name: "Stormzy", ManagerID: 698910},
		{Name: "Chunkz", ManagerID: 2253812},
	}
}

// ParseCreators reads "Name:id,Name:id". A bare id is accepted and gets the
// fallback display name. Duplicate ids keep the first entry.
func ParseCreators(raw string) ([]squad.Creator, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	seen := make(map[int64]struct{})
	out := make([]squad.Creator, 0)
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		name, idText := "", item
		if idx := strings.LastIndex(item, ":"); idx >= 0 {
			name = strings.TrimSpace(item[:idx])
			idText = strings.TrimSpace(item[idx+1:])
		}
		id, err := strconv.ParseInt(idText, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("%w: invalid creator entry %q", ErrInvalidInput, item)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		creator := squad.Creator{Name: name, ManagerID: id}
		creator.Name = creator.DisplayName()
		out = append(out, creator)
	}
	return out, nil
}
