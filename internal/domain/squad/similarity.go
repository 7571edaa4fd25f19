package squad

import (
	"math"
	"sort"
)

const DefaultTopN = 3

// Jaccard is |a∩b| / |a∪b| over distinct ids; an empty union scores 0.
func Jaccard(a, b []int64) float64 {
	setA := make(map[int64]struct{}, len(a))
	for _, id := range a {
		setA[id] = struct{}{}
	}
	setB := make(map[int64]struct{}, len(b))
	for _, id := range b {
		setB[id] = struct{}{}
	}

	shared := 0
	for id := range setB {
		if _, ok := setA[id]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

type Match struct {
	Reference Reference `json:"reference"`
	Score     float64   `json:"score"`
	Shared    []int64   `json:"shared_player_ids"`
}

// Percent is the score as a percentage with one decimal.
func (m Match) Percent() float64 {
	return math.Round(m.Score*1000) / 10
}

// Rank scores every reference against target and returns the best topN,
// ordered by score descending and team name ascending. A reference owned by
// the target's manager is left out.
func Rank(target Snapshot, refs []Reference, topN int) []Match {
	if topN <= 0 {
		topN = DefaultTopN
	}

	targetIDs := target.PlayerIDs()
	inTarget := make(map[int64]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		inTarget[id] = struct{}{}
	}

	matches := make([]Match, 0, len(refs))
	for _, ref := range refs {
		if target.ManagerID > 0 && ref.ManagerID == target.ManagerID {
			continue
		}
		refIDs := ref.Snapshot.PlayerIDs()
		matches = append(matches, Match{
			Reference: ref,
			Score:     Jaccard(targetIDs, refIDs),
			Shared:    sharedIDs(inTarget, refIDs),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Reference.TeamName < matches[j].Reference.TeamName
	})

	if topN < len(matches) {
		matches = matches[:topN]
	}
	return matches
}

func sharedIDs(inTarget map[int64]struct{}, ids []int64) []int64 {
	out := make([]int64, 0)
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := inTarget[id]; ok {
			out = append(out, id)
		}
	}
	return out
}
