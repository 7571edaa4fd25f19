package squad

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotOf(managerID int64, ids ...int64) Snapshot {
	picks := make([]Pick, 0, len(ids))
	for i, id := range ids {
		picks = append(picks, Pick{PlayerID: id, Slot: i + 1, Multiplier: 1})
	}
	return Snapshot{ManagerID: managerID, Gameweek: 1, Picks: picks}
}

func idRange(from, to int64) []int64 {
	out := make([]int64, 0, to-from+1)
	for id := from; id <= to; id++ {
		out = append(out, id)
	}
	return out
}

func TestJaccardProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	squadGen := gen.SliceOfN(SquadSize, gen.Int64Range(1, 60))

	properties.Property("score stays within [0,1]", prop.ForAll(
		func(a, b []int64) bool {
			score := Jaccard(a, b)
			return score >= 0 && score <= 1
		},
		squadGen, squadGen,
	))

	properties.Property("score is symmetric", prop.ForAll(
		func(a, b []int64) bool {
			return Jaccard(a, b) == Jaccard(b, a)
		},
		squadGen, squadGen,
	))

	properties.Property("identical sets score 1", prop.ForAll(
		func(a []int64) bool {
			return Jaccard(a, a) == 1
		},
		squadGen,
	))

	properties.Property("disjoint sets score 0", prop.ForAll(
		func(a []int64) bool {
			shifted := make([]int64, len(a))
			for i, id := range a {
				shifted[i] = id + 1000
			}
			return Jaccard(a, shifted) == 0
		},
		squadGen,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestJaccard_EmptyUnionScoresZero(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard(nil, nil))
}

func TestJaccard_TenSharedOfFifteen(t *testing.T) {
	target := idRange(1, 15)
	reference := append(idRange(1, 10), idRange(101, 105)...)

	assert.Equal(t, 0.5, Jaccard(target, reference))
}

func TestRank_OrdersByScoreThenTeamName(t *testing.T) {
	target := snapshotOf(1, idRange(1, 15)...)
	refs := []Reference{
		{TeamName: "Zulu", ManagerID: 10, Snapshot: snapshotOf(10, append(idRange(1, 10), idRange(101, 105)...)...)},
		{TeamName: "Alpha", ManagerID: 11, Snapshot: snapshotOf(11, append(idRange(1, 10), idRange(201, 205)...)...)},
		{TeamName: "Bravo", ManagerID: 12, Snapshot: snapshotOf(12, idRange(1, 15)...)},
		{TeamName: "Charlie", ManagerID: 13, Snapshot: snapshotOf(13, idRange(301, 315)...)},
	}

	first := Rank(target, refs, 3)
	require.Len(t, first, 3)
	assert.Equal(t, "Bravo", first[0].Reference.TeamName)
	assert.Equal(t, 1.0, first[0].Score)
	assert.Equal(t, "Alpha", first[1].Reference.TeamName)
	assert.Equal(t, "Zulu", first[2].Reference.TeamName)
	assert.Equal(t, 50.0, first[2].Percent())
	assert.Len(t, first[1].Shared, 10)

	for range 5 {
		assert.Equal(t, first, Rank(target, refs, 3))
	}
}

func TestRank_TopNBounds(t *testing.T) {
	target := snapshotOf(1, idRange(1, 15)...)
	refs := []Reference{
		{TeamName: "A", ManagerID: 2, Snapshot: snapshotOf(2, idRange(1, 15)...)},
		{TeamName: "B", ManagerID: 3, Snapshot: snapshotOf(3, idRange(2, 16)...)},
		{TeamName: "C", ManagerID: 4, Snapshot: snapshotOf(4, idRange(3, 17)...)},
		{TeamName: "D", ManagerID: 5, Snapshot: snapshotOf(5, idRange(4, 18)...)},
	}

	assert.Len(t, Rank(target, refs, 0), DefaultTopN)
	assert.Len(t, Rank(target, refs, 10), len(refs))
	assert.Empty(t, Rank(target, nil, 3))
}

func TestRank_SkipsTargetsOwnReference(t *testing.T) {
	target := snapshotOf(7, idRange(1, 15)...)
	refs := []Reference{
		{TeamName: "Self", ManagerID: 7, Snapshot: snapshotOf(7, idRange(1, 15)...)},
		{TeamName: "Other", ManagerID: 8, Snapshot: snapshotOf(8, idRange(1, 15)...)},
	}

	matches := Rank(target, refs, 3)
	require.Len(t, matches, 1)
	assert.Equal(t, "Other", matches[0].Reference.TeamName)
}

func TestMatchPercent_RoundsToOneDecimal(t *testing.T) {
	assert.Equal(t, 33.3, Match{Score: 1.0 / 3.0}.Percent())
	assert.Equal(t, 66.7, Match{Score: 2.0 / 3.0}.Percent())
}
