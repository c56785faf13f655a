package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fieldOf builds a results list with positions 1..n for driver IDs 101..100+n.
func fieldOf(n int) []ResultEntry {
	results := make([]ResultEntry, 0, n)
	for i := 1; i <= n; i++ {
		results = append(results, ResultEntry{
			DriverID:          100 + i,
			DriverName:        "Driver",
			FinishingPosition: i,
		})
	}
	return results
}

func TestLastPlacePoints(t *testing.T) {
	assert.Equal(t, 1, LastPlacePoints(fieldOf(38)), "worst position 38 is worth a single point")
	assert.Equal(t, 27, LastPlacePoints(fieldOf(10)), "short field penalty follows the table")
}

func TestScore_NoPickPenalty(t *testing.T) {
	in := Input{
		Results: fieldOf(38),
		Members: []string{"user-a"},
	}

	scores := Score(in)
	require.Len(t, scores, 1)

	assert.Equal(t, 1, scores[0].PointsEarned)
	assert.Nil(t, scores[0].FinishingPosition)
	assert.Nil(t, scores[0].DriverID)
	assert.False(t, scores[0].IsRaceWin)
	assert.Zero(t, scores[0].PlayoffPoints)
}

func TestScore_OverUsagePenalty(t *testing.T) {
	// Driver 101 won the race, but this is the player's third non-free-pick
	// use of them this season: penalty regardless of the actual finish.
	in := Input{
		Results: fieldOf(36),
		Picks: map[string]Pick{
			"user-a": {UserID: "user-a", DriverID: 101, DriverName: "Ace"},
		},
		DriverUsage: map[string]map[int]int{
			"user-a": {101: 3},
		},
		Members: []string{"user-a"},
	}

	scores := Score(in)
	require.Len(t, scores, 1)

	assert.Equal(t, 1, scores[0].PointsEarned)
	assert.False(t, scores[0].IsRaceWin)
	assert.Nil(t, scores[0].FinishingPosition)
	assert.Zero(t, scores[0].PlayoffPoints)
}

func TestScore_UsageAtCapStillScores(t *testing.T) {
	in := Input{
		Results: fieldOf(36),
		Picks: map[string]Pick{
			"user-a": {UserID: "user-a", DriverID: 103, DriverName: "Steady"},
		},
		DriverUsage: map[string]map[int]int{
			"user-a": {103: 2},
		},
		Members: []string{"user-a"},
	}

	scores := Score(in)
	require.Len(t, scores, 1)
	assert.Equal(t, 34, scores[0].PointsEarned, "second use of a driver scores normally")
}

func TestScore_FreePickRace(t *testing.T) {
	tests := []struct {
		name         string
		driverID     int
		wantPoints   int
		wantWin      bool
		wantPlayoffs int
	}{
		{name: "winner gets the flat bonus", driverID: 101, wantPoints: 10, wantWin: true, wantPlayoffs: 1},
		{name: "any other finish scores zero", driverID: 105, wantPoints: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Results:      fieldOf(20),
				StageWinners: []int{101, 101}, // stages carry nothing in free-pick races
				Picks: map[string]Pick{
					"user-a": {UserID: "user-a", DriverID: tt.driverID, DriverName: "Pick", IsFreePick: true},
				},
				Members:      []string{"user-a"},
				FreePickRace: true,
			}

			scores := Score(in)
			require.Len(t, scores, 1)

			assert.Equal(t, tt.wantPoints, scores[0].PointsEarned)
			assert.Equal(t, tt.wantWin, scores[0].IsRaceWin)
			assert.Equal(t, tt.wantPlayoffs, scores[0].PlayoffPoints)
			assert.Zero(t, scores[0].StageWins)
		})
	}
}

func TestScore_NormalRace(t *testing.T) {
	in := Input{
		Results:      fieldOf(36),
		StageWinners: []int{101, 103},
		Picks: map[string]Pick{
			"winner":   {UserID: "winner", DriverID: 101, DriverName: "Ace"},
			"midfield": {UserID: "midfield", DriverID: 112, DriverName: "Mid"},
			"unlisted": {UserID: "unlisted", DriverID: 999, DriverName: "Ghost"},
		},
		Members: []string{"winner", "midfield", "unlisted"},
	}

	scores := Score(in)
	require.Len(t, scores, 3)
	byUser := make(map[string]PlayerScore, len(scores))
	for _, s := range scores {
		byUser[s.UserID] = s
	}

	winner := byUser["winner"]
	assert.Equal(t, 40, winner.PointsEarned)
	assert.True(t, winner.IsRaceWin)
	assert.Equal(t, 1, winner.StageWins)
	require.NotNil(t, winner.FinishingPosition)
	assert.Equal(t, 1, *winner.FinishingPosition)
	assert.Equal(t, RaceWinPlayoffPoints+StageWinPlayoffPoints, winner.PlayoffPoints)

	midfield := byUser["midfield"]
	assert.Equal(t, 25, midfield.PointsEarned)
	assert.False(t, midfield.IsRaceWin)
	assert.Zero(t, midfield.PlayoffPoints)

	unlisted := byUser["unlisted"]
	assert.Equal(t, 1, unlisted.PointsEarned, "unlisted driver takes the last-place penalty")
	assert.Nil(t, unlisted.FinishingPosition)
}

func TestScore_StageSweepWithoutWin(t *testing.T) {
	in := Input{
		Results:      fieldOf(30),
		StageWinners: []int{102, 102},
		Picks: map[string]Pick{
			"user-a": {UserID: "user-a", DriverID: 102, DriverName: "Sweeper"},
		},
		Members: []string{"user-a"},
	}

	scores := Score(in)
	require.Len(t, scores, 1)

	assert.Equal(t, 35, scores[0].PointsEarned)
	assert.False(t, scores[0].IsRaceWin)
	assert.Equal(t, 2, scores[0].StageWins)
	assert.Equal(t, 2*StageWinPlayoffPoints, scores[0].PlayoffPoints)
}

func TestScore_MemberOrderPreserved(t *testing.T) {
	in := Input{
		Results: fieldOf(10),
		Members: []string{"c", "a", "b"},
	}

	scores := Score(in)
	require.Len(t, scores, 3)
	assert.Equal(t, "c", scores[0].UserID)
	assert.Equal(t, "a", scores[1].UserID)
	assert.Equal(t, "b", scores[2].UserID)
}
