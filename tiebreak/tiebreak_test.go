package tiebreak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racefan-dev/fantasy-chase/models"
)

func standing(userID string, points int, mutate ...func(*models.SeasonStanding)) *models.SeasonStanding {
	s := &models.SeasonStanding{
		UserID:              userID,
		RegularSeasonPoints: points,
		PlayoffPoints:       points,
	}
	for _, fn := range mutate {
		fn(s)
	}
	return s
}

func withWins(n int) func(*models.SeasonStanding)   { return func(s *models.SeasonStanding) { s.RaceWins = n } }
func withTop5s(n int) func(*models.SeasonStanding)  { return func(s *models.SeasonStanding) { s.Top5s = n } }
func withTop10s(n int) func(*models.SeasonStanding) { return func(s *models.SeasonStanding) { s.Top10s = n } }

func TestSort_CascadeDeterminism(t *testing.T) {
	a := standing("a", 100, withWins(3))
	b := standing("b", 100, withWins(1))
	c := standing("c", 120)

	players := []*models.SeasonStanding{b, a, c}
	Sort(players, false)

	require.Len(t, players, 3)
	assert.Equal(t, "c", players[0].UserID, "raw points first")
	assert.Equal(t, "a", players[1].UserID, "wins break the points tie")
	assert.Equal(t, "b", players[2].UserID)

	assert.Equal(t, LevelWins, CompareLevel(a, b, false))
	assert.Equal(t, LevelPoints, CompareLevel(c, a, false))
}

func TestSort_DeepCascade(t *testing.T) {
	a := standing("a", 80, withWins(2), withTop5s(4), withTop10s(9))
	b := standing("b", 80, withWins(2), withTop5s(4), withTop10s(7))

	players := []*models.SeasonStanding{b, a}
	Sort(players, false)

	assert.Equal(t, "a", players[0].UserID)
	assert.Equal(t, LevelTop10s, CompareLevel(a, b, false))
}

func TestSort_PlayoffPrimary(t *testing.T) {
	a := standing("a", 0)
	a.RegularSeasonPoints = 500
	a.PlayoffPoints = 2
	b := standing("b", 0)
	b.RegularSeasonPoints = 100
	b.PlayoffPoints = 8

	players := []*models.SeasonStanding{a, b}
	Sort(players, true)

	assert.Equal(t, "b", players[0].UserID, "playoff points outrank regular-season points when selected")
}

func TestSort_StableWhenFullyTied(t *testing.T) {
	a := standing("a", 50)
	b := standing("b", 50)

	players := []*models.SeasonStanding{a, b}
	Sort(players, false)

	assert.Equal(t, "a", players[0].UserID, "fully tied players keep input order")
	assert.Equal(t, LevelTied, CompareLevel(a, b, false))
}

func TestWasDecidedByTiebreaker(t *testing.T) {
	a := standing("a", 100, withWins(3))
	b := standing("b", 100)
	c := standing("c", 90)

	assert.True(t, WasDecidedByTiebreaker(b, a, false))
	assert.False(t, WasDecidedByTiebreaker(c, b, false))
	assert.False(t, WasDecidedByTiebreaker(a, nil, false))
}

func TestLevelLabel(t *testing.T) {
	assert.Equal(t, "Race Wins", LevelWins.Label())
	assert.Equal(t, "Top 10s", LevelTop10s.Label())
	assert.Equal(t, "Tied", LevelTied.Label())
}
