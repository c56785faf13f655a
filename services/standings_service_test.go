package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/tiebreak"
)

func TestListStandings(t *testing.T) {
	leagues := newFakeLeagueRepo()
	leagues.leagues[1] = &models.League{ID: 1, Season: 2025, Series: models.SeriesCup}
	standings := newFakeStandingRepo()
	users := newFakeUserRepo()

	users.users["alice"] = &models.User{ID: "alice", DisplayName: "Alice"}
	users.users["bob"] = &models.User{ID: "bob", DisplayName: "Bob"}
	users.users["carol"] = &models.User{ID: "carol", DisplayName: "Carol"}

	standings.seed(&models.SeasonStanding{LeagueID: 1, UserID: "alice", Season: 2025, RegularSeasonPoints: 200, RaceWins: 1})
	standings.seed(&models.SeasonStanding{LeagueID: 1, UserID: "bob", Season: 2025, RegularSeasonPoints: 200, RaceWins: 2})
	standings.seed(&models.SeasonStanding{LeagueID: 1, UserID: "carol", Season: 2025, RegularSeasonPoints: 150})

	svc := NewStandingsService(leagues, standings, users, nil)
	ranked, err := svc.ListStandings(context.Background(), 1, false)
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	// Bob beats Alice on race wins at equal points.
	assert.Equal(t, "bob", ranked[0].UserID)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, "alice", ranked[1].UserID)
	assert.True(t, ranked[1].DecidedByTiebreaker)
	assert.Equal(t, tiebreak.LevelWins, ranked[1].TiebreakLevel)

	assert.Equal(t, "carol", ranked[2].UserID)
	assert.False(t, ranked[2].DecidedByTiebreaker)
	assert.Equal(t, tiebreak.LevelPoints, ranked[2].TiebreakLevel)

	require.NotNil(t, ranked[0].User)
	assert.Equal(t, "Bob", ranked[0].User.DisplayName)
}

func TestListStandingsPlayoffPrimary(t *testing.T) {
	leagues := newFakeLeagueRepo()
	leagues.leagues[1] = &models.League{ID: 1, Season: 2025, Series: models.SeriesCup}
	standings := newFakeStandingRepo()

	// Alice leads the regular season, bob leads the playoff pool.
	standings.seed(&models.SeasonStanding{LeagueID: 1, UserID: "alice", Season: 2025, RegularSeasonPoints: 300, PlayoffPoints: 2})
	standings.seed(&models.SeasonStanding{LeagueID: 1, UserID: "bob", Season: 2025, RegularSeasonPoints: 250, PlayoffPoints: 8})

	svc := NewStandingsService(leagues, standings, newFakeUserRepo(), nil)

	regular, err := svc.ListStandings(context.Background(), 1, false)
	require.NoError(t, err)
	assert.Equal(t, "alice", regular[0].UserID)

	playoff, err := svc.ListStandings(context.Background(), 1, true)
	require.NoError(t, err)
	assert.Equal(t, "bob", playoff[0].UserID)
}

func TestListStandingsLeagueNotFound(t *testing.T) {
	svc := NewStandingsService(newFakeLeagueRepo(), newFakeStandingRepo(), newFakeUserRepo(), nil)
	_, err := svc.ListStandings(context.Background(), 9, false)
	assert.ErrorIs(t, err, ErrLeagueNotFound)
}
