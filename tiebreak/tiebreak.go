// Package tiebreak is the single ordering implementation used everywhere
// player ranking matters: standings tables, Chase seeding and Chase
// elimination cutoffs. Keeping one implementation guarantees that "who is
// safe" in a standings view exactly matches the elimination engine.
package tiebreak

import (
	"sort"

	"github.com/racefan-dev/fantasy-chase/models"
)

// Level identifies which statistic in the cascade differentiated two players.
type Level string

const (
	LevelPoints Level = "points"
	LevelWins   Level = "wins"
	LevelTop5s  Level = "top5s"
	LevelTop10s Level = "top10s"
	LevelTop15s Level = "top15s"
	LevelTop20s Level = "top20s"
	LevelTied   Level = "tied"
)

// Label returns the human-readable name of a cascade level.
func (l Level) Label() string {
	switch l {
	case LevelPoints:
		return "Points"
	case LevelWins:
		return "Race Wins"
	case LevelTop5s:
		return "Top 5s"
	case LevelTop10s:
		return "Top 10s"
	case LevelTop15s:
		return "Top 15s"
	case LevelTop20s:
		return "Top 20s"
	default:
		return "Tied"
	}
}

func primaryPoints(s *models.SeasonStanding, usePlayoffPoints bool) int {
	if usePlayoffPoints {
		return s.PlayoffPoints
	}
	return s.RegularSeasonPoints
}

// Compare orders a before b (negative result) when a ranks higher. The
// cascade is: primary points, race wins, then top-5 through top-20 finishes,
// each level descending and consulted only when all previous levels tie.
func Compare(a, b *models.SeasonStanding, usePlayoffPoints bool) int {
	if d := primaryPoints(b, usePlayoffPoints) - primaryPoints(a, usePlayoffPoints); d != 0 {
		return d
	}
	if d := b.RaceWins - a.RaceWins; d != 0 {
		return d
	}
	if d := b.Top5s - a.Top5s; d != 0 {
		return d
	}
	if d := b.Top10s - a.Top10s; d != 0 {
		return d
	}
	if d := b.Top15s - a.Top15s; d != 0 {
		return d
	}
	return b.Top20s - a.Top20s
}

// CompareLevel reports which level of the cascade differentiates a and b,
// or LevelTied when no level does.
func CompareLevel(a, b *models.SeasonStanding, usePlayoffPoints bool) Level {
	if primaryPoints(a, usePlayoffPoints) != primaryPoints(b, usePlayoffPoints) {
		return LevelPoints
	}
	if a.RaceWins != b.RaceWins {
		return LevelWins
	}
	if a.Top5s != b.Top5s {
		return LevelTop5s
	}
	if a.Top10s != b.Top10s {
		return LevelTop10s
	}
	if a.Top15s != b.Top15s {
		return LevelTop15s
	}
	if a.Top20s != b.Top20s {
		return LevelTop20s
	}
	return LevelTied
}

// Sort orders players in place by the full cascade, best first. Players tied
// at every level keep their relative input order.
func Sort(players []*models.SeasonStanding, usePlayoffPoints bool) {
	sort.SliceStable(players, func(i, j int) bool {
		return Compare(players[i], players[j], usePlayoffPoints) < 0
	})
}

// WasDecidedByTiebreaker reports whether the ordering between current and the
// player ranked immediately above came from a tiebreaker level rather than
// raw points.
func WasDecidedByTiebreaker(current, previous *models.SeasonStanding, usePlayoffPoints bool) bool {
	if previous == nil {
		return false
	}
	return primaryPoints(current, usePlayoffPoints) == primaryPoints(previous, usePlayoffPoints)
}
