package models

import "time"

// SeasonStanding is one player's running season state within a league.
// Counters are mutated additively after every race scoring pass; playoff
// points are reset destructively at each Chase round transition. Rows are
// created lazily on a player's first scored race and never deleted mid-season.
type SeasonStanding struct {
	ID                  int    `json:"id" db:"id"`
	LeagueID            int    `json:"league_id" db:"league_id"`
	UserID              string `json:"user_id" db:"user_id"`
	Season              int    `json:"season" db:"season"`
	RegularSeasonPoints int    `json:"regular_season_points" db:"regular_season_points"`
	PlayoffPoints       int    `json:"playoff_points" db:"playoff_points"`
	RaceWins            int    `json:"race_wins" db:"race_wins"`
	StageWins           int    `json:"stage_wins" db:"stage_wins"`
	Top5s               int    `json:"top_5s" db:"top_5s"`
	Top10s              int    `json:"top_10s" db:"top_10s"`
	Top15s              int    `json:"top_15s" db:"top_15s"`
	Top20s              int    `json:"top_20s" db:"top_20s"`

	IsEliminated          bool      `json:"is_eliminated" db:"is_eliminated"`
	EliminationRound      *int      `json:"elimination_round,omitempty" db:"elimination_round"`
	IsWildCard            bool      `json:"is_wild_card" db:"is_wild_card"`
	IsRegularSeasonWinner bool      `json:"is_regular_season_winner" db:"is_regular_season_winner"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`

	// Optional linked data, populated by services.
	User *User `json:"user,omitempty" db:"-"`
}
