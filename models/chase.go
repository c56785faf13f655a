package models

import "time"

// Chase round numbers. Round 0 is the regular season; rounds 1-3 are the
// elimination rounds; round 4 is the championship.
const (
	ChaseRoundRegularSeason = 0
	ChaseRoundOf16          = 1
	ChaseRoundOf10          = 2
	ChaseRoundOf4           = 3
	ChaseRoundChampionship  = 4
)

// ChaseRoundName returns the display name for a round number.
func ChaseRoundName(round int) string {
	switch round {
	case ChaseRoundRegularSeason:
		return "Regular Season"
	case ChaseRoundOf16:
		return "Round of 16"
	case ChaseRoundOf10:
		return "Round of 10"
	case ChaseRoundOf4:
		return "Final Four Qualifier"
	case ChaseRoundChampionship:
		return "Championship"
	default:
		return "Unknown Round"
	}
}

// ChaseRound is one playoff round for a league+season. Exactly one round may
// be active per league+season at a time.
type ChaseRound struct {
	ID               int        `json:"id" db:"id"`
	LeagueID         int        `json:"league_id" db:"league_id"`
	Season           int        `json:"season" db:"season"`
	RoundNumber      int        `json:"round_number" db:"round_number"`
	PlayersRemaining int        `json:"players_remaining" db:"players_remaining"`
	IsActive         bool       `json:"is_active" db:"is_active"`
	StartedAt        *time.Time `json:"started_at,omitempty" db:"started_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// ChaseElimination is the permanent record of a player's playoff exit.
// Write-once per (league, user, season); the championship round writes one
// for every remaining player, placement 1 being the champion.
type ChaseElimination struct {
	ID                         int       `json:"id" db:"id"`
	LeagueID                   int       `json:"league_id" db:"league_id"`
	UserID                     string    `json:"user_id" db:"user_id"`
	Season                     int       `json:"season" db:"season"`
	EliminatedRound            int       `json:"eliminated_round" db:"eliminated_round"`
	FinalPosition              int       `json:"final_position" db:"final_position"`
	PlayoffPointsAtElimination int       `json:"playoff_points_at_elimination" db:"playoff_points_at_elimination"`
	CreatedAt                  time.Time `json:"created_at" db:"created_at"`
}
