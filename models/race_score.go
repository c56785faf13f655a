package models

import "time"

// UserRaceScore is the scoring engine's output for one (league, user, race).
// Rows for a race are fully replaced on every (re)computation, never patched,
// so a revised results feed can be rescored safely.
type UserRaceScore struct {
	ID                int     `json:"id" db:"id"`
	LeagueID          int     `json:"league_id" db:"league_id"`
	UserID            string  `json:"user_id" db:"user_id"`
	RaceID            int     `json:"race_id" db:"race_id"`
	Season            int     `json:"season" db:"season"`
	DriverID          *int    `json:"driver_id,omitempty" db:"driver_id"`
	DriverName        *string `json:"driver_name,omitempty" db:"driver_name"`
	PointsEarned      int     `json:"points_earned" db:"points_earned"`
	FinishingPosition *int    `json:"finishing_position,omitempty" db:"finishing_position"`
	IsRaceWin         bool    `json:"is_race_win" db:"is_race_win"`
	StageWins         int     `json:"stage_wins" db:"stage_wins"`
	// PlayoffPointsEarned is stored per row so a rescore can reverse the
	// previous contribution exactly before applying the new one.
	PlayoffPointsEarned int       `json:"playoff_points_earned" db:"playoff_points_earned"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// RaceResultEntry is a cached driver-level snapshot of an official race
// result, written alongside user scores for display purposes. Replaced
// wholesale per race on rescore.
type RaceResultEntry struct {
	ID                int        `json:"id" db:"id"`
	RaceID            int        `json:"race_id" db:"race_id"`
	Season            int        `json:"season" db:"season"`
	Series            SeriesType `json:"series" db:"series"`
	RaceName          string     `json:"race_name" db:"race_name"`
	RaceDate          string     `json:"race_date" db:"race_date"`
	DriverID          int        `json:"driver_id" db:"driver_id"`
	DriverName        string     `json:"driver_name" db:"driver_name"`
	FinishingPosition int        `json:"finishing_position" db:"finishing_position"`
	PointsEarned      int        `json:"points_earned" db:"points_earned"`
}
