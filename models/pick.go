package models

import "time"

// DriverPick is one player's chosen driver for one race. At most one active
// pick exists per (league, user, race, season); re-picks before race lock
// overwrite the previous choice.
type DriverPick struct {
	ID         int       `json:"id" db:"id"`
	LeagueID   int       `json:"league_id" db:"league_id"`
	UserID     string    `json:"user_id" db:"user_id"`
	RaceID     int       `json:"race_id" db:"race_id"`
	Season     int       `json:"season" db:"season"`
	DriverID   int       `json:"driver_id" db:"driver_id"`
	DriverName string    `json:"driver_name" db:"driver_name"`
	IsFreePick bool      `json:"is_free_pick" db:"is_free_pick"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// FreePickRace designates an exhibition race whose scoring is win/no-win and
// whose pick does not count against the per-driver usage cap.
type FreePickRace struct {
	ID       int `json:"id" db:"id"`
	LeagueID int `json:"league_id" db:"league_id"`
	RaceID   int `json:"race_id" db:"race_id"`
	Season   int `json:"season" db:"season"`
}
