package models

import "time"

type SeriesType string

const (
	SeriesCup     SeriesType = "cup"
	SeriesXfinity SeriesType = "xfinity"
	SeriesTrucks  SeriesType = "trucks"
)

// SeriesID returns the numeric series identifier used by the results feed.
// Unknown values map to the Cup series, matching the feed proxy's behavior.
func (s SeriesType) SeriesID() int {
	switch s {
	case SeriesXfinity:
		return 2
	case SeriesTrucks:
		return 3
	default:
		return 1
	}
}

type League struct {
	ID        int        `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Season    int        `json:"season" db:"season"`
	Series    SeriesType `json:"series" db:"series"`
	IsDemo    bool       `json:"is_demo" db:"is_demo"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}

type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPending PaymentStatus = "pending"
	PaymentUnpaid  PaymentStatus = "unpaid"
)

// LeagueMember rows are maintained by the league management surface; the
// scoring engine only reads them to decide who is eligible for a race.
type LeagueMember struct {
	LeagueID      int           `json:"league_id" db:"league_id"`
	UserID        string        `json:"user_id" db:"user_id"`
	PaymentStatus PaymentStatus `json:"payment_status" db:"payment_status"`
	JoinedAt      time.Time     `json:"joined_at" db:"joined_at"`
}

type LeagueSettings struct {
	LeagueID        int        `json:"league_id" db:"league_id"`
	PaymentDeadline *time.Time `json:"payment_deadline,omitempty" db:"payment_deadline"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}
