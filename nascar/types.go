package nascar

import "strings"

// RaceListEntry is one race from the season race list feed
// ({base}/{season}/{seriesID}/race_list_basic.json).
type RaceListEntry struct {
	RaceID         int    `json:"race_id"`
	RaceName       string `json:"race_name"`
	TrackName      string `json:"track_name"`
	RaceDate       string `json:"race_date"`
	ScheduledLaps  int    `json:"scheduled_laps"`
	ActualLaps     int    `json:"actual_laps"`
	WinnerDriverID int    `json:"winner_driver_id"`
}

// IsComplete reports whether the race has been run to an official result.
// The list feed publishes scheduled races too, so both signals are required.
func (r *RaceListEntry) IsComplete() bool {
	return r.ActualLaps > 0 && r.WinnerDriverID > 0
}

// WeekendFeed is the top-level shape of
// {base}/{season}/{seriesID}/{raceID}/weekend-feed.json.
type WeekendFeed struct {
	WeekendRace []WeekendRace `json:"weekend_race"`
}

// Race returns the primary race of the weekend, or nil when the feed
// carries no race data yet.
func (f *WeekendFeed) Race() *WeekendRace {
	if len(f.WeekendRace) == 0 {
		return nil
	}
	return &f.WeekendRace[0]
}

type WeekendRace struct {
	RaceID        int           `json:"race_id"`
	RaceName      string        `json:"race_name"`
	TrackName     string        `json:"track_name"`
	RaceDate      string        `json:"race_date"`
	ScheduledLaps int           `json:"scheduled_laps"`
	ActualLaps    int           `json:"actual_laps"`
	Results       []FeedResult  `json:"results"`
	StageResults  []StageResult `json:"stage_results"`
}

type FeedResult struct {
	DriverID          int    `json:"driver_id"`
	DriverFullname    string `json:"driver_fullname"`
	FinishingPosition int    `json:"finishing_position"`
	CarNumber         string `json:"car_number"`
	LapsCompleted     int    `json:"laps_completed"`
	FinishingStatus   string `json:"finishing_status"`
	TeamName          string `json:"team_name"`
}

type StageResult struct {
	StageNumber int          `json:"stage_num"`
	Results     []FeedResult `json:"results"`
}

// Winner returns the driver who finished first, or nil when the results
// carry no P1 entry.
func (w *WeekendRace) Winner() *FeedResult {
	for i := range w.Results {
		if w.Results[i].FinishingPosition == 1 {
			return &w.Results[i]
		}
	}
	return nil
}

// StageWinnerDriverIDs returns the driver id that won each stage, in stage
// order. Stages without a P1 entry are skipped.
func (w *WeekendRace) StageWinnerDriverIDs() []int {
	winners := make([]int, 0, len(w.StageResults))
	for _, stage := range w.StageResults {
		for _, res := range stage.Results {
			if res.FinishingPosition == 1 {
				winners = append(winners, res.DriverID)
				break
			}
		}
	}
	return winners
}

// IsExhibitionName reports whether a race name marks a non-points exhibition
// event (the Clash, the All-Star race). These score win/no-win even without
// an explicit free-pick designation.
func IsExhibitionName(raceName string) bool {
	name := strings.ToLower(raceName)
	return strings.Contains(name, "clash") ||
		strings.Contains(name, "all-star") ||
		strings.Contains(name, "all star")
}
