package scoring

// The race scoring engine is a pure function over one race's official
// results and the players' picks. Persistence and feed access live in the
// service layer; everything here is deterministic and side-effect free.

// ResultEntry is one driver's official outcome in a race.
type ResultEntry struct {
	DriverID          int
	DriverName        string
	FinishingPosition int
}

// Pick is one player's driver choice for the race being scored.
type Pick struct {
	UserID     string
	DriverID   int
	DriverName string
	IsFreePick bool
}

// Input carries everything the engine needs to score one race.
type Input struct {
	Results []ResultEntry

	// StageWinners holds the winning driver ID of each stage, one entry per
	// stage. A driver sweeping all stages appears multiple times.
	StageWinners []int

	// Picks is keyed by user ID. Players without an entry made no pick.
	Picks map[string]Pick

	// DriverUsage counts each player's non-free-pick uses of each driver this
	// season, including the race being scored.
	DriverUsage map[string]map[int]int

	// Members lists the players eligible for scoring, in the order their
	// scores should be emitted. Unpaid players past the deadline are filtered
	// out before the engine runs.
	Members []string

	// FreePickRace switches scoring to the binary win/no-win policy.
	FreePickRace bool
}

// PlayerScore is the engine's output for one player.
type PlayerScore struct {
	UserID            string
	DriverID          *int
	DriverName        *string
	PointsEarned      int
	FinishingPosition *int
	IsRaceWin         bool
	StageWins         int

	// PlayoffPoints is the win/stage-win derived contribution to the player's
	// playoff pool, separate from PointsEarned.
	PlayoffPoints int
}

// LastPlacePoints returns the penalty value for a race: the points assigned
// to the numerically highest finishing position that actually recorded a
// result. Used for missing picks, over-usage and unlisted drivers.
func LastPlacePoints(results []ResultEntry) int {
	worst := 0
	for _, r := range results {
		if r.FinishingPosition > worst {
			worst = r.FinishingPosition
		}
	}
	return PointsForPosition(worst)
}

// Score computes every eligible player's score for one race. It never fails:
// per-player anomalies (no pick, unlisted driver) are policy outcomes, not
// errors.
func Score(in Input) []PlayerScore {
	lastPlace := LastPlacePoints(in.Results)

	resultsByDriver := make(map[int]ResultEntry, len(in.Results))
	for _, r := range in.Results {
		resultsByDriver[r.DriverID] = r
	}

	stageWinsByDriver := make(map[int]int)
	for _, driverID := range in.StageWinners {
		stageWinsByDriver[driverID]++
	}

	scores := make([]PlayerScore, 0, len(in.Members))
	for _, userID := range in.Members {
		scores = append(scores, scoreOne(in, userID, lastPlace, resultsByDriver, stageWinsByDriver))
	}
	return scores
}

func scoreOne(in Input, userID string, lastPlace int, resultsByDriver map[int]ResultEntry, stageWinsByDriver map[int]int) PlayerScore {
	score := PlayerScore{UserID: userID}

	pick, ok := in.Picks[userID]
	if !ok {
		// No pick made: last-place penalty.
		score.PointsEarned = lastPlace
		return score
	}

	driverID := pick.DriverID
	driverName := pick.DriverName
	score.DriverID = &driverID
	score.DriverName = &driverName

	if !pick.IsFreePick && in.DriverUsage[userID][pick.DriverID] > UsageCap {
		// Over-usage penalty, regardless of how the driver actually finished.
		score.PointsEarned = lastPlace
		return score
	}

	result, listed := resultsByDriver[pick.DriverID]

	if in.FreePickRace {
		if listed && result.FinishingPosition == 1 {
			pos := 1
			score.PointsEarned = FreePickWinPoints
			score.FinishingPosition = &pos
			score.IsRaceWin = true
			score.PlayoffPoints = FreePickWinPlayoffPoints
		} else if listed {
			pos := result.FinishingPosition
			score.FinishingPosition = &pos
		}
		return score
	}

	if !listed {
		// Driver did not qualify or is missing from the feed: last place.
		score.PointsEarned = lastPlace
		return score
	}

	pos := result.FinishingPosition
	score.FinishingPosition = &pos
	score.PointsEarned = PointsForPosition(pos)
	score.StageWins = stageWinsByDriver[pick.DriverID]
	if pos == 1 {
		score.IsRaceWin = true
		score.PlayoffPoints += RaceWinPlayoffPoints
	}
	score.PlayoffPoints += score.StageWins * StageWinPlayoffPoints

	return score
}
