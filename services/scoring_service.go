package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/racefan-dev/fantasy-chase/db"
	"github.com/racefan-dev/fantasy-chase/live"
	"github.com/racefan-dev/fantasy-chase/metrics"
	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/nascar"
	"github.com/racefan-dev/fantasy-chase/repositories"
	"github.com/racefan-dev/fantasy-chase/scoring"
)

// Triggers recorded on the races-scored metric.
const (
	TriggerManual    = "manual"
	TriggerScheduler = "scheduler"
)

// schedulerConcurrency bounds the scheduler's league fan-out.
const schedulerConcurrency = 4

type ScoreRaceResult struct {
	RaceName         string `json:"race_name"`
	IsFreePick       bool   `json:"is_free_pick"`
	ScoresCalculated int    `json:"scores_calculated"`
	WinnerDriverID   int    `json:"winner_driver_id,omitempty"`
}

// ScoringService turns official race results into player scores and keeps
// the season standings in step. Rescoring a race is safe: the previous rows
// are reversed out of the standings and replaced inside one transaction.
type ScoringService struct {
	leagueRepo    repositories.LeagueRepository
	pickRepo      repositories.PickRepository
	scoreRepo     repositories.RaceScoreRepository
	standingRepo  repositories.StandingRepository
	freePickRepo  repositories.FreePickRaceRepository
	resultRepo    repositories.ResultCacheRepository
	feed          nascar.Client
	txRunner      db.TxRunner
	locks         *keyedMutex
	hub           *live.Hub
	metrics       *metrics.Metrics
	logger        *slog.Logger
}

func NewScoringService(
	leagueRepo repositories.LeagueRepository,
	pickRepo repositories.PickRepository,
	scoreRepo repositories.RaceScoreRepository,
	standingRepo repositories.StandingRepository,
	freePickRepo repositories.FreePickRaceRepository,
	resultRepo repositories.ResultCacheRepository,
	feed nascar.Client,
	txRunner db.TxRunner,
	hub *live.Hub,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ScoringService {
	return &ScoringService{
		leagueRepo:   leagueRepo,
		pickRepo:     pickRepo,
		scoreRepo:    scoreRepo,
		standingRepo: standingRepo,
		freePickRepo: freePickRepo,
		resultRepo:   resultRepo,
		feed:         feed,
		txRunner:     txRunner,
		locks:        newKeyedMutex(),
		hub:          hub,
		metrics:      m,
		logger:       logger,
	}
}

// ScoreRace computes and persists every eligible member's score for one race.
// Safe to call again after a feed revision: standings keep only the newest
// contribution.
func (s *ScoringService) ScoreRace(ctx context.Context, leagueID, raceID int, trigger string) (*ScoreRaceResult, error) {
	lockKey := fmt.Sprintf("score:%d:%d", leagueID, raceID)
	if !s.locks.TryLock(lockKey) {
		return nil, ErrScoringInProgress
	}
	defer s.locks.Unlock(lockKey)

	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}

	feed, err := s.feed.WeekendFeed(ctx, league.Season, league.Series, raceID)
	if err != nil {
		if errors.Is(err, nascar.ErrNotAvailable) {
			return nil, ErrResultsNotAvailable
		}
		s.countFailure()
		return nil, fmt.Errorf("failed to fetch race %d results: %w", raceID, err)
	}
	race := feed.Race()

	results := make([]scoring.ResultEntry, 0, len(race.Results))
	for _, r := range race.Results {
		if r.FinishingPosition <= 0 {
			continue
		}
		results = append(results, scoring.ResultEntry{
			DriverID:          r.DriverID,
			DriverName:        r.DriverFullname,
			FinishingPosition: r.FinishingPosition,
		})
	}
	if len(results) == 0 {
		return nil, ErrResultsNotAvailable
	}

	members, err := s.eligibleMembers(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrNoLeagueMembers
	}

	picks, err := s.pickRepo.ListByRace(ctx, leagueID, raceID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to load picks for race %d: %w", raceID, err)
	}
	picksByUser := make(map[string]scoring.Pick, len(picks))
	for _, p := range picks {
		picksByUser[p.UserID] = scoring.Pick{
			UserID:     p.UserID,
			DriverID:   p.DriverID,
			DriverName: p.DriverName,
			IsFreePick: p.IsFreePick,
		}
	}

	usage, err := s.pickRepo.DriverUsage(ctx, leagueID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to load driver usage for league %d: %w", leagueID, err)
	}

	isFreePick, err := s.isFreePickRace(ctx, leagueID, raceID, league.Season, race.RaceName)
	if err != nil {
		return nil, err
	}

	playerScores := scoring.Score(scoring.Input{
		Results:      results,
		StageWinners: race.StageWinnerDriverIDs(),
		Picks:        picksByUser,
		DriverUsage:  usage,
		Members:      members,
		FreePickRace: isFreePick,
	})

	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		return s.persistScores(ctx, exec, league, raceID, race, playerScores)
	})
	if err != nil {
		s.countFailure()
		return nil, err
	}

	s.logger.Info("race scored",
		"league_id", leagueID,
		"race_id", raceID,
		"race_name", race.RaceName,
		"free_pick", isFreePick,
		"players", len(playerScores),
		"trigger", trigger,
	)
	if s.metrics != nil {
		s.metrics.RacesScored.WithLabelValues(trigger).Inc()
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(live.LeagueRoom(leagueID), live.Message{
			Type: live.EventScoresUpdated,
			Payload: map[string]interface{}{
				"race_id":   raceID,
				"race_name": race.RaceName,
			},
		})
	}

	result := &ScoreRaceResult{
		RaceName:         race.RaceName,
		IsFreePick:       isFreePick,
		ScoresCalculated: len(playerScores),
	}
	if winner := race.Winner(); winner != nil {
		result.WinnerDriverID = winner.DriverID
	}
	return result, nil
}

// ScoreCompletedRaces runs one scheduler sweep: every completed race of every
// league that has no stored scores yet gets scored. Per-race failures are
// logged and skipped so one broken feed cannot stall the sweep.
func (s *ScoringService) ScoreCompletedRaces(ctx context.Context) error {
	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list leagues: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(schedulerConcurrency)

	for _, league := range leagues {
		league := league
		g.Go(func() error {
			if err := s.scoreLeaguePending(ctx, league); err != nil {
				s.logger.Error("scheduler sweep failed for league", "league_id", league.ID, "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *ScoringService) scoreLeaguePending(ctx context.Context, league *models.League) error {
	races, err := s.feed.RaceList(ctx, league.Season, league.Series)
	if err != nil {
		return fmt.Errorf("failed to fetch race list: %w", err)
	}

	scored, err := s.scoreRepo.ScoredRaceIDs(ctx, league.ID, league.Season)
	if err != nil {
		return fmt.Errorf("failed to load scored races: %w", err)
	}

	for i := range races {
		race := &races[i]
		if !race.IsComplete() || scored[race.RaceID] {
			continue
		}
		if _, err := s.ScoreRace(ctx, league.ID, race.RaceID, TriggerScheduler); err != nil {
			switch {
			case errors.Is(err, ErrResultsNotAvailable), errors.Is(err, ErrScoringInProgress):
				// Expected while the feed catches up or a manual run holds
				// the lock; the next sweep retries.
			case errors.Is(err, ErrNoLeagueMembers):
			default:
				s.logger.Error("failed to score race", "league_id", league.ID, "race_id", race.RaceID, "error", err)
			}
		}
	}
	return nil
}

// RaceResults returns the driver-level results snapshot stored when the race
// was scored, for the race detail view.
func (s *ScoringService) RaceResults(ctx context.Context, leagueID, raceID int) ([]*models.RaceResultEntry, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}

	entries, err := s.resultRepo.ListByRace(ctx, raceID, league.Season, league.Series)
	if err != nil {
		return nil, fmt.Errorf("failed to load race results: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrResultsNotAvailable
	}
	return entries, nil
}

// UserScores lists one player's stored per-race scores for the season.
func (s *ScoringService) UserScores(ctx context.Context, leagueID int, userID string) ([]*models.UserRaceScore, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}

	scores, err := s.scoreRepo.ListByUser(ctx, leagueID, userID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to load scores for user %s: %w", userID, err)
	}
	return scores, nil
}

// eligibleMembers returns the user ids to score, excluding unpaid members
// once the league's payment deadline has passed.
func (s *ScoringService) eligibleMembers(ctx context.Context, leagueID int) ([]string, error) {
	members, err := s.leagueRepo.ListMembers(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of league %d: %w", leagueID, err)
	}

	var deadline *time.Time
	settings, err := s.leagueRepo.GetSettings(ctx, leagueID)
	if err != nil && !errors.Is(err, repositories.ErrLeagueSettingsNotFound) {
		return nil, fmt.Errorf("failed to load settings of league %d: %w", leagueID, err)
	}
	if settings != nil {
		deadline = settings.PaymentDeadline
	}
	pastDeadline := deadline != nil && time.Now().After(*deadline)

	eligible := make([]string, 0, len(members))
	skipped := 0
	for _, m := range members {
		if pastDeadline && m.PaymentStatus != models.PaymentPaid {
			skipped++
			continue
		}
		eligible = append(eligible, m.UserID)
	}
	if skipped > 0 {
		s.logger.Info("skipping unpaid members past deadline", "league_id", leagueID, "skipped", skipped)
	}
	return eligible, nil
}

func (s *ScoringService) isFreePickRace(ctx context.Context, leagueID, raceID, season int, raceName string) (bool, error) {
	designated, err := s.freePickRepo.Exists(ctx, leagueID, raceID, season)
	if err != nil {
		return false, err
	}
	return designated || nascar.IsExhibitionName(raceName), nil
}

// raceContribution is what one stored score row added to the standings.
type raceContribution struct {
	points        int
	playoffPoints int
	raceWins      int
	stageWins     int
	top5s         int
	top10s        int
	top15s        int
	top20s        int
}

func contributionOf(pos *int, isWin bool, stageWins, points, playoffPoints int) raceContribution {
	c := raceContribution{
		points:        points,
		playoffPoints: playoffPoints,
		stageWins:     stageWins,
	}
	if isWin {
		c.raceWins = 1
	}
	if pos != nil {
		p := *pos
		if p >= 1 && p <= 5 {
			c.top5s = 1
		}
		if p >= 1 && p <= 10 {
			c.top10s = 1
		}
		if p >= 1 && p <= 15 {
			c.top15s = 1
		}
		if p >= 1 && p <= 20 {
			c.top20s = 1
		}
	}
	return c
}

func (s *ScoringService) persistScores(ctx context.Context, exec repositories.SQLExecutor, league *models.League, raceID int, race *nascar.WeekendRace, playerScores []scoring.PlayerScore) error {
	previous, err := s.scoreRepo.ListByRace(ctx, exec, league.ID, raceID, league.Season)
	if err != nil {
		return fmt.Errorf("failed to load previous scores: %w", err)
	}
	prevByUser := make(map[string]*models.UserRaceScore, len(previous))
	for _, p := range previous {
		prevByUser[p.UserID] = p
	}

	if err := s.scoreRepo.DeleteByRace(ctx, exec, league.ID, raceID, league.Season); err != nil {
		return fmt.Errorf("failed to clear previous scores: %w", err)
	}

	rows := make([]*models.UserRaceScore, 0, len(playerScores))
	for _, ps := range playerScores {
		rows = append(rows, &models.UserRaceScore{
			LeagueID:            league.ID,
			UserID:              ps.UserID,
			RaceID:              raceID,
			Season:              league.Season,
			DriverID:            ps.DriverID,
			DriverName:          ps.DriverName,
			PointsEarned:        ps.PointsEarned,
			FinishingPosition:   ps.FinishingPosition,
			IsRaceWin:           ps.IsRaceWin,
			StageWins:           ps.StageWins,
			PlayoffPointsEarned: ps.PlayoffPoints,
		})
	}
	if err := s.scoreRepo.BatchCreate(ctx, exec, rows); err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}

	for _, ps := range playerScores {
		standing, err := s.standingRepo.GetOrCreate(ctx, exec, league.ID, ps.UserID, league.Season)
		if err != nil {
			return fmt.Errorf("failed to load standing for user %s: %w", ps.UserID, err)
		}

		newC := contributionOf(ps.FinishingPosition, ps.IsRaceWin, ps.StageWins, ps.PointsEarned, ps.PlayoffPoints)
		var oldC raceContribution
		if prev, ok := prevByUser[ps.UserID]; ok {
			oldC = contributionOf(prev.FinishingPosition, prev.IsRaceWin, prev.StageWins, prev.PointsEarned, prev.PlayoffPointsEarned)
		}

		standing.RegularSeasonPoints += newC.points - oldC.points
		standing.PlayoffPoints += newC.playoffPoints - oldC.playoffPoints
		standing.RaceWins += newC.raceWins - oldC.raceWins
		standing.StageWins += newC.stageWins - oldC.stageWins
		standing.Top5s += newC.top5s - oldC.top5s
		standing.Top10s += newC.top10s - oldC.top10s
		standing.Top15s += newC.top15s - oldC.top15s
		standing.Top20s += newC.top20s - oldC.top20s

		if err := s.standingRepo.Update(ctx, exec, standing); err != nil {
			return fmt.Errorf("failed to update standing for user %s: %w", ps.UserID, err)
		}
		delete(prevByUser, ps.UserID)
	}

	// Anyone left in prevByUser had a score row before this run but is no
	// longer eligible (for example unpaid once the payment deadline passed).
	// Their rows are already gone, so back their contribution out too.
	for userID, prev := range prevByUser {
		standing, err := s.standingRepo.GetOrCreate(ctx, exec, league.ID, userID, league.Season)
		if err != nil {
			return fmt.Errorf("failed to load standing for user %s: %w", userID, err)
		}

		oldC := contributionOf(prev.FinishingPosition, prev.IsRaceWin, prev.StageWins, prev.PointsEarned, prev.PlayoffPointsEarned)

		standing.RegularSeasonPoints -= oldC.points
		standing.PlayoffPoints -= oldC.playoffPoints
		standing.RaceWins -= oldC.raceWins
		standing.StageWins -= oldC.stageWins
		standing.Top5s -= oldC.top5s
		standing.Top10s -= oldC.top10s
		standing.Top15s -= oldC.top15s
		standing.Top20s -= oldC.top20s

		if err := s.standingRepo.Update(ctx, exec, standing); err != nil {
			return fmt.Errorf("failed to update standing for user %s: %w", userID, err)
		}
	}

	entries := make([]*models.RaceResultEntry, 0, len(race.Results))
	for _, r := range race.Results {
		if r.FinishingPosition <= 0 {
			continue
		}
		entries = append(entries, &models.RaceResultEntry{
			RaceID:            raceID,
			Season:            league.Season,
			Series:            league.Series,
			RaceName:          race.RaceName,
			RaceDate:          race.RaceDate,
			DriverID:          r.DriverID,
			DriverName:        r.DriverFullname,
			FinishingPosition: r.FinishingPosition,
			PointsEarned:      scoring.PointsForPosition(r.FinishingPosition),
		})
	}
	if err := s.resultRepo.ReplaceForRace(ctx, exec, raceID, league.Season, league.Series, entries); err != nil {
		return fmt.Errorf("failed to save race results snapshot: %w", err)
	}
	return nil
}

func (s *ScoringService) countFailure() {
	if s.metrics != nil {
		s.metrics.ScoringFailures.Inc()
	}
}
