package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/racefan-dev/fantasy-chase/db"
	"github.com/racefan-dev/fantasy-chase/live"
	"github.com/racefan-dev/fantasy-chase/metrics"
	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/repositories"
	"github.com/racefan-dev/fantasy-chase/scoring"
	"github.com/racefan-dev/fantasy-chase/tiebreak"
)

type QualifyResult struct {
	QualifiedCount      int    `json:"qualified_count"`
	WildCardCount       int    `json:"wild_card_count"`
	EliminatedCount     int    `json:"eliminated_count"`
	RegularSeasonWinner string `json:"regular_season_winner"`
}

type EliminationResult struct {
	Round           int `json:"round"`
	AdvancingCount  int `json:"advancing_count"`
	EliminatedCount int `json:"eliminated_count"`
}

type ChampionshipResult struct {
	Champion   string                     `json:"champion"`
	Placements []*models.ChaseElimination `json:"placements"`
}

// BracketView is the read model for a league's chase state.
type BracketView struct {
	Rounds       []*models.ChaseRound       `json:"rounds"`
	Eliminations []*models.ChaseElimination `json:"eliminations"`
	ActiveRound  *models.ChaseRound         `json:"active_round,omitempty"`
}

// ChaseService drives the playoff state machine for a league season:
// qualification, the three elimination rounds, and the championship. Every
// transition mutates standings, round rows and elimination records inside a
// single transaction, guarded by the active-round row so out-of-order
// requests are rejected before anything changes.
type ChaseService struct {
	leagueRepo   repositories.LeagueRepository
	standingRepo repositories.StandingRepository
	roundRepo    repositories.ChaseRoundRepository
	elimRepo     repositories.ChaseEliminationRepository
	cutoff       tiebreak.CutoffPolicy
	txRunner     db.TxRunner
	locks        *keyedMutex
	hub          *live.Hub
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

func NewChaseService(
	leagueRepo repositories.LeagueRepository,
	standingRepo repositories.StandingRepository,
	roundRepo repositories.ChaseRoundRepository,
	elimRepo repositories.ChaseEliminationRepository,
	cutoff tiebreak.CutoffPolicy,
	txRunner db.TxRunner,
	hub *live.Hub,
	m *metrics.Metrics,
	logger *slog.Logger,
) *ChaseService {
	return &ChaseService{
		leagueRepo:   leagueRepo,
		standingRepo: standingRepo,
		roundRepo:    roundRepo,
		elimRepo:     elimRepo,
		cutoff:       cutoff,
		txRunner:     txRunner,
		locks:        newKeyedMutex(),
		hub:          hub,
		metrics:      m,
		logger:       logger,
	}
}

// QualifyForChase closes the regular season: the leader takes the winner's
// playoff bonus, the top 20 by regular-season points advance, up to three
// race winners outside the top 20 come in as wild cards with their playoff
// points wiped, and everyone else is out with round 0 on their record.
func (s *ChaseService) QualifyForChase(ctx context.Context, leagueID int) (*QualifyResult, error) {
	league, unlock, err := s.acquire(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result QualifyResult
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		started, err := s.roundRepo.AnyExists(ctx, exec, leagueID, league.Season)
		if err != nil {
			return fmt.Errorf("failed to check chase state: %w", err)
		}
		if started {
			return ErrChaseAlreadyStarted
		}

		standings, err := s.standingRepo.ListByLeagueSeason(ctx, exec, leagueID, league.Season)
		if err != nil {
			return fmt.Errorf("failed to load standings: %w", err)
		}
		if len(standings) == 0 {
			return ErrNoStandings
		}

		// Regular-season winner bonus lands before qualification so it
		// carries into round 1 seeding. The winner is top 20 by
		// construction, so the wild-card reset can never erase it.
		ranked := make([]*models.SeasonStanding, len(standings))
		copy(ranked, standings)
		tiebreak.Sort(ranked, false)

		winner := ranked[0]
		winner.PlayoffPoints += scoring.RegularSeasonWinnerBonus
		winner.IsRegularSeasonWinner = true
		result.RegularSeasonWinner = winner.UserID

		cut := tiebreak.Top20Cut
		if cut > len(ranked) {
			cut = len(ranked)
		}
		top20 := ranked[:cut]
		outside := ranked[cut:]

		qualified := make(map[string]bool, len(top20))
		for _, p := range top20 {
			qualified[p.UserID] = true
		}

		candidates := make([]*models.SeasonStanding, 0, len(outside))
		for _, p := range outside {
			if p.RaceWins > 0 {
				candidates = append(candidates, p)
			}
		}
		tiebreak.Sort(candidates, true)
		if len(candidates) > tiebreak.WildCardSlots {
			candidates = candidates[:tiebreak.WildCardSlots]
		}

		wildCards := make(map[string]bool, len(candidates))
		for _, p := range candidates {
			qualified[p.UserID] = true
			wildCards[p.UserID] = true
		}

		for _, standing := range standings {
			standing.IsWildCard = wildCards[standing.UserID]
			if qualified[standing.UserID] {
				standing.IsEliminated = false
				standing.EliminationRound = nil
				if standing.IsWildCard {
					// Wild cards enter the chase with a clean slate.
					standing.PlayoffPoints = 0
				}
			} else {
				regularSeason := models.ChaseRoundRegularSeason
				standing.IsEliminated = true
				standing.EliminationRound = &regularSeason
			}
			if err := s.standingRepo.Update(ctx, exec, standing); err != nil {
				return fmt.Errorf("failed to update standing for user %s: %w", standing.UserID, err)
			}
		}

		round := &models.ChaseRound{
			LeagueID:         leagueID,
			Season:           league.Season,
			RoundNumber:      models.ChaseRoundOf16,
			PlayersRemaining: len(qualified),
			IsActive:         true,
		}
		if err := s.roundRepo.Create(ctx, exec, round); err != nil {
			return fmt.Errorf("failed to open round 1: %w", err)
		}

		result.QualifiedCount = len(qualified)
		result.WildCardCount = len(wildCards)
		result.EliminatedCount = len(standings) - len(qualified)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chase field set",
		"league_id", leagueID,
		"qualified", result.QualifiedCount,
		"wild_cards", result.WildCardCount,
		"regular_season_winner", result.RegularSeasonWinner,
	)
	s.afterTransition(leagueID, "qualify")
	return &result, nil
}

// ProcessElimination closes the given elimination round: survivors above the
// cutoff advance with their playoff points reset, everyone below it is
// eliminated with a placement and their playoff points frozen on the record.
func (s *ChaseService) ProcessElimination(ctx context.Context, leagueID, roundNumber int) (*EliminationResult, error) {
	if roundNumber < models.ChaseRoundOf16 || roundNumber > models.ChaseRoundOf4 {
		return nil, ErrInvalidRound
	}

	league, unlock, err := s.acquire(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result EliminationResult
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		active, err := s.activeRound(ctx, exec, leagueID, league.Season)
		if err != nil {
			return err
		}
		if active.RoundNumber != roundNumber {
			return ErrRoundNotActive
		}

		standings, err := s.standingRepo.ListByLeagueSeason(ctx, exec, leagueID, league.Season)
		if err != nil {
			return fmt.Errorf("failed to load standings: %w", err)
		}

		contenders := make([]*models.SeasonStanding, 0, len(standings))
		for _, p := range standings {
			if !p.IsEliminated {
				contenders = append(contenders, p)
			}
		}
		tiebreak.Sort(contenders, true)

		remaining := s.cutoff.PlayersRemaining(roundNumber, len(standings))
		if remaining > len(contenders) {
			remaining = len(contenders)
		}
		advancing := contenders[:remaining]
		eliminated := contenders[remaining:]

		round := roundNumber
		for i, p := range eliminated {
			p.IsEliminated = true
			p.EliminationRound = &round
			if err := s.standingRepo.Update(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to eliminate user %s: %w", p.UserID, err)
			}

			elim := &models.ChaseElimination{
				LeagueID:                   leagueID,
				UserID:                     p.UserID,
				Season:                     league.Season,
				EliminatedRound:            roundNumber,
				FinalPosition:              remaining + i + 1,
				PlayoffPointsAtElimination: p.PlayoffPoints,
			}
			if err := s.elimRepo.Upsert(ctx, exec, elim); err != nil {
				return fmt.Errorf("failed to record elimination of user %s: %w", p.UserID, err)
			}
		}

		for _, p := range advancing {
			p.PlayoffPoints = 0
			if err := s.standingRepo.Update(ctx, exec, p); err != nil {
				return fmt.Errorf("failed to reset playoff points for user %s: %w", p.UserID, err)
			}
		}

		if err := s.roundRepo.Close(ctx, exec, active.ID); err != nil {
			return fmt.Errorf("failed to close round %d: %w", roundNumber, err)
		}

		next := &models.ChaseRound{
			LeagueID:         leagueID,
			Season:           league.Season,
			RoundNumber:      roundNumber + 1,
			PlayersRemaining: remaining,
			IsActive:         true,
		}
		if err := s.roundRepo.Create(ctx, exec, next); err != nil {
			return fmt.Errorf("failed to open round %d: %w", roundNumber+1, err)
		}

		result = EliminationResult{
			Round:           roundNumber,
			AdvancingCount:  len(advancing),
			EliminatedCount: len(eliminated),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("chase round processed",
		"league_id", leagueID,
		"round", result.Round,
		"advancing", result.AdvancingCount,
		"eliminated", result.EliminatedCount,
	)
	s.afterTransition(leagueID, "elimination")
	return &result, nil
}

// FinalizeChampionship ranks the remaining contenders, crowns the champion
// with placement 1, and closes the chase for the season.
func (s *ChaseService) FinalizeChampionship(ctx context.Context, leagueID int) (*ChampionshipResult, error) {
	league, unlock, err := s.acquire(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result ChampionshipResult
	err = s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		active, err := s.activeRound(ctx, exec, leagueID, league.Season)
		if err != nil {
			return err
		}
		if active.RoundNumber != models.ChaseRoundChampionship {
			return ErrChampionshipNotReady
		}

		standings, err := s.standingRepo.ListByLeagueSeason(ctx, exec, leagueID, league.Season)
		if err != nil {
			return fmt.Errorf("failed to load standings: %w", err)
		}

		contenders := make([]*models.SeasonStanding, 0, len(standings))
		for _, p := range standings {
			if !p.IsEliminated {
				contenders = append(contenders, p)
			}
		}
		tiebreak.Sort(contenders, true)

		placements := make([]*models.ChaseElimination, 0, len(contenders))
		for i, p := range contenders {
			elim := &models.ChaseElimination{
				LeagueID:                   leagueID,
				UserID:                     p.UserID,
				Season:                     league.Season,
				EliminatedRound:            models.ChaseRoundChampionship,
				FinalPosition:              i + 1,
				PlayoffPointsAtElimination: p.PlayoffPoints,
			}
			if err := s.elimRepo.Upsert(ctx, exec, elim); err != nil {
				return fmt.Errorf("failed to record placement of user %s: %w", p.UserID, err)
			}
			placements = append(placements, elim)
		}

		if err := s.roundRepo.Close(ctx, exec, active.ID); err != nil {
			return fmt.Errorf("failed to close championship round: %w", err)
		}

		result.Placements = placements
		if len(contenders) > 0 {
			result.Champion = contenders[0].UserID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("championship finalized", "league_id", leagueID, "champion", result.Champion)
	s.afterTransition(leagueID, "championship")
	return &result, nil
}

// Bracket returns the league's chase history and active round.
func (s *ChaseService) Bracket(ctx context.Context, leagueID int) (*BracketView, error) {
	league, err := s.loadLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	rounds, err := s.roundRepo.ListBySeason(ctx, leagueID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to load chase rounds: %w", err)
	}
	elims, err := s.elimRepo.ListBySeason(ctx, nil, leagueID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to load eliminations: %w", err)
	}

	view := &BracketView{Rounds: rounds, Eliminations: elims}
	for _, r := range rounds {
		if r.IsActive {
			view.ActiveRound = r
			break
		}
	}
	return view, nil
}

func (s *ChaseService) loadLeague(ctx context.Context, leagueID int) (*models.League, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}
	return league, nil
}

// acquire loads the league and takes the per-league transition lock.
func (s *ChaseService) acquire(ctx context.Context, leagueID int) (*models.League, func(), error) {
	league, err := s.loadLeague(ctx, leagueID)
	if err != nil {
		return nil, nil, err
	}

	lockKey := fmt.Sprintf("chase:%d:%d", leagueID, league.Season)
	if !s.locks.TryLock(lockKey) {
		return nil, nil, ErrChaseInProgress
	}
	return league, func() { s.locks.Unlock(lockKey) }, nil
}

func (s *ChaseService) activeRound(ctx context.Context, exec repositories.SQLExecutor, leagueID, season int) (*models.ChaseRound, error) {
	active, err := s.roundRepo.GetActive(ctx, exec, leagueID, season)
	if err != nil {
		if errors.Is(err, repositories.ErrChaseRoundNotFound) {
			return nil, ErrChaseNotStarted
		}
		return nil, fmt.Errorf("failed to load active round: %w", err)
	}
	return active, nil
}

func (s *ChaseService) afterTransition(leagueID int, action string) {
	if s.metrics != nil {
		s.metrics.ChaseRoundsProcessed.WithLabelValues(action).Inc()
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(live.LeagueRoom(leagueID), live.Message{
			Type:    live.EventChaseUpdated,
			Payload: map[string]interface{}{"action": action},
		})
	}
}
