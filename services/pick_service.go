package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/nascar"
	"github.com/racefan-dev/fantasy-chase/repositories"
	"github.com/racefan-dev/fantasy-chase/scoring"
)

type SubmitPickInput struct {
	LeagueID   int
	UserID     string
	RaceID     int
	DriverID   int
	DriverName string
}

// DriverUsageEntry summarises one driver's season usage for a player.
type DriverUsageEntry struct {
	DriverID   int    `json:"driver_id"`
	DriverName string `json:"driver_name"`
	Uses       int    `json:"uses"`
	Remaining  int    `json:"remaining"`
}

// PickService manages player driver picks. Picks stay open until the race
// has run; re-picks simply overwrite.
type PickService struct {
	leagueRepo   repositories.LeagueRepository
	pickRepo     repositories.PickRepository
	freePickRepo repositories.FreePickRaceRepository
	feed         nascar.Client
	logger       *slog.Logger
}

func NewPickService(
	leagueRepo repositories.LeagueRepository,
	pickRepo repositories.PickRepository,
	freePickRepo repositories.FreePickRaceRepository,
	feed nascar.Client,
	logger *slog.Logger,
) *PickService {
	return &PickService{
		leagueRepo:   leagueRepo,
		pickRepo:     pickRepo,
		freePickRepo: freePickRepo,
		feed:         feed,
		logger:       logger,
	}
}

// SubmitPick records or replaces the player's driver choice for a race.
func (s *PickService) SubmitPick(ctx context.Context, in SubmitPickInput) (*models.DriverPick, error) {
	league, err := s.leagueRepo.GetByID(ctx, in.LeagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", in.LeagueID, err)
	}

	isMember, err := s.leagueRepo.IsMember(ctx, in.LeagueID, in.UserID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, ErrNotLeagueMember
	}

	races, err := s.feed.RaceList(ctx, league.Season, league.Series)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season schedule: %w", err)
	}

	var race *nascar.RaceListEntry
	for i := range races {
		if races[i].RaceID == in.RaceID {
			race = &races[i]
			break
		}
	}
	if race == nil {
		return nil, ErrRaceNotFound
	}
	if race.IsComplete() {
		return nil, ErrRaceLocked
	}

	isFreePick, err := s.isFreePickRace(ctx, in.LeagueID, in.RaceID, league.Season, race.RaceName)
	if err != nil {
		return nil, err
	}

	pick := &models.DriverPick{
		LeagueID:   in.LeagueID,
		UserID:     in.UserID,
		RaceID:     in.RaceID,
		Season:     league.Season,
		DriverID:   in.DriverID,
		DriverName: in.DriverName,
		IsFreePick: isFreePick,
	}
	if err := s.pickRepo.Upsert(ctx, nil, pick); err != nil {
		return nil, fmt.Errorf("failed to save pick: %w", err)
	}

	s.logger.Info("pick saved",
		"league_id", in.LeagueID,
		"user_id", in.UserID,
		"race_id", in.RaceID,
		"driver_id", in.DriverID,
		"free_pick", isFreePick,
	)
	return pick, nil
}

// ListPicks returns the player's picks for the season in race order.
func (s *PickService) ListPicks(ctx context.Context, leagueID int, userID string) ([]*models.DriverPick, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}
	return s.pickRepo.ListByUser(ctx, leagueID, userID, league.Season)
}

// UsageSummary reports how often the player has used each driver this season
// and how many non-free-pick uses remain under the cap.
func (s *PickService) UsageSummary(ctx context.Context, leagueID int, userID string) ([]*DriverUsageEntry, error) {
	picks, err := s.ListPicks(ctx, leagueID, userID)
	if err != nil {
		return nil, err
	}

	uses := make(map[int]int)
	names := make(map[int]string)
	order := make([]int, 0)
	for _, p := range picks {
		if p.IsFreePick {
			continue
		}
		if _, seen := uses[p.DriverID]; !seen {
			order = append(order, p.DriverID)
		}
		uses[p.DriverID]++
		names[p.DriverID] = p.DriverName
	}

	summary := make([]*DriverUsageEntry, 0, len(order))
	for _, driverID := range order {
		remaining := scoring.UsageCap - uses[driverID]
		if remaining < 0 {
			remaining = 0
		}
		summary = append(summary, &DriverUsageEntry{
			DriverID:   driverID,
			DriverName: names[driverID],
			Uses:       uses[driverID],
			Remaining:  remaining,
		})
	}
	return summary, nil
}

// ListFreePickRaces returns the races an operator has designated free-pick
// for the league's season.
func (s *PickService) ListFreePickRaces(ctx context.Context, leagueID int) ([]*models.FreePickRace, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}
	return s.freePickRepo.ListBySeason(ctx, leagueID, league.Season)
}

func (s *PickService) isFreePickRace(ctx context.Context, leagueID, raceID, season int, raceName string) (bool, error) {
	designated, err := s.freePickRepo.Exists(ctx, leagueID, raceID, season)
	if err != nil {
		return false, err
	}
	return designated || nascar.IsExhibitionName(raceName), nil
}
