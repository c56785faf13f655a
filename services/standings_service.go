package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/repositories"
	"github.com/racefan-dev/fantasy-chase/storage"
	"github.com/racefan-dev/fantasy-chase/tiebreak"
)

// RankedStanding is one row of a standings view, annotated with how the
// ordering against the row above was decided.
type RankedStanding struct {
	Rank int `json:"rank"`
	*models.SeasonStanding

	// TiebreakLevel names the cascade level that separated this player from
	// the one ranked directly above, "points" when raw points did.
	TiebreakLevel       tiebreak.Level `json:"tiebreak_level,omitempty"`
	DecidedByTiebreaker bool           `json:"decided_by_tiebreaker"`
}

// StandingsService builds ranked standings views. The same tiebreaker
// cascade the chase engine eliminates with drives the display order, so a
// player shown above the cutoff is actually safe.
type StandingsService struct {
	leagueRepo   repositories.LeagueRepository
	standingRepo repositories.StandingRepository
	userRepo     repositories.UserRepository
	uploader     storage.FileUploader
}

func NewStandingsService(
	leagueRepo repositories.LeagueRepository,
	standingRepo repositories.StandingRepository,
	userRepo repositories.UserRepository,
	uploader storage.FileUploader,
) *StandingsService {
	return &StandingsService{
		leagueRepo:   leagueRepo,
		standingRepo: standingRepo,
		userRepo:     userRepo,
		uploader:     uploader,
	}
}

// ListStandings returns the league's season standings best first. With
// usePlayoffPoints set the playoff pool is the primary sort, the view used
// during the chase.
func (s *StandingsService) ListStandings(ctx context.Context, leagueID int, usePlayoffPoints bool) ([]*RankedStanding, error) {
	league, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, repositories.ErrLeagueNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to load league %d: %w", leagueID, err)
	}

	standings, err := s.standingRepo.ListByLeagueSeason(ctx, nil, leagueID, league.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to load standings: %w", err)
	}

	tiebreak.Sort(standings, usePlayoffPoints)

	if err := s.attachUsers(ctx, standings); err != nil {
		return nil, err
	}

	ranked := make([]*RankedStanding, 0, len(standings))
	var previous *models.SeasonStanding
	for i, standing := range standings {
		row := &RankedStanding{
			Rank:           i + 1,
			SeasonStanding: standing,
		}
		if previous != nil {
			row.TiebreakLevel = tiebreak.CompareLevel(standing, previous, usePlayoffPoints)
			row.DecidedByTiebreaker = tiebreak.WasDecidedByTiebreaker(standing, previous, usePlayoffPoints)
		}
		ranked = append(ranked, row)
		previous = standing
	}
	return ranked, nil
}

func (s *StandingsService) attachUsers(ctx context.Context, standings []*models.SeasonStanding) error {
	ids := make([]string, 0, len(standings))
	for _, st := range standings {
		ids = append(ids, st.UserID)
	}

	users, err := s.userRepo.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load users for standings: %w", err)
	}

	for _, st := range standings {
		user, ok := users[st.UserID]
		if !ok {
			continue
		}
		if user.AvatarKey != nil && s.uploader != nil {
			url := s.uploader.GetPublicURL(*user.AvatarKey)
			user.AvatarURL = &url
		}
		st.User = user
	}
	return nil
}
