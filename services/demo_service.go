package services

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"github.com/racefan-dev/fantasy-chase/db"
	"github.com/racefan-dev/fantasy-chase/models"
	"github.com/racefan-dev/fantasy-chase/nascar"
	"github.com/racefan-dev/fantasy-chase/repositories"
)

// DefaultDemoMembers matches the standard chase field, so a seeded league
// exercises every bracket stage without cutoff scaling.
const DefaultDemoMembers = 23

type SeedDemoInput struct {
	Name    string            `json:"name"`
	Season  int               `json:"season"`
	Series  models.SeriesType `json:"series"`
	Members int               `json:"members"`
}

type SeedDemoResult struct {
	LeagueID    int `json:"league_id"`
	Members     int `json:"members"`
	RacesScored int `json:"races_scored"`
}

// DemoService seeds a throwaway league with fake members and plausible picks
// against real season results, then runs the production scoring pipeline over
// every completed race. The result is a league ready for a full chase run.
type DemoService struct {
	leagueRepo repositories.LeagueRepository
	userRepo   repositories.UserRepository
	pickRepo   repositories.PickRepository
	feed       nascar.Client
	scorer     *ScoringService
	txRunner   db.TxRunner
	logger     *slog.Logger
}

func NewDemoService(
	leagueRepo repositories.LeagueRepository,
	userRepo repositories.UserRepository,
	pickRepo repositories.PickRepository,
	feed nascar.Client,
	scorer *ScoringService,
	txRunner db.TxRunner,
	logger *slog.Logger,
) *DemoService {
	return &DemoService{
		leagueRepo: leagueRepo,
		userRepo:   userRepo,
		pickRepo:   pickRepo,
		feed:       feed,
		scorer:     scorer,
		txRunner:   txRunner,
		logger:     logger,
	}
}

// SeedDemoLeague creates the league, members and picks, then scores every
// completed race of the season through ScoringService.
func (s *DemoService) SeedDemoLeague(ctx context.Context, in SeedDemoInput) (*SeedDemoResult, error) {
	if in.Members <= 0 {
		in.Members = DefaultDemoMembers
	}
	if in.Name == "" {
		in.Name = fmt.Sprintf("%d Demo League", in.Season)
	}

	league := &models.League{
		Name:   in.Name,
		Season: in.Season,
		Series: in.Series,
	}

	memberIDs := make([]string, 0, in.Members)
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.leagueRepo.CreateDemoLeague(ctx, exec, league); err != nil {
			return fmt.Errorf("failed to create demo league: %w", err)
		}

		for i := 0; i < in.Members; i++ {
			user := &models.User{
				ID:          uuid.NewString(),
				DisplayName: gofakeit.Name(),
				Role:        models.RolePlayer,
			}
			if err := s.userRepo.Create(ctx, exec, user); err != nil {
				return fmt.Errorf("failed to create demo user: %w", err)
			}

			member := &models.LeagueMember{
				LeagueID:      league.ID,
				UserID:        user.ID,
				PaymentStatus: models.PaymentPaid,
			}
			if err := s.leagueRepo.AddDemoMember(ctx, exec, member); err != nil {
				return fmt.Errorf("failed to add demo member: %w", err)
			}
			memberIDs = append(memberIDs, user.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	races, err := s.feed.RaceList(ctx, in.Season, in.Series)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch season schedule: %w", err)
	}

	scored := 0
	for i := range races {
		race := &races[i]
		if !race.IsComplete() {
			continue
		}

		if err := s.seedRacePicks(ctx, league, race, memberIDs); err != nil {
			s.logger.Error("failed to seed picks for race", "race_id", race.RaceID, "error", err)
			continue
		}

		if _, err := s.scorer.ScoreRace(ctx, league.ID, race.RaceID, TriggerManual); err != nil {
			s.logger.Error("failed to score seeded race", "race_id", race.RaceID, "error", err)
			continue
		}
		scored++
	}

	s.logger.Info("demo league seeded", "league_id", league.ID, "members", len(memberIDs), "races_scored", scored)
	return &SeedDemoResult{
		LeagueID:    league.ID,
		Members:     len(memberIDs),
		RacesScored: scored,
	}, nil
}

// seedRacePicks gives every member a pick for the race, biased toward the
// top 20 finishers so the seeded season looks like real play.
func (s *DemoService) seedRacePicks(ctx context.Context, league *models.League, race *nascar.RaceListEntry, memberIDs []string) error {
	feed, err := s.feed.WeekendFeed(ctx, league.Season, league.Series, race.RaceID)
	if err != nil {
		return err
	}
	weekend := feed.Race()

	all := make([]nascar.FeedResult, 0, len(weekend.Results))
	top20 := make([]nascar.FeedResult, 0, 20)
	for _, r := range weekend.Results {
		if r.FinishingPosition <= 0 {
			continue
		}
		all = append(all, r)
		if r.FinishingPosition <= 20 {
			top20 = append(top20, r)
		}
	}
	if len(all) == 0 {
		return fmt.Errorf("race %d has no results", race.RaceID)
	}

	isFreePick := nascar.IsExhibitionName(race.RaceName)

	for _, userID := range memberIDs {
		var driver nascar.FeedResult
		if len(top20) > 0 && rand.Float64() > 0.1 {
			driver = top20[rand.Intn(len(top20))]
		} else {
			driver = all[rand.Intn(len(all))]
		}

		pick := &models.DriverPick{
			LeagueID:   league.ID,
			UserID:     userID,
			RaceID:     race.RaceID,
			Season:     league.Season,
			DriverID:   driver.DriverID,
			DriverName: driver.DriverFullname,
			IsFreePick: isFreePick,
		}
		if err := s.pickRepo.Upsert(ctx, nil, pick); err != nil {
			return fmt.Errorf("failed to save demo pick for user %s: %w", userID, err)
		}
	}
	return nil
}
