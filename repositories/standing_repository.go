package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/racefan-dev/fantasy-chase/models"
)

var ErrStandingNotFound = errors.New("season standing not found")

type StandingRepository interface {
	// GetOrCreate returns the player's standing row, inserting a zeroed one
	// on first contact.
	GetOrCreate(ctx context.Context, exec SQLExecutor, leagueID int, userID string, season int) (*models.SeasonStanding, error)
	Update(ctx context.Context, exec SQLExecutor, standing *models.SeasonStanding) error
	ListByLeagueSeason(ctx context.Context, exec SQLExecutor, leagueID, season int) ([]*models.SeasonStanding, error)
}

type postgresStandingRepository struct {
	db *sql.DB
}

func NewPostgresStandingRepository(db *sql.DB) StandingRepository {
	return &postgresStandingRepository{db: db}
}

func (r *postgresStandingRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const standingColumns = `id, league_id, user_id, season,
		regular_season_points, playoff_points, race_wins, stage_wins,
		top_5s, top_10s, top_15s, top_20s,
		is_eliminated, elimination_round, is_wild_card, is_regular_season_winner, updated_at`

func (r *postgresStandingRepository) scanStanding(rowScanner interface{ Scan(...interface{}) error }) (*models.SeasonStanding, error) {
	var s models.SeasonStanding
	err := rowScanner.Scan(
		&s.ID, &s.LeagueID, &s.UserID, &s.Season,
		&s.RegularSeasonPoints, &s.PlayoffPoints, &s.RaceWins, &s.StageWins,
		&s.Top5s, &s.Top10s, &s.Top15s, &s.Top20s,
		&s.IsEliminated, &s.EliminationRound, &s.IsWildCard, &s.IsRegularSeasonWinner, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStandingNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresStandingRepository) GetOrCreate(ctx context.Context, exec SQLExecutor, leagueID int, userID string, season int) (*models.SeasonStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + standingColumns + `
		FROM season_standings
		WHERE league_id = $1 AND user_id = $2 AND season = $3`

	standing, err := r.scanStanding(executor.QueryRowContext(ctx, query, leagueID, userID, season))
	if err == nil {
		return standing, nil
	}
	if !errors.Is(err, ErrStandingNotFound) {
		return nil, err
	}

	insert := `
		INSERT INTO season_standings (league_id, user_id, season)
		VALUES ($1, $2, $3)
		RETURNING ` + standingColumns

	return r.scanStanding(executor.QueryRowContext(ctx, insert, leagueID, userID, season))
}

func (r *postgresStandingRepository) Update(ctx context.Context, exec SQLExecutor, standing *models.SeasonStanding) error {
	executor := r.getExecutor(exec)
	query := `
		UPDATE season_standings SET
			regular_season_points = $1,
			playoff_points = $2,
			race_wins = $3,
			stage_wins = $4,
			top_5s = $5,
			top_10s = $6,
			top_15s = $7,
			top_20s = $8,
			is_eliminated = $9,
			elimination_round = $10,
			is_wild_card = $11,
			is_regular_season_winner = $12,
			updated_at = NOW()
		WHERE id = $13`

	result, err := executor.ExecContext(ctx, query,
		standing.RegularSeasonPoints, standing.PlayoffPoints, standing.RaceWins, standing.StageWins,
		standing.Top5s, standing.Top10s, standing.Top15s, standing.Top20s,
		standing.IsEliminated, standing.EliminationRound, standing.IsWildCard, standing.IsRegularSeasonWinner,
		standing.ID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrStandingNotFound)
}

func (r *postgresStandingRepository) ListByLeagueSeason(ctx context.Context, exec SQLExecutor, leagueID, season int) ([]*models.SeasonStanding, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + standingColumns + `
		FROM season_standings
		WHERE league_id = $1 AND season = $2
		ORDER BY user_id`

	rows, err := executor.QueryContext(ctx, query, leagueID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := make([]*models.SeasonStanding, 0)
	for rows.Next() {
		s, errScan := r.scanStanding(rows)
		if errScan != nil {
			return nil, errScan
		}
		standings = append(standings, s)
	}
	return standings, rows.Err()
}
