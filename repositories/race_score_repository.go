package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/racefan-dev/fantasy-chase/models"
)

var ErrRaceScoreNotFound = errors.New("race score not found")

type RaceScoreRepository interface {
	// ListByRace reads the currently stored rows for a race, typically inside
	// the rescoring transaction so the previous contribution can be reversed.
	ListByRace(ctx context.Context, exec SQLExecutor, leagueID, raceID, season int) ([]*models.UserRaceScore, error)
	DeleteByRace(ctx context.Context, exec SQLExecutor, leagueID, raceID, season int) error
	BatchCreate(ctx context.Context, exec SQLExecutor, scores []*models.UserRaceScore) error
	ListByUser(ctx context.Context, leagueID int, userID string, season int) ([]*models.UserRaceScore, error)
	ScoredRaceIDs(ctx context.Context, leagueID, season int) (map[int]bool, error)
}

type postgresRaceScoreRepository struct {
	db *sql.DB
}

func NewPostgresRaceScoreRepository(db *sql.DB) RaceScoreRepository {
	return &postgresRaceScoreRepository{db: db}
}

func (r *postgresRaceScoreRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const raceScoreColumns = `id, league_id, user_id, race_id, season, driver_id, driver_name,
		points_earned, finishing_position, is_race_win, stage_wins, playoff_points_earned, created_at`

func (r *postgresRaceScoreRepository) scanScore(rowScanner interface{ Scan(...interface{}) error }) (*models.UserRaceScore, error) {
	var s models.UserRaceScore
	err := rowScanner.Scan(
		&s.ID, &s.LeagueID, &s.UserID, &s.RaceID, &s.Season, &s.DriverID, &s.DriverName,
		&s.PointsEarned, &s.FinishingPosition, &s.IsRaceWin, &s.StageWins, &s.PlayoffPointsEarned, &s.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRaceScoreNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *postgresRaceScoreRepository) ListByRace(ctx context.Context, exec SQLExecutor, leagueID, raceID, season int) ([]*models.UserRaceScore, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + raceScoreColumns + `
		FROM user_race_scores
		WHERE league_id = $1 AND race_id = $2 AND season = $3`

	rows, err := executor.QueryContext(ctx, query, leagueID, raceID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectScores(rows)
}

func (r *postgresRaceScoreRepository) DeleteByRace(ctx context.Context, exec SQLExecutor, leagueID, raceID, season int) error {
	executor := r.getExecutor(exec)
	query := `DELETE FROM user_race_scores WHERE league_id = $1 AND race_id = $2 AND season = $3`
	_, err := executor.ExecContext(ctx, query, leagueID, raceID, season)
	return err
}

func (r *postgresRaceScoreRepository) BatchCreate(ctx context.Context, exec SQLExecutor, scores []*models.UserRaceScore) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO user_race_scores
			(league_id, user_id, race_id, season, driver_id, driver_name,
			 points_earned, finishing_position, is_race_win, stage_wins, playoff_points_earned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id, created_at`

	for _, s := range scores {
		err := executor.QueryRowContext(ctx, query,
			s.LeagueID, s.UserID, s.RaceID, s.Season, s.DriverID, s.DriverName,
			s.PointsEarned, s.FinishingPosition, s.IsRaceWin, s.StageWins, s.PlayoffPointsEarned,
		).Scan(&s.ID, &s.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresRaceScoreRepository) ListByUser(ctx context.Context, leagueID int, userID string, season int) ([]*models.UserRaceScore, error) {
	query := `
		SELECT ` + raceScoreColumns + `
		FROM user_race_scores
		WHERE league_id = $1 AND user_id = $2 AND season = $3
		ORDER BY race_id`

	rows, err := r.db.QueryContext(ctx, query, leagueID, userID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectScores(rows)
}

func (r *postgresRaceScoreRepository) ScoredRaceIDs(ctx context.Context, leagueID, season int) (map[int]bool, error) {
	query := `SELECT DISTINCT race_id FROM user_race_scores WHERE league_id = $1 AND season = $2`

	rows, err := r.db.QueryContext(ctx, query, leagueID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scored := make(map[int]bool)
	for rows.Next() {
		var raceID int
		if err := rows.Scan(&raceID); err != nil {
			return nil, err
		}
		scored[raceID] = true
	}
	return scored, rows.Err()
}

func (r *postgresRaceScoreRepository) collectScores(rows *sql.Rows) ([]*models.UserRaceScore, error) {
	scores := make([]*models.UserRaceScore, 0)
	for rows.Next() {
		s, err := r.scanScore(rows)
		if err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
