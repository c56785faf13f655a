package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/racefan-dev/fantasy-chase/models"
)

var ErrEliminationNotFound = errors.New("chase elimination not found")

type ChaseEliminationRepository interface {
	// Upsert keeps the record write-once in spirit: a replay of the same
	// round overwrites rather than duplicating.
	Upsert(ctx context.Context, exec SQLExecutor, elim *models.ChaseElimination) error
	ListBySeason(ctx context.Context, exec SQLExecutor, leagueID, season int) ([]*models.ChaseElimination, error)
}

type postgresChaseEliminationRepository struct {
	db *sql.DB
}

func NewPostgresChaseEliminationRepository(db *sql.DB) ChaseEliminationRepository {
	return &postgresChaseEliminationRepository{db: db}
}

func (r *postgresChaseEliminationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresChaseEliminationRepository) Upsert(ctx context.Context, exec SQLExecutor, elim *models.ChaseElimination) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO chase_eliminations
			(league_id, user_id, season, eliminated_round, final_position, playoff_points_at_elimination)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (league_id, user_id, season) DO UPDATE SET
			eliminated_round = EXCLUDED.eliminated_round,
			final_position = EXCLUDED.final_position,
			playoff_points_at_elimination = EXCLUDED.playoff_points_at_elimination
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query,
		elim.LeagueID, elim.UserID, elim.Season,
		elim.EliminatedRound, elim.FinalPosition, elim.PlayoffPointsAtElimination,
	).Scan(&elim.ID, &elim.CreatedAt)
}

func (r *postgresChaseEliminationRepository) ListBySeason(ctx context.Context, exec SQLExecutor, leagueID, season int) ([]*models.ChaseElimination, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT id, league_id, user_id, season, eliminated_round, final_position, playoff_points_at_elimination, created_at
		FROM chase_eliminations
		WHERE league_id = $1 AND season = $2
		ORDER BY final_position`

	rows, err := executor.QueryContext(ctx, query, leagueID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	elims := make([]*models.ChaseElimination, 0)
	for rows.Next() {
		var e models.ChaseElimination
		err := rows.Scan(
			&e.ID, &e.LeagueID, &e.UserID, &e.Season,
			&e.EliminatedRound, &e.FinalPosition, &e.PlayoffPointsAtElimination, &e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		elims = append(elims, &e)
	}
	return elims, rows.Err()
}
