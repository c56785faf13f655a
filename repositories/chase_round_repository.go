package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/racefan-dev/fantasy-chase/models"
)

var ErrChaseRoundNotFound = errors.New("chase round not found")

type ChaseRoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.ChaseRound) error
	GetActive(ctx context.Context, exec SQLExecutor, leagueID, season int) (*models.ChaseRound, error)
	AnyExists(ctx context.Context, exec SQLExecutor, leagueID, season int) (bool, error)
	Close(ctx context.Context, exec SQLExecutor, roundID int) error
	ListBySeason(ctx context.Context, leagueID, season int) ([]*models.ChaseRound, error)
}

type postgresChaseRoundRepository struct {
	db *sql.DB
}

func NewPostgresChaseRoundRepository(db *sql.DB) ChaseRoundRepository {
	return &postgresChaseRoundRepository{db: db}
}

func (r *postgresChaseRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const chaseRoundColumns = `id, league_id, season, round_number, players_remaining, is_active, started_at, completed_at, created_at`

func (r *postgresChaseRoundRepository) scanRound(rowScanner interface{ Scan(...interface{}) error }) (*models.ChaseRound, error) {
	var cr models.ChaseRound
	err := rowScanner.Scan(
		&cr.ID, &cr.LeagueID, &cr.Season, &cr.RoundNumber, &cr.PlayersRemaining,
		&cr.IsActive, &cr.StartedAt, &cr.CompletedAt, &cr.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrChaseRoundNotFound
		}
		return nil, err
	}
	return &cr, nil
}

func (r *postgresChaseRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.ChaseRound) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO chase_rounds
			(league_id, season, round_number, players_remaining, is_active, started_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, started_at, created_at`

	return executor.QueryRowContext(ctx, query,
		round.LeagueID, round.Season, round.RoundNumber, round.PlayersRemaining, round.IsActive,
	).Scan(&round.ID, &round.StartedAt, &round.CreatedAt)
}

func (r *postgresChaseRoundRepository) GetActive(ctx context.Context, exec SQLExecutor, leagueID, season int) (*models.ChaseRound, error) {
	executor := r.getExecutor(exec)
	query := `
		SELECT ` + chaseRoundColumns + `
		FROM chase_rounds
		WHERE league_id = $1 AND season = $2 AND is_active = TRUE`

	return r.scanRound(executor.QueryRowContext(ctx, query, leagueID, season))
}

func (r *postgresChaseRoundRepository) AnyExists(ctx context.Context, exec SQLExecutor, leagueID, season int) (bool, error) {
	executor := r.getExecutor(exec)
	query := `SELECT EXISTS (SELECT 1 FROM chase_rounds WHERE league_id = $1 AND season = $2)`

	var exists bool
	if err := executor.QueryRowContext(ctx, query, leagueID, season).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *postgresChaseRoundRepository) Close(ctx context.Context, exec SQLExecutor, roundID int) error {
	executor := r.getExecutor(exec)
	query := `UPDATE chase_rounds SET is_active = FALSE, completed_at = NOW() WHERE id = $1`

	result, err := executor.ExecContext(ctx, query, roundID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrChaseRoundNotFound)
}

func (r *postgresChaseRoundRepository) ListBySeason(ctx context.Context, leagueID, season int) ([]*models.ChaseRound, error) {
	query := `
		SELECT ` + chaseRoundColumns + `
		FROM chase_rounds
		WHERE league_id = $1 AND season = $2
		ORDER BY round_number`

	rows, err := r.db.QueryContext(ctx, query, leagueID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*models.ChaseRound, 0)
	for rows.Next() {
		cr, errScan := r.scanRound(rows)
		if errScan != nil {
			return nil, errScan
		}
		rounds = append(rounds, cr)
	}
	return rounds, rows.Err()
}
