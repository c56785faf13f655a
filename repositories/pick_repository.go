package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/racefan-dev/fantasy-chase/models"
)

var ErrPickNotFound = errors.New("driver pick not found")

type PickRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, pick *models.DriverPick) error
	ListByRace(ctx context.Context, leagueID, raceID, season int) ([]*models.DriverPick, error)
	ListByUser(ctx context.Context, leagueID int, userID string, season int) ([]*models.DriverPick, error)

	// DriverUsage counts non-free-pick uses of each driver per user across
	// the season, the input the over-usage penalty is judged against.
	DriverUsage(ctx context.Context, leagueID, season int) (map[string]map[int]int, error)
}

type postgresPickRepository struct {
	db *sql.DB
}

func NewPostgresPickRepository(db *sql.DB) PickRepository {
	return &postgresPickRepository{db: db}
}

func (r *postgresPickRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPickRepository) Upsert(ctx context.Context, exec SQLExecutor, pick *models.DriverPick) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO driver_picks
			(league_id, user_id, race_id, season, driver_id, driver_name, is_free_pick)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (league_id, user_id, race_id, season) DO UPDATE SET
			driver_id = EXCLUDED.driver_id,
			driver_name = EXCLUDED.driver_name,
			is_free_pick = EXCLUDED.is_free_pick,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`

	return executor.QueryRowContext(ctx, query,
		pick.LeagueID, pick.UserID, pick.RaceID, pick.Season,
		pick.DriverID, pick.DriverName, pick.IsFreePick,
	).Scan(&pick.ID, &pick.CreatedAt, &pick.UpdatedAt)
}

func (r *postgresPickRepository) scanPick(rowScanner interface{ Scan(...interface{}) error }) (*models.DriverPick, error) {
	var p models.DriverPick
	err := rowScanner.Scan(
		&p.ID, &p.LeagueID, &p.UserID, &p.RaceID, &p.Season,
		&p.DriverID, &p.DriverName, &p.IsFreePick, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPickNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *postgresPickRepository) ListByRace(ctx context.Context, leagueID, raceID, season int) ([]*models.DriverPick, error) {
	query := `
		SELECT id, league_id, user_id, race_id, season, driver_id, driver_name, is_free_pick, created_at, updated_at
		FROM driver_picks
		WHERE league_id = $1 AND race_id = $2 AND season = $3`

	return r.listPicks(ctx, query, leagueID, raceID, season)
}

func (r *postgresPickRepository) ListByUser(ctx context.Context, leagueID int, userID string, season int) ([]*models.DriverPick, error) {
	query := `
		SELECT id, league_id, user_id, race_id, season, driver_id, driver_name, is_free_pick, created_at, updated_at
		FROM driver_picks
		WHERE league_id = $1 AND user_id = $2 AND season = $3
		ORDER BY race_id`

	return r.listPicks(ctx, query, leagueID, userID, season)
}

func (r *postgresPickRepository) listPicks(ctx context.Context, query string, args ...interface{}) ([]*models.DriverPick, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	picks := make([]*models.DriverPick, 0)
	for rows.Next() {
		p, errScan := r.scanPick(rows)
		if errScan != nil {
			return nil, errScan
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

func (r *postgresPickRepository) DriverUsage(ctx context.Context, leagueID, season int) (map[string]map[int]int, error) {
	query := `
		SELECT user_id, driver_id, COUNT(*)
		FROM driver_picks
		WHERE league_id = $1 AND season = $2 AND is_free_pick = FALSE
		GROUP BY user_id, driver_id`

	rows, err := r.db.QueryContext(ctx, query, leagueID, season)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate driver usage for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	usage := make(map[string]map[int]int)
	for rows.Next() {
		var userID string
		var driverID, count int
		if err := rows.Scan(&userID, &driverID, &count); err != nil {
			return nil, err
		}
		if usage[userID] == nil {
			usage[userID] = make(map[int]int)
		}
		usage[userID][driverID] = count
	}
	return usage, rows.Err()
}
