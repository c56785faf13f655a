package repositories

import (
	"context"
	"database/sql"

	"github.com/racefan-dev/fantasy-chase/models"
)

type ResultCacheRepository interface {
	// ReplaceForRace swaps the stored driver-level snapshot for a race.
	ReplaceForRace(ctx context.Context, exec SQLExecutor, raceID, season int, series models.SeriesType, entries []*models.RaceResultEntry) error
	ListByRace(ctx context.Context, raceID, season int, series models.SeriesType) ([]*models.RaceResultEntry, error)
}

type postgresResultCacheRepository struct {
	db *sql.DB
}

func NewPostgresResultCacheRepository(db *sql.DB) ResultCacheRepository {
	return &postgresResultCacheRepository{db: db}
}

func (r *postgresResultCacheRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultCacheRepository) ReplaceForRace(ctx context.Context, exec SQLExecutor, raceID, season int, series models.SeriesType, entries []*models.RaceResultEntry) error {
	executor := r.getExecutor(exec)

	deleteQuery := `DELETE FROM race_results WHERE race_id = $1 AND season = $2 AND series = $3`
	if _, err := executor.ExecContext(ctx, deleteQuery, raceID, season, series); err != nil {
		return err
	}

	insertQuery := `
		INSERT INTO race_results
			(race_id, season, series, race_name, race_date, driver_id, driver_name, finishing_position, points_earned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	for _, e := range entries {
		err := executor.QueryRowContext(ctx, insertQuery,
			e.RaceID, e.Season, e.Series, e.RaceName, e.RaceDate,
			e.DriverID, e.DriverName, e.FinishingPosition, e.PointsEarned,
		).Scan(&e.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *postgresResultCacheRepository) ListByRace(ctx context.Context, raceID, season int, series models.SeriesType) ([]*models.RaceResultEntry, error) {
	query := `
		SELECT id, race_id, season, series, race_name, race_date, driver_id, driver_name, finishing_position, points_earned
		FROM race_results
		WHERE race_id = $1 AND season = $2 AND series = $3
		ORDER BY finishing_position`

	rows, err := r.db.QueryContext(ctx, query, raceID, season, series)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*models.RaceResultEntry, 0)
	for rows.Next() {
		var e models.RaceResultEntry
		err := rows.Scan(
			&e.ID, &e.RaceID, &e.Season, &e.Series, &e.RaceName, &e.RaceDate,
			&e.DriverID, &e.DriverName, &e.FinishingPosition, &e.PointsEarned,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
