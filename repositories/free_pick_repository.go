package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/racefan-dev/fantasy-chase/models"
)

type FreePickRaceRepository interface {
	Exists(ctx context.Context, leagueID, raceID, season int) (bool, error)
	ListBySeason(ctx context.Context, leagueID, season int) ([]*models.FreePickRace, error)
}

type postgresFreePickRaceRepository struct {
	db *sql.DB
}

func NewPostgresFreePickRaceRepository(db *sql.DB) FreePickRaceRepository {
	return &postgresFreePickRaceRepository{db: db}
}

func (r *postgresFreePickRaceRepository) Exists(ctx context.Context, leagueID, raceID, season int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM free_pick_races WHERE league_id = $1 AND race_id = $2 AND season = $3)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, leagueID, raceID, season).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check free-pick designation for race %d: %w", raceID, err)
	}
	return exists, nil
}

func (r *postgresFreePickRaceRepository) ListBySeason(ctx context.Context, leagueID, season int) ([]*models.FreePickRace, error) {
	query := `
		SELECT id, league_id, race_id, season
		FROM free_pick_races
		WHERE league_id = $1 AND season = $2
		ORDER BY race_id`

	rows, err := r.db.QueryContext(ctx, query, leagueID, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	races := make([]*models.FreePickRace, 0)
	for rows.Next() {
		fp := &models.FreePickRace{}
		if err := rows.Scan(&fp.ID, &fp.LeagueID, &fp.RaceID, &fp.Season); err != nil {
			return nil, err
		}
		races = append(races, fp)
	}
	return races, rows.Err()
}
