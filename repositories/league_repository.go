package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/racefan-dev/fantasy-chase/models"
)

var (
	ErrLeagueNotFound         = errors.New("league not found")
	ErrLeagueSettingsNotFound = errors.New("league settings not found")
)

// LeagueRepository reads league, settings and membership data. Leagues and
// members are managed by an external surface; the only write here is the
// narrow create path used by the demo seeder.
type LeagueRepository interface {
	GetByID(ctx context.Context, id int) (*models.League, error)
	List(ctx context.Context) ([]*models.League, error)
	GetSettings(ctx context.Context, leagueID int) (*models.LeagueSettings, error)
	ListMembers(ctx context.Context, leagueID int) ([]*models.LeagueMember, error)
	IsMember(ctx context.Context, leagueID int, userID string) (bool, error)

	CreateDemoLeague(ctx context.Context, exec SQLExecutor, league *models.League) error
	AddDemoMember(ctx context.Context, exec SQLExecutor, member *models.LeagueMember) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresLeagueRepository) GetByID(ctx context.Context, id int) (*models.League, error) {
	query := `
		SELECT id, name, season, series, is_demo, created_at
		FROM leagues
		WHERE id = $1`

	league := &models.League{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&league.ID, &league.Name, &league.Season, &league.Series, &league.IsDemo, &league.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}

func (r *postgresLeagueRepository) List(ctx context.Context) ([]*models.League, error) {
	query := `
		SELECT id, name, season, series, is_demo, created_at
		FROM leagues
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	leagues := make([]*models.League, 0)
	for rows.Next() {
		league := &models.League{}
		if err := rows.Scan(&league.ID, &league.Name, &league.Season, &league.Series, &league.IsDemo, &league.CreatedAt); err != nil {
			return nil, err
		}
		leagues = append(leagues, league)
	}
	return leagues, rows.Err()
}

func (r *postgresLeagueRepository) GetSettings(ctx context.Context, leagueID int) (*models.LeagueSettings, error) {
	query := `
		SELECT league_id, payment_deadline, updated_at
		FROM league_settings
		WHERE league_id = $1`

	settings := &models.LeagueSettings{}
	err := r.db.QueryRowContext(ctx, query, leagueID).Scan(
		&settings.LeagueID, &settings.PaymentDeadline, &settings.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueSettingsNotFound
		}
		return nil, err
	}
	return settings, nil
}

func (r *postgresLeagueRepository) ListMembers(ctx context.Context, leagueID int) ([]*models.LeagueMember, error) {
	query := `
		SELECT league_id, user_id, payment_status, joined_at
		FROM league_members
		WHERE league_id = $1
		ORDER BY joined_at, user_id`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]*models.LeagueMember, 0)
	for rows.Next() {
		m := &models.LeagueMember{}
		if err := rows.Scan(&m.LeagueID, &m.UserID, &m.PaymentStatus, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *postgresLeagueRepository) IsMember(ctx context.Context, leagueID int, userID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM league_members WHERE league_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, leagueID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check membership for league %d: %w", leagueID, err)
	}
	return exists, nil
}

func (r *postgresLeagueRepository) CreateDemoLeague(ctx context.Context, exec SQLExecutor, league *models.League) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO leagues (name, season, series, is_demo)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, created_at`

	return executor.QueryRowContext(ctx, query, league.Name, league.Season, league.Series).
		Scan(&league.ID, &league.CreatedAt)
}

func (r *postgresLeagueRepository) AddDemoMember(ctx context.Context, exec SQLExecutor, member *models.LeagueMember) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO league_members (league_id, user_id, payment_status)
		VALUES ($1, $2, $3)
		RETURNING joined_at`

	return executor.QueryRowContext(ctx, query, member.LeagueID, member.UserID, member.PaymentStatus).
		Scan(&member.JoinedAt)
}
