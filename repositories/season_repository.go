package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/mafspace/mafia-backend/models"
)

var (
	ErrSeasonNotFound       = errors.New("season not found")
	ErrSeasonClubInvalid    = errors.New("season club reference invalid")
	ErrSeasonRefereeInvalid = errors.New("season referee reference invalid")
)

type SeasonRepository interface {
	Create(ctx context.Context, season *models.Season) error
	GetByID(ctx context.Context, id int) (*models.Season, error)
	ListByClub(ctx context.Context, clubID int) ([]models.Season, error)
	Close(ctx context.Context, id int) error
}

type postgresSeasonRepository struct {
	db *sql.DB
}

func NewPostgresSeasonRepository(db *sql.DB) SeasonRepository {
	return &postgresSeasonRepository{db: db}
}

func (r *postgresSeasonRepository) Create(ctx context.Context, season *models.Season) error {
	query := `
		INSERT INTO seasons (club_id, name, referee_id, started_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		season.ClubID,
		season.Name,
		season.RefereeID,
		season.StartedAt,
	).Scan(&season.ID, &season.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			switch pqErr.Constraint {
			case "seasons_club_id_fkey":
				return ErrSeasonClubInvalid
			case "seasons_referee_id_fkey":
				return ErrSeasonRefereeInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresSeasonRepository) GetByID(ctx context.Context, id int) (*models.Season, error) {
	query := `
		SELECT id, club_id, name, referee_id, started_at, ended_at, created_at
		FROM seasons
		WHERE id = $1`

	season := &models.Season{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&season.ID,
		&season.ClubID,
		&season.Name,
		&season.RefereeID,
		&season.StartedAt,
		&season.EndedAt,
		&season.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSeasonNotFound
		}
		return nil, fmt.Errorf("failed to scan season by id %d: %w", id, err)
	}
	return season, nil
}

func (r *postgresSeasonRepository) ListByClub(ctx context.Context, clubID int) ([]models.Season, error) {
	query := `
		SELECT id, club_id, name, referee_id, started_at, ended_at, created_at
		FROM seasons
		WHERE club_id = $1
		ORDER BY started_at DESC`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query seasons for club %d: %w", clubID, err)
	}
	defer rows.Close()

	seasons := make([]models.Season, 0)
	for rows.Next() {
		var season models.Season
		if scanErr := rows.Scan(
			&season.ID,
			&season.ClubID,
			&season.Name,
			&season.RefereeID,
			&season.StartedAt,
			&season.EndedAt,
			&season.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan season row: %w", scanErr)
		}
		seasons = append(seasons, season)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return seasons, nil
}

func (r *postgresSeasonRepository) Close(ctx context.Context, id int) error {
	query := `UPDATE seasons SET ended_at = NOW() WHERE id = $1 AND ended_at IS NULL`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrSeasonNotFound
	}
	return nil
}
