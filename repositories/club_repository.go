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
	ErrClubNotFound         = errors.New("club not found")
	ErrClubNameConflict     = errors.New("club name conflict")
	ErrClubRequestNotFound  = errors.New("club request not found")
	ErrClubRequestConflict  = errors.New("club request already exists for this user")
	ErrClubOwnerInvalid     = errors.New("club owner reference invalid")
)

type ClubRepository interface {
	Create(ctx context.Context, club *models.Club) error
	GetByID(ctx context.Context, id int) (*models.Club, error)
	UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error
	CreateRequest(ctx context.Context, request *models.ClubRequest) error
	GetRequestByID(ctx context.Context, id int) (*models.ClubRequest, error)
	UpdateRequestStatus(ctx context.Context, exec SQLExecutor, requestID int, status models.ClubRequestStatus) error
	ListRequestsByClub(ctx context.Context, clubID int, status *models.ClubRequestStatus) ([]models.ClubRequest, error)
}

type postgresClubRepository struct {
	db *sql.DB
}

func NewPostgresClubRepository(db *sql.DB) ClubRepository {
	return &postgresClubRepository{db: db}
}

func (r *postgresClubRepository) Create(ctx context.Context, club *models.Club) error {
	query := `
		INSERT INTO clubs (name, description, owner_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		club.Name,
		club.Description,
		club.OwnerID,
	).Scan(&club.ID, &club.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				if pqErr.Constraint == "clubs_name_key" {
					return ErrClubNameConflict
				}
			case "23503":
				if pqErr.Constraint == "clubs_owner_id_fkey" {
					return ErrClubOwnerInvalid
				}
			}
		}
		return err
	}
	return nil
}

func (r *postgresClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	query := `
		SELECT c.id, c.name, c.description, c.owner_id, c.logo_key, c.created_at,
		       u.id, u.email, u.nickname, u.role
		FROM clubs c
		JOIN users u ON u.id = c.owner_id
		WHERE c.id = $1`

	club := &models.Club{}
	owner := &models.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&club.ID,
		&club.Name,
		&club.Description,
		&club.OwnerID,
		&club.LogoKey,
		&club.CreatedAt,
		&owner.ID,
		&owner.Email,
		&owner.Nickname,
		&owner.Role,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to scan club by id %d: %w", id, err)
	}
	club.Owner = owner
	return club, nil
}

func (r *postgresClubRepository) UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error {
	query := `UPDATE clubs SET logo_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, logoKey, clubID)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrClubNotFound
	}
	return nil
}

func (r *postgresClubRepository) CreateRequest(ctx context.Context, request *models.ClubRequest) error {
	query := `
		INSERT INTO club_requests (club_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		request.ClubID,
		request.UserID,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrClubRequestConflict
		}
		return err
	}
	return nil
}

func (r *postgresClubRepository) GetRequestByID(ctx context.Context, id int) (*models.ClubRequest, error) {
	query := `
		SELECT id, club_id, user_id, status, created_at
		FROM club_requests
		WHERE id = $1`

	request := &models.ClubRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&request.ID,
		&request.ClubID,
		&request.UserID,
		&request.Status,
		&request.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClubRequestNotFound
		}
		return nil, fmt.Errorf("failed to scan club request by id %d: %w", id, err)
	}
	return request, nil
}

func (r *postgresClubRepository) UpdateRequestStatus(ctx context.Context, exec SQLExecutor, requestID int, status models.ClubRequestStatus) error {
	query := `UPDATE club_requests SET status = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, requestID)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrClubRequestNotFound
	}
	return nil
}

func (r *postgresClubRepository) ListRequestsByClub(ctx context.Context, clubID int, status *models.ClubRequestStatus) ([]models.ClubRequest, error) {
	query := `
		SELECT cr.id, cr.club_id, cr.user_id, cr.status, cr.created_at,
		       u.id, u.email, u.nickname, u.role
		FROM club_requests cr
		JOIN users u ON u.id = cr.user_id
		WHERE cr.club_id = $1`

	args := []interface{}{clubID}
	if status != nil {
		query += ` AND cr.status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY cr.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query club requests for club %d: %w", clubID, err)
	}
	defer rows.Close()

	requests := make([]models.ClubRequest, 0)
	for rows.Next() {
		var request models.ClubRequest
		var user models.User
		if scanErr := rows.Scan(
			&request.ID,
			&request.ClubID,
			&request.UserID,
			&request.Status,
			&request.CreatedAt,
			&user.ID,
			&user.Email,
			&user.Nickname,
			&user.Role,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan club request row: %w", scanErr)
		}
		request.User = &user
		requests = append(requests, request)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}
