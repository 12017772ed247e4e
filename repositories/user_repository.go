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
	ErrUserNotFound         = errors.New("user not found")
	ErrUserEmailConflict    = errors.New("user email conflict")
	ErrUserNicknameConflict = errors.New("user nickname conflict")
	ErrUserClubInvalid      = errors.New("user club reference invalid")
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByNickname(ctx context.Context, nickname string) (*models.User, error)
	// UpsertByNickname создаёт игрока с данным никнеймом либо возвращает
	// существующего. Безопасен при конкурентных вызовах: опирается на
	// уникальный индекс по nickname, а не на check-then-insert.
	UpsertByNickname(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	UpdateClubID(ctx context.Context, exec SQLExecutor, userID int, clubID *int) error
	UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error
	UpdateEloRating(ctx context.Context, exec SQLExecutor, userID int, eloRating int) error
	AddTotals(ctx context.Context, exec SQLExecutor, userID, games, wins, points, bonus int) error
	ListByClub(ctx context.Context, clubID int) ([]models.User, error)
}

type postgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUserRepository(db *sql.DB) UserRepository {
	return &postgresUserRepository{db: db}
}

const userColumns = `id, email, password_hash, nickname, confirmed, role, club_id,
	elo_rating, total_games, total_wins, total_points, total_bonus_points, avatar_key, created_at`

func (r *postgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, password_hash, nickname, confirmed, role, club_id, elo_rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.Confirmed,
		user.Role,
		user.ClubID,
		user.EloRating,
	).Scan(&user.ID, &user.CreatedAt)

	return r.handleUserError(err)
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanUser(ctx, query, id)
}

func (r *postgresUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanUser(ctx, query, email)
}

func (r *postgresUserRepository) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE nickname = $1`
	return r.scanUser(ctx, query, nickname)
}

func (r *postgresUserRepository) UpsertByNickname(ctx context.Context, user *models.User) error {
	// DO UPDATE вместо DO NOTHING, чтобы RETURNING отдал строку и при конфликте.
	query := `
		INSERT INTO users (email, password_hash, nickname, confirmed, role, elo_rating)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (nickname) DO UPDATE SET nickname = EXCLUDED.nickname
		RETURNING ` + userColumns

	err := r.db.QueryRowContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.Confirmed,
		user.Role,
		user.EloRating,
	).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Nickname,
		&user.Confirmed,
		&user.Role,
		&user.ClubID,
		&user.EloRating,
		&user.TotalGames,
		&user.TotalWins,
		&user.TotalPoints,
		&user.TotalBonusPoints,
		&user.AvatarKey,
		&user.CreatedAt,
	)

	return r.handleUserError(err)
}

func (r *postgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			email = $1,
			password_hash = $2,
			nickname = $3,
			confirmed = $4,
			role = $5,
			club_id = $6
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Nickname,
		user.Confirmed,
		user.Role,
		user.ClubID,
		user.ID,
	)
	if err != nil {
		return r.handleUserError(err)
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) UpdateClubID(ctx context.Context, exec SQLExecutor, userID int, clubID *int) error {
	query := `UPDATE users SET club_id = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, clubID, userID)
	if err != nil {
		return r.handleUserError(err)
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	query := `UPDATE users SET avatar_key = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, avatarKey, userID)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) UpdateEloRating(ctx context.Context, exec SQLExecutor, userID int, eloRating int) error {
	query := `UPDATE users SET elo_rating = $1 WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, eloRating, userID)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) AddTotals(ctx context.Context, exec SQLExecutor, userID, games, wins, points, bonus int) error {
	query := `
		UPDATE users SET
			total_games = total_games + $1,
			total_wins = total_wins + $2,
			total_points = total_points + $3,
			total_bonus_points = total_bonus_points + $4
		WHERE id = $5`

	result, err := exec.ExecContext(ctx, query, games, wins, points, bonus, userID)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *postgresUserRepository) ListByClub(ctx context.Context, clubID int) ([]models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE club_id = $1 ORDER BY nickname ASC`

	rows, err := r.db.QueryContext(ctx, query, clubID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users for club %d: %w", clubID, err)
	}
	defer rows.Close()

	users := make([]models.User, 0)
	for rows.Next() {
		var user models.User
		if scanErr := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Nickname,
			&user.Confirmed,
			&user.Role,
			&user.ClubID,
			&user.EloRating,
			&user.TotalGames,
			&user.TotalWins,
			&user.TotalPoints,
			&user.TotalBonusPoints,
			&user.AvatarKey,
			&user.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", scanErr)
		}
		users = append(users, user)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *postgresUserRepository) scanUser(ctx context.Context, query string, args ...interface{}) (*models.User, error) {
	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Nickname,
		&user.Confirmed,
		&user.Role,
		&user.ClubID,
		&user.EloRating,
		&user.TotalGames,
		&user.TotalWins,
		&user.TotalPoints,
		&user.TotalBonusPoints,
		&user.AvatarKey,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *postgresUserRepository) handleUserError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			if pqErr.Constraint == "users_email_key" {
				return ErrUserEmailConflict
			}
			if pqErr.Constraint == "users_nickname_key" {
				return ErrUserNicknameConflict
			}
		case "23503": // foreign_key_violation
			if pqErr.Constraint == "users_club_id_fkey" {
				return ErrUserClubInvalid
			}
		}
	}
	return err
}
