package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mafspace/mafia-backend/models"
)

var (
	ErrTournamentNotFound       = errors.New("tournament not found")
	ErrTournamentClubInvalid    = errors.New("tournament club reference invalid")
	ErrTournamentRefereeInvalid = errors.New("tournament referee reference invalid")
	// ErrTournamentNotActive: условное завершение не нашло турнир в статусе ACTIVE.
	ErrTournamentNotActive = errors.New("tournament is not active")
)

type ListTournamentsFilter struct {
	ClubID    *int
	RefereeID *int
	Status    *models.TournamentStatus
	Type      *models.TournamentType
	Limit     int
	Offset    int
}

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int) (*models.Tournament, error)
	List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error)
	Update(ctx context.Context, tournament *models.Tournament) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error
	// CompleteIfActive переводит ACTIVE → COMPLETED одним условным UPDATE.
	// Возвращает ErrTournamentNotActive, если турнир уже завершён или не активен, —
	// на этом держится защита от двойного начисления рейтинга.
	CompleteIfActive(ctx context.Context, exec SQLExecutor, id int) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

const tournamentColumns = `id, club_id, name, description, referee_id, date, status, type, stars, created_at, updated_at`

func (r *postgresTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	query := `
		INSERT INTO tournaments (club_id, name, description, referee_id, date, status, type, stars)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		tournament.ClubID,
		tournament.Name,
		tournament.Description,
		tournament.RefereeID,
		tournament.Date,
		tournament.Status,
		tournament.Type,
		tournament.Stars,
	).Scan(&tournament.ID, &tournament.CreatedAt, &tournament.UpdatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE id = $1`

	tournament := &models.Tournament{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tournament.ID,
		&tournament.ClubID,
		&tournament.Name,
		&tournament.Description,
		&tournament.RefereeID,
		&tournament.Date,
		&tournament.Status,
		&tournament.Type,
		&tournament.Stars,
		&tournament.CreatedAt,
		&tournament.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament by id %d: %w", id, err)
	}
	return tournament, nil
}

func (r *postgresTournamentRepository) List(ctx context.Context, filter ListTournamentsFilter) ([]models.Tournament, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + tournamentColumns + ` FROM tournaments WHERE 1=1`)

	args := make([]interface{}, 0, 6)
	placeholderIndex := 1

	addFilter := func(clause string, value interface{}) {
		queryBuilder.WriteString(" AND " + clause + " = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, value)
		placeholderIndex++
	}

	if filter.ClubID != nil {
		addFilter("club_id", *filter.ClubID)
	}
	if filter.RefereeID != nil {
		addFilter("referee_id", *filter.RefereeID)
	}
	if filter.Status != nil {
		addFilter("status", *filter.Status)
	}
	if filter.Type != nil {
		addFilter("type", *filter.Type)
	}

	queryBuilder.WriteString(" ORDER BY date DESC, id DESC")

	if filter.Limit > 0 {
		queryBuilder.WriteString(" LIMIT $" + strconv.Itoa(placeholderIndex))
		args = append(args, filter.Limit)
		placeholderIndex++
	}
	if filter.Offset > 0 {
		queryBuilder.WriteString(" OFFSET $" + strconv.Itoa(placeholderIndex))
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments: %w", err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		var t models.Tournament
		if scanErr := rows.Scan(
			&t.ID,
			&t.ClubID,
			&t.Name,
			&t.Description,
			&t.RefereeID,
			&t.Date,
			&t.Status,
			&t.Type,
			&t.Stars,
			&t.CreatedAt,
			&t.UpdatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", scanErr)
		}
		tournaments = append(tournaments, t)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	query := `
		UPDATE tournaments SET
			name = $1,
			description = $2,
			referee_id = $3,
			date = $4,
			type = $5,
			stars = $6,
			updated_at = NOW()
		WHERE id = $7`

	result, err := r.db.ExecContext(ctx, query,
		tournament.Name,
		tournament.Description,
		tournament.RefereeID,
		tournament.Date,
		tournament.Type,
		tournament.Stars,
		tournament.ID,
	)
	if err != nil {
		return r.handleTournamentError(err)
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *postgresTournamentRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus) error {
	query := `UPDATE tournaments SET status = $1, updated_at = NOW() WHERE id = $2`
	result, err := exec.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *postgresTournamentRepository) CompleteIfActive(ctx context.Context, exec SQLExecutor, id int) error {
	query := `
		UPDATE tournaments
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`

	result, err := exec.ExecContext(ctx, query, models.TournamentCompleted, id, models.TournamentActive)
	if err != nil {
		return err
	}

	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrTournamentNotActive
	}
	return nil
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrTournamentNotFound
	}
	return nil
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		if pqErr.Code == "23503" { // foreign_key_violation
			switch pqErr.Constraint {
			case "tournaments_club_id_fkey":
				return ErrTournamentClubInvalid
			case "tournaments_referee_id_fkey":
				return ErrTournamentRefereeInvalid
			}
		}
	}
	return err
}
