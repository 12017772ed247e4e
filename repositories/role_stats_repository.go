package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mafspace/mafia-backend/models"
)

type RoleStatsRepository interface {
	// AddOutcome инкрементирует счётчики (user, role) одним upsert-ом,
	// опираясь на уникальный индекс (user_id, role).
	AddOutcome(ctx context.Context, exec SQLExecutor, userID int, role models.PlayerRole, played, won int) error
	ListByUser(ctx context.Context, userID int) ([]models.RoleStats, error)
}

type postgresRoleStatsRepository struct {
	db *sql.DB
}

func NewPostgresRoleStatsRepository(db *sql.DB) RoleStatsRepository {
	return &postgresRoleStatsRepository{db: db}
}

func (r *postgresRoleStatsRepository) AddOutcome(ctx context.Context, exec SQLExecutor, userID int, role models.PlayerRole, played, won int) error {
	query := `
		INSERT INTO user_role_stats (user_id, role, games_played, games_won)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, role) DO UPDATE SET
			games_played = user_role_stats.games_played + EXCLUDED.games_played,
			games_won = user_role_stats.games_won + EXCLUDED.games_won`

	_, err := exec.ExecContext(ctx, query, userID, role, played, won)
	if err != nil {
		return fmt.Errorf("failed to upsert role stats for user %d role %s: %w", userID, role, err)
	}
	return nil
}

func (r *postgresRoleStatsRepository) ListByUser(ctx context.Context, userID int) ([]models.RoleStats, error) {
	query := `
		SELECT id, user_id, role, games_played, games_won
		FROM user_role_stats
		WHERE user_id = $1
		ORDER BY role ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query role stats for user %d: %w", userID, err)
	}
	defer rows.Close()

	stats := make([]models.RoleStats, 0, len(models.AllPlayerRoles))
	for rows.Next() {
		var st models.RoleStats
		if scanErr := rows.Scan(&st.ID, &st.UserID, &st.Role, &st.GamesPlayed, &st.GamesWon); scanErr != nil {
			return nil, fmt.Errorf("failed to scan role stats row: %w", scanErr)
		}
		stats = append(stats, st)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
