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
	ErrGameNotFound              = errors.New("game not found")
	ErrGamePlayerNotFound        = errors.New("game player not found")
	ErrGameScopeInvalid          = errors.New("game must belong to exactly one of season or tournament")
	ErrGamePlayerSeatConflict    = errors.New("seat index already taken in this game")
	ErrGamePlayerAlreadySeated   = errors.New("player already seated in this game")
	ErrGameReferenceInvalid      = errors.New("game club/referee/season/tournament reference invalid")
	ErrGamePlayerRefInvalid      = errors.New("game player reference invalid")
)

type GameRepository interface {
	// Create вставляет игру. Вызывается внутри транзакции материализации.
	Create(ctx context.Context, exec SQLExecutor, game *models.Game) error
	// CreatePlayers вставляет все посадки игры. Стол сохраняется целиком:
	// вызов идёт в той же транзакции, что и Create.
	CreatePlayers(ctx context.Context, exec SQLExecutor, players []*models.GamePlayer) error
	GetByID(ctx context.Context, id int) (*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Game, error)
	ListBySeason(ctx context.Context, seasonID int) ([]*models.Game, error)
	UpdateResult(ctx context.Context, exec SQLExecutor, gameID int, result models.GameResult) error
	UpdatePlayerScore(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error
	Delete(ctx context.Context, id int) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) Create(ctx context.Context, exec SQLExecutor, game *models.Game) error {
	if (game.SeasonID == nil) == (game.TournamentID == nil) {
		return ErrGameScopeInvalid
	}

	query := `
		INSERT INTO games
			(name, description, club_id, referee_id, season_id, tournament_id, result,
			 total_players, mafia_count, citizen_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	err := exec.QueryRowContext(ctx, query,
		game.Name,
		game.Description,
		game.ClubID,
		game.RefereeID,
		game.SeasonID,
		game.TournamentID,
		game.Result,
		game.TotalPlayers,
		game.MafiaCount,
		game.CitizenCount,
	).Scan(&game.ID, &game.CreatedAt)

	return r.handleGameError(err)
}

func (r *postgresGameRepository) CreatePlayers(ctx context.Context, exec SQLExecutor, players []*models.GamePlayer) error {
	query := `
		INSERT INTO game_players
			(game_id, player_id, role, status, seat_index, points, bonus_points, penalty_points, lh, ci)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	for _, gp := range players {
		err := exec.QueryRowContext(ctx, query,
			gp.GameID,
			gp.PlayerID,
			gp.Role,
			gp.Status,
			gp.SeatIndex,
			gp.Points,
			gp.BonusPoints,
			gp.PenaltyPoints,
			gp.LH,
			gp.CI,
		).Scan(&gp.ID)
		if err != nil {
			return r.handleGamePlayerError(err)
		}
	}
	return nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `
		SELECT id, name, description, club_id, referee_id, season_id, tournament_id,
		       result, total_players, mafia_count, citizen_count, created_at
		FROM games
		WHERE id = $1`

	game := &models.Game{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&game.ID,
		&game.Name,
		&game.Description,
		&game.ClubID,
		&game.RefereeID,
		&game.SeasonID,
		&game.TournamentID,
		&game.Result,
		&game.TotalPlayers,
		&game.MafiaCount,
		&game.CitizenCount,
		&game.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to scan game by id %d: %w", id, err)
	}

	players, err := r.listPlayers(ctx, []int{game.ID})
	if err != nil {
		return nil, err
	}
	game.Players = players[game.ID]
	return game, nil
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Game, error) {
	return r.listByScope(ctx, "tournament_id", tournamentID)
}

func (r *postgresGameRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.Game, error) {
	return r.listByScope(ctx, "season_id", seasonID)
}

// listByScope загружает игры сезона или турнира вместе с посадками и игроками.
func (r *postgresGameRepository) listByScope(ctx context.Context, column string, id int) ([]*models.Game, error) {
	query := `
		SELECT id, name, description, club_id, referee_id, season_id, tournament_id,
		       result, total_players, mafia_count, citizen_count, created_at
		FROM games
		WHERE ` + column + ` = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query games by %s %d: %w", column, id, err)
	}
	defer rows.Close()

	games := make([]*models.Game, 0)
	gameIDs := make([]int, 0)
	for rows.Next() {
		game := &models.Game{}
		if scanErr := rows.Scan(
			&game.ID,
			&game.Name,
			&game.Description,
			&game.ClubID,
			&game.RefereeID,
			&game.SeasonID,
			&game.TournamentID,
			&game.Result,
			&game.TotalPlayers,
			&game.MafiaCount,
			&game.CitizenCount,
			&game.CreatedAt,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan game row: %w", scanErr)
		}
		games = append(games, game)
		gameIDs = append(gameIDs, game.ID)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(games) == 0 {
		return games, nil
	}

	playersByGame, err := r.listPlayers(ctx, gameIDs)
	if err != nil {
		return nil, err
	}
	for _, game := range games {
		game.Players = playersByGame[game.ID]
	}
	return games, nil
}

// listPlayers загружает посадки указанных игр с профилями игроков одним запросом.
func (r *postgresGameRepository) listPlayers(ctx context.Context, gameIDs []int) (map[int][]models.GamePlayer, error) {
	query := `
		SELECT gp.id, gp.game_id, gp.player_id, gp.role, gp.status, gp.seat_index,
		       gp.points, gp.bonus_points, gp.penalty_points, gp.lh, gp.ci,
		       u.id, u.email, u.nickname, u.role, u.elo_rating
		FROM game_players gp
		JOIN users u ON u.id = gp.player_id
		WHERE gp.game_id = ANY($1)
		ORDER BY gp.game_id ASC, gp.seat_index ASC`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(gameIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to query game players: %w", err)
	}
	defer rows.Close()

	byGame := make(map[int][]models.GamePlayer, len(gameIDs))
	for rows.Next() {
		var gp models.GamePlayer
		var player models.User
		if scanErr := rows.Scan(
			&gp.ID,
			&gp.GameID,
			&gp.PlayerID,
			&gp.Role,
			&gp.Status,
			&gp.SeatIndex,
			&gp.Points,
			&gp.BonusPoints,
			&gp.PenaltyPoints,
			&gp.LH,
			&gp.CI,
			&player.ID,
			&player.Email,
			&player.Nickname,
			&player.Role,
			&player.EloRating,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan game player row: %w", scanErr)
		}
		gp.Player = &player
		byGame[gp.GameID] = append(byGame[gp.GameID], gp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return byGame, nil
}

func (r *postgresGameRepository) UpdateResult(ctx context.Context, exec SQLExecutor, gameID int, result models.GameResult) error {
	query := `UPDATE games SET result = $1 WHERE id = $2`
	res, err := exec.ExecContext(ctx, query, result, gameID)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(res)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *postgresGameRepository) UpdatePlayerScore(ctx context.Context, exec SQLExecutor, gp *models.GamePlayer) error {
	query := `
		UPDATE game_players SET
			role = $1,
			status = $2,
			points = $3,
			bonus_points = $4,
			penalty_points = $5,
			lh = $6,
			ci = $7
		WHERE game_id = $8 AND player_id = $9`

	result, err := exec.ExecContext(ctx, query,
		gp.Role,
		gp.Status,
		gp.Points,
		gp.BonusPoints,
		gp.PenaltyPoints,
		gp.LH,
		gp.CI,
		gp.GameID,
		gp.PlayerID,
	)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrGamePlayerNotFound
	}
	return nil
}

func (r *postgresGameRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM games WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rowsAffected, checkErr := checkRowsAffected(result)
	if checkErr != nil {
		return checkErr
	}
	if rowsAffected == 0 {
		return ErrGameNotFound
	}
	return nil
}

func (r *postgresGameRepository) handleGameError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503": // foreign_key_violation
			return ErrGameReferenceInvalid
		case "23514": // check_violation: season XOR tournament
			return ErrGameScopeInvalid
		}
	}
	return err
}

func (r *postgresGameRepository) handleGamePlayerError(err error) error {
	if err == nil {
		return nil
	}
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23505": // unique_violation
			switch pqErr.Constraint {
			case "game_players_game_id_seat_index_key":
				return ErrGamePlayerSeatConflict
			case "game_players_game_id_player_id_key":
				return ErrGamePlayerAlreadySeated
			}
		case "23503":
			return ErrGamePlayerRefInvalid
		}
	}
	return err
}
