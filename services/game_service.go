package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/mafspace/mafia-backend/live"
	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
	"github.com/mafspace/mafia-backend/scheduling"
	"golang.org/x/crypto/bcrypt"
)

// placeholderEmailDomain используется для лениво создаваемых игроков,
// у которых есть только никнейм.
const placeholderEmailDomain = "mafspace.ru"

type GenerateGamesInput struct {
	TournamentID    int      `json:"tournament_id"`
	TablesCount     int      `json:"tables_count"`
	RoundsCount     int      `json:"rounds_count"`
	PlayersPerGame  int      `json:"players_per_game"`
	TotalGames      int      `json:"total_games"`
	PlayerNicknames []string `json:"player_nicknames"`
}

type PlayerResultInput struct {
	PlayerID      int                 `json:"player_id"`
	Role          models.PlayerRole   `json:"role"`
	Status        models.PlayerStatus `json:"status"`
	Points        int                 `json:"points"`
	BonusPoints   int                 `json:"bonus_points"`
	PenaltyPoints int                 `json:"penalty_points"`
	LH            int                 `json:"lh"`
	CI            int                 `json:"ci"`
}

type UpdateGameResultInput struct {
	Result        models.GameResult   `json:"result"`
	PlayerResults []PlayerResultInput `json:"player_results"`
}

type CreateGameInput struct {
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	ClubID       int             `json:"club_id"`
	RefereeID    int             `json:"referee_id"`
	SeasonID     *int            `json:"season_id"`
	TournamentID *int            `json:"tournament_id"`
	Players      []GameSeatInput `json:"players"`
}

type GameSeatInput struct {
	PlayerID  int               `json:"player_id"`
	Role      models.PlayerRole `json:"role"`
	SeatIndex int               `json:"seat_index"`
}

type GameService interface {
	GenerateGames(ctx context.Context, currentUser *models.User, input GenerateGamesInput) ([]*models.Game, error)
	// CreateGame создаёт одиночную игру вручную: сезонную или турнирную,
	// ровно с одной из двух привязок.
	CreateGame(ctx context.Context, currentUser *models.User, input CreateGameInput) (*models.Game, error)
	GetGameByID(ctx context.Context, id int) (*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Game, error)
	ListBySeason(ctx context.Context, seasonID int) ([]*models.Game, error)
	UpdateGameResults(ctx context.Context, currentUser *models.User, gameID int, input UpdateGameResultInput) (*models.Game, error)
}

type gameService struct {
	db             *sql.DB
	gameRepo       repositories.GameRepository
	userRepo       repositories.UserRepository
	tournamentRepo repositories.TournamentRepository
	clubRepo       repositories.ClubRepository
	seasonRepo     repositories.SeasonRepository
	generator      scheduling.ScheduleGenerator
	hub            *live.Hub

	// Генерации одного турнира сериализуются: расчёт выполнимости опирается
	// на согласованное состояние занятых мест в памяти.
	genLocks sync.Map // tournamentID -> *sync.Mutex
}

func NewGameService(
	db *sql.DB,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	tournamentRepo repositories.TournamentRepository,
	clubRepo repositories.ClubRepository,
	seasonRepo repositories.SeasonRepository,
	generator scheduling.ScheduleGenerator,
	hub *live.Hub,
) GameService {
	return &gameService{
		db:             db,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		clubRepo:       clubRepo,
		seasonRepo:     seasonRepo,
		generator:      generator,
		hub:            hub,
	}
}

func (s *gameService) GenerateGames(ctx context.Context, currentUser *models.User, input GenerateGamesInput) ([]*models.Game, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, input.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament %d: %w", input.TournamentID, err)
	}

	club, err := s.clubRepo.GetByID(ctx, tournament.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, fmt.Errorf("failed to load club %d: %w", tournament.ClubID, err)
	}

	if !canManageClubGames(currentUser, club) {
		return nil, ErrForbiddenOperation
	}

	lock := s.tournamentLock(tournament.ID)
	lock.Lock()
	defer lock.Unlock()

	players, err := s.resolveRoster(ctx, input.PlayerNicknames)
	if err != nil {
		return nil, err
	}

	schedule, err := s.generator.GenerateSchedule(ctx, scheduling.GenerateScheduleParams{
		TablesCount:    input.TablesCount,
		RoundsCount:    input.RoundsCount,
		PlayersPerGame: input.PlayersPerGame,
		TotalGames:     input.TotalGames,
		Players:        players,
	})
	if err != nil {
		return nil, mapSchedulingError(err)
	}

	// TotalGames — подсказка вызывающего; расхождение не считается ошибкой.
	if input.TotalGames > 0 && input.TotalGames != len(schedule.Assignments) {
		log.Printf("generate games: total_games hint %d differs from generated %d (tournament %d)",
			input.TotalGames, len(schedule.Assignments), tournament.ID)
	}

	games, err := s.materializeSchedule(ctx, tournament, schedule)
	if err != nil {
		return nil, err
	}

	s.hub.NotifyTournament(tournament.ID, live.EventGamesGenerated, games)

	return games, nil
}

// resolveRoster находит или лениво создаёт игрока на каждый никнейм.
// Создание идемпотентно и безопасно при гонках: upsert по уникальному nickname.
func (s *gameService) resolveRoster(ctx context.Context, nicknames []string) ([]*models.User, error) {
	players := make([]*models.User, 0, len(nicknames))
	seen := make(map[string]bool, len(nicknames))

	for _, nickname := range nicknames {
		if nickname == "" {
			return nil, fmt.Errorf("%w: empty nickname in roster", ErrValidationFailed)
		}
		if seen[nickname] {
			return nil, fmt.Errorf("%w: duplicate nickname %q in roster", ErrValidationFailed, nickname)
		}
		seen[nickname] = true

		// Существующие игроки идут без bcrypt: хеш-заглушка нужна только
		// при создании, а на ростер в 30 человек это десятки вызовов.
		if existing, err := s.userRepo.GetByNickname(ctx, nickname); err == nil {
			players = append(players, existing)
			continue
		} else if !errors.Is(err, repositories.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up player %q: %w", nickname, err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(nickname), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash placeholder password: %w", err)
		}

		player := &models.User{
			Email:        fmt.Sprintf("%s@%s", nickname, placeholderEmailDomain),
			PasswordHash: string(hash),
			Nickname:     nickname,
			Role:         models.RolePlayer,
			EloRating:    models.DefaultEloRating,
		}
		if err := s.userRepo.UpsertByNickname(ctx, player); err != nil {
			return nil, fmt.Errorf("failed to resolve player %q: %w", nickname, err)
		}
		players = append(players, player)
	}

	return players, nil
}

// materializeSchedule превращает готовую рассадку в строки games/game_players.
// Вся генерация пишется одной транзакцией: наружу не видна ни одна
// частично рассаженная игра.
func (s *gameService) materializeSchedule(ctx context.Context, tournament *models.Tournament, schedule *scheduling.Schedule) ([]*models.Game, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("materialize: rollback failed for tournament %d: %v (original error: %v)", tournament.ID, rbErr, txErr)
			}
		}
	}()

	description := fmt.Sprintf("Generated schedule for tournament %q", tournament.Name)
	games := make([]*models.Game, 0, len(schedule.Assignments))

	for i, assignment := range schedule.Assignments {
		game := &models.Game{
			Name:         fmt.Sprintf("Game #%d", i+1),
			Description:  &description,
			ClubID:       tournament.ClubID,
			RefereeID:    tournament.RefereeID,
			TournamentID: &tournament.ID,
			TotalPlayers: len(assignment.Seats),
		}
		if txErr = s.gameRepo.Create(ctx, tx, game); txErr != nil {
			return nil, fmt.Errorf("failed to persist game for round %d table %d: %w", assignment.Round, assignment.Table, txErr)
		}

		gamePlayers := make([]*models.GamePlayer, 0, len(assignment.Seats))
		for seatIndex, player := range assignment.Seats {
			gamePlayers = append(gamePlayers, &models.GamePlayer{
				GameID:    game.ID,
				PlayerID:  player.ID,
				Role:      models.RoleCitizen, // роли раздаются позже, при вводе результатов
				Status:    models.PlayerAlive,
				SeatIndex: seatIndex,
			})
		}
		if txErr = s.gameRepo.CreatePlayers(ctx, tx, gamePlayers); txErr != nil {
			return nil, fmt.Errorf("failed to persist seating for round %d table %d: %w", assignment.Round, assignment.Table, txErr)
		}

		game.Players = make([]models.GamePlayer, len(gamePlayers))
		for j, gp := range gamePlayers {
			gp.Player = assignment.Seats[j]
			game.Players[j] = *gp
		}
		games = append(games, game)
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit generated games: %w", txErr)
	}

	return games, nil
}

func (s *gameService) CreateGame(ctx context.Context, currentUser *models.User, input CreateGameInput) (*models.Game, error) {
	if input.SeasonID == nil && input.TournamentID == nil {
		return nil, ErrGameScopeRequired
	}
	if input.SeasonID != nil && input.TournamentID != nil {
		return nil, ErrGameScopeAmbiguous
	}

	club, err := s.clubRepo.GetByID(ctx, input.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	if !canManageClubGames(currentUser, club) {
		return nil, ErrForbiddenOperation
	}

	if input.SeasonID != nil {
		season, err := s.seasonRepo.GetByID(ctx, *input.SeasonID)
		if err != nil {
			if errors.Is(err, repositories.ErrSeasonNotFound) {
				return nil, ErrSeasonNotFound
			}
			return nil, err
		}
		if season.EndedAt != nil {
			return nil, ErrSeasonAlreadyClosed
		}
	}
	if input.TournamentID != nil {
		if _, err := s.tournamentRepo.GetByID(ctx, *input.TournamentID); err != nil {
			if errors.Is(err, repositories.ErrTournamentNotFound) {
				return nil, ErrTournamentNotFound
			}
			return nil, err
		}
	}

	seatsTaken := make(map[int]bool, len(input.Players))
	playersSeen := make(map[int]bool, len(input.Players))
	for _, seat := range input.Players {
		if seatsTaken[seat.SeatIndex] {
			return nil, fmt.Errorf("%w: seat index %d assigned twice", ErrValidationFailed, seat.SeatIndex)
		}
		if playersSeen[seat.PlayerID] {
			return nil, fmt.Errorf("%w: player %d seated twice", ErrValidationFailed, seat.PlayerID)
		}
		seatsTaken[seat.SeatIndex] = true
		playersSeen[seat.PlayerID] = true
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("create game: rollback failed: %v", rbErr)
			}
		}
	}()

	game := &models.Game{
		Name:         input.Name,
		Description:  input.Description,
		ClubID:       input.ClubID,
		RefereeID:    input.RefereeID,
		SeasonID:     input.SeasonID,
		TournamentID: input.TournamentID,
		TotalPlayers: len(input.Players),
	}
	if txErr = s.gameRepo.Create(ctx, tx, game); txErr != nil {
		if errors.Is(txErr, repositories.ErrGameScopeInvalid) {
			return nil, ErrGameScopeAmbiguous
		}
		return nil, txErr
	}

	gamePlayers := make([]*models.GamePlayer, 0, len(input.Players))
	for _, seat := range input.Players {
		gamePlayers = append(gamePlayers, &models.GamePlayer{
			GameID:    game.ID,
			PlayerID:  seat.PlayerID,
			Role:      seat.Role,
			Status:    models.PlayerAlive,
			SeatIndex: seat.SeatIndex,
		})
	}
	if txErr = s.gameRepo.CreatePlayers(ctx, tx, gamePlayers); txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit game: %w", txErr)
	}

	return s.GetGameByID(ctx, game.ID)
}

func (s *gameService) GetGameByID(ctx context.Context, id int) (*models.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func (s *gameService) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Game, error) {
	games, err := s.gameRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for tournament %d: %w", tournamentID, err)
	}
	return games, nil
}

func (s *gameService) ListBySeason(ctx context.Context, seasonID int) ([]*models.Game, error) {
	games, err := s.gameRepo.ListBySeason(ctx, seasonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list games for season %d: %w", seasonID, err)
	}
	return games, nil
}

// UpdateGameResults вносит результат игры и судейские оценки игроков.
func (s *gameService) UpdateGameResults(ctx context.Context, currentUser *models.User, gameID int, input UpdateGameResultInput) (*models.Game, error) {
	game, err := s.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, game.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return nil, ErrClubNotFound
		}
		return nil, err
	}
	if !canManageClubGames(currentUser, club) {
		return nil, ErrForbiddenOperation
	}

	seated := make(map[int]bool, len(game.Players))
	for i := range game.Players {
		seated[game.Players[i].PlayerID] = true
	}
	for _, pr := range input.PlayerResults {
		if !seated[pr.PlayerID] {
			return nil, fmt.Errorf("%w: player %d is not seated in game %d", ErrValidationFailed, pr.PlayerID, gameID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("update results: rollback failed for game %d: %v", gameID, rbErr)
			}
		}
	}()

	for _, pr := range input.PlayerResults {
		status := pr.Status
		if status == "" {
			status = models.PlayerAlive
		}
		gp := &models.GamePlayer{
			GameID:        gameID,
			PlayerID:      pr.PlayerID,
			Role:          pr.Role,
			Status:        status,
			Points:        pr.Points,
			BonusPoints:   pr.BonusPoints,
			PenaltyPoints: pr.PenaltyPoints,
			LH:            pr.LH,
			CI:            pr.CI,
		}
		if txErr = s.gameRepo.UpdatePlayerScore(ctx, tx, gp); txErr != nil {
			if errors.Is(txErr, repositories.ErrGamePlayerNotFound) {
				txErr = fmt.Errorf("%w: player %d in game %d", ErrNotFound, pr.PlayerID, gameID)
			}
			return nil, txErr
		}
	}

	if txErr = s.gameRepo.UpdateResult(ctx, tx, gameID, input.Result); txErr != nil {
		return nil, txErr
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit game results: %w", txErr)
	}

	updated, err := s.GetGameByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	if game.TournamentID != nil {
		s.hub.NotifyTournament(*game.TournamentID, live.EventGameResultUpdated, updated)
	}

	return updated, nil
}

func (s *gameService) tournamentLock(tournamentID int) *sync.Mutex {
	lock, _ := s.genLocks.LoadOrStore(tournamentID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// canManageClubGames: системный админ, владелец клуба или судья.
func canManageClubGames(user *models.User, club *models.Club) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleAdmin ||
		user.Role == models.RoleJudge ||
		club.OwnerID == user.ID
}

// mapSchedulingError переводит типизированные ошибки планировщика в
// сервисную таксономию, сохраняя детали через обёртывание.
func mapSchedulingError(err error) error {
	var rosterErr *scheduling.RosterSizeError
	if errors.As(err, &rosterErr) {
		return fmt.Errorf("%w: %v", ErrInsufficientPlayers, rosterErr)
	}
	var paramErr *scheduling.ParamError
	if errors.As(err, &paramErr) {
		return fmt.Errorf("%w: %v", ErrValidationFailed, paramErr)
	}
	var infeasible *scheduling.InfeasibilityError
	if errors.As(err, &infeasible) {
		return fmt.Errorf("%w: %v", ErrSeatingInfeasible, infeasible)
	}
	return err
}
