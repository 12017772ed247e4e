package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/mafspace/mafia-backend/live"
	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/rating"
	"github.com/mafspace/mafia-backend/repositories"
)

// TournamentCompletionResult — итог завершения: финальная таблица и
// применённые изменения ELO по игрокам.
type TournamentCompletionResult struct {
	Tournament *models.Tournament    `json:"tournament"`
	Standings  []models.PlayerRating `json:"standings"`
	EloChanges []EloChange           `json:"elo_changes,omitempty"`
}

type EloChange struct {
	PlayerID int `json:"player_id"`
	Place    int `json:"place"`
	Delta    int `json:"delta"`
	NewElo   int `json:"new_elo"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, currentUser *models.User, tournament *models.Tournament) error
	GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error)
	ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error)
	UpdateTournament(ctx context.Context, currentUser *models.User, tournament *models.Tournament) error
	UpdateTournamentStatus(ctx context.Context, currentUser *models.User, id int, status models.TournamentStatus) (*models.Tournament, error)
	// CompleteTournament переводит турнир ACTIVE → COMPLETED и атомарно
	// применяет все последствия: накопительную статистику игроков, статистику
	// по ролям и, для ELO-турниров, изменение рейтинга по итоговым местам.
	CompleteTournament(ctx context.Context, currentUser *models.User, id int) (*TournamentCompletionResult, error)
	DeleteTournament(ctx context.Context, currentUser *models.User, id int) error
}

type tournamentService struct {
	db             *sql.DB
	tournamentRepo repositories.TournamentRepository
	gameRepo       repositories.GameRepository
	userRepo       repositories.UserRepository
	clubRepo       repositories.ClubRepository
	roleStatsRepo  repositories.RoleStatsRepository
	hub            *live.Hub
}

func NewTournamentService(
	db *sql.DB,
	tournamentRepo repositories.TournamentRepository,
	gameRepo repositories.GameRepository,
	userRepo repositories.UserRepository,
	clubRepo repositories.ClubRepository,
	roleStatsRepo repositories.RoleStatsRepository,
	hub *live.Hub,
) TournamentService {
	return &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		clubRepo:       clubRepo,
		roleStatsRepo:  roleStatsRepo,
		hub:            hub,
	}
}

func (s *tournamentService) CreateTournament(ctx context.Context, currentUser *models.User, tournament *models.Tournament) error {
	club, err := s.clubRepo.GetByID(ctx, tournament.ClubID)
	if err != nil {
		if errors.Is(err, repositories.ErrClubNotFound) {
			return ErrClubNotFound
		}
		return err
	}
	if !canManageClubGames(currentUser, club) {
		return ErrForbiddenOperation
	}

	if err := validateTournamentStars(tournament); err != nil {
		return err
	}

	if tournament.Status == "" {
		tournament.Status = models.TournamentUpcoming
	}
	if tournament.Type == "" {
		tournament.Type = models.TournamentDefault
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentClubInvalid):
			return ErrClubNotFound
		case errors.Is(err, repositories.ErrTournamentRefereeInvalid):
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to create tournament: %w", err)
	}
	return nil
}

func (s *tournamentService) GetTournamentByID(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return s.tournamentRepo.List(ctx, filter)
}

func (s *tournamentService) UpdateTournament(ctx context.Context, currentUser *models.User, tournament *models.Tournament) error {
	existing, err := s.GetTournamentByID(ctx, tournament.ID)
	if err != nil {
		return err
	}

	club, err := s.clubRepo.GetByID(ctx, existing.ClubID)
	if err != nil {
		return err
	}
	if !canManageClubGames(currentUser, club) {
		return ErrForbiddenOperation
	}

	// Завершённые и отменённые турниры не редактируются.
	if existing.Status == models.TournamentCompleted || existing.Status == models.TournamentCancelled {
		return ErrTournamentStatusConflict
	}

	if err := validateTournamentStars(tournament); err != nil {
		return err
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

func (s *tournamentService) UpdateTournamentStatus(ctx context.Context, currentUser *models.User, id int, status models.TournamentStatus) (*models.Tournament, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, tournament.ClubID)
	if err != nil {
		return nil, err
	}
	if !canManageClubGames(currentUser, club) {
		return nil, ErrForbiddenOperation
	}

	if !tournament.CanTransitionTo(status) {
		return nil, ErrTournamentStatusConflict
	}

	// Завершение идёт отдельным путём: со всеми начислениями в одной транзакции.
	if status == models.TournamentCompleted {
		result, err := s.CompleteTournament(ctx, currentUser, id)
		if err != nil {
			return nil, err
		}
		return result.Tournament, nil
	}

	if err := s.tournamentRepo.UpdateStatus(ctx, s.db, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	tournament.Status = status
	return tournament, nil
}

func (s *tournamentService) CompleteTournament(ctx context.Context, currentUser *models.User, id int) (*TournamentCompletionResult, error) {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	club, err := s.clubRepo.GetByID(ctx, tournament.ClubID)
	if err != nil {
		return nil, err
	}
	if !canManageClubGames(currentUser, club) {
		return nil, ErrForbiddenOperation
	}

	games, err := s.gameRepo.ListByTournament(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load tournament games: %w", err)
	}

	standings := rating.BuildStandings(games)
	outcomes := rating.RoleOutcomes(games)
	bonusTotals := playerBonusTotals(games)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	var txErr error
	defer func() {
		if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				log.Printf("complete tournament %d: rollback failed: %v", id, rbErr)
			}
		}
	}()

	// Условный переход статуса — первым оператором транзакции. Если турнир
	// уже не ACTIVE, ни одно начисление ниже не выполнится.
	if txErr = s.tournamentRepo.CompleteIfActive(ctx, tx, id); txErr != nil {
		if errors.Is(txErr, repositories.ErrTournamentNotActive) {
			return nil, ErrTournamentStatusConflict
		}
		return nil, txErr
	}

	for _, entry := range standings {
		if txErr = s.userRepo.AddTotals(ctx, tx,
			entry.PlayerID,
			entry.GamesPlayed,
			entry.GamesWon,
			entry.TotalPoints,
			bonusTotals[entry.PlayerID],
		); txErr != nil {
			return nil, fmt.Errorf("failed to update totals for player %d: %w", entry.PlayerID, txErr)
		}
	}

	for playerID, byRole := range outcomes {
		for role, st := range byRole {
			if txErr = s.roleStatsRepo.AddOutcome(ctx, tx, playerID, role, st.GamesPlayed, st.GamesWon); txErr != nil {
				return nil, fmt.Errorf("failed to update role stats for player %d: %w", playerID, txErr)
			}
		}
	}

	var eloChanges []EloChange
	if tournament.Type == models.TournamentElo && tournament.Stars != nil {
		eloChanges, txErr = s.applyEloChanges(ctx, tx, *tournament.Stars, standings, games)
		if txErr != nil {
			return nil, txErr
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return nil, fmt.Errorf("failed to commit tournament completion: %w", txErr)
	}

	tournament.Status = models.TournamentCompleted

	result := &TournamentCompletionResult{
		Tournament: tournament,
		Standings:  standings,
		EloChanges: eloChanges,
	}
	s.hub.NotifyTournament(id, live.EventTournamentCompleted, result)

	return result, nil
}

// applyEloChanges пересчитывает ELO всех участников по их итоговым местам.
// Текущий рейтинг берётся из профилей, подгруженных вместе с играми.
func (s *tournamentService) applyEloChanges(ctx context.Context, tx repositories.SQLExecutor, stars int, standings []models.PlayerRating, games []*models.Game) ([]EloChange, error) {
	currentElo := make(map[int]int, len(standings))
	for _, game := range games {
		for i := range game.Players {
			gp := &game.Players[i]
			if gp.Player != nil {
				currentElo[gp.PlayerID] = gp.Player.EloRating
			}
		}
	}

	changes := make([]EloChange, 0, len(standings))
	for _, entry := range standings {
		delta := rating.PlacementDelta(stars, len(standings), entry.Rank)
		elo, ok := currentElo[entry.PlayerID]
		if !ok {
			elo = models.DefaultEloRating
		}
		newElo := rating.ApplyDelta(elo, delta)

		if err := s.userRepo.UpdateEloRating(ctx, tx, entry.PlayerID, newElo); err != nil {
			return nil, fmt.Errorf("failed to update elo for player %d: %w", entry.PlayerID, err)
		}

		changes = append(changes, EloChange{
			PlayerID: entry.PlayerID,
			Place:    entry.Rank,
			Delta:    delta,
			NewElo:   newElo,
		})
	}
	return changes, nil
}

func (s *tournamentService) DeleteTournament(ctx context.Context, currentUser *models.User, id int) error {
	tournament, err := s.GetTournamentByID(ctx, id)
	if err != nil {
		return err
	}

	club, err := s.clubRepo.GetByID(ctx, tournament.ClubID)
	if err != nil {
		return err
	}
	if currentUser == nil || (currentUser.Role != models.RoleAdmin && club.OwnerID != currentUser.ID) {
		return ErrForbiddenOperation
	}

	if err := s.tournamentRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return ErrTournamentNotFound
		}
		return err
	}
	return nil
}

// playerBonusTotals суммирует бонусные очки по игрокам — в накопительной
// статистике профиля они учитываются отдельной колонкой.
func playerBonusTotals(games []*models.Game) map[int]int {
	totals := make(map[int]int)
	for _, game := range games {
		for i := range game.Players {
			gp := &game.Players[i]
			totals[gp.PlayerID] += gp.BonusPoints
		}
	}
	return totals
}

func validateTournamentStars(t *models.Tournament) error {
	if t.Type == models.TournamentElo {
		if t.Stars == nil {
			return ErrStarsRequired
		}
		if *t.Stars < rating.MinStars || *t.Stars > rating.MaxStars {
			return ErrStarsOutOfRange
		}
		return nil
	}
	if t.Stars != nil && (*t.Stars < rating.MinStars || *t.Stars > rating.MaxStars) {
		return ErrStarsOutOfRange
	}
	return nil
}
