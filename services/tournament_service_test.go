package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mafspace/mafia-backend/live"
	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
)

func intPtr(v int) *int { return &v }

type fakeRoleStatsRepository struct {
	addOutcomeCalls int
}

func (f *fakeRoleStatsRepository) AddOutcome(ctx context.Context, exec repositories.SQLExecutor, userID int, role models.PlayerRole, played, won int) error {
	f.addOutcomeCalls++
	return nil
}
func (f *fakeRoleStatsRepository) ListByUser(ctx context.Context, userID int) ([]models.RoleStats, error) {
	return nil, nil
}

func TestCompleteTournament_AppliesRatingsExactlyOnce(t *testing.T) {
	tournamentRepo := &fakeTournamentRepository{tournament: &models.Tournament{
		ID:     1,
		ClubID: 1,
		Name:   "Winter Major",
		Status: models.TournamentActive,
		Type:   models.TournamentElo,
		Stars:  intPtr(3),
	}}
	clubRepo := &fakeClubRepository{club: &models.Club{ID: 1, OwnerID: 10}}
	userRepo := newFakeUserRepository()
	roleStatsRepo := &fakeRoleStatsRepository{}

	won := models.CitizenWin
	gameRepo := &fakeGameRepository{games: []*models.Game{{
		ID:     1,
		Result: &won,
		Players: []models.GamePlayer{
			{PlayerID: 1, Role: models.RoleCitizen, Points: 3, Player: &models.User{ID: 1, EloRating: 1000}},
			{PlayerID: 2, Role: models.RoleMafia, Points: 2, Player: &models.User{ID: 2, EloRating: 1100}},
			{PlayerID: 3, Role: models.RoleDon, Points: 1, Player: &models.User{ID: 3, EloRating: 900}},
		},
	}}}

	db, begins := newStubDB(t)
	svc := &tournamentService{
		db:             db,
		tournamentRepo: tournamentRepo,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		clubRepo:       clubRepo,
		roleStatsRepo:  roleStatsRepo,
		hub:            live.NewHub(),
	}

	admin := &models.User{ID: 99, Role: models.RoleAdmin}

	result, err := svc.CompleteTournament(context.Background(), admin, 1)
	if err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if result.Tournament.Status != models.TournamentCompleted {
		t.Errorf("tournament status %q, want %q", result.Tournament.Status, models.TournamentCompleted)
	}
	if len(result.Standings) != 3 {
		t.Fatalf("standings have %d entries, want 3", len(result.Standings))
	}
	if userRepo.addTotalsCalls != 3 {
		t.Errorf("totals applied %d times, want 3", userRepo.addTotalsCalls)
	}
	if roleStatsRepo.addOutcomeCalls != 3 {
		t.Errorf("role outcomes applied %d times, want 3", roleStatsRepo.addOutcomeCalls)
	}
	// 3 звезды, 3 участника: базовая дельта 30, победителю +30,
	// середине 0, последнему −30.
	wantElo := map[int]int{1: 1030, 2: 1100, 3: 870}
	for playerID, want := range wantElo {
		if got := userRepo.eloUpdates[playerID]; got != want {
			t.Errorf("player %d elo %d, want %d", playerID, got, want)
		}
	}

	// Повторное завершение: условный переход не находит турнир в ACTIVE,
	// и ни одно начисление не выполняется второй раз.
	_, err = svc.CompleteTournament(context.Background(), admin, 1)
	if !errors.Is(err, ErrTournamentStatusConflict) {
		t.Fatalf("second completion: got %v, want %v", err, ErrTournamentStatusConflict)
	}
	if tournamentRepo.completeCalls != 2 {
		t.Errorf("conditional transition consulted %d times, want 2", tournamentRepo.completeCalls)
	}
	if userRepo.addTotalsCalls != 3 || roleStatsRepo.addOutcomeCalls != 3 || len(userRepo.eloUpdates) != 3 {
		t.Errorf("ratings applied more than once: totals=%d outcomes=%d elo=%d",
			userRepo.addTotalsCalls, roleStatsRepo.addOutcomeCalls, len(userRepo.eloUpdates))
	}
	if *begins != 2 {
		t.Errorf("transactions opened %d times, want 2 (second rolls back)", *begins)
	}
}

func TestValidateTournamentStars(t *testing.T) {
	tests := []struct {
		name       string
		tournament models.Tournament
		wantErr    error
	}{
		{"default without stars", models.Tournament{Type: models.TournamentDefault}, nil},
		{"default with valid stars", models.Tournament{Type: models.TournamentDefault, Stars: intPtr(3)}, nil},
		{"default with invalid stars", models.Tournament{Type: models.TournamentDefault, Stars: intPtr(9)}, ErrStarsOutOfRange},
		{"elo without stars", models.Tournament{Type: models.TournamentElo}, ErrStarsRequired},
		{"elo with min stars", models.Tournament{Type: models.TournamentElo, Stars: intPtr(1)}, nil},
		{"elo with max stars", models.Tournament{Type: models.TournamentElo, Stars: intPtr(6)}, nil},
		{"elo with zero stars", models.Tournament{Type: models.TournamentElo, Stars: intPtr(0)}, ErrStarsOutOfRange},
		{"elo with stars above max", models.Tournament{Type: models.TournamentElo, Stars: intPtr(7)}, ErrStarsOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTournamentStars(&tt.tournament)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlayerBonusTotals(t *testing.T) {
	games := []*models.Game{
		{Players: []models.GamePlayer{
			{PlayerID: 1, BonusPoints: 2},
			{PlayerID: 2, BonusPoints: 0},
		}},
		{Players: []models.GamePlayer{
			{PlayerID: 1, BonusPoints: 1},
			{PlayerID: 3, BonusPoints: 3},
		}},
	}

	totals := playerBonusTotals(games)

	if totals[1] != 3 {
		t.Errorf("player 1 bonus total %d, want 3", totals[1])
	}
	if totals[2] != 0 {
		t.Errorf("player 2 bonus total %d, want 0", totals[2])
	}
	if totals[3] != 3 {
		t.Errorf("player 3 bonus total %d, want 3", totals[3])
	}
}
