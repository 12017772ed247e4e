package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mafspace/mafia-backend/models"
	"github.com/mafspace/mafia-backend/repositories"
	"github.com/mafspace/mafia-backend/scheduling"
)

// fakeUserRepository хранит пользователей в памяти, ключ — nickname.
// Мутации статистики считаются, чтобы проверять кратность начислений.
type fakeUserRepository struct {
	byNickname map[string]*models.User
	nextID     int

	upsertCalls    int
	addTotalsCalls int
	eloUpdates     map[int]int
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		byNickname: make(map[string]*models.User),
		nextID:     1,
		eloUpdates: make(map[int]int),
	}
}

func (f *fakeUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, ok := f.byNickname[user.Nickname]; ok {
		return repositories.ErrUserNicknameConflict
	}
	user.ID = f.nextID
	f.nextID++
	stored := *user
	f.byNickname[user.Nickname] = &stored
	return nil
}

func (f *fakeUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	for _, u := range f.byNickname {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range f.byNickname {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (f *fakeUserRepository) GetByNickname(ctx context.Context, nickname string) (*models.User, error) {
	u, ok := f.byNickname[nickname]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepository) UpsertByNickname(ctx context.Context, user *models.User) error {
	f.upsertCalls++
	if existing, ok := f.byNickname[user.Nickname]; ok {
		*user = *existing
		return nil
	}
	user.ID = f.nextID
	f.nextID++
	stored := *user
	f.byNickname[user.Nickname] = &stored
	return nil
}

func (f *fakeUserRepository) Update(ctx context.Context, user *models.User) error { return nil }
func (f *fakeUserRepository) UpdateClubID(ctx context.Context, exec repositories.SQLExecutor, userID int, clubID *int) error {
	return nil
}
func (f *fakeUserRepository) UpdateAvatarKey(ctx context.Context, userID int, avatarKey *string) error {
	return nil
}
func (f *fakeUserRepository) UpdateEloRating(ctx context.Context, exec repositories.SQLExecutor, userID, eloRating int) error {
	f.eloUpdates[userID] = eloRating
	return nil
}
func (f *fakeUserRepository) AddTotals(ctx context.Context, exec repositories.SQLExecutor, userID, games, wins, points, bonus int) error {
	f.addTotalsCalls++
	return nil
}
func (f *fakeUserRepository) ListByClub(ctx context.Context, clubID int) ([]models.User, error) {
	return nil, nil
}

type fakeTournamentRepository struct {
	tournament    *models.Tournament
	completeCalls int
}

func (f *fakeTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	return nil
}
func (f *fakeTournamentRepository) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	if f.tournament == nil || f.tournament.ID != id {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *f.tournament
	return &copied, nil
}
func (f *fakeTournamentRepository) List(ctx context.Context, filter repositories.ListTournamentsFilter) ([]models.Tournament, error) {
	return nil, nil
}
func (f *fakeTournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	return nil
}
func (f *fakeTournamentRepository) UpdateStatus(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus) error {
	f.tournament.Status = status
	return nil
}

// CompleteIfActive повторяет семантику условного UPDATE: переход проходит
// ровно один раз, все последующие вызовы видят не-ACTIVE статус.
func (f *fakeTournamentRepository) CompleteIfActive(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	f.completeCalls++
	if f.tournament == nil || f.tournament.ID != id || f.tournament.Status != models.TournamentActive {
		return repositories.ErrTournamentNotActive
	}
	f.tournament.Status = models.TournamentCompleted
	return nil
}
func (f *fakeTournamentRepository) Delete(ctx context.Context, id int) error { return nil }

type fakeGameRepository struct {
	games              []*models.Game
	createCalls        int
	createPlayersCalls int
}

func (f *fakeGameRepository) Create(ctx context.Context, exec repositories.SQLExecutor, game *models.Game) error {
	f.createCalls++
	return nil
}
func (f *fakeGameRepository) CreatePlayers(ctx context.Context, exec repositories.SQLExecutor, players []*models.GamePlayer) error {
	f.createPlayersCalls++
	return nil
}
func (f *fakeGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	return nil, repositories.ErrGameNotFound
}
func (f *fakeGameRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Game, error) {
	return f.games, nil
}
func (f *fakeGameRepository) ListBySeason(ctx context.Context, seasonID int) ([]*models.Game, error) {
	return nil, nil
}
func (f *fakeGameRepository) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, gameID int, result models.GameResult) error {
	return nil
}
func (f *fakeGameRepository) UpdatePlayerScore(ctx context.Context, exec repositories.SQLExecutor, gp *models.GamePlayer) error {
	return nil
}
func (f *fakeGameRepository) Delete(ctx context.Context, id int) error { return nil }

type fakeClubRepository struct {
	club *models.Club
}

func (f *fakeClubRepository) Create(ctx context.Context, club *models.Club) error { return nil }
func (f *fakeClubRepository) GetByID(ctx context.Context, id int) (*models.Club, error) {
	if f.club == nil || f.club.ID != id {
		return nil, repositories.ErrClubNotFound
	}
	copied := *f.club
	return &copied, nil
}
func (f *fakeClubRepository) UpdateLogoKey(ctx context.Context, clubID int, logoKey *string) error {
	return nil
}
func (f *fakeClubRepository) CreateRequest(ctx context.Context, request *models.ClubRequest) error {
	return nil
}
func (f *fakeClubRepository) GetRequestByID(ctx context.Context, id int) (*models.ClubRequest, error) {
	return nil, repositories.ErrClubRequestNotFound
}
func (f *fakeClubRepository) UpdateRequestStatus(ctx context.Context, exec repositories.SQLExecutor, requestID int, status models.ClubRequestStatus) error {
	return nil
}
func (f *fakeClubRepository) ListRequestsByClub(ctx context.Context, clubID int, status *models.ClubRequestStatus) ([]models.ClubRequest, error) {
	return nil, nil
}

// failingGenerator всегда возвращает заданную ошибку планирования.
type failingGenerator struct {
	err error
}

func (g *failingGenerator) GenerateSchedule(ctx context.Context, params scheduling.GenerateScheduleParams) (*scheduling.Schedule, error) {
	return nil, g.err
}

func (g *failingGenerator) GetName() string { return "failing" }

func TestMapSchedulingError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"roster size", &scheduling.RosterSizeError{Needed: 20, Provided: 19}, ErrInsufficientPlayers},
		{"bad param", &scheduling.ParamError{Field: "rounds_count", Value: 0, Min: 1, Max: 10}, ErrValidationFailed},
		{"infeasible", &scheduling.InfeasibilityError{Round: 3, Table: 1, Seat: 5, Attempts: 100}, ErrSeatingInfeasible},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapSchedulingError(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("mapped to %v, want sentinel %v", got, tt.want)
			}
			// Детали исходной ошибки сохраняются через обёртывание.
			if got.Error() == tt.want.Error() {
				t.Error("wrapped error lost original detail")
			}
		})
	}

	opaque := errors.New("connection reset")
	if got := mapSchedulingError(opaque); got != opaque {
		t.Errorf("unknown error should pass through, got %v", got)
	}
}

func TestResolveRoster_CreatesAndReuses(t *testing.T) {
	repo := newFakeUserRepository()
	svc := &gameService{userRepo: repo}

	players, err := svc.resolveRoster(context.Background(), []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 3 {
		t.Fatalf("expected 3 players, got %d", len(players))
	}
	for i, nickname := range []string{"alpha", "beta", "gamma"} {
		if players[i].Nickname != nickname {
			t.Errorf("roster order broken: position %d has %q", i, players[i].Nickname)
		}
		if players[i].ID == 0 {
			t.Errorf("player %q has no ID after resolve", nickname)
		}
	}

	// Повторное разрешение того же состава не создаёт дубликатов.
	again, err := svc.resolveRoster(context.Background(), []string{"alpha", "beta", "gamma"})
	if err != nil {
		t.Fatalf("unexpected error on second resolve: %v", err)
	}
	for i := range players {
		if again[i].ID != players[i].ID {
			t.Errorf("player %q resolved to a different ID on repeat: %d vs %d",
				players[i].Nickname, again[i].ID, players[i].ID)
		}
	}
	if repo.upsertCalls != 3 {
		t.Errorf("repeat resolve ran %d upserts, want 3", repo.upsertCalls)
	}
}

func TestResolveRoster_ExistingPlayersSkipUpsert(t *testing.T) {
	repo := newFakeUserRepository()
	veteran := &models.User{
		Nickname:  "veteran",
		Email:     "veteran@mafspace.ru",
		Role:      models.RolePlayer,
		EloRating: 1200,
	}
	if err := repo.Create(context.Background(), veteran); err != nil {
		t.Fatalf("failed to seed player: %v", err)
	}

	svc := &gameService{userRepo: repo}
	players, err := svc.resolveRoster(context.Background(), []string{"veteran", "rookie"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Существующий игрок проходит быстрым путём, без хеширования и upsert-а.
	if repo.upsertCalls != 1 {
		t.Errorf("upsert called %d times, want 1 (only for the new player)", repo.upsertCalls)
	}
	if players[0].ID != veteran.ID || players[0].EloRating != 1200 {
		t.Errorf("existing player not reused: %+v", players[0])
	}
	if players[1].Nickname != "rookie" || players[1].ID == 0 {
		t.Errorf("new player not created: %+v", players[1])
	}
}

func TestGenerateGames_InfeasibilityPersistsNothing(t *testing.T) {
	db, begins := newStubDB(t)
	gameRepo := &fakeGameRepository{}
	tournamentRepo := &fakeTournamentRepository{tournament: &models.Tournament{
		ID:     1,
		ClubID: 1,
		Name:   "Autumn Cup",
		Status: models.TournamentActive,
	}}
	clubRepo := &fakeClubRepository{club: &models.Club{ID: 1, OwnerID: 10}}

	userRepo := newFakeUserRepository()
	nicknames := []string{"p1", "p2", "p3", "p4", "p5", "p6"}
	for _, nickname := range nicknames {
		player := &models.User{Nickname: nickname, Role: models.RolePlayer}
		if err := userRepo.Create(context.Background(), player); err != nil {
			t.Fatalf("failed to seed player %q: %v", nickname, err)
		}
	}

	svc := &gameService{
		db:             db,
		gameRepo:       gameRepo,
		userRepo:       userRepo,
		tournamentRepo: tournamentRepo,
		clubRepo:       clubRepo,
		generator: &failingGenerator{err: &scheduling.InfeasibilityError{
			Round: 4, Table: 1, Seat: 5, Attempts: 100,
		}},
	}

	admin := &models.User{ID: 99, Role: models.RoleAdmin}
	_, err := svc.GenerateGames(context.Background(), admin, GenerateGamesInput{
		TournamentID:    1,
		TablesCount:     1,
		RoundsCount:     4,
		PlayersPerGame:  6,
		PlayerNicknames: nicknames,
	})
	if !errors.Is(err, ErrSeatingInfeasible) {
		t.Fatalf("got %v, want %v", err, ErrSeatingInfeasible)
	}

	// Провал планирования отбрасывает генерацию целиком: ни одной записи,
	// ни одной открытой транзакции.
	if gameRepo.createCalls != 0 || gameRepo.createPlayersCalls != 0 {
		t.Errorf("persistence touched on failed generation: %d games, %d seatings",
			gameRepo.createCalls, gameRepo.createPlayersCalls)
	}
	if *begins != 0 {
		t.Errorf("transaction opened on failed generation: %d", *begins)
	}
}

func TestResolveRoster_RejectsBadInput(t *testing.T) {
	svc := &gameService{userRepo: newFakeUserRepository()}

	if _, err := svc.resolveRoster(context.Background(), []string{"alpha", ""}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("empty nickname: got %v, want validation error", err)
	}
	if _, err := svc.resolveRoster(context.Background(), []string{"alpha", "alpha"}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("duplicate nickname: got %v, want validation error", err)
	}
}

func TestCanManageClubGames(t *testing.T) {
	club := &models.Club{ID: 1, OwnerID: 10}

	tests := []struct {
		name string
		user *models.User
		want bool
	}{
		{"nil user", nil, false},
		{"admin", &models.User{ID: 99, Role: models.RoleAdmin}, true},
		{"judge", &models.User{ID: 99, Role: models.RoleJudge}, true},
		{"owner", &models.User{ID: 10, Role: models.RolePlayer}, true},
		{"unrelated player", &models.User{ID: 11, Role: models.RolePlayer}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := canManageClubGames(tt.user, club); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
