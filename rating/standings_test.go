package rating

import (
	"reflect"
	"testing"

	"github.com/mafspace/mafia-backend/models"
)

func gameWith(result *models.GameResult, players ...models.GamePlayer) *models.Game {
	return &models.Game{Result: result, Players: players}
}

func seat(playerID int, role models.PlayerRole, points, bonus, penalty, lh, ci int) models.GamePlayer {
	return models.GamePlayer{
		PlayerID:      playerID,
		Role:          role,
		Points:        points,
		BonusPoints:   bonus,
		PenaltyPoints: penalty,
		LH:            lh,
		CI:            ci,
		Player:        &models.User{ID: playerID, Nickname: "p", Email: "p@example.com"},
	}
}

func resultOf(r models.GameResult) *models.GameResult { return &r }

func TestBuildStandings_PointsFold(t *testing.T) {
	games := []*models.Game{
		gameWith(resultOf(models.CitizenWin),
			seat(1, models.RoleCitizen, 3, 1, 0, 1, 0), // 3+1+1 = 5
			seat(2, models.RoleMafia, 2, 0, 1, 0, 0),   // 2-1 = 1
		),
		gameWith(resultOf(models.MafiaWin),
			seat(1, models.RoleCitizen, 1, 0, 2, 0, 1), // 1-2+1 = 0
			seat(2, models.RoleMafia, 4, 2, 0, 0, 0),   // 4+2 = 6
		),
	}

	standings := BuildStandings(games)
	if len(standings) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(standings))
	}

	// Игрок 2: 1+6=7 очков, одна победа. Игрок 1: 5+0=5 очков, одна победа.
	first := standings[0]
	if first.PlayerID != 2 || first.TotalPoints != 7 || first.Rank != 1 {
		t.Errorf("unexpected leader: %+v", first)
	}
	second := standings[1]
	if second.PlayerID != 1 || second.TotalPoints != 5 || second.Rank != 2 {
		t.Errorf("unexpected runner-up: %+v", second)
	}

	for _, entry := range standings {
		if entry.GamesPlayed != 2 || entry.GamesWon != 1 {
			t.Errorf("player %d: games=%d won=%d, want 2/1", entry.PlayerID, entry.GamesPlayed, entry.GamesWon)
		}
		if entry.WinRate != 50 {
			t.Errorf("player %d: win rate %d, want 50", entry.PlayerID, entry.WinRate)
		}
	}
}

func TestBuildStandings_AveragePointsRounded(t *testing.T) {
	games := []*models.Game{
		gameWith(nil, seat(1, models.RoleCitizen, 1, 0, 0, 0, 0)),
		gameWith(nil, seat(1, models.RoleCitizen, 2, 0, 0, 0, 0)),
		gameWith(nil, seat(1, models.RoleCitizen, 2, 0, 0, 0, 0)),
	}

	standings := BuildStandings(games)
	if standings[0].AveragePoints != 1.67 {
		t.Errorf("expected average 1.67, got %v", standings[0].AveragePoints)
	}
}

func TestBuildStandings_UnfinishedGamesCountNoWins(t *testing.T) {
	games := []*models.Game{
		gameWith(nil, seat(1, models.RoleCitizen, 2, 0, 0, 0, 0)),
	}

	standings := BuildStandings(games)
	entry := standings[0]
	if entry.GamesPlayed != 1 || entry.GamesWon != 0 {
		t.Errorf("unfinished game: games=%d won=%d, want 1/0", entry.GamesPlayed, entry.GamesWon)
	}
	if entry.TotalPoints != 2 {
		t.Errorf("points still count for unfinished games, got %d", entry.TotalPoints)
	}
}

func TestBuildStandings_Deterministic(t *testing.T) {
	games := []*models.Game{
		gameWith(resultOf(models.Draw),
			seat(1, models.RoleCitizen, 2, 0, 0, 0, 0),
			seat(2, models.RoleMafia, 2, 0, 0, 0, 0),
			seat(3, models.RoleManiac, 2, 0, 0, 0, 0),
		),
	}

	first := BuildStandings(games)
	second := BuildStandings(games)
	if !reflect.DeepEqual(first, second) {
		t.Error("repeated fold over the same games produced different standings")
	}

	// При равенстве очков порядок первого появления сохраняется.
	for i, entry := range first {
		if entry.PlayerID != i+1 {
			t.Errorf("tie order broken: position %d has player %d", i, entry.PlayerID)
		}
	}
}

func TestBuildStandings_Empty(t *testing.T) {
	if standings := BuildStandings(nil); len(standings) != 0 {
		t.Errorf("expected empty standings, got %v", standings)
	}
}

func TestRoleOutcomes(t *testing.T) {
	games := []*models.Game{
		gameWith(resultOf(models.CitizenWin),
			seat(1, models.RoleDetective, 0, 0, 0, 0, 0),
			seat(2, models.RoleMafia, 0, 0, 0, 0, 0),
		),
		gameWith(resultOf(models.MafiaWin),
			seat(1, models.RoleDetective, 0, 0, 0, 0, 0),
			seat(2, models.RoleDon, 0, 0, 0, 0, 0),
		),
	}

	outcomes := RoleOutcomes(games)

	detective := outcomes[1][models.RoleDetective]
	if detective.GamesPlayed != 2 || detective.GamesWon != 1 {
		t.Errorf("detective stats: %+v", detective)
	}

	mafia := outcomes[2][models.RoleMafia]
	if mafia.GamesPlayed != 1 || mafia.GamesWon != 0 {
		t.Errorf("mafia stats: %+v", mafia)
	}
	don := outcomes[2][models.RoleDon]
	if don.GamesPlayed != 1 || don.GamesWon != 1 {
		t.Errorf("don stats: %+v", don)
	}
}
