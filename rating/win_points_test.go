package rating

import (
	"testing"

	"github.com/mafspace/mafia-backend/models"
)

func TestWinPoints(t *testing.T) {
	tests := []struct {
		role   models.PlayerRole
		result models.GameResult
		points int
	}{
		{models.RoleCitizen, models.CitizenWin, 1},
		{models.RoleDoctor, models.CitizenWin, 1},
		{models.RoleBeauty, models.CitizenWin, 1},
		{models.RoleDetective, models.CitizenWin, 1},
		{models.RoleMafia, models.CitizenWin, 0},
		{models.RoleDon, models.CitizenWin, 0},
		{models.RoleManiac, models.CitizenWin, 0},

		{models.RoleMafia, models.MafiaWin, 1},
		{models.RoleDon, models.MafiaWin, 1},
		{models.RoleCitizen, models.MafiaWin, 0},
		{models.RoleDetective, models.MafiaWin, 0},
		{models.RoleManiac, models.MafiaWin, 0},

		{models.RoleManiac, models.ManiacWin, 2},
		{models.RoleCitizen, models.ManiacWin, 0},
		{models.RoleMafia, models.ManiacWin, 0},

		{models.RoleCitizen, models.Draw, 0},
		{models.RoleMafia, models.Draw, 0},
		{models.RoleManiac, models.Draw, 0},
	}

	for _, tt := range tests {
		if got := WinPoints(tt.role, tt.result); got != tt.points {
			t.Errorf("WinPoints(%s, %s) = %d, want %d", tt.role, tt.result, got, tt.points)
		}
		if got := IsWinner(tt.role, tt.result); got != (tt.points > 0) {
			t.Errorf("IsWinner(%s, %s) = %v, want %v", tt.role, tt.result, got, tt.points > 0)
		}
	}
}

func TestWinningRoles(t *testing.T) {
	citizenSide := WinningRoles(models.CitizenWin)
	if len(citizenSide) != 4 {
		t.Errorf("expected 4 winning roles for CITIZEN_WIN, got %d", len(citizenSide))
	}
	mafiaSide := WinningRoles(models.MafiaWin)
	if len(mafiaSide) != 2 {
		t.Errorf("expected 2 winning roles for MAFIA_WIN, got %d", len(mafiaSide))
	}
	if roles := WinningRoles(models.Draw); len(roles) != 0 {
		t.Errorf("expected no winning roles for DRAW, got %v", roles)
	}
}
