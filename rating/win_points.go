package rating

import "github.com/mafspace/mafia-backend/models"

// Баллы за победу по ролям:
// при победе мирных — мирные, доктор, красотка и шериф получают 1 балл,
// при победе мафии — мафия и дон получают 1 балл,
// при победе маньяка — маньяк получает 2 балла.
// Ничья не приносит победных баллов никому.

type winPointsEntry struct {
	Role   models.PlayerRole
	Result models.GameResult
	Points int
}

var winPointsTable = []winPointsEntry{
	{models.RoleCitizen, models.CitizenWin, 1},
	{models.RoleDoctor, models.CitizenWin, 1},
	{models.RoleBeauty, models.CitizenWin, 1},
	{models.RoleDetective, models.CitizenWin, 1},

	{models.RoleMafia, models.MafiaWin, 1},
	{models.RoleDon, models.MafiaWin, 1},

	{models.RoleManiac, models.ManiacWin, 2},
}

// WinPoints возвращает победные баллы роли при данном исходе (0 — не победил).
func WinPoints(role models.PlayerRole, result models.GameResult) int {
	for _, e := range winPointsTable {
		if e.Role == role && e.Result == result {
			return e.Points
		}
	}
	return 0
}

// IsWinner сообщает, победила ли роль при данном исходе игры.
func IsWinner(role models.PlayerRole, result models.GameResult) bool {
	return WinPoints(role, result) > 0
}

// WinningRoles перечисляет роли-победители для исхода игры.
func WinningRoles(result models.GameResult) []models.PlayerRole {
	roles := make([]models.PlayerRole, 0, 4)
	for _, e := range winPointsTable {
		if e.Result == result {
			roles = append(roles, e.Role)
		}
	}
	return roles
}
