package models

// RoleStats — накопленная статистика пользователя по одной игровой роли.
type RoleStats struct {
	ID          int        `json:"id" db:"id"`
	UserID      int        `json:"user_id" db:"user_id"`
	Role        PlayerRole `json:"role" db:"role"`
	GamesPlayed int        `json:"games_played" db:"games_played"`
	GamesWon    int        `json:"games_won" db:"games_won"`
}
