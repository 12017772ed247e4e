package models

// PlayerRole представляет игровую роль за столом.
type PlayerRole string

const (
	RoleCitizen   PlayerRole = "CITIZEN"
	RoleMafia     PlayerRole = "MAFIA"
	RoleDon       PlayerRole = "DON"
	RoleDoctor    PlayerRole = "DOCTOR"
	RoleDetective PlayerRole = "DETECTIVE"
	RoleBeauty    PlayerRole = "BEAUTY"
	RoleManiac    PlayerRole = "MANIAC"
)

// AllPlayerRoles перечисляет роли в стабильном порядке (для инициализации статистики).
var AllPlayerRoles = []PlayerRole{
	RoleCitizen,
	RoleMafia,
	RoleDon,
	RoleDoctor,
	RoleDetective,
	RoleBeauty,
	RoleManiac,
}

type PlayerStatus string

const (
	PlayerAlive  PlayerStatus = "ALIVE"
	PlayerDead   PlayerStatus = "DEAD"
	PlayerKicked PlayerStatus = "KICKED"
)

// GamePlayer — участие игрока в конкретной игре.
// Игрок встречается в игре не более одного раза и занимает ровно одно место.
type GamePlayer struct {
	ID       int          `json:"id" db:"id"`
	GameID   int          `json:"game_id" db:"game_id"`
	PlayerID int          `json:"player_id" db:"player_id"`
	Role     PlayerRole   `json:"role" db:"role"`
	Status   PlayerStatus `json:"status" db:"status"`
	// Номер места за столом, 0..totalPlayers-1.
	SeatIndex     int `json:"seat_index" db:"seat_index"`
	Points        int `json:"points" db:"points"`
	BonusPoints   int `json:"bonus_points" db:"bonus_points"`
	PenaltyPoints int `json:"penalty_points" db:"penalty_points"`
	// Дополнительные судейские компоненты оценки (лучший ход, компенсация).
	LH int `json:"lh" db:"lh"`
	CI int `json:"ci" db:"ci"`

	Player *User `json:"player,omitempty" db:"-"`
}

// CombinedPoints — суммарные очки игрока за игру для рейтинга.
func (gp *GamePlayer) CombinedPoints() int {
	return gp.Points + gp.LH + gp.CI + gp.BonusPoints - gp.PenaltyPoints
}
