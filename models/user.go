package models

import "time"

// UserRole представляет роли пользователей, соответствующие ENUM в БД.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleJudge  UserRole = "JUDGE"
	RolePlayer UserRole = "PLAYER"
)

const DefaultEloRating = 1000

// User представляет аккаунт игрока или судьи.
type User struct {
	ID           int      `json:"id" db:"id"`
	Email        string   `json:"email" db:"email"`
	PasswordHash string   `json:"-" db:"password_hash"`
	Nickname     string   `json:"nickname" db:"nickname"`
	Confirmed    bool     `json:"confirmed" db:"confirmed"`
	Role         UserRole `json:"role" db:"role"`
	ClubID       *int     `json:"club_id,omitempty" db:"club_id"`

	// Рейтинг и накопленная статистика, обновляются при завершении турниров.
	EloRating        int `json:"elo_rating" db:"elo_rating"`
	TotalGames       int `json:"total_games" db:"total_games"`
	TotalWins        int `json:"total_wins" db:"total_wins"`
	TotalPoints      int `json:"total_points" db:"total_points"`
	TotalBonusPoints int `json:"total_bonus_points" db:"total_bonus_points"`

	AvatarKey *string `json:"-" db:"avatar_key"`
	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Club      *Club       `json:"club,omitempty" db:"-"`
	RoleStats []RoleStats `json:"role_stats,omitempty" db:"-"`
}
