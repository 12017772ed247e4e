package models

import "time"

// GameResult представляет исход игры.
type GameResult string

const (
	MafiaWin   GameResult = "MAFIA_WIN"
	CitizenWin GameResult = "CITIZEN_WIN"
	ManiacWin  GameResult = "MANIAC_WIN"
	Draw       GameResult = "DRAW"
)

// Game — одна сыгранная (или запланированная) партия.
// Игра принадлежит либо сезону, либо турниру, но не обоим сразу.
type Game struct {
	ID           int        `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Description  *string    `json:"description,omitempty" db:"description"`
	ClubID       int        `json:"club_id" db:"club_id"`
	RefereeID    int        `json:"referee_id" db:"referee_id"`
	SeasonID     *int       `json:"season_id,omitempty" db:"season_id"`
	TournamentID *int       `json:"tournament_id,omitempty" db:"tournament_id"`
	Result       *GameResult `json:"result,omitempty" db:"result"`
	TotalPlayers int        `json:"total_players" db:"total_players"`
	MafiaCount   int        `json:"mafia_count" db:"mafia_count"`
	CitizenCount int        `json:"citizen_count" db:"citizen_count"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`

	Players []GamePlayer `json:"players,omitempty" db:"-"`
}
