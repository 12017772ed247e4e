package models

import "time"

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "UPCOMING"
	TournamentActive    TournamentStatus = "ACTIVE"
	TournamentCompleted TournamentStatus = "COMPLETED"
	TournamentCancelled TournamentStatus = "CANCELLED"
)

type TournamentType string

const (
	TournamentDefault TournamentType = "DEFAULT"
	TournamentElo     TournamentType = "ELO"
)

// Tournament представляет турнир клуба.
type Tournament struct {
	ID          int              `json:"id" db:"id"`
	ClubID      int              `json:"club_id" db:"club_id"`
	Name        string           `json:"name" db:"name"`
	Description *string          `json:"description,omitempty" db:"description"`
	RefereeID   int              `json:"referee_id" db:"referee_id"`
	Date        time.Time        `json:"date" db:"date"`
	Status      TournamentStatus `json:"status" db:"status"`
	Type        TournamentType   `json:"type" db:"type"`
	// Звёздность от 1 до 6, задаётся только для ELO-турниров.
	Stars     *int      `json:"stars,omitempty" db:"stars"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	Club    *Club  `json:"club,omitempty" db:"-"`
	Referee *User  `json:"referee,omitempty" db:"-"`
	Games   []Game `json:"games,omitempty" db:"-"`
}

// CanTransitionTo проверяет допустимость перехода статуса.
// COMPLETED и CANCELLED — терминальные.
func (t *Tournament) CanTransitionTo(next TournamentStatus) bool {
	switch t.Status {
	case TournamentUpcoming:
		return next == TournamentActive || next == TournamentCancelled
	case TournamentActive:
		return next == TournamentCompleted || next == TournamentCancelled
	default:
		return false
	}
}
