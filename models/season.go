package models

import "time"

// Season — сезон клуба, объединяет обычные (нетурнирные) игры.
type Season struct {
	ID        int        `json:"id" db:"id"`
	ClubID    int        `json:"club_id" db:"club_id"`
	Name      string     `json:"name" db:"name"`
	RefereeID int        `json:"referee_id" db:"referee_id"`
	StartedAt time.Time  `json:"started_at" db:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`

	Referee *User  `json:"referee,omitempty" db:"-"`
	Games   []Game `json:"games,omitempty" db:"-"`
}
