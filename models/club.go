package models

import "time"

type ClubRequestStatus string

const (
	ClubRequestPending  ClubRequestStatus = "PENDING"
	ClubRequestApproved ClubRequestStatus = "APPROVED"
	ClubRequestRejected ClubRequestStatus = "REJECTED"
)

// Club представляет мафия-клуб.
type Club struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	OwnerID     int       `json:"owner_id" db:"owner_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`

	Owner   *User  `json:"owner,omitempty" db:"-"`
	Members []User `json:"members,omitempty" db:"-"`
}

// ClubRequest — заявка пользователя на вступление в клуб.
type ClubRequest struct {
	ID        int               `json:"id" db:"id"`
	ClubID    int               `json:"club_id" db:"club_id"`
	UserID    int               `json:"user_id" db:"user_id"`
	Status    ClubRequestStatus `json:"status" db:"status"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`

	User *User `json:"user,omitempty" db:"-"`
}
