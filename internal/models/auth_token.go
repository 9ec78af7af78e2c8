package models

import "time"

// AuthToken is the Booking Service credential persisted by the gateway.
type AuthToken struct {
	Name      string    `gorm:"primaryKey;size:64" json:"name"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
