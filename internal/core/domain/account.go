package domain

import "time"

type AccountID string

// Account is a service account used to bootstrap sessions.
type Account struct {
	ID           AccountID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
