package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID                uuid.UUID `db:"id" json:"id"`
	Email             string    `db:"email" json:"email"`
	PasswordHash      string    `db:"password_hash" json:"-"`
	FirstName         *string   `db:"first_name" json:"first_name,omitempty"`
	LastName          *string   `db:"last_name" json:"last_name,omitempty"`
	AccountCreated    time.Time `db:"account_created" json:"account_created"`
	AccountUpdated    time.Time `db:"account_updated" json:"account_updated"`
	VerificationToken *string   `db:"verification_token" json:"-"`
}

// Verified reports whether email ownership has been confirmed. The token is
// cleared on verification, so a nil token means verified.
func (u *User) Verified() bool {
	return u.VerificationToken == nil
}
