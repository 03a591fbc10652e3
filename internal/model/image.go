package model

import (
	"time"

	"github.com/google/uuid"
)

// Image is a user's profile picture. A user has at most one at any time.
type Image struct {
	ID         uuid.UUID `db:"id" json:"id"`
	FileName   string    `db:"file_name" json:"file_name"`
	URL        string    `db:"url" json:"url"`
	UploadDate time.Time `db:"upload_date" json:"upload_date"`
	UserID     uuid.UUID `db:"user_id" json:"user_id"`
}
