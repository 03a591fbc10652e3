package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Aquabet/webapp/internal/model"
)

type ImageRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Image, error)
	Replace(ctx context.Context, image *model.Image) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type postgresImageRepository struct {
	db *sqlx.DB
}

func NewPostgresImageRepository(db *sqlx.DB) ImageRepository {
	return &postgresImageRepository{db: db}
}

func (r *postgresImageRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Image, error) {
	var image model.Image
	query := `SELECT id, file_name, url, upload_date, user_id FROM images WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &image, query, userID); err != nil {
		return nil, err
	}
	return &image, nil
}

// Replace removes any existing row for the image's user and inserts the new
// one inside a single transaction, keeping the one-image-per-user invariant.
func (r *postgresImageRepository) Replace(ctx context.Context, image *model.Image) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM images WHERE user_id = $1`, image.UserID); err != nil {
		tx.Rollback()
		return err
	}

	query := `
		INSERT INTO images (id, file_name, url, upload_date, user_id)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.ExecContext(ctx, query, image.ID, image.FileName, image.URL, image.UploadDate, image.UserID); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *postgresImageRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM images WHERE user_id = $1`, userID)
	return err
}
