package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/Aquabet/webapp/internal/metrics"
	"github.com/Aquabet/webapp/internal/model"
	"github.com/Aquabet/webapp/internal/repository"
)

var ErrImageNotFound = errors.New("image not found")

// BlobStore is the object-storage surface the picture flow needs.
type BlobStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Delete(ctx context.Context, key string) error
	ObjectURL(key string) string
	KeyFromURL(url string) string
}

type PictureService interface {
	Upload(ctx context.Context, userID uuid.UUID, fileName string, body io.Reader, contentType string) (*model.Image, error)
	Get(ctx context.Context, userID uuid.UUID) (*model.Image, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}

type pictureService struct {
	images  repository.ImageRepository
	blobs   BlobStore
	metrics metrics.Emitter
}

func NewPictureService(images repository.ImageRepository, blobs BlobStore, m metrics.Emitter) PictureService {
	return &pictureService{images: images, blobs: blobs, metrics: m}
}

// Upload replaces the user's profile picture. The previous blob is removed
// before the new one goes up; a failed removal aborts the whole operation so
// no blob is silently orphaned. The row is only touched after the new blob
// exists.
func (s *pictureService) Upload(ctx context.Context, userID uuid.UUID, fileName string, body io.Reader, contentType string) (*model.Image, error) {
	existing, err := s.findByUserID(ctx, userID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	if existing != nil {
		if err := s.blobs.Delete(ctx, s.blobs.KeyFromURL(existing.URL)); err != nil {
			return nil, fmt.Errorf("delete previous picture: %w", err)
		}
	}

	key := "profile-pics/" + userID.String() + "/" + uuid.NewString() + path.Ext(fileName)
	if err := s.blobs.Put(ctx, key, body, contentType); err != nil {
		return nil, fmt.Errorf("upload picture: %w", err)
	}

	image := &model.Image{
		ID:         uuid.New(),
		FileName:   fileName,
		URL:        s.blobs.ObjectURL(key),
		UploadDate: time.Now(),
		UserID:     userID,
	}

	start := time.Now()
	err = s.images.Replace(ctx, image)
	metrics.Since(s.metrics, "db.replace_image", start)
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (s *pictureService) Get(ctx context.Context, userID uuid.UUID) (*model.Image, error) {
	image, err := s.findByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrImageNotFound
		}
		return nil, err
	}
	return image, nil
}

// Delete removes the blob first, then the row. A blob failure leaves the row
// untouched.
func (s *pictureService) Delete(ctx context.Context, userID uuid.UUID) error {
	image, err := s.findByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrImageNotFound
		}
		return err
	}

	if err := s.blobs.Delete(ctx, s.blobs.KeyFromURL(image.URL)); err != nil {
		return fmt.Errorf("delete picture blob: %w", err)
	}

	start := time.Now()
	err = s.images.Delete(ctx, userID)
	metrics.Since(s.metrics, "db.delete_image", start)
	return err
}

func (s *pictureService) findByUserID(ctx context.Context, userID uuid.UUID) (*model.Image, error) {
	start := time.Now()
	image, err := s.images.FindByUserID(ctx, userID)
	metrics.Since(s.metrics, "db.find_image", start)
	return image, err
}
