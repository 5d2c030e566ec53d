// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"time"

	"agora/internal/models"

	"gorm.io/gorm"
)

// ImageRepoStub is an in-memory image repository implementation for tests.
type ImageRepoStub struct {
	items  map[string]*models.Image
	nextID uint
}

// NewImageRepoStub creates an in-memory image repository stub for tests.
func NewImageRepoStub() *ImageRepoStub {
	return &ImageRepoStub{items: make(map[string]*models.Image), nextID: 1}
}

// Create stores image metadata in-memory.
func (s *ImageRepoStub) Create(_ context.Context, img *models.Image) error {
	if img.ID == 0 {
		img.ID = s.nextID
		s.nextID++
	}
	now := time.Now().UTC()
	img.CreatedAt = now
	img.UpdatedAt = now
	s.items[img.Hash] = img
	return nil
}

// GetByHash fetches an image by content hash.
func (s *ImageRepoStub) GetByHash(_ context.Context, hash string) (*models.Image, error) {
	item, ok := s.items[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

// GetByHashWithVariants fetches an image and its variants by hash.
func (s *ImageRepoStub) GetByHashWithVariants(ctx context.Context, hash string) (*models.Image, error) {
	return s.GetByHash(ctx, hash)
}

// UpsertVariant upserts a variant into the stored image record.
func (s *ImageRepoStub) UpsertVariant(_ context.Context, v *models.ImageVariant) error {
	for _, item := range s.items {
		if item.ID == v.ImageID {
			for i := range item.Variants {
				if item.Variants[i].SizePx == v.SizePx && item.Variants[i].Format == v.Format {
					item.Variants[i] = *v
					return nil
				}
			}
			item.Variants = append(item.Variants, *v)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// GetVariantsByImageID returns variants for a given image ID.
func (s *ImageRepoStub) GetVariantsByImageID(_ context.Context, imageID uint) ([]models.ImageVariant, error) {
	for _, item := range s.items {
		if item.ID == imageID {
			return item.Variants, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
