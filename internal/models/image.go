package models

import "time"

// Image is an uploaded image stored content-addressed by SHA-256 hash.
// The master file is re-encoded on upload and variants are generated
// per size and format.
type Image struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Hash             string         `gorm:"size:64;not null;uniqueIndex" json:"hash"`
	UploadedByUserID uint           `gorm:"not null;index" json:"uploaded_by_user_id"`
	CropMode         string         `gorm:"size:20" json:"crop_mode"`
	Width            int            `json:"width"`
	Height           int            `json:"height"`
	Variants         []ImageVariant `gorm:"foreignKey:ImageID" json:"variants,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ImageVariant is one rendition of an image at a given size and format.
type ImageVariant struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	ImageID uint   `gorm:"not null;uniqueIndex:idx_image_size_format" json:"image_id"`
	SizePx  int    `gorm:"not null;uniqueIndex:idx_image_size_format" json:"size_px"`
	Format  string `gorm:"size:10;not null;uniqueIndex:idx_image_size_format" json:"format"`
	Path    string `gorm:"not null" json:"path"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Bytes   int64  `json:"bytes"`
}
