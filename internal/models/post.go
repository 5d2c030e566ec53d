package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a feed post, either global or scoped to a circle.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Title   string `gorm:"size:300;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`
	// IsAnonymous hides the author from non-staff readers.
	IsAnonymous bool    `gorm:"default:true" json:"is_anonymous"`
	ImageURL    string  `json:"image_url"`
	ImageHash   string  `gorm:"size:64;index" json:"-"`
	UserID      uint    `gorm:"not null;index" json:"-"`
	User        User    `gorm:"foreignKey:UserID" json:"-"`
	CircleID    *uint   `gorm:"index" json:"circle_id,omitempty"`
	Circle      *Circle `gorm:"foreignKey:CircleID" json:"circle,omitempty"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool           `gorm:"->" json:"liked"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
