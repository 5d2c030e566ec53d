package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a comment on a post. A comment may reply to a
// top-level comment via ParentID; replies cannot themselves be replied to.
type Comment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	PostID      uint           `gorm:"not null;index" json:"post_id"`
	Post        *Post          `gorm:"foreignKey:PostID" json:"-"`
	UserID      uint           `gorm:"not null;index" json:"-"`
	User        User           `gorm:"foreignKey:UserID" json:"-"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool           `gorm:"default:true" json:"is_anonymous"`
	ParentID    *uint          `gorm:"index" json:"parent_id,omitempty"`
	Parent      *Comment       `gorm:"foreignKey:ParentID" json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
