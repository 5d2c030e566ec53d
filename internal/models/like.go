package models

import "time"

// Like records that a user liked a post. Likes are toggled: unliking
// hard-deletes the row, so there is no soft delete column here.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"-"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
