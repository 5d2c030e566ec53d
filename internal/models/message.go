package models

import "time"

// Message is a chat message posted into a circle's message stream.
// Only active members (and staff) can read or write them.
type Message struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CircleID    uint      `gorm:"not null;index" json:"circle_id"`
	Circle      *Circle   `gorm:"foreignKey:CircleID" json:"-"`
	UserID      uint      `gorm:"not null;index" json:"-"`
	User        User      `gorm:"foreignKey:UserID" json:"-"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsAnonymous bool      `gorm:"default:true" json:"is_anonymous"`
	CreatedAt   time.Time `json:"created_at"`
}
