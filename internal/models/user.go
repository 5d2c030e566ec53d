package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a registered account.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"size:150;not null;uniqueIndex" json:"username"`
	Email       string `gorm:"size:254;not null;uniqueIndex" json:"email"`
	Password    string `gorm:"not null" json:"-"`
	DisplayName string `gorm:"size:50" json:"display_name"`
	FirstName   string `gorm:"size:150" json:"first_name"`
	LastName    string `gorm:"size:150" json:"last_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	Avatar      string `json:"avatar"`
	Program     string `gorm:"size:100" json:"program"`
	Grade       string `gorm:"size:20" json:"grade"`
	// ShowRealName opts the user into posting under their legal name by default.
	ShowRealName bool           `gorm:"default:false" json:"show_real_name"`
	IsStaff      bool           `gorm:"default:false" json:"is_staff"`
	IsBanned     bool           `gorm:"default:false" json:"is_banned"`
	Posts        []Post         `gorm:"foreignKey:UserID" json:"posts,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// PublicName resolves the name other users should see for a non-anonymous item.
// Real-name users get "First Last" when present, otherwise the display name,
// otherwise the username.
func (u *User) PublicName() string {
	if u.ShowRealName {
		full := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
		if full != "" {
			return full
		}
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
