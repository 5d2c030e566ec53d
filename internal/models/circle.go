package models

import "time"

// Circle represents a community space users can join and post into.
type Circle struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	Name            string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Description     string `gorm:"type:text" json:"description"`
	IsPrivate       bool   `gorm:"default:false" json:"is_private"`
	CreatedByUserID *uint  `json:"created_by_user_id"`
	CreatedByUser   *User  `gorm:"foreignKey:CreatedByUserID" json:"created_by_user,omitempty"`
	// MemberCount is not persisted; computed at query time
	MemberCount int64 `gorm:"->" json:"member_count"`
	// ViewerRole is the requesting user's role in this circle, if any (computed)
	ViewerRole CircleRole `gorm:"-" json:"viewer_role,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Circle) TableName() string {
	return "circles"
}
