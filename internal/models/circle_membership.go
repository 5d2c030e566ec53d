package models

import "time"

// CircleRole defines a member's role in a circle.
type CircleRole string

const (
	// CircleRoleCreator is the circle founder role.
	CircleRoleCreator CircleRole = "creator"
	// CircleRoleAdmin is the circle administrator role.
	CircleRoleAdmin CircleRole = "admin"
	// CircleRoleMember is the default active member role.
	CircleRoleMember CircleRole = "member"
	// CircleRolePending indicates a join request awaiting approval.
	// Pending members have no visibility or posting rights.
	CircleRolePending CircleRole = "pending"
)

// IsActive reports whether the role grants member-level access.
func (r CircleRole) IsActive() bool {
	return r == CircleRoleCreator || r == CircleRoleAdmin || r == CircleRoleMember
}

// CanApprove reports whether the role may approve pending join requests.
func (r CircleRole) CanApprove() bool {
	return r == CircleRoleCreator || r == CircleRoleAdmin
}

// CircleMembership maps users to circles and tracks role.
// A user holds at most one membership row per circle.
type CircleMembership struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	CircleID  uint       `gorm:"not null;uniqueIndex:idx_circle_user" json:"circle_id"`
	Circle    *Circle    `gorm:"foreignKey:CircleID" json:"circle,omitempty"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_circle_user" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role      CircleRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}
