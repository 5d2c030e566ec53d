package models

import "time"

// ReportTargetType identifies which table a report's TargetID points into.
type ReportTargetType string

const (
	// ReportTargetPost targets a post.
	ReportTargetPost ReportTargetType = "post"
	// ReportTargetComment targets a comment.
	ReportTargetComment ReportTargetType = "comment"
	// ReportTargetMessage targets a circle message.
	ReportTargetMessage ReportTargetType = "message"
)

// ReportStatus defines the moderation lifecycle state of a report.
type ReportStatus string

const (
	// ReportStatusPending indicates the report is awaiting review.
	ReportStatusPending ReportStatus = "pending"
	// ReportStatusResolved indicates a moderator acted on the report.
	ReportStatusResolved ReportStatus = "resolved"
	// ReportStatusDismissed indicates the report was reviewed and dropped.
	ReportStatusDismissed ReportStatus = "dismissed"
)

// DefaultReportReason is stored when a reporter submits no reason.
const DefaultReportReason = "No reason provided"

// Report is a user-submitted flag against a post, comment, or message.
// The target is validated against the matching table at creation time.
// Reports are never deleted; status changes are last-write-wins.
type Report struct {
	ID               uint             `gorm:"primaryKey" json:"id"`
	ReporterID       uint             `gorm:"not null;index" json:"reporter_id"`
	Reporter         *User            `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	TargetType       ReportTargetType `gorm:"type:varchar(20);not null;index" json:"content_type"`
	TargetID         uint             `gorm:"not null" json:"object_id"`
	Reason           string           `gorm:"type:text;not null" json:"reason"`
	Status           ReportStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ResolvedByUserID *uint            `json:"resolved_by_user_id"`
	ResolvedByUser   *User            `gorm:"foreignKey:ResolvedByUserID" json:"resolved_by_user,omitempty"`
	ResolvedAt       *time.Time       `json:"resolved_at"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ValidReportTarget reports whether t is a known target type.
func ValidReportTarget(t ReportTargetType) bool {
	switch t {
	case ReportTargetPost, ReportTargetComment, ReportTargetMessage:
		return true
	}
	return false
}
