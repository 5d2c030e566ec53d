package service

import (
	"context"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
)

// ModerationService implements the report workflow.
type ModerationService struct {
	reportRepo repository.ReportRepository
	renderer   *Renderer
}

// CreateReportInput carries a new moderation report.
type CreateReportInput struct {
	Viewer      Viewer
	ContentType models.ReportTargetType
	ObjectID    uint
	Reason      string
}

// ListReportsInput narrows the admin queue listing.
type ListReportsInput struct {
	Status      models.ReportStatus
	ContentType models.ReportTargetType
	Limit       int
	Offset      int
}

// NewModerationService returns a new ModerationService.
func NewModerationService(reportRepo repository.ReportRepository, renderer *Renderer) *ModerationService {
	return &ModerationService{reportRepo: reportRepo, renderer: renderer}
}

// CreateReport files a report against a post, comment or message. The target
// is checked against its backing table; a blank reason gets a placeholder.
func (s *ModerationService) CreateReport(ctx context.Context, in CreateReportInput) (*models.Report, error) {
	if !models.ValidReportTarget(in.ContentType) {
		return nil, models.NewValidationError("content_type must be one of post, comment, message")
	}
	if in.ObjectID == 0 {
		return nil, models.NewValidationError("object_id is required")
	}

	exists, err := s.reportRepo.TargetExists(ctx, in.ContentType, in.ObjectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Reported content", in.ObjectID)
	}

	reason := strings.TrimSpace(in.Reason)
	if reason == "" {
		reason = models.DefaultReportReason
	}

	report := &models.Report{
		ReporterID: in.Viewer.ID,
		TargetType: in.ContentType,
		TargetID:   in.ObjectID,
		Reason:     reason,
		Status:     models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns the admin queue newest-first.
func (s *ModerationService) ListReports(ctx context.Context, in ListReportsInput) ([]ReportRow, error) {
	if in.Status != "" {
		switch in.Status {
		case models.ReportStatusPending, models.ReportStatusResolved, models.ReportStatusDismissed:
		default:
			return nil, models.NewValidationError("Unknown report status filter")
		}
	}
	if in.ContentType != "" && !models.ValidReportTarget(in.ContentType) {
		return nil, models.NewValidationError("Unknown content_type filter")
	}

	reports, err := s.reportRepo.List(ctx, repository.ReportFilter{
		Status:     in.Status,
		TargetType: in.ContentType,
	}, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderReports(reports), nil
}

// ApplyAction sets a report's status from a moderation action. Re-applying
// the same action succeeds without change; switching between resolved and
// dismissed is a plain overwrite (last write wins).
func (s *ModerationService) ApplyAction(ctx context.Context, v Viewer, reportID uint, action string) (*models.Report, error) {
	var status models.ReportStatus
	switch action {
	case "resolve":
		status = models.ReportStatusResolved
	case "dismiss":
		status = models.ReportStatusDismissed
	default:
		return nil, models.NewValidationError("Unknown moderation action")
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if report.Status == status {
		return report, nil
	}

	now := time.Now().UTC()
	moderatorID := v.ID
	report.Status = status
	report.ResolvedByUserID = &moderatorID
	report.ResolvedAt = &now

	if err := s.reportRepo.Update(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}
