package repository

import (
	"context"
	"errors"

	"agora/internal/models"

	"gorm.io/gorm"
)

// ReportFilter narrows the moderation queue listing.
type ReportFilter struct {
	Status     models.ReportStatus
	TargetType models.ReportTargetType
}

// ReportRepository defines persistence operations for moderation reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id uint) (*models.Report, error)
	List(ctx context.Context, filter ReportFilter, limit, offset int) ([]*models.Report, error)
	Update(ctx context.Context, report *models.Report) error
	TargetExists(ctx context.Context, targetType models.ReportTargetType, targetID uint) (bool, error)
}

type reportRepository struct {
	db *gorm.DB
}

// NewReportRepository returns a new ReportRepository implementation.
func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).
		Preload("Reporter").
		Preload("ResolvedByUser").
		First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Report", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &report, nil
}

// List returns reports newest-first, optionally filtered by status and target type.
func (r *reportRepository) List(ctx context.Context, filter ReportFilter, limit, offset int) ([]*models.Report, error) {
	q := readDB(r.db).WithContext(ctx).
		Preload("Reporter").
		Preload("ResolvedByUser")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.TargetType != "" {
		q = q.Where("target_type = ?", filter.TargetType)
	}

	var reports []*models.Report
	err := q.Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&reports).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return reports, nil
}

func (r *reportRepository) Update(ctx context.Context, report *models.Report) error {
	if err := r.db.WithContext(ctx).Save(report).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// TargetExists checks the reported content against its backing table.
func (r *reportRepository) TargetExists(ctx context.Context, targetType models.ReportTargetType, targetID uint) (bool, error) {
	var count int64
	var err error
	db := r.db.WithContext(ctx)

	switch targetType {
	case models.ReportTargetPost:
		err = db.Model(&models.Post{}).Where("id = ?", targetID).Count(&count).Error
	case models.ReportTargetComment:
		err = db.Model(&models.Comment{}).Where("id = ?", targetID).Count(&count).Error
	case models.ReportTargetMessage:
		err = db.Model(&models.Message{}).Where("id = ?", targetID).Count(&count).Error
	default:
		return false, models.NewValidationError("Unknown report target type")
	}

	if err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}
