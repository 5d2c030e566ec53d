package repository

import (
	"context"
	"errors"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
)

// CircleRepository defines persistence operations for circles and memberships.
type CircleRepository interface {
	Create(ctx context.Context, circle *models.Circle, creatorID uint) error
	GetByID(ctx context.Context, id uint) (*models.Circle, error)
	GetByName(ctx context.Context, name string) (*models.Circle, error)
	List(ctx context.Context, limit, offset int) ([]*models.Circle, error)
	Update(ctx context.Context, circle *models.Circle) error
	Delete(ctx context.Context, id uint) error

	GetMembership(ctx context.Context, circleID, userID uint) (*models.CircleMembership, error)
	GetMembershipByID(ctx context.Context, id uint) (*models.CircleMembership, error)
	CreateMembership(ctx context.Context, m *models.CircleMembership) error
	UpdateMembershipRole(ctx context.Context, id uint, role models.CircleRole) error
	DeleteMembership(ctx context.Context, circleID, userID uint) (bool, error)
	ListMembers(ctx context.Context, circleID uint) ([]models.CircleMembership, error)
	ListPending(ctx context.Context, circleID uint) ([]models.CircleMembership, error)
	MemberCircleIDs(ctx context.Context, userID uint) ([]uint, error)
}

type circleRepository struct {
	db *gorm.DB
}

// NewCircleRepository returns a new CircleRepository implementation.
func NewCircleRepository(db *gorm.DB) CircleRepository {
	return &circleRepository{db: db}
}

// memberCountSelect annotates circles with their active member count.
const memberCountSelect = "circles.*, " +
	"(SELECT COUNT(*) FROM circle_memberships WHERE circle_memberships.circle_id = circles.id AND circle_memberships.role <> 'pending') as member_count"

// Create inserts the circle and its creator membership in one transaction so a
// circle never exists without a creator member.
func (r *circleRepository) Create(ctx context.Context, circle *models.Circle, creatorID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(circle).Error; err != nil {
			return err
		}
		membership := &models.CircleMembership{
			CircleID: circle.ID,
			UserID:   creatorID,
			Role:     models.CircleRoleCreator,
		}
		return tx.Create(membership).Error
	})
	if err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateError("Circle name already taken")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CircleListKey)
	return nil
}

func (r *circleRepository) GetByID(ctx context.Context, id uint) (*models.Circle, error) {
	var circle models.Circle
	err := readDB(r.db).WithContext(ctx).
		Select(memberCountSelect).
		Preload("CreatedByUser").
		First(&circle, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Circle", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &circle, nil
}

func (r *circleRepository) GetByName(ctx context.Context, name string) (*models.Circle, error) {
	var circle models.Circle
	err := readDB(r.db).WithContext(ctx).
		Select(memberCountSelect).
		Where("name = ?", name).
		First(&circle).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &circle, nil
}

func (r *circleRepository) List(ctx context.Context, limit, offset int) ([]*models.Circle, error) {
	var circles []*models.Circle
	err := readDB(r.db).WithContext(ctx).
		Select(memberCountSelect).
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&circles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return circles, nil
}

func (r *circleRepository) Update(ctx context.Context, circle *models.Circle) error {
	if err := r.db.WithContext(ctx).Save(circle).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCircle(ctx, circle.ID)
	return nil
}

func (r *circleRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Circle{}, id).Error; err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateCircle(ctx, id)
	return nil
}

func (r *circleRepository) GetMembership(ctx context.Context, circleID, userID uint) (*models.CircleMembership, error) {
	var m models.CircleMembership
	err := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &m, nil
}

func (r *circleRepository) GetMembershipByID(ctx context.Context, id uint) (*models.CircleMembership, error) {
	var m models.CircleMembership
	err := r.db.WithContext(ctx).Preload("User").First(&m, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Membership", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &m, nil
}

func (r *circleRepository) CreateMembership(ctx context.Context, m *models.CircleMembership) error {
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewDuplicateError("Already a member of this circle")
		}
		return models.NewInternalError(err)
	}
	cache.Invalidate(ctx, cache.CircleMembersKey(m.CircleID))
	return nil
}

func (r *circleRepository) UpdateMembershipRole(ctx context.Context, id uint, role models.CircleRole) error {
	res := r.db.WithContext(ctx).
		Model(&models.CircleMembership{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Membership", id)
	}
	return nil
}

// DeleteMembership hard deletes the membership row. Returns false when the
// user was not a member.
func (r *circleRepository) DeleteMembership(ctx context.Context, circleID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Delete(&models.CircleMembership{})
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	if res.RowsAffected > 0 {
		cache.Invalidate(ctx, cache.CircleMembersKey(circleID))
	}
	return res.RowsAffected > 0, nil
}

func (r *circleRepository) ListMembers(ctx context.Context, circleID uint) ([]models.CircleMembership, error) {
	var members []models.CircleMembership
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("circle_id = ? AND role <> ?", circleID, models.CircleRolePending).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

func (r *circleRepository) ListPending(ctx context.Context, circleID uint) ([]models.CircleMembership, error) {
	var members []models.CircleMembership
	err := readDB(r.db).WithContext(ctx).
		Preload("User").
		Where("circle_id = ? AND role = ?", circleID, models.CircleRolePending).
		Order("created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return members, nil
}

// MemberCircleIDs returns the circles the user is an active member of.
// Pending requests do not grant visibility.
func (r *circleRepository) MemberCircleIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := readDB(r.db).WithContext(ctx).
		Model(&models.CircleMembership{}).
		Where("user_id = ? AND role <> ?", userID, models.CircleRolePending).
		Pluck("circle_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
