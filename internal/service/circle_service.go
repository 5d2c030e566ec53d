package service

import (
	"context"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

// CircleService implements circle and membership lifecycle logic.
type CircleService struct {
	circleRepo repository.CircleRepository
	userRepo   repository.UserRepository
}

// CreateCircleInput carries a new circle.
type CreateCircleInput struct {
	Viewer      Viewer
	Name        string
	Description string
	IsPrivate   bool
}

// JoinResult is the outcome of a join request. Pending means the request
// awaits approval by a circle admin.
type JoinResult struct {
	Joined  bool   `json:"joined"`
	Pending bool   `json:"pending"`
	Message string `json:"message,omitempty"`
}

// MemberRow is one roster entry for the members listing.
type MemberRow struct {
	MembershipID uint              `json:"membership_id"`
	UserID       uint              `json:"user_id"`
	Username     string            `json:"username"`
	DisplayName  string            `json:"display_name"`
	Role         models.CircleRole `json:"role"`
	JoinedAt     time.Time         `json:"joined_at"`
}

// NewCircleService returns a new CircleService.
func NewCircleService(circleRepo repository.CircleRepository, userRepo repository.UserRepository) *CircleService {
	return &CircleService{circleRepo: circleRepo, userRepo: userRepo}
}

// CreateCircle validates and stores a circle. The creator membership row is
// written in the same transaction as the circle itself.
func (s *CircleService) CreateCircle(ctx context.Context, in CreateCircleInput) (*models.Circle, error) {
	name := strings.TrimSpace(in.Name)
	if err := validation.ValidateCircleName(name); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateCircleDescription(in.Description); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	creatorID := in.Viewer.ID
	circle := &models.Circle{
		Name:            name,
		Description:     in.Description,
		IsPrivate:       in.IsPrivate,
		CreatedByUserID: &creatorID,
	}
	if err := s.circleRepo.Create(ctx, circle, creatorID); err != nil {
		return nil, err
	}

	circle.MemberCount = 1
	circle.ViewerRole = models.CircleRoleCreator
	return circle, nil
}

// ListCircles returns all circles with the viewer's role attached.
func (s *CircleService) ListCircles(ctx context.Context, v Viewer, limit, offset int) ([]*models.Circle, error) {
	circles, err := s.circleRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if v.Authenticated {
		for _, c := range circles {
			m, err := s.circleRepo.GetMembership(ctx, c.ID, v.ID)
			if err != nil {
				return nil, err
			}
			if m != nil {
				c.ViewerRole = m.Role
			}
		}
	}
	return circles, nil
}

// GetCircle returns one circle with the viewer's role attached.
func (s *CircleService) GetCircle(ctx context.Context, v Viewer, id uint) (*models.Circle, error) {
	circle, err := s.circleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Authenticated {
		m, err := s.circleRepo.GetMembership(ctx, id, v.ID)
		if err != nil {
			return nil, err
		}
		if m != nil {
			circle.ViewerRole = m.Role
		}
	}
	return circle, nil
}

// Join requests membership in a circle. Public circles grant membership
// immediately; private circles create a pending request. A concurrent or
// repeated join collapses onto the unique (circle, user) row and surfaces
// as a duplicate error regardless of the existing role.
func (s *CircleService) Join(ctx context.Context, v Viewer, circleID uint) (*JoinResult, error) {
	circle, err := s.circleRepo.GetByID(ctx, circleID)
	if err != nil {
		return nil, err
	}

	role := models.CircleRoleMember
	if circle.IsPrivate {
		role = models.CircleRolePending
	}

	m := &models.CircleMembership{
		CircleID: circleID,
		UserID:   v.ID,
		Role:     role,
	}
	if err := s.circleRepo.CreateMembership(ctx, m); err != nil {
		return nil, err
	}

	if circle.IsPrivate {
		return &JoinResult{Pending: true, Message: "Join request submitted for approval"}, nil
	}
	return &JoinResult{Joined: true}, nil
}

// Leave removes the viewer's membership row. Pending requests are withdrawn
// the same way.
func (s *CircleService) Leave(ctx context.Context, v Viewer, circleID uint) error {
	if _, err := s.circleRepo.GetByID(ctx, circleID); err != nil {
		return err
	}
	removed, err := s.circleRepo.DeleteMembership(ctx, circleID, v.ID)
	if err != nil {
		return err
	}
	if !removed {
		return models.NewValidationError("You are not a member of this circle")
	}
	return nil
}

// Members returns the active roster. Only active members and staff may view it.
func (s *CircleService) Members(ctx context.Context, v Viewer, circleID uint) ([]MemberRow, error) {
	if _, err := s.circleRepo.GetByID(ctx, circleID); err != nil {
		return nil, err
	}

	if !v.IsStaff {
		m, err := s.circleRepo.GetMembership(ctx, circleID, v.ID)
		if err != nil {
			return nil, err
		}
		if m == nil || !m.Role.IsActive() {
			return nil, models.NewForbiddenError("Only members can view the roster")
		}
	}

	members, err := s.circleRepo.ListMembers(ctx, circleID)
	if err != nil {
		return nil, err
	}
	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		row := MemberRow{
			MembershipID: m.ID,
			UserID:       m.UserID,
			Role:         m.Role,
			JoinedAt:     m.CreatedAt,
		}
		if m.User != nil {
			row.Username = m.User.Username
			row.DisplayName = m.User.PublicName()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// PendingRequests returns pending join requests. Approver rights required.
func (s *CircleService) PendingRequests(ctx context.Context, v Viewer, circleID uint) ([]MemberRow, error) {
	if err := s.requireApprover(ctx, v, circleID); err != nil {
		return nil, err
	}
	pending, err := s.circleRepo.ListPending(ctx, circleID)
	if err != nil {
		return nil, err
	}
	rows := make([]MemberRow, 0, len(pending))
	for _, m := range pending {
		row := MemberRow{
			MembershipID: m.ID,
			UserID:       m.UserID,
			Role:         m.Role,
			JoinedAt:     m.CreatedAt,
		}
		if m.User != nil {
			row.Username = m.User.Username
			row.DisplayName = m.User.PublicName()
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Approve promotes a pending membership to member. The approver must hold an
// admin or creator role in the same circle; staff may approve anywhere.
// Approving a non-pending membership is a validation error, not a no-op.
func (s *CircleService) Approve(ctx context.Context, v Viewer, membershipID uint) (*MemberRow, error) {
	target, err := s.circleRepo.GetMembershipByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	if err := s.requireApprover(ctx, v, target.CircleID); err != nil {
		return nil, err
	}

	if target.Role != models.CircleRolePending {
		return nil, models.NewValidationError("Membership is already active")
	}

	if err := s.circleRepo.UpdateMembershipRole(ctx, membershipID, models.CircleRoleMember); err != nil {
		return nil, err
	}

	row := MemberRow{
		MembershipID: target.ID,
		UserID:       target.UserID,
		Role:         models.CircleRoleMember,
		JoinedAt:     target.CreatedAt,
	}
	if target.User != nil {
		row.Username = target.User.Username
		row.DisplayName = target.User.PublicName()
	}
	return &row, nil
}

func (s *CircleService) requireApprover(ctx context.Context, v Viewer, circleID uint) error {
	if v.IsStaff {
		return nil
	}
	m, err := s.circleRepo.GetMembership(ctx, circleID, v.ID)
	if err != nil {
		return err
	}
	if m == nil || !m.Role.CanApprove() {
		return models.NewForbiddenError("Only circle admins can manage join requests")
	}
	return nil
}
