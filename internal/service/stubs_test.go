package service

import (
	"context"
	"errors"
	"testing"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, uint) (*models.Post, error)
	getByUserIDFn   func(context.Context, uint, int, int, uint) ([]*models.Post, error)
	getByCircleIDFn func(context.Context, uint, int, int, uint, string) ([]*models.Post, error)
	listFn          func(context.Context, repository.FeedScope, int, int, uint, string) ([]*models.Post, error)
	searchFn        func(context.Context, repository.FeedScope, string, int, int, uint) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	deleteFn        func(context.Context, uint) error
	isLikedFn       func(context.Context, uint, uint) (bool, error)
	countLikesFn    func(context.Context, uint) (int64, error)
	likeFn          func(context.Context, uint, uint) error
	unlikeFn        func(context.Context, uint, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, currentUserID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, currentUserID)
}
func (s *postRepoStub) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.getByUserIDFn(ctx, userID, limit, offset, currentUserID)
}
func (s *postRepoStub) GetByCircleID(ctx context.Context, circleID uint, limit, offset int, currentUserID uint, sort string) ([]*models.Post, error) {
	return s.getByCircleIDFn(ctx, circleID, limit, offset, currentUserID, sort)
}
func (s *postRepoStub) List(ctx context.Context, scope repository.FeedScope, limit, offset int, currentUserID uint, sort string) ([]*models.Post, error) {
	return s.listFn(ctx, scope, limit, offset, currentUserID, sort)
}
func (s *postRepoStub) Search(ctx context.Context, scope repository.FeedScope, query string, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	return s.searchFn(ctx, scope, query, limit, offset, currentUserID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.countLikesFn(ctx, postID)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) error {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) error {
	return s.unlikeFn(ctx, userID, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:  func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		getByUserIDFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		getByCircleIDFn: func(_ context.Context, _ uint, _, _ int, _ uint, _ string) ([]*models.Post, error) {
			return nil, nil
		},
		listFn: func(_ context.Context, _ repository.FeedScope, _, _ int, _ uint, _ string) ([]*models.Post, error) {
			return nil, nil
		},
		searchFn: func(_ context.Context, _ repository.FeedScope, _ string, _, _ int, _ uint) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn:     func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		isLikedFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countLikesFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		likeFn:       func(_ context.Context, _, _ uint) error { return nil },
		unlikeFn:     func(_ context.Context, _, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn      func(context.Context, *models.Comment) error
	getByIDFn     func(context.Context, uint) (*models.Comment, error)
	listByPostFn  func(context.Context, uint) ([]*models.Comment, error)
	countByPostFn func(context.Context, uint) (int64, error)
	updateFn      func(context.Context, *models.Comment) error
	deleteFn      func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countByPostFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:     func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn:  func(_ context.Context, _ uint) ([]*models.Comment, error) { return nil, nil },
		countByPostFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:      func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:      func(_ context.Context, _ uint) error { return nil },
	}
}

// circleRepoStub is a stub for repository.CircleRepository.
type circleRepoStub struct {
	createFn               func(context.Context, *models.Circle, uint) error
	getByIDFn              func(context.Context, uint) (*models.Circle, error)
	getByNameFn            func(context.Context, string) (*models.Circle, error)
	listFn                 func(context.Context, int, int) ([]*models.Circle, error)
	updateFn               func(context.Context, *models.Circle) error
	deleteFn               func(context.Context, uint) error
	getMembershipFn        func(context.Context, uint, uint) (*models.CircleMembership, error)
	getMembershipByIDFn    func(context.Context, uint) (*models.CircleMembership, error)
	createMembershipFn     func(context.Context, *models.CircleMembership) error
	updateMembershipRoleFn func(context.Context, uint, models.CircleRole) error
	deleteMembershipFn     func(context.Context, uint, uint) (bool, error)
	listMembersFn          func(context.Context, uint) ([]models.CircleMembership, error)
	listPendingFn          func(context.Context, uint) ([]models.CircleMembership, error)
	memberCircleIDsFn      func(context.Context, uint) ([]uint, error)
}

func (s *circleRepoStub) Create(ctx context.Context, circle *models.Circle, creatorID uint) error {
	return s.createFn(ctx, circle, creatorID)
}
func (s *circleRepoStub) GetByID(ctx context.Context, id uint) (*models.Circle, error) {
	return s.getByIDFn(ctx, id)
}
func (s *circleRepoStub) GetByName(ctx context.Context, name string) (*models.Circle, error) {
	return s.getByNameFn(ctx, name)
}
func (s *circleRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Circle, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *circleRepoStub) Update(ctx context.Context, circle *models.Circle) error {
	return s.updateFn(ctx, circle)
}
func (s *circleRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *circleRepoStub) GetMembership(ctx context.Context, circleID, userID uint) (*models.CircleMembership, error) {
	return s.getMembershipFn(ctx, circleID, userID)
}
func (s *circleRepoStub) GetMembershipByID(ctx context.Context, id uint) (*models.CircleMembership, error) {
	return s.getMembershipByIDFn(ctx, id)
}
func (s *circleRepoStub) CreateMembership(ctx context.Context, m *models.CircleMembership) error {
	return s.createMembershipFn(ctx, m)
}
func (s *circleRepoStub) UpdateMembershipRole(ctx context.Context, id uint, role models.CircleRole) error {
	return s.updateMembershipRoleFn(ctx, id, role)
}
func (s *circleRepoStub) DeleteMembership(ctx context.Context, circleID, userID uint) (bool, error) {
	return s.deleteMembershipFn(ctx, circleID, userID)
}
func (s *circleRepoStub) ListMembers(ctx context.Context, circleID uint) ([]models.CircleMembership, error) {
	return s.listMembersFn(ctx, circleID)
}
func (s *circleRepoStub) ListPending(ctx context.Context, circleID uint) ([]models.CircleMembership, error) {
	return s.listPendingFn(ctx, circleID)
}
func (s *circleRepoStub) MemberCircleIDs(ctx context.Context, userID uint) ([]uint, error) {
	return s.memberCircleIDsFn(ctx, userID)
}

func noopCircleRepo() *circleRepoStub {
	return &circleRepoStub{
		createFn:    func(_ context.Context, _ *models.Circle, _ uint) error { return nil },
		getByIDFn:   func(_ context.Context, id uint) (*models.Circle, error) { return &models.Circle{ID: id}, nil },
		getByNameFn: func(_ context.Context, _ string) (*models.Circle, error) { return nil, nil },
		listFn:      func(_ context.Context, _, _ int) ([]*models.Circle, error) { return nil, nil },
		updateFn:    func(_ context.Context, _ *models.Circle) error { return nil },
		deleteFn:    func(_ context.Context, _ uint) error { return nil },
		getMembershipFn: func(_ context.Context, _, _ uint) (*models.CircleMembership, error) {
			return nil, nil
		},
		getMembershipByIDFn: func(_ context.Context, id uint) (*models.CircleMembership, error) {
			return &models.CircleMembership{ID: id}, nil
		},
		createMembershipFn:     func(_ context.Context, _ *models.CircleMembership) error { return nil },
		updateMembershipRoleFn: func(_ context.Context, _ uint, _ models.CircleRole) error { return nil },
		deleteMembershipFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		listMembersFn:          func(_ context.Context, _ uint) ([]models.CircleMembership, error) { return nil, nil },
		listPendingFn:          func(_ context.Context, _ uint) ([]models.CircleMembership, error) { return nil, nil },
		memberCircleIDsFn:      func(_ context.Context, _ uint) ([]uint, error) { return nil, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	createFn        func(context.Context, *models.User) error
	updateFn        func(context.Context, *models.User) error
	deleteFn        func(context.Context, uint) error
	listFn          func(context.Context, int, int) ([]models.User, error)
	countContentFn  func(context.Context, uint) (int64, int64, int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) CountContent(ctx context.Context, userID uint) (int64, int64, int64, error) {
	return s.countContentFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "stub"}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateFn:        func(_ context.Context, _ *models.User) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		listFn:          func(_ context.Context, _, _ int) ([]models.User, error) { return nil, nil },
		countContentFn:  func(_ context.Context, _ uint) (int64, int64, int64, error) { return 0, 0, 0, nil },
	}
}

// messageRepoStub is a stub for repository.MessageRepository.
type messageRepoStub struct {
	createFn       func(context.Context, *models.Message) error
	getByIDFn      func(context.Context, uint) (*models.Message, error)
	listByCircleFn func(context.Context, uint, int, int) ([]*models.Message, error)
	deleteFn       func(context.Context, uint) error
}

func (s *messageRepoStub) Create(ctx context.Context, msg *models.Message) error {
	return s.createFn(ctx, msg)
}
func (s *messageRepoStub) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getByIDFn(ctx, id)
}
func (s *messageRepoStub) ListByCircle(ctx context.Context, circleID uint, limit, offset int) ([]*models.Message, error) {
	return s.listByCircleFn(ctx, circleID, limit, offset)
}
func (s *messageRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopMessageRepo() *messageRepoStub {
	return &messageRepoStub{
		createFn:  func(_ context.Context, _ *models.Message) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Message, error) { return &models.Message{ID: id}, nil },
		listByCircleFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Message, error) {
			return nil, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// reportRepoStub is a stub for repository.ReportRepository.
type reportRepoStub struct {
	createFn       func(context.Context, *models.Report) error
	getByIDFn      func(context.Context, uint) (*models.Report, error)
	listFn         func(context.Context, repository.ReportFilter, int, int) ([]*models.Report, error)
	updateFn       func(context.Context, *models.Report) error
	targetExistsFn func(context.Context, models.ReportTargetType, uint) (bool, error)
}

func (s *reportRepoStub) Create(ctx context.Context, report *models.Report) error {
	return s.createFn(ctx, report)
}
func (s *reportRepoStub) GetByID(ctx context.Context, id uint) (*models.Report, error) {
	return s.getByIDFn(ctx, id)
}
func (s *reportRepoStub) List(ctx context.Context, filter repository.ReportFilter, limit, offset int) ([]*models.Report, error) {
	return s.listFn(ctx, filter, limit, offset)
}
func (s *reportRepoStub) Update(ctx context.Context, report *models.Report) error {
	return s.updateFn(ctx, report)
}
func (s *reportRepoStub) TargetExists(ctx context.Context, targetType models.ReportTargetType, targetID uint) (bool, error) {
	return s.targetExistsFn(ctx, targetType, targetID)
}

func noopReportRepo() *reportRepoStub {
	return &reportRepoStub{
		createFn:  func(_ context.Context, _ *models.Report) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Report, error) { return &models.Report{ID: id}, nil },
		listFn: func(_ context.Context, _ repository.ReportFilter, _, _ int) ([]*models.Report, error) {
			return nil, nil
		},
		updateFn:       func(_ context.Context, _ *models.Report) error { return nil },
		targetExistsFn: func(_ context.Context, _ models.ReportTargetType, _ uint) (bool, error) { return true, nil },
	}
}

func testRenderer() *Renderer {
	return NewRenderer(func() bool { return false })
}

// assertAppErrorCode asserts that err is an AppError with the given code.
func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "FORBIDDEN")
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}
