package service

import (
	"context"
	"strings"
	"testing"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCommentService(cr *commentRepoStub, pr *postRepoStub, circles *circleRepoStub, ur *userRepoStub) *CommentService {
	return NewCommentService(cr, pr, circles, ur, testRenderer())
}

func TestCommentService_CreateComment_Validation(t *testing.T) {
	t.Parallel()

	svc := newCommentService(noopCommentRepo(), noopPostRepo(), noopCircleRepo(), noopUserRepo())
	ctx := context.Background()
	viewer := Viewer{ID: 1, Authenticated: true}

	t.Run("empty content", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{Viewer: viewer, PostID: 1, Content: "  "})
		assertValidationError(t, err)
	})

	t.Run("content too long", func(t *testing.T) {
		t.Parallel()
		_, err := svc.CreateComment(ctx, CreateCommentInput{Viewer: viewer, PostID: 1, Content: strings.Repeat("x", 5001)})
		assertValidationError(t, err)
	})
}

func TestCommentService_CreateComment_ParentRules(t *testing.T) {
	t.Parallel()

	viewer := Viewer{ID: 1, Authenticated: true}

	t.Run("parent on another post", func(t *testing.T) {
		t.Parallel()
		cr := noopCommentRepo()
		cr.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 99}, nil
		}
		svc := newCommentService(cr, noopPostRepo(), noopCircleRepo(), noopUserRepo())
		parentID := uint(7)
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			Viewer: viewer, PostID: 1, Content: "c", ParentID: &parentID,
		})
		assertValidationError(t, err)
	})

	t.Run("reply to a reply is stored as given", func(t *testing.T) {
		t.Parallel()
		grandparent := uint(3)
		cr := noopCommentRepo()
		var created *models.Comment
		cr.createFn = func(_ context.Context, c *models.Comment) error {
			c.ID = 12
			created = c
			return nil
		}
		cr.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			if created != nil && id == created.ID {
				return created, nil
			}
			return &models.Comment{ID: id, PostID: 1, ParentID: &grandparent}, nil
		}
		svc := newCommentService(cr, noopPostRepo(), noopCircleRepo(), noopUserRepo())
		parentID := uint(7)
		item, err := svc.CreateComment(context.Background(), CreateCommentInput{
			Viewer: viewer, PostID: 1, Content: "c", ParentID: &parentID,
		})
		require.NoError(t, err)
		require.NotNil(t, item.ParentID)
		assert.Equal(t, parentID, *item.ParentID)
	})

	t.Run("missing parent", func(t *testing.T) {
		t.Parallel()
		cr := noopCommentRepo()
		cr.getByIDFn = func(_ context.Context, _ uint) (*models.Comment, error) {
			return nil, models.NewNotFoundError("Comment", 7)
		}
		svc := newCommentService(cr, noopPostRepo(), noopCircleRepo(), noopUserRepo())
		parentID := uint(7)
		_, err := svc.CreateComment(context.Background(), CreateCommentInput{
			Viewer: viewer, PostID: 1, Content: "c", ParentID: &parentID,
		})
		assertValidationError(t, err)
	})

	t.Run("valid top-level parent", func(t *testing.T) {
		t.Parallel()
		cr := noopCommentRepo()
		var created *models.Comment
		cr.createFn = func(_ context.Context, c *models.Comment) error {
			c.ID = 12
			created = c
			return nil
		}
		cr.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			if created != nil && id == created.ID {
				return created, nil
			}
			return &models.Comment{ID: id, PostID: 1}, nil
		}
		svc := newCommentService(cr, noopPostRepo(), noopCircleRepo(), noopUserRepo())
		parentID := uint(7)
		item, err := svc.CreateComment(context.Background(), CreateCommentInput{
			Viewer: viewer, PostID: 1, Content: "c", ParentID: &parentID,
		})
		require.NoError(t, err)
		require.NotNil(t, item.ParentID)
		assert.Equal(t, parentID, *item.ParentID)
	})
}

func TestCommentService_CreateComment_HiddenPostIsNotFound(t *testing.T) {
	t.Parallel()

	circleID := uint(4)
	pr := noopPostRepo()
	pr.getByIDFn = func(_ context.Context, id, _ uint) (*models.Post, error) {
		return &models.Post{ID: id, UserID: 2, CircleID: &circleID}, nil
	}
	svc := newCommentService(noopCommentRepo(), pr, noopCircleRepo(), noopUserRepo())

	_, err := svc.CreateComment(context.Background(), CreateCommentInput{
		Viewer: Viewer{ID: 1, Authenticated: true}, PostID: 1, Content: "c",
	})
	assertNotFoundError(t, err)
}

func TestCommentService_DeleteComment_Ownership(t *testing.T) {
	t.Parallel()

	t.Run("owner can delete", func(t *testing.T) {
		t.Parallel()
		cr := noopCommentRepo()
		cr.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1}, nil
		}
		svc := newCommentService(cr, noopPostRepo(), noopCircleRepo(), noopUserRepo())
		assert.NoError(t, svc.DeleteComment(context.Background(), Viewer{ID: 1, Authenticated: true}, 1))
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()
		cr := noopCommentRepo()
		cr.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 10}, nil
		}
		svc := newCommentService(cr, noopPostRepo(), noopCircleRepo(), noopUserRepo())
		err := svc.DeleteComment(context.Background(), Viewer{ID: 1, Authenticated: true}, 1)
		assertForbiddenError(t, err)
	})

	t.Run("staff can delete", func(t *testing.T) {
		t.Parallel()
		cr := noopCommentRepo()
		cr.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 10}, nil
		}
		svc := newCommentService(cr, noopPostRepo(), noopCircleRepo(), noopUserRepo())
		assert.NoError(t, svc.DeleteComment(context.Background(), Viewer{ID: 1, Authenticated: true, IsStaff: true}, 1))
	})
}
