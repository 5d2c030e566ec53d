package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
)

const maxCommentLen = 5000

// CommentService implements comment creation and listing.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	circleRepo  repository.CircleRepository
	userRepo    repository.UserRepository
	renderer    *Renderer
}

// CreateCommentInput carries a new comment. A nil IsAnonymous defaults to the
// inverse of the author's show_real_name preference.
type CreateCommentInput struct {
	Viewer      Viewer
	PostID      uint
	Content     string
	ParentID    *uint
	IsAnonymous *bool
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	circleRepo repository.CircleRepository,
	userRepo repository.UserRepository,
	renderer *Renderer,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		circleRepo:  circleRepo,
		userRepo:    userRepo,
		renderer:    renderer,
	}
}

func (s *CommentService) visiblePost(ctx context.Context, v Viewer, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID, v.ID)
	if err != nil {
		return nil, models.NewNotFoundError("Post", postID)
	}
	if post.CircleID != nil && !v.IsStaff {
		if !v.Authenticated {
			return nil, models.NewNotFoundError("Post", postID)
		}
		m, err := s.circleRepo.GetMembership(ctx, *post.CircleID, v.ID)
		if err != nil {
			return nil, err
		}
		if m == nil || !m.Role.IsActive() {
			return nil, models.NewNotFoundError("Post", postID)
		}
	}
	return post, nil
}

// CreateComment validates and stores a comment. A reply's parent must be a
// comment on the same post; chains deeper than one level are stored as given
// and flattened under the top-level comment when rendered.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*CommentItem, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 5000 characters)")
	}

	if _, err := s.visiblePost(ctx, in.Viewer, in.PostID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.commentRepo.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, models.NewValidationError("Parent comment not found")
		}
		if parent.PostID != in.PostID {
			return nil, models.NewValidationError("Parent comment belongs to a different post")
		}
	}

	author, err := s.userRepo.GetByID(ctx, in.Viewer.ID)
	if err != nil {
		return nil, err
	}

	anonymous := !author.ShowRealName
	if in.IsAnonymous != nil {
		anonymous = *in.IsAnonymous
	}

	comment := &models.Comment{
		PostID:      in.PostID,
		UserID:      in.Viewer.ID,
		Content:     in.Content,
		IsAnonymous: anonymous,
		ParentID:    in.ParentID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}

	created, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	item := CommentItem{
		ID:          created.ID,
		Author:      s.renderer.authorFor(ctx, in.Viewer, &created.User, created.UserID, created.IsAnonymous, "comment", created.ID),
		PostID:      created.PostID,
		Content:     created.Content,
		IsAnonymous: created.IsAnonymous,
		CreatedAt:   created.CreatedAt,
		ParentID:    created.ParentID,
		Replies:     []CommentItem{},
	}
	return &item, nil
}

// ListComments returns a post's comments nested two levels for the viewer.
func (s *CommentService) ListComments(ctx context.Context, v Viewer, postID uint) ([]CommentItem, error) {
	if _, err := s.visiblePost(ctx, v, postID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.renderer.RenderComments(ctx, v, comments), nil
}

// DeleteComment removes a comment. Only the owner or staff may delete.
func (s *CommentService) DeleteComment(ctx context.Context, v Viewer, commentID uint) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return models.NewNotFoundError("Comment", commentID)
	}
	if comment.UserID != v.ID && !v.IsStaff {
		return models.NewForbiddenError("You can only delete your own comments")
	}
	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
