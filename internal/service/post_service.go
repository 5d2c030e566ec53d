package service

import (
	"context"
	"strings"

	"agora/internal/models"
	"agora/internal/repository"
)

const (
	maxPostTitleLen   = 300
	maxPostContentLen = 10000
)

// PostService implements post creation, feeds and like toggling.
type PostService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	circleRepo  repository.CircleRepository
	userRepo    repository.UserRepository
	renderer    *Renderer
}

// CreatePostInput carries a new post. IsAnonymous nil means "use the author's
// show_real_name preference".
type CreatePostInput struct {
	Viewer      Viewer
	Title       string
	Content     string
	IsAnonymous *bool
	CircleID    *uint
	ImageURL    string
}

// ListPostsInput selects a feed page for a viewer.
type ListPostsInput struct {
	Viewer   Viewer
	CircleID *uint
	Limit    int
	Offset   int
	Sort     string
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	circleRepo repository.CircleRepository,
	userRepo repository.UserRepository,
	renderer *Renderer,
) *PostService {
	return &PostService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		circleRepo:  circleRepo,
		userRepo:    userRepo,
		renderer:    renderer,
	}
}

// feedScope computes which circle posts the viewer may see.
func (s *PostService) feedScope(ctx context.Context, v Viewer) (repository.FeedScope, error) {
	if v.IsStaff {
		return repository.FeedScope{AllCircles: true}, nil
	}
	if !v.Authenticated {
		return repository.FeedScope{}, nil
	}
	ids, err := s.circleRepo.MemberCircleIDs(ctx, v.ID)
	if err != nil {
		return repository.FeedScope{}, err
	}
	return repository.FeedScope{MemberCircleIDs: ids}, nil
}

// canAccessCircle reports whether the viewer may read a circle's content.
func (s *PostService) canAccessCircle(ctx context.Context, v Viewer, circleID uint) (bool, error) {
	if v.IsStaff {
		return true, nil
	}
	if !v.Authenticated {
		return false, nil
	}
	m, err := s.circleRepo.GetMembership(ctx, circleID, v.ID)
	if err != nil {
		return false, err
	}
	return m != nil && m.Role.IsActive(), nil
}

// CreatePost validates and stores a post. Circle posts require an active
// membership (staff bypass). A nil IsAnonymous defaults to the inverse of the
// author's show_real_name preference.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*PostItem, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxPostTitleLen {
		return nil, models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 10000 characters)")
	}

	author, err := s.userRepo.GetByID(ctx, in.Viewer.ID)
	if err != nil {
		return nil, err
	}

	if in.CircleID != nil {
		ok, err := s.canAccessCircle(ctx, in.Viewer, *in.CircleID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewForbiddenError("You must be a member of this circle to post in it")
		}
	}

	anonymous := !author.ShowRealName
	if in.IsAnonymous != nil {
		anonymous = *in.IsAnonymous
	}

	post := &models.Post{
		Title:       title,
		Content:     in.Content,
		IsAnonymous: anonymous,
		ImageURL:    in.ImageURL,
		UserID:      in.Viewer.ID,
		CircleID:    in.CircleID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	return s.GetPost(ctx, in.Viewer, post.ID)
}

// ListPosts returns a feed page for the viewer. A circle filter the viewer
// cannot access yields an empty page, not an error.
func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]PostItem, error) {
	if in.CircleID != nil {
		ok, err := s.canAccessCircle(ctx, in.Viewer, *in.CircleID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return []PostItem{}, nil
		}
		posts, err := s.postRepo.GetByCircleID(ctx, *in.CircleID, in.Limit, in.Offset, in.Viewer.ID, in.Sort)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		return s.renderer.RenderPosts(ctx, in.Viewer, posts), nil
	}

	scope, err := s.feedScope(ctx, in.Viewer)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.List(ctx, scope, in.Limit, in.Offset, in.Viewer.ID, in.Sort)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.renderer.RenderPosts(ctx, in.Viewer, posts), nil
}

// SearchPosts matches the query against titles and content inside the
// viewer's feed scope. Blank queries return an empty page.
func (s *PostService) SearchPosts(ctx context.Context, v Viewer, query string, limit, offset int) ([]PostItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []PostItem{}, nil
	}

	scope, err := s.feedScope(ctx, v)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.Search(ctx, scope, query, limit, offset, v.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return s.renderer.RenderPosts(ctx, v, posts), nil
}

// visiblePost loads a post and enforces circle gating. Hidden posts surface
// as not-found so their existence is not leaked.
func (s *PostService) visiblePost(ctx context.Context, v Viewer, id uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id, v.ID)
	if err != nil {
		return nil, models.NewNotFoundError("Post", id)
	}
	if post.CircleID != nil {
		ok, err := s.canAccessCircle(ctx, v, *post.CircleID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewNotFoundError("Post", id)
		}
	}
	return post, nil
}

// GetPost returns a single post with its nested comments.
func (s *PostService) GetPost(ctx context.Context, v Viewer, id uint) (*PostItem, error) {
	post, err := s.visiblePost(ctx, v, id)
	if err != nil {
		return nil, err
	}

	item := s.renderer.RenderPost(ctx, v, post)

	comments, err := s.commentRepo.ListByPost(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	item.Comments = s.renderer.RenderComments(ctx, v, comments)

	return &item, nil
}

// ListUserPosts returns a user's posts for the viewer.
func (s *PostService) ListUserPosts(ctx context.Context, v Viewer, userID uint, limit, offset int) ([]PostItem, error) {
	posts, err := s.postRepo.GetByUserID(ctx, userID, limit, offset, v.ID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	// Circle posts the viewer cannot see are filtered out of profile listings
	visible := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if p.CircleID != nil {
			ok, err := s.canAccessCircle(ctx, v, *p.CircleID)
			if err != nil {
				return nil, err
			}
			if !ok {
				continue
			}
		}
		visible = append(visible, p)
	}
	return s.renderer.RenderPosts(ctx, v, visible), nil
}

// DeletePost removes a post. Only the owner or staff may delete.
func (s *PostService) DeletePost(ctx context.Context, v Viewer, postID uint) error {
	post, err := s.visiblePost(ctx, v, postID)
	if err != nil {
		return err
	}
	if post.UserID != v.ID && !v.IsStaff {
		return models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// ToggleLike flips the viewer's like on a post and returns the new state.
// The insert is idempotent under races; the final count comes from the table.
func (s *PostService) ToggleLike(ctx context.Context, v Viewer, postID uint) (*LikeResult, error) {
	if _, err := s.visiblePost(ctx, v, postID); err != nil {
		return nil, err
	}

	isLiked, err := s.postRepo.IsLiked(ctx, v.ID, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if isLiked {
		if err := s.postRepo.Unlike(ctx, v.ID, postID); err != nil {
			return nil, models.NewInternalError(err)
		}
	} else {
		if err := s.postRepo.Like(ctx, v.ID, postID); err != nil {
			return nil, models.NewInternalError(err)
		}
	}

	count, err := s.postRepo.CountLikes(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &LikeResult{Liked: !isLiked, LikesCount: count}, nil
}
