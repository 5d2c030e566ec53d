package server

import (
	"strconv"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles GET /api/posts. Anonymous viewers see the campus feed
// only; authenticated viewers also see posts from their circles. An optional
// circle_id query narrows the page to one circle.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	viewer := s.optionalViewer(c)
	p := parsePagination(c, 20)

	var circleID *uint
	if raw := c.Query("circle_id"); raw != "" {
		parsed, parseErr := strconv.ParseUint(raw, 10, 32)
		if parseErr != nil || parsed == 0 {
			// A filter that cannot match anything yields an empty page, not an error
			return c.JSON([]service.PostItem{})
		}
		id := uint(parsed)
		circleID = &id
	}

	posts, err := s.postService.ListPosts(c.Context(), service.ListPostsInput{
		Viewer:   viewer,
		CircleID: circleID,
		Limit:    p.Limit,
		Offset:   p.Offset,
		Sort:     c.Query("sort"),
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// SearchPosts handles GET /api/posts/search
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	viewer := s.optionalViewer(c)
	p := parsePagination(c, 20)

	query := c.Query("q")
	if query == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Query parameter 'q' is required"))
	}

	posts, err := s.postService.SearchPosts(c.Context(), viewer, query, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id returning the post with its nested
// comment tree. Circle posts outside the viewer's circles read as 404.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := s.optionalViewer(c)

	post, err := s.postService.GetPost(c.Context(), viewer, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	var req struct {
		Title       string `json:"title"`
		Content     string `json:"content"`
		IsAnonymous *bool  `json:"is_anonymous"`
		CircleID    *uint  `json:"circle_id"`
		ImageURL    string `json:"image_url"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.Context(), service.CreatePostInput{
		Viewer:      viewer,
		Title:       req.Title,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
		CircleID:    req.CircleID,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	feed := "campus"
	if req.CircleID != nil {
		feed = "circle"
	}
	middleware.PostsCreated.WithLabelValues(feed).Inc()

	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.Context(), viewer, postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post deleted",
	})
}

// LikePost handles POST /api/posts/:id/like, toggling the viewer's like.
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	result, err := s.postService.ToggleLike(c.Context(), viewer, postID)
	if err != nil {
		return respondServiceError(c, err)
	}

	outcome := "unliked"
	if result.Liked {
		outcome = "liked"
	}
	middleware.LikeToggles.WithLabelValues(outcome).Inc()

	return c.JSON(result)
}
