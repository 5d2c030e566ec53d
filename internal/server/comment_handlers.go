package server

import (
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/posts/:id/comments returning the two-level
// comment tree for a post.
func (s *Server) GetComments(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := s.optionalViewer(c)

	comments, err := s.commentService.ListComments(c.Context(), viewer, postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(comments)
}

// CreateComment handles POST /api/posts/:id/comments. A parent_id nests the
// comment as a reply; deeper chains render flattened under the top-level
// comment.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	var req struct {
		Content     string `json:"content"`
		ParentID    *uint  `json:"parent_id"`
		IsAnonymous *bool  `json:"is_anonymous"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		Viewer:      viewer,
		PostID:      postID,
		Content:     req.Content,
		ParentID:    req.ParentID,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

// DeleteComment handles DELETE /api/posts/:id/comments/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	if _, err := s.parseID(c, "id"); err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	if err := s.commentService.DeleteComment(c.Context(), viewer, commentID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Comment deleted",
	})
}
