package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCircleMessages handles GET /api/circles/:id/messages returning the
// circle's chat history newest-first. Members only.
func (s *Server) GetCircleMessages(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}
	p := parsePagination(c, 50)

	messages, err := s.messageService.ListMessages(c.Context(), viewer, circleID, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(messages)
}

// SendCircleMessage handles POST /api/circles/:id/messages. The write is
// authoritative; fan-out to connected members rides Redis pub/sub and is
// best-effort.
func (s *Server) SendCircleMessage(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	var req struct {
		Content     string `json:"content"`
		IsAnonymous *bool  `json:"is_anonymous"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.CreateMessage(c.Context(), service.CreateMessageInput{
		Viewer:      viewer,
		CircleID:    circleID,
		Content:     req.Content,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.MessagesPublished.Inc()

	return c.Status(fiber.StatusCreated).JSON(message)
}
