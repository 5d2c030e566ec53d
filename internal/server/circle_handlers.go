package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetCircles handles GET /api/circles. The listing itself is public; privacy
// gates a circle's content, not its existence.
func (s *Server) GetCircles(c *fiber.Ctx) error {
	viewer := s.optionalViewer(c)
	p := parsePagination(c, 50)

	circles, err := s.circleService.ListCircles(c.Context(), viewer, p.Limit, p.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(circles)
}

// GetCircle handles GET /api/circles/:id
func (s *Server) GetCircle(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer := s.optionalViewer(c)

	circle, err := s.circleService.GetCircle(c.Context(), viewer, circleID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(circle)
}

// CreateCircle handles POST /api/circles. The creator becomes the circle's
// first member with the creator role.
func (s *Server) CreateCircle(c *fiber.Ctx) error {
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		IsPrivate   bool   `json:"is_private"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	circle, err := s.circleService.CreateCircle(c.Context(), service.CreateCircleInput{
		Viewer:      viewer,
		Name:        req.Name,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(circle)
}

// JoinCircle handles POST /api/circles/:id/join. Public circles grant
// membership immediately (201); private circles queue a pending request (202).
func (s *Server) JoinCircle(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	result, err := s.circleService.Join(c.Context(), viewer, circleID)
	if err != nil {
		if statusForError(err) == fiber.StatusConflict {
			middleware.CircleJoins.WithLabelValues("duplicate").Inc()
		}
		return respondServiceError(c, err)
	}

	if result.Pending {
		middleware.CircleJoins.WithLabelValues("pending").Inc()
		return c.Status(fiber.StatusAccepted).JSON(result)
	}
	middleware.CircleJoins.WithLabelValues("member").Inc()
	return c.Status(fiber.StatusCreated).JSON(result)
}

// LeaveCircle handles POST /api/circles/:id/leave
func (s *Server) LeaveCircle(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	if err := s.circleService.Leave(c.Context(), viewer, circleID); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"left": true,
	})
}

// GetCircleMembers handles GET /api/circles/:id/members
func (s *Server) GetCircleMembers(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	members, err := s.circleService.Members(c.Context(), viewer, circleID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(members)
}

// GetPendingMemberships handles GET /api/circles/:id/pending
func (s *Server) GetPendingMemberships(c *fiber.Ctx) error {
	circleID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	pending, err := s.circleService.PendingRequests(c.Context(), viewer, circleID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(pending)
}

// ApproveMembership handles POST /api/circles/memberships/:id/approve
func (s *Server) ApproveMembership(c *fiber.Ctx) error {
	membershipID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	member, err := s.circleService.Approve(c.Context(), viewer, membershipID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(member)
}
