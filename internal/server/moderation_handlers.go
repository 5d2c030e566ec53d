package server

import (
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateReport handles POST /api/reports. Any authenticated user may flag a
// post, comment or message for moderation.
func (s *Server) CreateReport(c *fiber.Ctx) error {
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	var req struct {
		ContentType string `json:"content_type"`
		ObjectID    uint   `json:"object_id"`
		Reason      string `json:"reason"`
	}
	if parseErr := c.BodyParser(&req); parseErr != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	report, err := s.moderationService.CreateReport(c.Context(), service.CreateReportInput{
		Viewer:      viewer,
		ContentType: models.ReportTargetType(req.ContentType),
		ObjectID:    req.ObjectID,
		Reason:      req.Reason,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	middleware.ReportsCreated.WithLabelValues(req.ContentType).Inc()

	return c.Status(fiber.StatusCreated).JSON(report)
}

// GetReports handles GET /api/admin/reports with optional status and
// content_type filters. Staff only.
func (s *Server) GetReports(c *fiber.Ctx) error {
	p := parsePagination(c, 50)

	reports, err := s.moderationService.ListReports(c.Context(), service.ListReportsInput{
		Status:      models.ReportStatus(c.Query("status")),
		ContentType: models.ReportTargetType(c.Query("content_type")),
		Limit:       p.Limit,
		Offset:      p.Offset,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(reports)
}

// ApplyReportAction handles POST /api/admin/reports/:id/:action where action
// is "resolve" or "dismiss". Re-applying the same action is idempotent.
func (s *Server) ApplyReportAction(c *fiber.Ctx) error {
	reportID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewer, err := s.requireViewer(c)
	if err != nil {
		return nil
	}

	report, err := s.moderationService.ApplyAction(c.Context(), viewer, reportID, c.Params("action"))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(report)
}
