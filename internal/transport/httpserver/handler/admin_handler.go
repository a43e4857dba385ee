package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/transport/httpserver/dto"
	"content-scoring-service/internal/transport/httpserver/middleware"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	audit  *service.AuditService
	logger *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(audit *service.AuditService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		audit:  audit,
		logger: logger,
	}
}

// Audit handles POST /api/v1/admin/audit?repair=bool
func (h *AdminHandler) Audit(c *fiber.Ctx) error {
	var req dto.AuditRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "invalid query parameters",
			Code:  "INVALID_PARAMS",
		})
	}

	h.logger.Info("manual balance audit triggered",
		zap.String("user_id", middleware.UserID(c)),
		zap.Bool("repair", req.Repair),
	)

	report, err := h.audit.Audit(c.UserContext(), req.Repair)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromAuditReport(report))
}
