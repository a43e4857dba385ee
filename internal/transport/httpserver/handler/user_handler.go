package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/transport/httpserver/dto"
)

// UserHandler handles user balance and earnings requests.
type UserHandler struct {
	earnings *service.EarningsService
	logger   *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(earnings *service.EarningsService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		earnings: earnings,
		logger:   logger,
	}
}

// Get handles GET /api/v1/users/:id
func (h *UserHandler) Get(c *fiber.Ctx) error {
	user, err := h.earnings.GetUser(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromDomainUser(user))
}

// Earnings handles GET /api/v1/users/:id/earnings
func (h *UserHandler) Earnings(c *fiber.Ctx) error {
	earnings, err := h.earnings.GetUserEarnings(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromEarnings(earnings))
}

// MonthlyEarnings handles GET /api/v1/users/:id/earnings/monthly
// Answers 501 for known users.
func (h *UserHandler) MonthlyEarnings(c *fiber.Ctx) error {
	amount, err := h.earnings.MonthlyEarnings(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(fiber.Map{"monthly_earnings": amount.StringFixed(2)})
}

// Items handles GET /api/v1/users/:id/items
func (h *UserHandler) Items(c *fiber.Ctx) error {
	items, err := h.earnings.ListItemsByOwner(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromItemPointsList(items))
}
