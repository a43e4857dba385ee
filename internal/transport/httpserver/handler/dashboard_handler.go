package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/domain"
)

// DashboardHandler renders the HTML points dashboard.
type DashboardHandler struct {
	earnings *service.EarningsService
	logger   *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(earnings *service.EarningsService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		earnings: earnings,
		logger:   logger,
	}
}

type dashboardRow struct {
	Title     string
	Kind      string
	Breakdown domain.PointsBreakdown
	Earnings  string
}

// Render handles GET /dashboard/:userID
func (h *DashboardHandler) Render(c *fiber.Ctx) error {
	userID := c.Params("userID")

	dash, err := h.earnings.Dashboard(c.UserContext(), userID)
	if err != nil {
		status, _ := errorStatus(err)
		message := err.Error()
		if status >= 500 {
			h.logger.Error("dashboard failed", zap.String("user_id", userID), zap.Error(err))
			message = "service temporarily unavailable"
		}
		return c.Status(status).Render("pages/error", fiber.Map{
			"Title":   "Points Dashboard",
			"Message": message,
		}, "layouts/base")
	}

	rows := make([]dashboardRow, len(dash.Items))
	for i, it := range dash.Items {
		rows[i] = dashboardRow{
			Title:     it.Item.Title,
			Kind:      string(it.Item.Kind),
			Breakdown: it.Breakdown,
			Earnings:  it.Earnings,
		}
	}

	return c.Render("pages/dashboard", fiber.Map{
		"Title":    "Points Dashboard",
		"UserID":   dash.Earnings.UserID,
		"Points":   dash.Earnings.TotalPoints,
		"Earnings": dash.Earnings.TotalEarnings.StringFixed(2),
		"Badge":    string(dash.Earnings.Badge),
		"Items":    rows,
	}, "layouts/base")
}
