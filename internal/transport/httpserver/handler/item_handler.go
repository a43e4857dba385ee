package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"content-scoring-service/internal/app/service"
	"content-scoring-service/internal/transport/httpserver/dto"
	"content-scoring-service/internal/transport/httpserver/middleware"
	"content-scoring-service/internal/validator"
)

// ItemHandler handles content item requests: uploads and score events.
type ItemHandler struct {
	scoring   *service.ScoringService
	earnings  *service.EarningsService
	validator *validator.Validator
	logger    *zap.Logger
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(
	scoring *service.ScoringService,
	earnings *service.EarningsService,
	v *validator.Validator,
	logger *zap.Logger,
) *ItemHandler {
	return &ItemHandler{
		scoring:   scoring,
		earnings:  earnings,
		validator: v,
		logger:    logger,
	}
}

// Create handles POST /api/v1/items
// The acting user becomes the owner.
func (h *ItemHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateItemRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	item, err := h.scoring.CreateItem(c.UserContext(), middleware.UserID(c), req.ToInput())
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(dto.FromDomainItem(item))
}

// Get handles GET /api/v1/items/:id
func (h *ItemHandler) Get(c *fiber.Ctx) error {
	item, err := h.earnings.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromDomainItem(item))
}

// Points handles GET /api/v1/items/:id/points
func (h *ItemHandler) Points(c *fiber.Ctx) error {
	points, err := h.earnings.GetItemPoints(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromItemPoints(*points))
}

// Rate handles POST /api/v1/items/:id/ratings
func (h *ItemHandler) Rate(c *fiber.Ctx) error {
	var req dto.RatingRequest
	if err := parseBody(c, h.validator, &req); err != nil {
		return writeError(c, h.logger, err)
	}

	update, err := h.scoring.SubmitRating(c.UserContext(), c.Params("id"), req.Rating)
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromScoreUpdate(update))
}

// Download handles POST /api/v1/items/:id/downloads
// Repeat downloads by the same user answer 200 with counted=false.
func (h *ItemHandler) Download(c *fiber.Ctx) error {
	update, err := h.scoring.RecordDownload(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromScoreUpdate(update))
}

// Like handles POST /api/v1/items/:id/likes
// Each call toggles the acting user's like.
func (h *ItemHandler) Like(c *fiber.Ctx) error {
	update, err := h.scoring.ToggleLike(c.UserContext(), c.Params("id"), middleware.UserID(c))
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.JSON(dto.FromLikeUpdate(update))
}
