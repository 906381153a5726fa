package handler

import (
	"log/slog"

	"sales-inventory/app/domain"
	"sales-inventory/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderUsecase domain.OrderService
	validator    *validator.Validate
}

func NewOrderHandler(orderUsecase domain.OrderService, validator *validator.Validate) *OrderHandler {
	return &OrderHandler{orderUsecase, validator}
}

func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var req domain.OrderCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.WarnContext(c.Context(), "[orderHandler] Create", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.WarnContext(c.Context(), "[orderHandler] Create", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	order, err := h.orderUsecase.Create(c.Context(), req)
	if err != nil {
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	c.Location(c.BaseURL() + c.OriginalURL() + "/" + order.ID.String())
	return c.Status(fiber.StatusCreated).JSON(response.Success(order))
}

func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "[orderHandler] GetByID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	order, err := h.orderUsecase.GetByID(c.Context(), id)
	if err != nil {
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(order))
}

func (h *OrderHandler) GetList(c *fiber.Ctx) error {
	param := listParams(c, "[orderHandler] GetList")

	orders, metadata, err := h.orderUsecase.GetList(c.Context(), param)
	if err != nil {
		slog.ErrorContext(c.Context(), "[orderHandler] GetList", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.SuccessWithMetadata(orders, metadata))
}
