package handler

import (
	"log/slog"

	"sales-inventory/app/domain"
	"sales-inventory/app/handler/api/response"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type ProductHandler struct {
	productUsecase domain.ProductService
	validator      *validator.Validate
}

func NewProductHandler(productUsecase domain.ProductService, validator *validator.Validate) *ProductHandler {
	return &ProductHandler{productUsecase, validator}
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req domain.ProductCreateRequest
	if err := c.BodyParser(&req); err != nil {
		slog.WarnContext(c.Context(), "[productHandler] Create", "bodyParser", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	if err := h.validator.Struct(req); err != nil {
		slog.WarnContext(c.Context(), "[productHandler] Create", "validation", err)
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrValidation))
	}

	product, err := h.productUsecase.Create(c.Context(), req)
	if err != nil {
		slog.ErrorContext(c.Context(), "[productHandler] Create", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	c.Location(c.BaseURL() + c.OriginalURL() + "/" + product.ID.String())
	return c.Status(fiber.StatusCreated).JSON(response.Success(product))
}

func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "[productHandler] GetByID")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	product, err := h.productUsecase.GetByID(c.Context(), id)
	if err != nil {
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(product))
}

func (h *ProductHandler) GetList(c *fiber.Ctx) error {
	param := listParams(c, "[productHandler] GetList")

	products, metadata, err := h.productUsecase.GetList(c.Context(), param)
	if err != nil {
		slog.ErrorContext(c.Context(), "[productHandler] GetList", "usecase", err)
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.SuccessWithMetadata(products, metadata))
}

// Availability answers whether ?quantity= units (default 1) are in stock.
func (h *ProductHandler) Availability(c *fiber.Ctx) error {
	id, ok := parseID(c, "id", "[productHandler] Availability")
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	quantity := c.QueryInt("quantity", 1)
	if quantity < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(response.Error(domain.ErrBadRequest))
	}

	avail, err := h.productUsecase.Availability(c.Context(), id, int64(quantity))
	if err != nil {
		status, resp := response.FromError(err)
		return c.Status(status).JSON(resp)
	}

	return c.Status(fiber.StatusOK).JSON(response.Success(avail))
}
