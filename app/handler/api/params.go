package handler

import (
	"log/slog"

	"sales-inventory/app/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
)

func parseID(c *fiber.Ctx, name, op string) (uuid.UUID, bool) {
	raw := c.Params(name)
	id, err := uuid.FromString(raw)
	if err != nil || id.IsNil() {
		slog.WarnContext(c.Context(), op, "parseUUID:"+raw, err)
		return uuid.Nil, false
	}
	return id, true
}

func listParams(c *fiber.Ctx, op string) domain.GetListRequest {
	param := domain.GetListRequest{}
	if err := c.QueryParser(&param); err != nil {
		slog.WarnContext(c.Context(), op, "queryParser", err)
	}

	if param.Page <= 0 {
		param.Page = 1
	}
	if param.Limit <= 0 {
		param.Limit = 10
	}
	if param.Limit > 100 {
		param.Limit = 100
	}
	return param
}
