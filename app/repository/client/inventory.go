package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sales-inventory/app/domain"
	"sales-inventory/pkg/ctxutil"

	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
)

type inventoryClient struct {
	baseURL string
	timeout time.Duration
}

// NewInventoryClient calls the inventory service at baseURL, e.g.
// http://inventory:8081/inventory-service.
func NewInventoryClient(baseURL string, timeout time.Duration) domain.InventoryClient {
	return &inventoryClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

type availabilityEnvelope struct {
	Success bool                        `json:"success"`
	Data    domain.AvailabilityResponse `json:"data"`
	Error   string                      `json:"error"`
}

func (c *inventoryClient) Availability(ctx context.Context, productID uuid.UUID, quantity int) (domain.AvailabilityResponse, error) {
	url := fmt.Sprintf("%s/products/%s/availability?quantity=%d", c.baseURL, productID, quantity)

	agent := fiber.Get(url).Timeout(c.timeout)
	if reqID := ctxutil.GetRequestID(ctx); reqID != "" {
		agent.Set(ctxutil.RequestIDHeader, reqID)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		slog.ErrorContext(ctx, "[inventoryClient] Availability", "request", errs[0], "url", url)
		return domain.AvailabilityResponse{}, fmt.Errorf("%w: %v", domain.ErrUpstream, errs[0])
	}

	switch {
	case code == fiber.StatusNotFound:
		return domain.AvailabilityResponse{}, fmt.Errorf("%w: product %s", domain.ErrNotFound, productID)
	case code != fiber.StatusOK:
		slog.ErrorContext(ctx, "[inventoryClient] Availability", "status", code, "url", url)
		return domain.AvailabilityResponse{}, fmt.Errorf("%w: status %d", domain.ErrUpstream, code)
	}

	var env availabilityEnvelope
	if err := json.Unmarshal(body, &env); err != nil || !env.Success {
		slog.ErrorContext(ctx, "[inventoryClient] Availability", "decode", err, "success", env.Success)
		return domain.AvailabilityResponse{}, fmt.Errorf("%w: unexpected response", domain.ErrUpstream)
	}

	return env.Data, nil
}
