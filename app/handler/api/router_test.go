package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-inventory/app/domain"
	"sales-inventory/app/domain/domaintest"
	"sales-inventory/app/middleware"
	"sales-inventory/app/repository/broker"
	"sales-inventory/app/usecase"
	"sales-inventory/config"
	"sales-inventory/pkg"
	"sales-inventory/pkg/logger/logtest"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofrs/uuid/v5"
)

var testCfg = &config.Config{Jwt: config.JwtConfig{SecretKey: strings.Repeat("j", 32)}}

func bearer(t *testing.T, role string) string {
	t.Helper()
	tok, err := pkg.GenerateJwtToken(pkg.TokenClaims{Subject: "dev", Role: role}, testCfg.Jwt.SecretKey, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return "Bearer " + tok
}

type result struct {
	Status int
	Body   struct {
		Success bool             `json:"success"`
		Data    json.RawMessage  `json:"data"`
		Error   string           `json:"error"`
		Meta    *domain.Metadata `json:"meta"`
	}
}

func do(t *testing.T, app *fiber.App, method, path, auth, body string) result {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(fiber.HeaderAuthorization, auth)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var res result
	res.Status = resp.StatusCode
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &res.Body); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, raw, err)
		}
	}
	return res
}

func inventoryApp(t *testing.T, products ...domain.Product) (*fiber.App, *domaintest.ProductRepository) {
	t.Helper()
	logtest.Capture(t)
	repo := domaintest.NewProductRepository(products...)
	h := NewProductHandler(usecase.NewProductUsecase(repo, broker.NewNoopStockPublisher()), validator.New())

	app := fiber.New()
	app.Use(middleware.RequestIDMiddleware())
	SetupInventoryRouter(app, h, testCfg)
	return app, repo
}

func TestProductRoutes(t *testing.T) {
	p := domain.Product{ID: uuid.Must(uuid.NewV4()), Name: "Lamp", Price: 19.5, Stock: 4, CreatedAt: time.Now()}
	app, _ := inventoryApp(t, p)

	res := do(t, app, http.MethodGet, "/inventory-service/products", "", "")
	if res.Status != http.StatusOK || res.Body.Meta == nil || res.Body.Meta.TotalData != 1 {
		t.Fatalf("list: %+v", res)
	}

	res = do(t, app, http.MethodGet, "/inventory-service/products/"+p.ID.String(), "", "")
	var got domain.Product
	_ = json.Unmarshal(res.Body.Data, &got)
	if res.Status != http.StatusOK || got.Stock != 4 || got.Name != "Lamp" {
		t.Fatalf("get: %d %+v", res.Status, got)
	}

	if res := do(t, app, http.MethodGet, "/inventory-service/products/not-a-uuid", "", ""); res.Status != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", res.Status)
	}
	if res := do(t, app, http.MethodGet, "/inventory-service/products/"+uuid.Must(uuid.NewV4()).String(), "", ""); res.Status != http.StatusNotFound {
		t.Fatalf("unknown id status = %d", res.Status)
	}
}

func TestAvailabilityRoute(t *testing.T) {
	p := domain.Product{ID: uuid.Must(uuid.NewV4()), Name: "Lamp", Stock: 4}
	app, _ := inventoryApp(t, p)
	base := "/inventory-service/products/" + p.ID.String() + "/availability"

	var avail domain.AvailabilityResponse
	res := do(t, app, http.MethodGet, base, "", "")
	_ = json.Unmarshal(res.Body.Data, &avail)
	if res.Status != http.StatusOK || !avail.Available || avail.CurrentStock != 4 {
		t.Fatalf("default quantity: %d %+v", res.Status, avail)
	}

	res = do(t, app, http.MethodGet, base+"?quantity=5", "", "")
	avail = domain.AvailabilityResponse{}
	_ = json.Unmarshal(res.Body.Data, &avail)
	if res.Status != http.StatusOK || avail.Available {
		t.Fatalf("quantity=5: %d %+v", res.Status, avail)
	}

	if res := do(t, app, http.MethodGet, base+"?quantity=0", "", ""); res.Status != http.StatusBadRequest {
		t.Fatalf("quantity=0 status = %d", res.Status)
	}
}

func TestCreateProductRequiresSeller(t *testing.T) {
	app, repo := inventoryApp(t)
	body := `{"name":"Chair","description":"oak","price":80,"stock":12}`

	if res := do(t, app, http.MethodPost, "/inventory-service/products", "", body); res.Status != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", res.Status)
	}
	if res := do(t, app, http.MethodPost, "/inventory-service/products", "Bearer garbage", body); res.Status != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d", res.Status)
	}
	if res := do(t, app, http.MethodPost, "/inventory-service/products", bearer(t, "buyer"), body); res.Status != http.StatusForbidden {
		t.Fatalf("buyer status = %d", res.Status)
	}

	res := do(t, app, http.MethodPost, "/inventory-service/products", bearer(t, "seller"), body)
	if res.Status != http.StatusCreated {
		t.Fatalf("seller status = %d (%s)", res.Status, res.Body.Error)
	}
	var created domain.Product
	_ = json.Unmarshal(res.Body.Data, &created)
	if stock, ok := repo.Stock(created.ID); !ok || stock != 12 {
		t.Fatalf("stored stock = %d, %v", stock, ok)
	}

	if res := do(t, app, http.MethodPost, "/inventory-service/products", bearer(t, "seller"), `{"price":1}`); res.Status != http.StatusBadRequest {
		t.Fatalf("invalid body status = %d", res.Status)
	}
}

type stubInventory struct {
	stock int64
}

func (s stubInventory) Availability(_ context.Context, productID uuid.UUID, quantity int) (domain.AvailabilityResponse, error) {
	return domain.AvailabilityResponse{ProductID: productID, Available: s.stock >= int64(quantity), CurrentStock: s.stock}, nil
}

type capturedEvents struct {
	events []domain.OrderConfirmed
}

func (c *capturedEvents) PublishOrderConfirmed(_ context.Context, e domain.OrderConfirmed) {
	c.events = append(c.events, e)
}

func salesApp(t *testing.T, stock int64) (*fiber.App, *capturedEvents) {
	t.Helper()
	logtest.Capture(t)
	events := &capturedEvents{}
	u := usecase.NewOrderUsecase(domaintest.NewOrderRepository(), stubInventory{stock: stock}, events)

	app := fiber.New()
	SetupSalesRouter(app, NewOrderHandler(u, validator.New()), testCfg)
	return app, events
}

func TestOrderRoutes(t *testing.T) {
	app, events := salesApp(t, 10)
	productID := uuid.Must(uuid.NewV4())
	body := `{"product_id":"` + productID.String() + `","quantity":3}`

	if res := do(t, app, http.MethodGet, "/sales-service/orders", "", ""); res.Status != http.StatusUnauthorized {
		t.Fatalf("anonymous list status = %d", res.Status)
	}
	if res := do(t, app, http.MethodPost, "/sales-service/orders", bearer(t, "buyer"), body); res.Status != http.StatusForbidden {
		t.Fatalf("buyer create status = %d", res.Status)
	}

	res := do(t, app, http.MethodPost, "/sales-service/orders", bearer(t, "seller"), body)
	if res.Status != http.StatusCreated {
		t.Fatalf("create status = %d (%s)", res.Status, res.Body.Error)
	}
	var order domain.Order
	_ = json.Unmarshal(res.Body.Data, &order)
	if order.Status != "Confirmed" || order.Quantity != 3 || order.ProductID != productID {
		t.Fatalf("order = %+v", order)
	}
	if len(events.events) != 1 || events.events[0].OrderID != order.ID {
		t.Fatalf("events = %+v", events.events)
	}

	res = do(t, app, http.MethodGet, "/sales-service/orders/"+order.ID.String(), bearer(t, "buyer"), "")
	if res.Status != http.StatusOK {
		t.Fatalf("get status = %d", res.Status)
	}
	res = do(t, app, http.MethodGet, "/sales-service/orders", bearer(t, "buyer"), "")
	if res.Status != http.StatusOK || res.Body.Meta.TotalData != 1 {
		t.Fatalf("list: %+v", res)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	app, events := salesApp(t, 2)
	body := `{"product_id":"` + uuid.Must(uuid.NewV4()).String() + `","quantity":3}`

	res := do(t, app, http.MethodPost, "/sales-service/orders", bearer(t, "seller"), body)
	if res.Status != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", res.Status)
	}
	if !strings.Contains(res.Body.Error, "insufficient stock") {
		t.Fatalf("error = %q", res.Body.Error)
	}
	if len(events.events) != 0 {
		t.Fatal("no event expected")
	}
}

func TestCreateOrderValidation(t *testing.T) {
	app, _ := salesApp(t, 10)
	for _, body := range []string{`{"product_id":"x","quantity":1}`, `{"product_id":"` + uuid.Must(uuid.NewV4()).String() + `","quantity":0}`, `{`} {
		if res := do(t, app, http.MethodPost, "/sales-service/orders", bearer(t, "seller"), body); res.Status != http.StatusBadRequest {
			t.Fatalf("body %s: status = %d", body, res.Status)
		}
	}
}
