package server

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"sales-inventory/pkg/ctxutil"

	"github.com/gofiber/fiber/v2"
)

func TestReadinessFollowsProbe(t *testing.T) {
	var ready atomic.Bool
	app := New("inventory", ready.Load)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("not ready status = %d", resp.StatusCode)
	}

	ready.Store(true)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ready", nil))
	if err != nil {
		t.Fatalf("ready: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ready status = %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/live", nil))
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("live = %v, %v", resp, err)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	app := New("sales", func() bool { return true })
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(ctxutil.RequestIDHeader, "abc-123")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if got := resp.Header.Get(ctxutil.RequestIDHeader); got != "abc-123" {
		t.Fatalf("request id header = %q", got)
	}

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ping", nil))
	if err != nil {
		t.Fatalf("ping: %v", err)
	}
	if resp.Header.Get(ctxutil.RequestIDHeader) == "" {
		t.Fatal("a request id should be generated")
	}
}
