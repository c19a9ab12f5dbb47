package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/gasworks/servicedesk/internal/persistence"
)

func newHealthApp() *fiber.App {
	app := fiber.New()
	h := NewHealthHandler("servicedesk", "test", &persistence.Postgres{}, &persistence.Redis{})
	app.Get("/health/live", h.Live)
	app.Get("/health/ready", h.Ready)
	return app
}

func TestHealthLive(t *testing.T) {
	app := newHealthApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/live", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHealthReady_DependenciesUnavailable(t *testing.T) {
	app := newHealthApp()

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/ready", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Fatalf("expected 503 when postgres and redis are unreachable, got %d", resp.StatusCode)
	}
}
