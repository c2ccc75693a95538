package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/gema-grader/internal/observability"
)

func TestObservabilityCountsAPIErrors(t *testing.T) {
	app := fiber.New()
	app.Use(Observability(zerolog.Nop()))
	app.Post("/api/v1/grade", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusUnprocessableEntity, "unsupported modality")
	})
	app.Get("/metrics-free", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	apiErrors := observability.APIErrors().WithLabelValues(http.MethodPost, "/api/v1/grade", "422")
	before := testutil.ToFloat64(apiErrors)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/v1/grade", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	require.Equal(t, before+1, testutil.ToFloat64(apiErrors))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics-free", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestLatencyBucket(t *testing.T) {
	require.Equal(t, "<=25ms", latencyBucket(10*time.Millisecond))
	require.Equal(t, "<=1s", latencyBucket(700*time.Millisecond))
	require.Equal(t, ">1s", latencyBucket(2*time.Second))
}
