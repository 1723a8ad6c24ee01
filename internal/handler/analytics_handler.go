package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/service"
)

type AnalyticsService interface {
	Overview(ctx context.Context) *domain.AnalyticsOverview
	TimeSeries(ctx context.Context) *service.TimeSeriesResult
	TestConnection(ctx context.Context) *service.ConnectionTest
}

type AnalyticsHandler struct {
	service AnalyticsService
}

func NewAnalyticsHandler(service AnalyticsService) (*AnalyticsHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("analytics service is required")
	}
	return &AnalyticsHandler{service: service}, nil
}

func RegisterAnalyticsRoutes(router fiber.Router, service AnalyticsService) error {
	h, err := NewAnalyticsHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/analytics", h.Overview)
	v1.Get("/analytics/timeseries", h.TimeSeries)
	v1.Get("/analytics/test", h.TestConnection)

	return nil
}

// Overview always answers 200: reporting failures degrade into an
// unsuccessful body rather than a transport error.
func (h *AnalyticsHandler) Overview(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.Overview(c.Context()))
}

func (h *AnalyticsHandler) TimeSeries(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.TimeSeries(c.Context()))
}

func (h *AnalyticsHandler) TestConnection(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.service.TestConnection(c.Context()))
}
