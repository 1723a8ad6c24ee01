package handler

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
)

type SubscriptionService interface {
	Subscribe(ctx context.Context, email string, name string) (*domain.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
}

type SubscriberHandler struct {
	service SubscriptionService
}

func NewSubscriberHandler(service SubscriptionService) (*SubscriberHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("subscription service is required")
	}
	return &SubscriberHandler{service: service}, nil
}

func RegisterSubscriberRoutes(router fiber.Router, service SubscriptionService) error {
	h, err := NewSubscriberHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/subscribers", h.Subscribe)
	v1.Post("/subscribers/unsubscribe", h.Unsubscribe)

	return nil
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type subscriberResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

type unsubscribeRequest struct {
	Email string `json:"email"`
}

func (h *SubscriberHandler) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := observability.WithCorrelationID(c.Context(), requestCorrelationID(c))
	sub, err := h.service.Subscribe(ctx, req.Email, req.Name)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(subscriberResponse{
		ID:        sub.ID,
		Email:     sub.Email,
		Name:      sub.Name,
		CreatedAt: sub.CreatedAt,
	})
}

func (h *SubscriberHandler) Unsubscribe(c *fiber.Ctx) error {
	var req unsubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := observability.WithCorrelationID(c.Context(), requestCorrelationID(c))
	if err := h.service.Unsubscribe(ctx, req.Email); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"email":  req.Email,
		"status": "unsubscribed",
	})
}
