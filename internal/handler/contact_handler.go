package handler

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
)

type ContactService interface {
	Submit(ctx context.Context, contact *domain.Contact) (*domain.Contact, error)
}

type ContactHandler struct {
	service ContactService
}

func NewContactHandler(service ContactService) (*ContactHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("contact service is required")
	}
	return &ContactHandler{service: service}, nil
}

func RegisterContactRoutes(router fiber.Router, service ContactService) error {
	h, err := NewContactHandler(service)
	if err != nil {
		return err
	}

	router.Group("/v1").Post("/contacts", h.Submit)

	return nil
}

type contactRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Interest string `json:"interest"`
	Message  string `json:"message"`
}

func (h *ContactHandler) Submit(c *fiber.Ctx) error {
	var req contactRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	ctx := observability.WithCorrelationID(c.Context(), requestCorrelationID(c))
	contact, err := h.service.Submit(ctx, &domain.Contact{
		Email:    req.Email,
		Name:     req.Name,
		Interest: req.Interest,
		Message:  req.Message,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     contact.ID,
		"email":  contact.Email,
		"status": "received",
	})
}
