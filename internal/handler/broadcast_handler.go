package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
)

type BroadcastService interface {
	Broadcast(ctx context.Context, content domain.CampaignContent) (*domain.BroadcastResult, error)
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)
	ListCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error)
}

type BroadcastHandler struct {
	service BroadcastService
}

func NewBroadcastHandler(service BroadcastService) (*BroadcastHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("broadcast service is required")
	}
	return &BroadcastHandler{service: service}, nil
}

func RegisterBroadcastRoutes(router fiber.Router, service BroadcastService) error {
	h, err := NewBroadcastHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/broadcasts", h.CreateBroadcast)
	v1.Get("/broadcasts/:id", h.GetCampaign)
	v1.Get("/broadcasts", h.ListCampaigns)

	return nil
}

type broadcastRequest struct {
	Title              string `json:"title"`
	Subtitle           string `json:"subtitle"`
	Content            string `json:"content"`
	Badge              string `json:"badge"`
	FeaturedTitle      string `json:"featuredTitle"`
	FeaturedContent    string `json:"featuredContent"`
	CTAText            string `json:"ctaText"`
	CTALink            string `json:"ctaLink"`
	ShowQuickUpdates   bool   `json:"showQuickUpdates"`
	TechUpdate         string `json:"techUpdate"`
	OperationsUpdate   string `json:"operationsUpdate"`
	PartnershipsUpdate string `json:"partnershipsUpdate"`
}

type broadcastResponse struct {
	CampaignID string   `json:"campaignId"`
	Status     string   `json:"status"`
	Total      int      `json:"total"`
	Sent       int      `json:"sent"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

type campaignResponse struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle,omitempty"`
	Status   string    `json:"status"`
	Total    int       `json:"total"`
	Sent     int       `json:"sent"`
	Failed   int       `json:"failed"`
	Errors   []string  `json:"errors,omitempty"`
	SentAt   time.Time `json:"sentAt"`
}

// CreateBroadcast runs the full dispatch on the request context, so a
// disconnecting client cancels the remaining sends and the partial
// tallies are still returned and persisted.
func (h *BroadcastHandler) CreateBroadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	content := domain.CampaignContent{
		Title:              strings.TrimSpace(req.Title),
		Subtitle:           strings.TrimSpace(req.Subtitle),
		Content:            req.Content,
		Badge:              req.Badge,
		FeaturedTitle:      req.FeaturedTitle,
		FeaturedContent:    req.FeaturedContent,
		CTAText:            req.CTAText,
		CTALink:            req.CTALink,
		ShowQuickUpdates:   req.ShowQuickUpdates,
		TechUpdate:         req.TechUpdate,
		OperationsUpdate:   req.OperationsUpdate,
		PartnershipsUpdate: req.PartnershipsUpdate,
	}

	ctx := observability.WithCorrelationID(c.Context(), requestCorrelationID(c))
	result, err := h.service.Broadcast(ctx, content)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(broadcastResponse{
		CampaignID: result.CampaignID,
		Status:     result.Status().String(),
		Total:      result.Total,
		Sent:       result.SentCount,
		Failed:     result.ErrorCount,
		Errors:     result.Errors,
	})
}

func (h *BroadcastHandler) GetCampaign(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	campaign, err := h.service.GetCampaign(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toCampaignResponse(campaign))
}

func (h *BroadcastHandler) ListCampaigns(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	campaigns, err := h.service.ListCampaigns(c.Context(), limit)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]campaignResponse, 0, len(campaigns))
	for i := range campaigns {
		responses = append(responses, toCampaignResponse(&campaigns[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": responses,
	})
}

func toCampaignResponse(campaign *domain.Campaign) campaignResponse {
	if campaign == nil {
		return campaignResponse{}
	}

	return campaignResponse{
		ID:       campaign.ID,
		Title:    campaign.Title,
		Subtitle: campaign.Subtitle,
		Status:   campaign.Status.String(),
		Total:    campaign.Total,
		Sent:     campaign.SentCount,
		Failed:   campaign.ErrorCount,
		Errors:   campaign.Errors,
		SentAt:   campaign.SentAt,
	}
}
