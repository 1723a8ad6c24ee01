package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
	"github.com/sargasolutions/campaign-engine/internal/provider"
	"github.com/sargasolutions/campaign-engine/internal/ratelimit"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"github.com/sargasolutions/campaign-engine/internal/template"
	"go.uber.org/zap"
)

const (
	defaultBroadcastDelay = 2000 * time.Millisecond
	defaultErrorCap       = 10
	emailProviderName     = "resend"
)

// BroadcastService sends a rendered campaign to every active subscriber,
// one recipient at a time with a fixed pause between sends. A recipient
// failure is recorded and the run continues; only context cancellation
// stops it early.
type BroadcastService struct {
	subscribers repository.SubscriberRepository
	campaigns   repository.CampaignRepository
	templates   template.Store
	sender      provider.Sender
	rateLimiter ratelimit.RateLimiter
	logger      *zap.Logger
	metrics     *observability.Metrics
	delay       time.Duration
	errorCap    int
	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewBroadcastService(
	subscribers repository.SubscriberRepository,
	campaigns repository.CampaignRepository,
	templates template.Store,
	sender provider.Sender,
	rateLimiter ratelimit.RateLimiter,
	delay time.Duration,
	errorCap int,
	logger *zap.Logger,
) (*BroadcastService, error) {
	if subscribers == nil {
		return nil, fmt.Errorf("subscriber repository is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("template store is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if delay <= 0 {
		delay = defaultBroadcastDelay
	}
	if errorCap <= 0 {
		errorCap = defaultErrorCap
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &BroadcastService{
		subscribers: subscribers,
		campaigns:   campaigns,
		templates:   templates,
		sender:      sender,
		rateLimiter: rateLimiter,
		logger:      logger,
		delay:       delay,
		errorCap:    errorCap,
		now:         time.Now,
		sleep:       sleepWithContext,
	}, nil
}

func (s *BroadcastService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Broadcast renders and delivers the campaign to the active subscriber
// list. The returned result is never nil on success: a canceled run
// reports the partial tallies it reached.
func (s *BroadcastService) Broadcast(ctx context.Context, content domain.CampaignContent) (*domain.BroadcastResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := content.Validate(); err != nil {
		return nil, err
	}

	tpl, err := s.templates.Load(ctx, template.NewsletterBroadcast)
	if err != nil {
		return nil, fmt.Errorf("failed to load broadcast template: %w", err)
	}

	recipients, err := s.subscribers.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active subscribers: %w", err)
	}

	shared := template.TextVars(content.SharedVariables()).Merge(template.Vars{
		"SHOW_QUICK_UPDATES": template.Flag(content.ShowQuickUpdates),
	})

	result := &domain.BroadcastResult{
		CampaignID: uuid.NewString(),
		Total:      len(recipients),
	}

	startedAt := s.now().UTC()
	s.logger.Info("broadcast started",
		zap.String("campaignId", result.CampaignID),
		zap.String("title", content.Title),
		zap.Int("recipients", result.Total),
	)

	for i := range recipients {
		if ctx.Err() != nil {
			result.Canceled = true
			break
		}

		sub := &recipients[i]
		s.deliverOne(ctx, tpl, shared, content.Title, sub, result)

		if i < len(recipients)-1 {
			if err := s.sleep(ctx, s.delay); err != nil {
				result.Canceled = true
				break
			}
		}
	}

	s.metrics.ObserveBroadcastRecipients(result.Total)
	s.logger.Info("broadcast finished",
		zap.String("campaignId", result.CampaignID),
		zap.String("status", result.Status().String()),
		zap.Int("sent", result.SentCount),
		zap.Int("failed", result.ErrorCount),
	)

	s.persistSummary(content, result, startedAt)

	return result, nil
}

// deliverOne renders and sends one recipient's email, tallying the
// outcome. Per-recipient failures never abort the run.
func (s *BroadcastService) deliverOne(
	ctx context.Context,
	tpl string,
	shared template.Vars,
	subject string,
	sub *domain.Subscriber,
	result *domain.BroadcastResult,
) {
	vars := shared.Merge(template.TextVars(sub.Variables()))
	html := template.Render(tpl, vars)

	if s.rateLimiter != nil {
		if err := s.rateLimiter.Wait(ctx, emailProviderName); err != nil {
			s.recordFailure(result, sub.Email, err)
			return
		}
	}

	sendStart := s.now()
	receipt, err := s.sender.Send(ctx, provider.Email{
		To:      sub.Email,
		Subject: subject,
		HTML:    html,
	})
	s.metrics.ObserveEmailSendDuration("broadcast", s.now().Sub(sendStart))

	if err != nil {
		s.recordFailure(result, sub.Email, err)
		return
	}

	result.SentCount++
	s.metrics.IncEmailSent("broadcast")

	messageID := ""
	if receipt != nil {
		messageID = receipt.MessageID
	}
	s.logger.Debug("broadcast email sent",
		zap.String("campaignId", result.CampaignID),
		zap.String("recipient", sub.Email),
		zap.String("messageId", messageID),
	)
}

func (s *BroadcastService) recordFailure(result *domain.BroadcastResult, email string, err error) {
	result.ErrorCount++
	if len(result.Errors) < s.errorCap {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %s", email, err.Error()))
	}

	s.metrics.IncEmailFailed("broadcast", failureReason(err))
	s.logger.Warn("broadcast email failed",
		zap.String("campaignId", result.CampaignID),
		zap.String("recipient", email),
		zap.Error(err),
	)
}

// persistSummary writes the campaign run record. Persistence failure is
// logged and swallowed; the broadcast already happened and the caller
// still gets its tallies.
func (s *BroadcastService) persistSummary(content domain.CampaignContent, result *domain.BroadcastResult, sentAt time.Time) {
	if s.campaigns == nil {
		return
	}

	campaign := &domain.Campaign{
		ID:         result.CampaignID,
		Title:      content.Title,
		Subtitle:   content.Subtitle,
		Status:     result.Status(),
		Total:      result.Total,
		SentCount:  result.SentCount,
		ErrorCount: result.ErrorCount,
		Errors:     result.Errors,
		SentAt:     sentAt,
	}

	persistCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.campaigns.Create(persistCtx, campaign); err != nil {
		s.logger.Error("failed to persist campaign summary",
			zap.String("campaignId", result.CampaignID),
			zap.Error(err),
		)
	}
}

func (s *BroadcastService) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("%w: campaign id is required", domain.ErrValidation)
	}
	return s.campaigns.GetByID(ctx, strings.TrimSpace(id))
}

func (s *BroadcastService) ListCampaigns(ctx context.Context, limit int) ([]domain.Campaign, error) {
	return s.campaigns.List(ctx, limit)
}

func failureReason(err error) string {
	if provider.IsTransient(err) {
		return "transient_error"
	}
	return "permanent_error"
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
