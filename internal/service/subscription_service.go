package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
	"github.com/sargasolutions/campaign-engine/internal/queue"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"go.uber.org/zap"
)

// SubscriptionService manages the subscriber list and enqueues the
// transactional emails tied to list changes. Delivery is asynchronous: a
// failed enqueue is logged but never fails the list change itself.
type SubscriptionService struct {
	subscribers repository.SubscriberRepository
	publisher   queue.Publisher
	logger      *zap.Logger
	metrics     *observability.Metrics
	now         func() time.Time
}

func NewSubscriptionService(
	subscribers repository.SubscriberRepository,
	publisher queue.Publisher,
	logger *zap.Logger,
) (*SubscriptionService, error) {
	if subscribers == nil {
		return nil, fmt.Errorf("subscriber repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &SubscriptionService{
		subscribers: subscribers,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}, nil
}

func (s *SubscriptionService) SetMetrics(metrics *observability.Metrics) {
	if s == nil {
		return
	}
	s.metrics = metrics
}

// Subscribe adds an address to the list (or reactivates it) and queues
// the welcome email. Subscribing an already active address is a conflict.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string, name string) (*domain.Subscriber, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	sub := &domain.Subscriber{
		ID:    uuid.NewString(),
		Email: strings.TrimSpace(email),
		Name:  strings.TrimSpace(name),
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.subscribers.Upsert(ctx, sub); err != nil {
		return nil, err
	}

	s.enqueueEmail(ctx, queue.KindWelcome, sub.Email, sub.DisplayName(), sub.Variables())

	return sub, nil
}

// Unsubscribe flags the address so future broadcasts skip it and queues
// the confirmation email.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, email string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	if err := s.subscribers.Unsubscribe(ctx, trimmed, s.now().UTC()); err != nil {
		return err
	}

	s.enqueueEmail(ctx, queue.KindUnsubscribeConfirmation, trimmed, "", map[string]string{
		"EMAIL": trimmed,
	})

	return nil
}

func (s *SubscriptionService) enqueueEmail(
	ctx context.Context,
	kind queue.EmailKind,
	recipient string,
	name string,
	variables map[string]string,
) {
	if s.publisher == nil {
		return
	}

	correlationID, _ := observability.CorrelationIDFromContext(ctx)
	msg := queue.EmailMessage{
		ID:            uuid.NewString(),
		CorrelationID: correlationID,
		Kind:          kind,
		Recipient:     recipient,
		Name:          name,
		Variables:     variables,
	}

	if err := s.publisher.Publish(ctx, queue.QueueName(kind), msg); err != nil {
		s.logger.Error("failed to enqueue transactional email",
			zap.String("kind", kind.String()),
			zap.String("recipient", recipient),
			zap.Error(err),
		)
	}
}
