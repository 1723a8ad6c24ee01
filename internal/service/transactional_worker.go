package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
	"github.com/sargasolutions/campaign-engine/internal/provider"
	"github.com/sargasolutions/campaign-engine/internal/queue"
	"github.com/sargasolutions/campaign-engine/internal/ratelimit"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"github.com/sargasolutions/campaign-engine/internal/template"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const minWorkerConcurrency = 1

var kindSubjects = map[queue.EmailKind]string{
	queue.KindWelcome:                 "Welcome to the SARGAS.AI newsletter",
	queue.KindContactConfirmation:     "We received your message",
	queue.KindUnsubscribeConfirmation: "You have been unsubscribed",
}

var kindTemplates = map[queue.EmailKind]string{
	queue.KindWelcome:                 template.NewsletterWelcome,
	queue.KindContactConfirmation:     template.ContactConfirmation,
	queue.KindUnsubscribeConfirmation: template.UnsubscribeConfirmation,
}

// TransactionalWorker consumes queued transactional email messages,
// renders the kind's template, and delivers through the provider. A
// transient delivery failure requeues the message; permanent failures are
// logged and acked so the queue drains.
type TransactionalWorker struct {
	consumer    queue.Consumer
	templates   template.Store
	sender      provider.Sender
	rateLimiter ratelimit.RateLimiter
	emailLog    repository.EmailLogRepository
	logger      *zap.Logger
	metrics     *observability.Metrics
	concurrency int
	now         func() time.Time
}

func NewTransactionalWorker(
	consumer queue.Consumer,
	templates template.Store,
	sender provider.Sender,
	rateLimiter ratelimit.RateLimiter,
	emailLog repository.EmailLogRepository,
	concurrency int,
	logger *zap.Logger,
) (*TransactionalWorker, error) {
	if consumer == nil {
		return nil, fmt.Errorf("queue consumer is required")
	}
	if templates == nil {
		return nil, fmt.Errorf("template store is required")
	}
	if sender == nil {
		return nil, fmt.Errorf("email sender is required")
	}
	if concurrency < minWorkerConcurrency {
		concurrency = minWorkerConcurrency
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TransactionalWorker{
		consumer:    consumer,
		templates:   templates,
		sender:      sender,
		rateLimiter: rateLimiter,
		emailLog:    emailLog,
		logger:      logger,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func (w *TransactionalWorker) SetMetrics(metrics *observability.Metrics) {
	if w == nil {
		return
	}
	w.metrics = metrics
}

// Start consumes the transactional queues until context cancellation.
func (w *TransactionalWorker) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	queueNames := queue.WorkQueueNames()
	if len(queueNames) == 0 {
		return fmt.Errorf("no work queues configured")
	}

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < w.concurrency; i++ {
		queueName := queueNames[i%len(queueNames)]
		workerID := i + 1

		g.Go(func() error {
			w.logger.Info("transactional worker started",
				zap.Int("workerId", workerID),
				zap.String("queue", queueName),
			)

			err := w.consumer.Consume(groupCtx, queueName, w.processMessage)
			if err != nil {
				w.logger.Error("transactional worker stopped with error",
					zap.Int("workerId", workerID),
					zap.String("queue", queueName),
					zap.Error(err),
				)
				return err
			}

			w.logger.Info("transactional worker stopped",
				zap.Int("workerId", workerID),
				zap.String("queue", queueName),
			)
			return nil
		})
	}

	return g.Wait()
}

func (w *TransactionalWorker) processMessage(ctx context.Context, msg queue.EmailMessage) error {
	kindLabel := msg.Kind.String()
	w.metrics.IncWorkerInFlight(kindLabel)
	defer w.metrics.DecWorkerInFlight(kindLabel)

	templateName, ok := kindTemplates[msg.Kind]
	if !ok {
		w.logger.Warn("no template mapped for email kind, dropping",
			zap.String("messageId", msg.ID),
			zap.String("kind", kindLabel),
		)
		return nil
	}

	tpl, err := w.templates.Load(ctx, templateName)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			w.logger.Error("template missing for email kind, dropping",
				zap.String("messageId", msg.ID),
				zap.String("template", templateName),
			)
			return nil
		}
		return fmt.Errorf("failed to load template %q: %w", templateName, err)
	}

	html := template.Render(tpl, template.TextVars(msg.Variables))

	if w.rateLimiter != nil {
		if err := w.rateLimiter.Wait(ctx, emailProviderName); err != nil {
			return fmt.Errorf("rate limiter wait failed: %w", err)
		}
	}

	sendStart := w.now()
	receipt, sendErr := w.sender.Send(ctx, provider.Email{
		To:      msg.Recipient,
		Subject: kindSubjects[msg.Kind],
		HTML:    html,
	})
	w.metrics.ObserveEmailSendDuration(kindLabel, w.now().Sub(sendStart))

	w.recordOutcome(ctx, msg, receipt, sendErr)

	if sendErr == nil {
		w.metrics.IncEmailSent(kindLabel)
		return nil
	}

	if provider.IsTransient(sendErr) {
		w.metrics.IncEmailFailed(kindLabel, "transient_error")
		return fmt.Errorf("transient send failure: %w", sendErr)
	}

	// Permanent failure: ack so the message does not loop forever.
	w.metrics.IncEmailFailed(kindLabel, "permanent_error")
	w.logger.Error("transactional email permanently failed",
		zap.String("messageId", msg.ID),
		zap.String("kind", kindLabel),
		zap.String("recipient", msg.Recipient),
		zap.Error(sendErr),
	)
	return nil
}

func (w *TransactionalWorker) recordOutcome(
	ctx context.Context,
	msg queue.EmailMessage,
	receipt *provider.Receipt,
	sendErr error,
) {
	if w.emailLog == nil {
		return
	}

	entry := &repository.EmailLogEntry{
		ID:        uuid.NewString(),
		Kind:      msg.Kind.String(),
		Recipient: msg.Recipient,
		Success:   sendErr == nil,
		CreatedAt: w.now().UTC(),
	}

	if receipt != nil && strings.TrimSpace(receipt.MessageID) != "" {
		messageID := receipt.MessageID
		entry.MessageID = &messageID
	}
	if sendErr != nil {
		errText := sendErr.Error()
		entry.Error = &errText
	}

	if err := w.emailLog.Record(ctx, entry); err != nil {
		w.logger.Warn("failed to record email log entry",
			zap.String("messageId", msg.ID),
			zap.Error(err),
		)
	}
}
