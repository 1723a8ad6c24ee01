package service

import (
	"context"
	"time"

	"github.com/sargasolutions/campaign-engine/internal/analytics"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/provider"
	"github.com/sargasolutions/campaign-engine/internal/queue"
	"github.com/sargasolutions/campaign-engine/internal/repository"
)

type fakeSubscriberRepo struct {
	upsertFn      func(ctx context.Context, s *domain.Subscriber) (bool, error)
	getByEmailFn  func(ctx context.Context, email string) (*domain.Subscriber, error)
	listActiveFn  func(ctx context.Context) ([]domain.Subscriber, error)
	unsubscribeFn func(ctx context.Context, email string, at time.Time) error
}

func (f *fakeSubscriberRepo) Upsert(ctx context.Context, s *domain.Subscriber) (bool, error) {
	if f.upsertFn == nil {
		return true, nil
	}
	return f.upsertFn(ctx, s)
}

func (f *fakeSubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	if f.getByEmailFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByEmailFn(ctx, email)
}

func (f *fakeSubscriberRepo) ListActive(ctx context.Context) ([]domain.Subscriber, error) {
	if f.listActiveFn == nil {
		return nil, nil
	}
	return f.listActiveFn(ctx)
}

func (f *fakeSubscriberRepo) Unsubscribe(ctx context.Context, email string, at time.Time) error {
	if f.unsubscribeFn == nil {
		return nil
	}
	return f.unsubscribeFn(ctx, email, at)
}

type fakeCampaignRepo struct {
	createFn  func(ctx context.Context, c *domain.Campaign) error
	getByIDFn func(ctx context.Context, id string) (*domain.Campaign, error)
	listFn    func(ctx context.Context, limit int) ([]domain.Campaign, error)
}

func (f *fakeCampaignRepo) Create(ctx context.Context, c *domain.Campaign) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, c)
}

func (f *fakeCampaignRepo) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	if f.getByIDFn == nil {
		return nil, domain.ErrNotFound
	}
	return f.getByIDFn(ctx, id)
}

func (f *fakeCampaignRepo) List(ctx context.Context, limit int) ([]domain.Campaign, error) {
	if f.listFn == nil {
		return nil, nil
	}
	return f.listFn(ctx, limit)
}

type fakeContactRepo struct {
	createFn func(ctx context.Context, c *domain.Contact) error
}

func (f *fakeContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	if f.createFn == nil {
		return nil
	}
	return f.createFn(ctx, c)
}

type fakeEmailLogRepo struct {
	recordFn func(ctx context.Context, entry *repository.EmailLogEntry) error
}

func (f *fakeEmailLogRepo) Record(ctx context.Context, entry *repository.EmailLogEntry) error {
	if f.recordFn == nil {
		return nil
	}
	return f.recordFn(ctx, entry)
}

type fakeTemplateStore struct {
	loadFn func(ctx context.Context, name string) (string, error)
}

func (f *fakeTemplateStore) Load(ctx context.Context, name string) (string, error) {
	if f.loadFn == nil {
		return "", domain.ErrTemplateNotFound
	}
	return f.loadFn(ctx, name)
}

type fakeSender struct {
	sendFn func(ctx context.Context, email provider.Email) (*provider.Receipt, error)
}

func (f *fakeSender) Send(ctx context.Context, email provider.Email) (*provider.Receipt, error) {
	if f.sendFn == nil {
		return &provider.Receipt{StatusCode: 200}, nil
	}
	return f.sendFn(ctx, email)
}

type fakeRateLimiter struct {
	allowFn func(ctx context.Context, providerName string) (bool, error)
	waitFn  func(ctx context.Context, providerName string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, providerName string) (bool, error) {
	if f.allowFn == nil {
		return true, nil
	}
	return f.allowFn(ctx, providerName)
}

func (f *fakeRateLimiter) Wait(ctx context.Context, providerName string) error {
	if f.waitFn == nil {
		return nil
	}
	return f.waitFn(ctx, providerName)
}

type fakePublisher struct {
	publishFn func(ctx context.Context, queueName string, msg queue.EmailMessage) error
}

func (f *fakePublisher) Publish(ctx context.Context, queueName string, msg queue.EmailMessage) error {
	if f.publishFn == nil {
		return nil
	}
	return f.publishFn(ctx, queueName, msg)
}

func (f *fakePublisher) Close() error { return nil }

type fakeConsumer struct {
	consumeFn func(ctx context.Context, queueName string, handler queue.MessageHandler) error
}

func (f *fakeConsumer) Consume(ctx context.Context, queueName string, handler queue.MessageHandler) error {
	if f.consumeFn == nil {
		<-ctx.Done()
		return nil
	}
	return f.consumeFn(ctx, queueName, handler)
}

func (f *fakeConsumer) Close() error { return nil }

type fakeAnalyticsSource struct {
	aggregateFn func(ctx context.Context, windowDays int) (*analytics.Totals, error)
	dailyFn     func(ctx context.Context, windowDays int, includeBounce bool) ([]analytics.DailyRow, error)
	realtimeFn  func(ctx context.Context) (int64, error)
}

func (f *fakeAnalyticsSource) RunAggregate(ctx context.Context, windowDays int) (*analytics.Totals, error) {
	if f.aggregateFn == nil {
		return nil, nil
	}
	return f.aggregateFn(ctx, windowDays)
}

func (f *fakeAnalyticsSource) RunDaily(ctx context.Context, windowDays int, includeBounce bool) ([]analytics.DailyRow, error) {
	if f.dailyFn == nil {
		return nil, nil
	}
	return f.dailyFn(ctx, windowDays, includeBounce)
}

func (f *fakeAnalyticsSource) RunRealtime(ctx context.Context) (int64, error) {
	if f.realtimeFn == nil {
		return 0, nil
	}
	return f.realtimeFn(ctx)
}
