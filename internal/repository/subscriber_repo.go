package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sargasolutions/campaign-engine/internal/domain"
	"gorm.io/gorm"
)

type SubscriberRepository interface {
	Upsert(ctx context.Context, s *domain.Subscriber) (created bool, err error)
	GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	ListActive(ctx context.Context) ([]domain.Subscriber, error)
	Unsubscribe(ctx context.Context, email string, at time.Time) error
}

type GormSubscriberRepo struct {
	db *gorm.DB
}

func NewGormSubscriberRepo(db *gorm.DB) *GormSubscriberRepo {
	return &GormSubscriberRepo{db: db}
}

// Upsert creates a new subscriber or reactivates an unsubscribed one.
// Re-subscribing an already active address is a conflict.
func (r *GormSubscriberRepo) Upsert(ctx context.Context, s *domain.Subscriber) (bool, error) {
	email := normalizeEmail(s.Email)

	var existing SubscriberModel
	err := r.db.WithContext(ctx).First(&existing, "email = ?", email).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		model := subscriberModelFromDomain(s)
		model.Email = email
		if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
			return false, err
		}
		*s = *subscriberModelToDomain(model)
		return true, nil
	}

	if !existing.Unsubscribed {
		return false, domain.ErrConflict
	}

	updates := map[string]any{
		"unsubscribed":    false,
		"unsubscribed_at": nil,
	}
	if strings.TrimSpace(s.Name) != "" {
		updates["name"] = s.Name
	}

	if err := r.db.WithContext(ctx).
		Model(&existing).
		Updates(updates).Error; err != nil {
		return false, err
	}

	existing.Unsubscribed = false
	existing.UnsubscribedAt = nil
	if name, ok := updates["name"].(string); ok {
		existing.Name = name
	}
	*s = *subscriberModelToDomain(&existing)

	return false, nil
}

func (r *GormSubscriberRepo) GetByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	var model SubscriberModel
	err := r.db.WithContext(ctx).First(&model, "email = ?", normalizeEmail(email)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return subscriberModelToDomain(&model), nil
}

// ListActive returns every subscriber not explicitly unsubscribed, in
// creation order.
func (r *GormSubscriberRepo) ListActive(ctx context.Context) ([]domain.Subscriber, error) {
	var models []SubscriberModel
	err := r.db.WithContext(ctx).
		Where("unsubscribed = ?", false).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	subscribers := make([]domain.Subscriber, 0, len(models))
	for i := range models {
		subscribers = append(subscribers, *subscriberModelToDomain(&models[i]))
	}

	return subscribers, nil
}

func (r *GormSubscriberRepo) Unsubscribe(ctx context.Context, email string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&SubscriberModel{}).
		Where("email = ? AND unsubscribed = ?", normalizeEmail(email), false).
		Updates(map[string]any{
			"unsubscribed":    true,
			"unsubscribed_at": at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
