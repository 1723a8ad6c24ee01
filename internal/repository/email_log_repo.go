package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// EmailLogEntry is one recorded transactional delivery outcome.
type EmailLogEntry struct {
	ID        string
	Kind      string
	Recipient string
	Success   bool
	MessageID *string
	Error     *string
	CreatedAt time.Time
}

type EmailLogRepository interface {
	Record(ctx context.Context, entry *EmailLogEntry) error
}

type GormEmailLogRepo struct {
	db *gorm.DB
}

func NewGormEmailLogRepo(db *gorm.DB) *GormEmailLogRepo {
	return &GormEmailLogRepo{db: db}
}

func (r *GormEmailLogRepo) Record(ctx context.Context, entry *EmailLogEntry) error {
	if entry == nil {
		return nil
	}

	model := &EmailLogModel{
		ID:        entry.ID,
		Kind:      entry.Kind,
		Recipient: normalizeEmail(entry.Recipient),
		Success:   entry.Success,
		MessageID: entry.MessageID,
		Error:     entry.Error,
		CreatedAt: entry.CreatedAt,
	}

	return r.db.WithContext(ctx).Create(model).Error
}
