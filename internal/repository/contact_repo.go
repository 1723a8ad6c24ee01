package repository

import (
	"context"

	"github.com/sargasolutions/campaign-engine/internal/domain"
	"gorm.io/gorm"
)

type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
}

type GormContactRepo struct {
	db *gorm.DB
}

func NewGormContactRepo(db *gorm.DB) *GormContactRepo {
	return &GormContactRepo{db: db}
}

func (r *GormContactRepo) Create(ctx context.Context, c *domain.Contact) error {
	model := contactModelFromDomain(c)
	model.Email = normalizeEmail(model.Email)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if c != nil {
		*c = *contactModelToDomain(model)
	}
	return nil
}
