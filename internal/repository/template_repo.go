package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/template"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ template.Store = (*GormTemplateRepo)(nil)

// GormTemplateRepo serves named template HTML from the templates table.
type GormTemplateRepo struct {
	db *gorm.DB
}

func NewGormTemplateRepo(db *gorm.DB) *GormTemplateRepo {
	return &GormTemplateRepo{db: db}
}

func (r *GormTemplateRepo) Load(ctx context.Context, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", fmt.Errorf("%w: template name is required", domain.ErrValidation)
	}

	var model TemplateModel
	err := r.db.WithContext(ctx).First(&model, "name = ?", trimmed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, trimmed)
	}
	if err != nil {
		return "", err
	}

	return model.HTML, nil
}

// Upsert writes template HTML under a name, replacing any prior version.
func (r *GormTemplateRepo) Upsert(ctx context.Context, name string, html string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: template name is required", domain.ErrValidation)
	}

	model := TemplateModel{Name: trimmed, HTML: html}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"html", "updated_at"}),
		}).
		Create(&model).Error
}
