package repository

import (
	"encoding/json"
	"time"

	"github.com/sargasolutions/campaign-engine/internal/domain"
)

// SubscriberModel is the persistence model for the subscribers table.
type SubscriberModel struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	Email          string `gorm:"type:varchar(255);not null;uniqueIndex"`
	Name           string `gorm:"type:varchar(255)"`
	Unsubscribed   bool   `gorm:"not null;default:false"`
	UnsubscribedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (SubscriberModel) TableName() string {
	return "subscribers"
}

// ContactModel is the persistence model for contact-form submissions.
type ContactModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Email     string `gorm:"type:varchar(255);not null"`
	Name      string `gorm:"type:varchar(255)"`
	Interest  string `gorm:"type:varchar(255)"`
	Message   string `gorm:"type:text"`
	CreatedAt time.Time
}

func (ContactModel) TableName() string {
	return "contacts"
}

// CampaignModel is the persistence model for broadcast run summaries.
// Errors holds the capped per-recipient failure list as a JSON array.
type CampaignModel struct {
	ID         string                `gorm:"type:uuid;primaryKey"`
	Title      string                `gorm:"type:varchar(500);not null"`
	Subtitle   string                `gorm:"type:varchar(500)"`
	Status     domain.CampaignStatus `gorm:"type:varchar(20);not null"`
	Total      int                   `gorm:"not null"`
	SentCount  int                   `gorm:"not null"`
	ErrorCount int                   `gorm:"not null"`
	Errors     string                `gorm:"type:text"`
	SentAt     time.Time             `gorm:"type:timestamptz;not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (CampaignModel) TableName() string {
	return "campaigns"
}

// TemplateModel is the persistence model for named email templates.
type TemplateModel struct {
	Name      string `gorm:"type:varchar(100);primaryKey"`
	HTML      string `gorm:"type:text;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (TemplateModel) TableName() string {
	return "templates"
}

// EmailLogModel records each transactional delivery attempt outcome.
type EmailLogModel struct {
	ID        string  `gorm:"type:uuid;primaryKey"`
	Kind      string  `gorm:"type:varchar(50);not null"`
	Recipient string  `gorm:"type:varchar(255);not null"`
	Success   bool    `gorm:"not null"`
	MessageID *string `gorm:"type:varchar(255)"`
	Error     *string `gorm:"type:text"`
	CreatedAt time.Time
}

func (EmailLogModel) TableName() string {
	return "email_log"
}

func subscriberModelFromDomain(s *domain.Subscriber) *SubscriberModel {
	if s == nil {
		return nil
	}

	return &SubscriberModel{
		ID:             s.ID,
		Email:          s.Email,
		Name:           s.Name,
		Unsubscribed:   s.Unsubscribed,
		UnsubscribedAt: s.UnsubscribedAt,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

func subscriberModelToDomain(m *SubscriberModel) *domain.Subscriber {
	if m == nil {
		return nil
	}

	return &domain.Subscriber{
		ID:             m.ID,
		Email:          m.Email,
		Name:           m.Name,
		Unsubscribed:   m.Unsubscribed,
		UnsubscribedAt: m.UnsubscribedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func contactModelFromDomain(c *domain.Contact) *ContactModel {
	if c == nil {
		return nil
	}

	return &ContactModel{
		ID:        c.ID,
		Email:     c.Email,
		Name:      c.Name,
		Interest:  c.Interest,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}

func contactModelToDomain(m *ContactModel) *domain.Contact {
	if m == nil {
		return nil
	}

	return &domain.Contact{
		ID:        m.ID,
		Email:     m.Email,
		Name:      m.Name,
		Interest:  m.Interest,
		Message:   m.Message,
		CreatedAt: m.CreatedAt,
	}
}

func campaignModelFromDomain(c *domain.Campaign) *CampaignModel {
	if c == nil {
		return nil
	}

	return &CampaignModel{
		ID:         c.ID,
		Title:      c.Title,
		Subtitle:   c.Subtitle,
		Status:     c.Status,
		Total:      c.Total,
		SentCount:  c.SentCount,
		ErrorCount: c.ErrorCount,
		Errors:     encodeErrorList(c.Errors),
		SentAt:     c.SentAt,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func campaignModelToDomain(m *CampaignModel) *domain.Campaign {
	if m == nil {
		return nil
	}

	return &domain.Campaign{
		ID:         m.ID,
		Title:      m.Title,
		Subtitle:   m.Subtitle,
		Status:     m.Status,
		Total:      m.Total,
		SentCount:  m.SentCount,
		ErrorCount: m.ErrorCount,
		Errors:     decodeErrorList(m.Errors),
		SentAt:     m.SentAt,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func encodeErrorList(errs []string) string {
	if len(errs) == 0 {
		return "[]"
	}
	encoded, err := json.Marshal(errs)
	if err != nil {
		return "[]"
	}
	return string(encoded)
}

func decodeErrorList(raw string) []string {
	if raw == "" {
		return nil
	}
	var errs []string
	if err := json.Unmarshal([]byte(raw), &errs); err != nil {
		return nil
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
