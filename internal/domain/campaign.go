package domain

import (
	"fmt"
	"strings"
	"time"
)

// CampaignStatus represents the terminal state of a broadcast run.
type CampaignStatus string

const (
	CampaignStatusCompleted      CampaignStatus = "COMPLETED"
	CampaignStatusPartialFailure CampaignStatus = "PARTIAL_FAILURE"
	CampaignStatusCanceled       CampaignStatus = "CANCELED"
)

func (s CampaignStatus) String() string { return string(s) }

func (s CampaignStatus) IsValid() bool {
	switch s {
	case CampaignStatusCompleted, CampaignStatusPartialFailure, CampaignStatusCanceled:
		return true
	}
	return false
}

const defaultNewsletterBadge = "NEWSLETTER UPDATE"

// CampaignContent carries the shared fields substituted into the
// broadcast template for every recipient.
type CampaignContent struct {
	Title              string
	Subtitle           string
	Content            string
	Badge              string
	FeaturedTitle      string
	FeaturedContent    string
	CTAText            string
	CTALink            string
	ShowQuickUpdates   bool
	TechUpdate         string
	OperationsUpdate   string
	PartnershipsUpdate string
}

func (c *CampaignContent) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(c.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}

// SharedVariables maps campaign content onto template variables. Values
// are inserted into the template verbatim; broadcast content is authored
// HTML from the admin surface.
func (c *CampaignContent) SharedVariables() map[string]string {
	badge := strings.TrimSpace(c.Badge)
	if badge == "" {
		badge = defaultNewsletterBadge
	}

	return map[string]string{
		"NEWSLETTER_BADGE":    badge,
		"NEWSLETTER_TITLE":    c.Title,
		"NEWSLETTER_SUBTITLE": c.Subtitle,
		"NEWSLETTER_CONTENT":  c.Content,
		"FEATURED_TITLE":      c.FeaturedTitle,
		"FEATURED_CONTENT":    c.FeaturedContent,
		"CTA_TEXT":            c.CTAText,
		"CTA_LINK":            c.CTALink,
		"TECH_UPDATE":         c.TechUpdate,
		"OPERATIONS_UPDATE":   c.OperationsUpdate,
		"PARTNERSHIPS_UPDATE": c.PartnershipsUpdate,
	}
}

// DeliveryOutcome is the result of one recipient's send, in recipient
// order.
type DeliveryOutcome struct {
	Email     string
	Success   bool
	MessageID string
	Error     string
}

// BroadcastResult aggregates a completed (or canceled) broadcast run.
type BroadcastResult struct {
	CampaignID string
	Total      int
	SentCount  int
	ErrorCount int
	Errors     []string
	Canceled   bool
}

func (r BroadcastResult) Status() CampaignStatus {
	switch {
	case r.Canceled:
		return CampaignStatusCanceled
	case r.ErrorCount > 0:
		return CampaignStatusPartialFailure
	default:
		return CampaignStatusCompleted
	}
}

// Campaign is the persisted summary of a broadcast run.
type Campaign struct {
	ID         string
	Title      string
	Subtitle   string
	Status     CampaignStatus
	Total      int
	SentCount  int
	ErrorCount int
	Errors     []string
	SentAt     time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
