package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Subscriber is a newsletter recipient record.
type Subscriber struct {
	ID             string
	Email          string
	Name           string
	Unsubscribed   bool
	UnsubscribedAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

const defaultSubscriberName = "Valued Subscriber"

// DisplayName returns the name used in email salutations.
func (s *Subscriber) DisplayName() string {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return defaultSubscriberName
	}
	return name
}

func (s *Subscriber) Validate() error {
	if strings.TrimSpace(s.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, s.Email)
	}
	return nil
}

// Variables returns the per-subscriber template variables. Subscriber
// keys take precedence over shared campaign variables on conflict.
func (s *Subscriber) Variables() map[string]string {
	return map[string]string{
		"EMAIL":           s.Email,
		"SUBSCRIBER_NAME": s.DisplayName(),
	}
}
