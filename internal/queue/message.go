package queue

import (
	"fmt"
	"strings"
)

// EmailKind selects the transactional template a queued message renders.
type EmailKind string

const (
	KindWelcome                 EmailKind = "welcome"
	KindContactConfirmation     EmailKind = "contact-confirmation"
	KindUnsubscribeConfirmation EmailKind = "unsubscribe-confirmation"
)

func (k EmailKind) String() string { return string(k) }

func (k EmailKind) IsValid() bool {
	switch k {
	case KindWelcome, KindContactConfirmation, KindUnsubscribeConfirmation:
		return true
	}
	return false
}

// EmailMessage is the broker payload for transactional email delivery.
// Variables carry the kind-specific template values already resolved by
// the producer.
type EmailMessage struct {
	ID            string            `json:"id"`
	CorrelationID string            `json:"correlationId,omitempty"`
	Kind          EmailKind         `json:"kind"`
	Recipient     string            `json:"recipient"`
	Name          string            `json:"name,omitempty"`
	Variables     map[string]string `json:"variables,omitempty"`
}

func (m EmailMessage) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("message id is required")
	}
	if !m.Kind.IsValid() {
		return fmt.Errorf("invalid email kind %q", m.Kind)
	}
	if strings.TrimSpace(m.Recipient) == "" {
		return fmt.Errorf("recipient is required")
	}
	return nil
}
