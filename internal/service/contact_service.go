package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sargasolutions/campaign-engine/internal/domain"
	"github.com/sargasolutions/campaign-engine/internal/observability"
	"github.com/sargasolutions/campaign-engine/internal/queue"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"go.uber.org/zap"
)

// ContactService stores contact-form submissions and queues their
// confirmation emails.
type ContactService struct {
	contacts  repository.ContactRepository
	publisher queue.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewContactService(
	contacts repository.ContactRepository,
	publisher queue.Publisher,
	logger *zap.Logger,
) (*ContactService, error) {
	if contacts == nil {
		return nil, fmt.Errorf("contact repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ContactService{
		contacts:  contacts,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// Submit validates and stores a contact submission, then queues the
// confirmation email. A failed enqueue is logged but does not fail the
// submission.
func (s *ContactService) Submit(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if contact == nil {
		return nil, fmt.Errorf("%w: contact is required", domain.ErrValidation)
	}

	contact.ID = uuid.NewString()
	contact.Email = strings.TrimSpace(contact.Email)
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		correlationID, _ := observability.CorrelationIDFromContext(ctx)
		msg := queue.EmailMessage{
			ID:            uuid.NewString(),
			CorrelationID: correlationID,
			Kind:          queue.KindContactConfirmation,
			Recipient:     contact.Email,
			Name:          contact.Name,
			Variables:     contact.Variables(s.now().UTC()),
		}

		if err := s.publisher.Publish(ctx, queue.QueueName(msg.Kind), msg); err != nil {
			s.logger.Error("failed to enqueue contact confirmation",
				zap.String("recipient", contact.Email),
				zap.Error(err),
			)
		}
	}

	return contact, nil
}
