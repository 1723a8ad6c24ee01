package queue

import (
	"context"
	"fmt"
)

// Publisher publishes transactional email messages to a queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg EmailMessage) error
	Close() error
}

// MessageHandler handles a consumed queue message.
type MessageHandler func(ctx context.Context, msg EmailMessage) error

// Consumer consumes transactional email messages from a queue.
type Consumer interface {
	Consume(ctx context.Context, queue string, handler MessageHandler) error
	Close() error
}

var supportedKinds = []EmailKind{
	KindWelcome,
	KindContactConfirmation,
	KindUnsubscribeConfirmation,
}

// QueueName returns the work queue for an email kind, e.g. email.welcome.
func QueueName(kind EmailKind) string {
	return fmt.Sprintf("email.%s", kind)
}

// DLQName returns the dead-letter queue for an email kind, e.g.
// dlq.email.welcome.
func DLQName(kind EmailKind) string {
	return fmt.Sprintf("dlq.%s", QueueName(kind))
}

// WorkQueueNames returns all transactional work queues (3 total).
func WorkQueueNames() []string {
	queues := make([]string, 0, len(supportedKinds))
	for _, kind := range supportedKinds {
		queues = append(queues, QueueName(kind))
	}
	return queues
}

// DLQNames returns all dead-letter queues (3 total).
func DLQNames() []string {
	queues := make([]string, 0, len(supportedKinds))
	for _, kind := range supportedKinds {
		queues = append(queues, DLQName(kind))
	}
	return queues
}
