package template

import "context"

// Template names known to the service. The broadcast and transactional
// pipelines load these from the store; the rows are seeded by migration.
const (
	NewsletterBroadcast     = "newsletter-broadcast"
	NewsletterWelcome       = "newsletter-welcome"
	ContactConfirmation     = "contact-confirmation"
	UnsubscribeConfirmation = "unsubscribe-confirmation"
)

// Names lists every template the service expects the store to hold.
func Names() []string {
	return []string{
		NewsletterBroadcast,
		NewsletterWelcome,
		ContactConfirmation,
		UnsubscribeConfirmation,
	}
}

// Store loads named template bodies. A missing name fails with
// domain.ErrTemplateNotFound.
type Store interface {
	Load(ctx context.Context, name string) (string, error)
}
