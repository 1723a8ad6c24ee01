package provider

import "context"

// Email is one outbound message. HTML bodies are pre-rendered by the
// template engine.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Receipt stores provider call metadata for audit and persistence.
type Receipt struct {
	StatusCode int
	Body       string
	MessageID  string
}

// Sender is the outbound email delivery port.
type Sender interface {
	Send(ctx context.Context, email Email) (*Receipt, error)
}
