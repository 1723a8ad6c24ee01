package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
)

// Contact is a contact-form submission awaiting its confirmation email.
type Contact struct {
	ID        string
	Email     string
	Name      string
	Interest  string
	Message   string
	CreatedAt time.Time
}

func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrValidation, c.Email)
	}
	return nil
}

// Variables returns the contact-confirmation template variables,
// defaulting the optional fields the way the submission form allows them
// to be blank.
func (c *Contact) Variables(submittedAt time.Time) map[string]string {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "Valued Contact"
	}
	interest := strings.TrimSpace(c.Interest)
	if interest == "" {
		interest = "General Inquiry"
	}
	message := strings.TrimSpace(c.Message)
	if message == "" {
		message = "No message provided"
	}

	return map[string]string{
		"EMAIL":     c.Email,
		"NAME":      name,
		"INTEREST":  interest,
		"MESSAGE":   message,
		"SUBMITTED": submittedAt.Format("January 2, 2006 15:04"),
	}
}
