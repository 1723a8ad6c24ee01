package queue

import "testing"

func TestQueueNames(t *testing.T) {
	work := WorkQueueNames()
	if len(work) != 3 {
		t.Fatalf("WorkQueueNames len = %d, want 3", len(work))
	}

	expected := map[string]struct{}{
		"email.welcome":                  {},
		"email.contact-confirmation":     {},
		"email.unsubscribe-confirmation": {},
	}

	for _, name := range work {
		if _, ok := expected[name]; !ok {
			t.Fatalf("unexpected queue name: %s", name)
		}
	}

	dlq := DLQNames()
	if len(dlq) != 3 {
		t.Fatalf("DLQNames len = %d, want 3", len(dlq))
	}

	expectedDLQ := map[string]struct{}{
		"dlq.email.welcome":                  {},
		"dlq.email.contact-confirmation":     {},
		"dlq.email.unsubscribe-confirmation": {},
	}

	for _, name := range dlq {
		if _, ok := expectedDLQ[name]; !ok {
			t.Fatalf("unexpected dlq name: %s", name)
		}
	}
}

func TestQueueName(t *testing.T) {
	queueName := QueueName(KindWelcome)
	if queueName != "email.welcome" {
		t.Fatalf("QueueName = %s, want email.welcome", queueName)
	}

	dlqName := DLQName(KindContactConfirmation)
	if dlqName != "dlq.email.contact-confirmation" {
		t.Fatalf("DLQName = %s, want dlq.email.contact-confirmation", dlqName)
	}
}

func TestEmailKindIsValid(t *testing.T) {
	valid := []EmailKind{KindWelcome, KindContactConfirmation, KindUnsubscribeConfirmation}
	for _, kind := range valid {
		if !kind.IsValid() {
			t.Fatalf("%q should be valid", kind)
		}
	}

	if EmailKind("promotional").IsValid() {
		t.Fatal("unknown kind should be invalid")
	}
}

func TestEmailMessageValidate(t *testing.T) {
	msg := EmailMessage{
		ID:        "m1",
		Kind:      KindWelcome,
		Recipient: "user@example.com",
	}
	if err := msg.Validate(); err != nil {
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	msg.ID = ""
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty message id")
	}

	msg.ID = "m1"
	msg.Kind = EmailKind("invalid")
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for invalid kind")
	}

	msg.Kind = KindWelcome
	msg.Recipient = ""
	if err := msg.Validate(); err == nil {
		t.Fatal("expected error for empty recipient")
	}
}
