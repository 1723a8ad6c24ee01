package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sargasolutions/campaign-engine/internal/provider"
	"github.com/sargasolutions/campaign-engine/internal/queue"
	"github.com/sargasolutions/campaign-engine/internal/repository"
	"github.com/sargasolutions/campaign-engine/internal/template"
	"go.uber.org/zap"
)

func newTestWorker(
	t *testing.T,
	sender *fakeSender,
	emailLog *fakeEmailLogRepo,
) *TransactionalWorker {
	t.Helper()

	worker, err := NewTransactionalWorker(
		&fakeConsumer{},
		&fakeTemplateStore{
			loadFn: func(ctx context.Context, name string) (string, error) {
				switch name {
				case template.NewsletterWelcome:
					return "<p>Welcome {{SUBSCRIBER_NAME}}</p>", nil
				case template.ContactConfirmation:
					return "<p>Thanks {{NAME}}, interest: {{INTEREST}}</p>", nil
				case template.UnsubscribeConfirmation:
					return "<p>Goodbye {{EMAIL}}</p>", nil
				}
				return "", nil
			},
		},
		sender,
		&fakeRateLimiter{},
		emailLog,
		2,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewTransactionalWorker() error = %v", err)
	}
	worker.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	return worker
}

func TestWorkerProcessWelcomeMessage(t *testing.T) {
	t.Parallel()

	var gotEmail *provider.Email
	sender := &fakeSender{
		sendFn: func(ctx context.Context, email provider.Email) (*provider.Receipt, error) {
			gotEmail = &email
			return &provider.Receipt{StatusCode: 200, MessageID: "prov-1"}, nil
		},
	}

	var logged *repository.EmailLogEntry
	emailLog := &fakeEmailLogRepo{
		recordFn: func(ctx context.Context, entry *repository.EmailLogEntry) error {
			logged = entry
			return nil
		},
	}

	worker := newTestWorker(t, sender, emailLog)

	err := worker.processMessage(context.Background(), queue.EmailMessage{
		ID:        "m1",
		Kind:      queue.KindWelcome,
		Recipient: "new@example.com",
		Name:      "New User",
		Variables: map[string]string{"SUBSCRIBER_NAME": "New User", "EMAIL": "new@example.com"},
	})
	if err != nil {
		t.Fatalf("processMessage() error = %v", err)
	}

	if gotEmail == nil {
		t.Fatal("email should be sent")
	}
	if gotEmail.To != "new@example.com" {
		t.Errorf("To = %q, want new@example.com", gotEmail.To)
	}
	if !strings.Contains(gotEmail.HTML, "Welcome New User") {
		t.Errorf("HTML = %q, want the rendered welcome body", gotEmail.HTML)
	}

	if logged == nil {
		t.Fatal("outcome should be recorded")
	}
	if !logged.Success || logged.Kind != "welcome" {
		t.Errorf("log entry = %+v, want success welcome", logged)
	}
	if logged.MessageID == nil || *logged.MessageID != "prov-1" {
		t.Errorf("MessageID = %v, want prov-1", logged.MessageID)
	}
}

func TestWorkerTransientFailureRequeues(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{
		sendFn: func(ctx context.Context, email provider.Email) (*provider.Receipt, error) {
			return nil, &provider.SendError{StatusCode: 429, Message: "rate limited", Transient: true}
		},
	}

	var logged *repository.EmailLogEntry
	emailLog := &fakeEmailLogRepo{
		recordFn: func(ctx context.Context, entry *repository.EmailLogEntry) error {
			logged = entry
			return nil
		},
	}

	worker := newTestWorker(t, sender, emailLog)

	err := worker.processMessage(context.Background(), queue.EmailMessage{
		ID:        "m2",
		Kind:      queue.KindContactConfirmation,
		Recipient: "ask@example.com",
	})
	if err == nil {
		t.Fatal("transient failure should surface an error so the message requeues")
	}

	if logged == nil || logged.Success {
		t.Fatalf("failure should be recorded, got %+v", logged)
	}
	if logged.Error == nil || !strings.Contains(*logged.Error, "rate limited") {
		t.Errorf("log error = %v, want provider message preserved", logged.Error)
	}
}

func TestWorkerPermanentFailureAcks(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{
		sendFn: func(ctx context.Context, email provider.Email) (*provider.Receipt, error) {
			return nil, &provider.SendError{StatusCode: 422, Message: "invalid recipient"}
		},
	}

	worker := newTestWorker(t, sender, &fakeEmailLogRepo{})

	err := worker.processMessage(context.Background(), queue.EmailMessage{
		ID:        "m3",
		Kind:      queue.KindUnsubscribeConfirmation,
		Recipient: "gone@example.com",
		Variables: map[string]string{"EMAIL": "gone@example.com"},
	})
	if err != nil {
		t.Fatalf("permanent failure should ack (nil error), got %v", err)
	}
}

func TestWorkerMissingTemplateDrops(t *testing.T) {
	t.Parallel()

	sends := 0
	worker, err := NewTransactionalWorker(
		&fakeConsumer{},
		&fakeTemplateStore{},
		&fakeSender{
			sendFn: func(ctx context.Context, email provider.Email) (*provider.Receipt, error) {
				sends++
				return nil, nil
			},
		},
		&fakeRateLimiter{},
		nil,
		1,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("NewTransactionalWorker() error = %v", err)
	}

	handleErr := worker.processMessage(context.Background(), queue.EmailMessage{
		ID:        "m4",
		Kind:      queue.KindWelcome,
		Recipient: "new@example.com",
	})
	if handleErr != nil {
		t.Fatalf("missing template should drop the message, got %v", handleErr)
	}
	if sends != 0 {
		t.Errorf("provider calls = %d, want 0", sends)
	}
}

func TestWorkerStartStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	worker := newTestWorker(t, &fakeSender{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- worker.Start(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not stop after cancellation")
	}
}
