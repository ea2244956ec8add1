package notification

import (
	"context"
	"strings"
	"testing"

	"tenantsync/internal/events"
	"tenantsync/platform/config"
	"tenantsync/platform/logger"
)

type fakeAlertSender struct {
	subjects []string
	bodies   []string
}

func (f *fakeAlertSender) SendAlert(_ context.Context, subject, body string) error {
	f.subjects = append(f.subjects, subject)
	f.bodies = append(f.bodies, body)
	return nil
}

func failureEvent() events.ReconciliationFailed {
	return events.ReconciliationFailed{
		BaseEvent:  events.NewBaseEvent(),
		Kind:       "user.signedUp",
		UserID:     "u-1",
		Email:      "alice@acme.io",
		TenantName: "Acme",
		Step:       "add member",
		Reason:     "attach user to tenant failed with status 502",
	}
}

func TestAlertSentOnReconciliationFailure(t *testing.T) {
	sender := &fakeAlertSender{}
	cfg := &config.Config{
		SMTPHost:         "smtp.example",
		AlertFromAddress: "ops@example",
		AlertToAddress:   "oncall@example",
	}
	module := New(sender, cfg, logger.New("development"))

	if err := module.Handle(context.Background(), failureEvent()); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(sender.subjects) != 1 {
		t.Fatalf("sent %d alerts, want 1", len(sender.subjects))
	}
	if !strings.Contains(sender.subjects[0], "add member") {
		t.Errorf("subject %q should name the failed step", sender.subjects[0])
	}
	if !strings.Contains(sender.bodies[0], "alice@acme.io") {
		t.Errorf("body should carry the affected email, got %q", sender.bodies[0])
	}
}

func TestAlertSkippedWhenUnconfigured(t *testing.T) {
	sender := &fakeAlertSender{}
	module := New(sender, &config.Config{}, logger.New("development"))

	if err := module.Handle(context.Background(), failureEvent()); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sender.subjects) != 0 {
		t.Errorf("alerting disabled, but %d alerts were sent", len(sender.subjects))
	}
}

func TestUnhandledEventIsNoop(t *testing.T) {
	sender := &fakeAlertSender{}
	module := New(sender, &config.Config{}, logger.New("development"))

	evt := events.UserReconciled{BaseEvent: events.NewBaseEvent()}
	if err := module.Handle(context.Background(), evt); err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if len(sender.subjects) != 0 {
		t.Errorf("no alert expected, got %d", len(sender.subjects))
	}
}
