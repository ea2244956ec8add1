// Package notification sends operational alert emails in response to domain
// events. It subscribes to the event bus and inverts the dependency: the
// reconciliation pipeline never needs to know about SMTP.
package notification

import (
	"context"
	"fmt"

	"tenantsync/internal/events"
	"tenantsync/platform/config"
	"tenantsync/platform/logger"
)

// Module handles alert-related event subscriptions.
type Module struct {
	sender AlertSender
	cfg    config.AlertConfig
	log    *logger.Logger
}

// New creates the notification module.
func New(sender AlertSender, cfg config.AlertConfig, log *logger.Logger) *Module {
	return &Module{sender: sender, cfg: cfg, log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterHandlers subscribes to the domain events that warrant an alert.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.ReconciliationFailed{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.ReconciliationFailed:
		return m.handleReconciliationFailed(ctx, e)
	default:
		m.log.Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleReconciliationFailed(ctx context.Context, e events.ReconciliationFailed) error {
	if !m.cfg.IsAlertingEnabled() {
		m.log.Debug("alerting disabled; reconciliation failure not mailed",
			"kind", e.Kind,
			"step", e.Step,
		)
		return nil
	}

	subject := fmt.Sprintf("Tenant reconciliation failed at %q", e.Step)
	body := fmt.Sprintf(
		"A webhook reconciliation aborted and will be redelivered by the sender.\n\n"+
			"Event kind: %s\nUser ID:    %s\nEmail:      %s\nTenant:     %s\nStep:       %s\nReason:     %s\n",
		e.Kind, e.UserID, e.Email, e.TenantName, e.Step, e.Reason,
	)

	if err := m.sender.SendAlert(ctx, subject, body); err != nil {
		m.log.Error("failed to send reconciliation failure alert",
			"step", e.Step,
			"error", err,
		)
		return err
	}
	m.log.Info("reconciliation failure alert sent", "step", e.Step, "kind", e.Kind)
	return nil
}
