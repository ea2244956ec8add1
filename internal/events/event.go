// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"tenantsync/platform/events"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Onboarding Domain Events
// =============================================================================

// TenantProvisioned is published when the resolver creates a tenant that did
// not exist before.
type TenantProvisioned struct {
	BaseEvent
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
}

func (e TenantProvisioned) EventName() string { return "onboarding.tenant.provisioned" }

// UserReconciled is published after a lifecycle event has been fully applied:
// the user is a member of the target tenant, removed from the holding tenant,
// and disabled where the population rule required it.
type UserReconciled struct {
	BaseEvent
	Kind       string `json:"kind"`
	UserID     string `json:"userId,omitempty"`
	Email      string `json:"email"`
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
	Disabled   bool   `json:"disabled"`
}

func (e UserReconciled) EventName() string { return "onboarding.user.reconciled" }

// ReconciliationFailed is published when a reconciliation aborts at some step.
// The webhook sender will redeliver; this event exists for operator alerting.
type ReconciliationFailed struct {
	BaseEvent
	Kind       string `json:"kind"`
	UserID     string `json:"userId,omitempty"`
	Email      string `json:"email"`
	TenantName string `json:"tenantName,omitempty"`
	Step       string `json:"step"`
	Reason     string `json:"reason"`
}

func (e ReconciliationFailed) EventName() string { return "onboarding.reconciliation.failed" }
