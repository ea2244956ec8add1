// Package onboarding reconciles identity-platform lifecycle events into
// tenant memberships: find or create the target tenant, add the user, lift
// them out of the shared holding tenant, and disable their access when the
// tenant already has an active owner.
package onboarding

import (
	"context"

	"tenantsync/internal/events"
	"tenantsync/internal/idp/transport"
	"tenantsync/platform/apperr"
	"tenantsync/platform/config"
	"tenantsync/platform/logger"
	"tenantsync/platform/validator"
)

// Outcome classifies what processing an event resulted in. The handler maps
// outcomes to response statuses; anything not applied cleanly surfaces as an
// error instead.
type Outcome int

const (
	// OutcomeIgnored means the event is not actionable or targets another
	// source tenant. Answered 204 so the sender stops redelivering.
	OutcomeIgnored Outcome = iota
	// OutcomeAcknowledged means the event is actionable but unusable, e.g.
	// no valid email to act on. Answered 200 after logging; redelivery
	// would fail identically.
	OutcomeAcknowledged
	// OutcomeApplied means all membership changes were performed.
	OutcomeApplied
	// OutcomeDryRun means the event was normalized and logged only.
	OutcomeDryRun
)

// PlatformDirectory is the slice of the identity platform API the reconciler
// drives. Satisfied by *client.Client.
type PlatformDirectory interface {
	ListTenants(ctx context.Context, filter string, limit int) ([]transport.Tenant, error)
	CreateTenant(ctx context.Context, name string) (transport.Tenant, error)
	AssignApplication(ctx context.Context, appID, tenantID string) error
	AttachUserToTenant(ctx context.Context, userID, tenantID string) error
	BulkInviteUsers(ctx context.Context, tenantID, email, name string) error
	RemoveUserFromTenant(ctx context.Context, userID, tenantID string) error
	DisableUserInTenant(ctx context.Context, userID, tenantID string) error
	CountTenantUsers(ctx context.Context, tenantID string) (int, error)
}

// Service applies lifecycle events against the identity platform.
type Service struct {
	directory PlatformDirectory
	oracle    *PopulationOracle
	cfg       config.WebhookConfig
	validate  *validator.Validator
	bus       events.Bus
	log       *logger.Logger
}

// NewService creates the reconciliation service.
func NewService(directory PlatformDirectory, cfg config.WebhookConfig, validate *validator.Validator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		directory: directory,
		oracle:    NewPopulationOracle(directory),
		cfg:       cfg,
		validate:  validate,
		bus:       bus,
		log:       log,
	}
}

// Process runs the full reconciliation pipeline for one event. The side
// effects are strictly ordered (add, then remove, then disable) and the
// pipeline aborts on the first failure so redelivery resumes from a safe
// state: every mutation is idempotent.
func (s *Service) Process(ctx context.Context, evt InboundEvent) (Outcome, error) {
	log := s.log.WithContext(ctx)

	if !evt.Actionable() {
		log.WebhookEvent(evt.Kind, "ignored", false)
		return OutcomeIgnored, nil
	}

	if evt.Kind == KindInvitedToTenant {
		source := s.cfg.GetSourceTenantID()
		if source == "" {
			return OutcomeIgnored, apperr.Config("SOURCE_TENANT_ID must be set to process invitation events")
		}
		if evt.SourceTenantID != source {
			log.WebhookEvent(evt.Kind, "wrong source tenant", false)
			return OutcomeIgnored, nil
		}
	}

	if err := s.validate.Var(evt.Email, "required,email"); err != nil {
		log.Error("actionable event has no usable email",
			"kind", evt.Kind,
			"user_id", evt.UserID,
		)
		return OutcomeAcknowledged, nil
	}

	name := evt.TenantName()
	// A nested-shape event originating in the holding tenant declares the
	// holding tenant's own name; reconciling into it would be a no-op, so
	// the target falls back to the email-derived name.
	if evt.declaredNameIsSource && evt.SourceTenantID == s.cfg.GetSourceTenantID() {
		name = DeriveTenantName(evt.Email)
	}
	if name == "" {
		log.Error("unable to determine target tenant name",
			"kind", evt.Kind,
			"user_id", evt.UserID,
		)
		return OutcomeAcknowledged, nil
	}

	if s.cfg.IsDryRun() {
		log.Info("dry run: reconciliation skipped",
			"kind", evt.Kind,
			"user_id", evt.UserID,
			"tenant_name", name,
		)
		return OutcomeDryRun, nil
	}

	tenant, err := s.resolveTenant(ctx, name)
	if err != nil {
		s.fail(ctx, evt, name, "resolve tenant", err)
		return OutcomeIgnored, err
	}

	if err := s.addMember(ctx, evt, tenant); err != nil {
		s.fail(ctx, evt, name, "add member", err)
		return OutcomeIgnored, err
	}

	if err := s.leaveHoldingTenant(ctx, evt, tenant, log); err != nil {
		s.fail(ctx, evt, name, "remove from holding tenant", err)
		return OutcomeIgnored, err
	}

	disabled, err := s.disableWhenCrowded(ctx, evt, tenant, log)
	if err != nil {
		s.fail(ctx, evt, name, "disable user", err)
		return OutcomeIgnored, err
	}

	log.WebhookEvent(evt.Kind, "applied", true)
	s.bus.Publish(ctx, events.UserReconciled{
		BaseEvent:  events.NewBaseEvent(),
		Kind:       evt.Kind,
		UserID:     evt.UserID,
		Email:      evt.Email,
		TenantID:   tenant.TenantID,
		TenantName: tenant.Name,
		Disabled:   disabled,
	})
	return OutcomeApplied, nil
}

// resolveTenant finds the tenant by name or creates it. The listing filter is
// fuzzy, so matches are checked for name equality; the first exact match wins.
// Either way the default application is bound to the resolved tenant so its
// members can sign in; a binding that already exists comes back as a 409 the
// client treats as success.
func (s *Service) resolveTenant(ctx context.Context, name string) (transport.Tenant, error) {
	matches, err := s.directory.ListTenants(ctx, name, 1)
	if err != nil {
		return transport.Tenant{}, err
	}

	var tenant transport.Tenant
	var created bool
	for _, match := range matches {
		if match.Name == name {
			tenant = match
			break
		}
	}
	if tenant.TenantID == "" {
		tenant, err = s.directory.CreateTenant(ctx, name)
		if err != nil {
			return transport.Tenant{}, err
		}
		created = true
		s.log.WithContext(ctx).ReconcileStep("tenant created", tenant.TenantID, "")
	}

	if appID := s.cfg.GetDefaultApplicationID(); appID != "" {
		if err := s.directory.AssignApplication(ctx, appID, tenant.TenantID); err != nil {
			return transport.Tenant{}, err
		}
	}

	if created {
		s.bus.Publish(ctx, events.TenantProvisioned{
			BaseEvent:  events.NewBaseEvent(),
			TenantID:   tenant.TenantID,
			TenantName: tenant.Name,
		})
	}
	return tenant, nil
}

// addMember puts the user into the target tenant. With a known user ID the
// direct membership attachment applies; without one the bulk invitation flow
// provisions the account by email.
func (s *Service) addMember(ctx context.Context, evt InboundEvent, tenant transport.Tenant) error {
	if evt.UserID != "" {
		if err := s.directory.AttachUserToTenant(ctx, evt.UserID, tenant.TenantID); err != nil {
			return err
		}
	} else {
		if err := s.directory.BulkInviteUsers(ctx, tenant.TenantID, evt.Email, evt.DisplayName); err != nil {
			return err
		}
	}
	s.log.WithContext(ctx).ReconcileStep("member added", tenant.TenantID, evt.UserID)
	return nil
}

// leaveHoldingTenant removes the user from the shared holding tenant all
// signups land in. Skipped when no holding tenant is configured, when the
// user has no known ID, or when the target tenant is the holding tenant
// itself (removal would undo the add).
func (s *Service) leaveHoldingTenant(ctx context.Context, evt InboundEvent, tenant transport.Tenant, log *logger.Logger) error {
	source := s.cfg.GetSourceTenantID()
	if source == "" || evt.UserID == "" || source == tenant.TenantID {
		return nil
	}
	if err := s.directory.RemoveUserFromTenant(ctx, evt.UserID, source); err != nil {
		return err
	}
	log.ReconcileStep("removed from holding tenant", source, evt.UserID)
	return nil
}

// disableWhenCrowded disables the user in the target tenant when it already
// has at least two members, leaving existing members in control until one of
// them activates the newcomer. Sole members stay enabled.
func (s *Service) disableWhenCrowded(ctx context.Context, evt InboundEvent, tenant transport.Tenant, log *logger.Logger) (bool, error) {
	if evt.UserID == "" {
		return false, nil
	}
	crowded, err := s.oracle.HasAtLeastTwoMembers(ctx, tenant.TenantID)
	if err != nil {
		return false, err
	}
	if !crowded {
		return false, nil
	}
	if err := s.directory.DisableUserInTenant(ctx, evt.UserID, tenant.TenantID); err != nil {
		return false, err
	}
	log.ReconcileStep("user disabled", tenant.TenantID, evt.UserID)
	return true, nil
}

// fail records an aborted reconciliation for operator alerting. The webhook
// sender sees the error status and redelivers.
func (s *Service) fail(ctx context.Context, evt InboundEvent, tenantName, step string, err error) {
	s.log.WithContext(ctx).Error("reconciliation aborted",
		"kind", evt.Kind,
		"user_id", evt.UserID,
		"step", step,
		"error", err,
	)
	s.bus.Publish(ctx, events.ReconciliationFailed{
		BaseEvent:  events.NewBaseEvent(),
		Kind:       evt.Kind,
		UserID:     evt.UserID,
		Email:      evt.Email,
		TenantName: tenantName,
		Step:       step,
		Reason:     err.Error(),
	})
}
