package onboarding

import (
	"tenantsync/internal/events"
	apphttp "tenantsync/internal/http"
	"tenantsync/platform/config"
	"tenantsync/platform/logger"
	"tenantsync/platform/validator"
)

// Module wires the onboarding bounded context: webhook gateway, signature
// verification and the reconciliation service.
type Module struct {
	cfg     config.WebhookConfig
	handler *Handler
}

// NewModule creates the onboarding module.
func NewModule(cfg config.WebhookConfig, directory PlatformDirectory, validate *validator.Validator, bus events.Bus, log *logger.Logger) *Module {
	service := NewService(directory, cfg, validate, bus, log)
	return &Module{
		cfg:     cfg,
		handler: NewHandler(service, log),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "onboarding"
}

// RegisterRoutes mounts the webhook gateway under /api/v1/webhooks. The
// signature check runs after the per-IP rate limit so unauthenticated floods
// are shed cheaply.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	webhooks := ctx.V1.Group("/webhooks")
	webhooks.Use(ctx.WebhookRateLimiter.RateLimit())
	webhooks.Use(SignatureAuth(m.cfg))
	webhooks.POST("/identity", m.handler.HandleIdentityEvent)
}

var _ apphttp.Module = (*Module)(nil)
