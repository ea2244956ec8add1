package onboarding

import (
	"context"
	"io"
	"net/http"

	"tenantsync/platform/httpkit"
	"tenantsync/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the webhook gateway endpoint.
type Handler struct {
	service *Service
	log     *logger.Logger
}

// NewHandler creates the webhook handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// HandleIdentityEvent processes one lifecycle event delivery.
// POST /api/v1/webhooks/identity
func (h *Handler) HandleIdentityEvent(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "unable to read request body")
		return
	}

	evt, err := ParseEvent(raw)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "request body is not valid JSON")
		return
	}

	ctx := context.WithValue(c.Request.Context(), logger.EventKindKey, evt.Kind)

	outcome, err := h.service.Process(ctx, evt)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	switch outcome {
	case OutcomeIgnored:
		c.Status(http.StatusNoContent)
	case OutcomeAcknowledged:
		httpkit.OK(c, gin.H{"message": "event acknowledged"})
	case OutcomeDryRun:
		httpkit.OK(c, gin.H{"message": "dry run, no changes applied"})
	default:
		httpkit.OK(c, gin.H{"message": "reconciliation applied"})
	}
}
