// Package client provides the HTTP client for the identity platform's
// management API. All mutating operations declare their idempotent-success
// statuses explicitly so redelivered webhooks converge instead of failing.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"tenantsync/platform/apperr"
	"tenantsync/platform/config"
	"tenantsync/platform/logger"

	"golang.org/x/sync/singleflight"
)

const (
	// headerTenantID scopes a request to one tenant. Removal and disable
	// are meaningless without it.
	headerTenantID = "X-Tenant-Id"

	requestTimeout = 30 * time.Second
)

// Client is the HTTP client for the identity platform API.
type Client struct {
	httpClient *http.Client
	cfg        config.VendorConfig
	log        *logger.Logger

	// session is the single shared slot for the vendor token. Replacement
	// is whole-value, so readers never observe a torn session.
	session atomic.Pointer[vendorSession]
	refresh singleflight.Group
}

// New creates a new identity platform API client.
func New(cfg config.VendorConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		cfg:        cfg,
		log:        log,
	}
}

// call performs one authenticated round-trip. Any 2xx is success, as is any
// status listed in accept (the operation's idempotent-success set); accepted
// statuses skip response decoding. Everything else is an Upstream error that
// aborts the caller's pipeline.
func (c *Client) call(ctx context.Context, op, method, path, tenantID string, body, out interface{}, accept ...int) error {
	base := c.cfg.GetVendorBaseURL()
	if base == "" {
		return apperr.Config("identity platform base URL is not configured")
	}

	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, base+path, reqBody)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tenantID != "" {
		req.Header.Set(headerTenantID, tenantID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("identity platform request failed", "operation", op, "error", err)
		return apperr.Wrap(apperr.KindUpstream, op+": identity platform unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.log.Error("identity platform decode failed", "operation", op, "error", err)
			return apperr.Wrap(apperr.KindUpstream, op+": decode response", err)
		}
		return nil
	}

	for _, status := range accept {
		if resp.StatusCode == status {
			return nil
		}
	}

	err = fmt.Errorf("%s: status %d", op, resp.StatusCode)
	c.log.UpstreamError(op, resp.StatusCode, err)
	return apperr.Wrap(apperr.KindUpstream, fmt.Sprintf("%s failed with status %d", op, resp.StatusCode), err)
}
