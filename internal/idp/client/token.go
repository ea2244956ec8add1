package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"tenantsync/platform/apperr"
)

// vendorSession is a cached service-to-service bearer credential.
type vendorSession struct {
	token     string
	expiresAt time.Time
}

// token returns a valid vendor bearer token, exchanging credentials when the
// cached one is absent or expired. Concurrent refreshes collapse into a
// single exchange via singleflight; the slot is replaced atomically.
func (c *Client) token(ctx context.Context) (string, error) {
	if s := c.session.Load(); s != nil && time.Now().Before(s.expiresAt) {
		return s.token, nil
	}

	result, err, _ := c.refresh.Do("vendor-token", func() (interface{}, error) {
		return c.exchange(ctx)
	})
	if err != nil {
		return "", err
	}

	session := result.(*vendorSession)
	c.session.Store(session)
	return session.token, nil
}

// exchange calls the platform's service-credential endpoint. A non-success
// response or a missing token field almost always means misconfigured
// credentials, so it is a Config error, never retried here.
func (c *Client) exchange(ctx context.Context) (*vendorSession, error) {
	base := c.cfg.GetVendorBaseURL()
	clientID := c.cfg.GetVendorClientID()
	secret := c.cfg.GetVendorAPIKey()
	if base == "" || clientID == "" || secret == "" {
		return nil, apperr.Config("identity platform credentials are not configured")
	}

	payload, err := json.Marshal(map[string]string{
		"clientId": clientID,
		"secret":   secret,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "encode vendor credentials", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/auth/vendor", bytes.NewReader(payload))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "create token request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "identity platform token endpoint unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Error("vendor token exchange rejected", "status", resp.StatusCode)
		return nil, apperr.Config("vendor credential exchange rejected; check client id and secret")
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperr.Wrap(apperr.KindConfig, "decode vendor token response", err)
	}
	if body.Token == "" {
		return nil, apperr.Config("vendor token response missing token field")
	}

	return &vendorSession{
		token:     body.Token,
		expiresAt: time.Now().Add(c.cfg.GetVendorTokenTTL()),
	}, nil
}
