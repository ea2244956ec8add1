package onboarding

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"tenantsync/platform/config"
	"tenantsync/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// SignatureHeader carries the webhook signature set by the identity platform.
const SignatureHeader = "X-Webhook-Secret"

// SignatureAuth rejects deliveries whose signature header neither matches the
// shared secret nor verifies as an HMAC-signed JWT under that secret. Rejected
// requests never reach body parsing.
func SignatureAuth(cfg config.WebhookConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(SignatureHeader)
		if !validSignature(header, cfg.GetWebhookSecret()) {
			httpkit.Error(c, http.StatusUnauthorized, "missing or invalid webhook signature")
			c.Abort()
			return
		}
		c.Next()
	}
}

// validSignature accepts either the raw shared secret (compared in constant
// time) or a JWT whose HMAC signature verifies against it. Other JWT signing
// families are refused so a token signed elsewhere can never pass.
func validSignature(header, secret string) bool {
	if header == "" || secret == "" {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(header), []byte(secret)) == 1 {
		return true
	}

	token, err := jwt.Parse(header, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	return err == nil && token.Valid
}
