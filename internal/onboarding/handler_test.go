package onboarding

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "tenantsync/internal/http"
	"tenantsync/internal/idp/transport"
	"tenantsync/platform/config"
	"tenantsync/platform/httpkit"
	"tenantsync/platform/logger"
	"tenantsync/platform/validator"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const webhookPath = "/api/v1/webhooks/identity"

func newTestRouter(t *testing.T, dir *fakeDirectory, cfg *config.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.New("development")

	module := NewModule(cfg, dir, validator.New(), &recordingBus{}, log)

	engine := gin.New()
	module.RegisterRoutes(&apphttp.RouterContext{
		Engine:             engine,
		V1:                 engine.Group("/api/v1"),
		Logger:             log,
		WebhookRateLimiter: httpkit.NewIPRateLimiter(rate.Limit(1000), 1000, log),
	})
	return engine
}

func deliver(engine *gin.Engine, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, webhookPath, strings.NewReader(body))
	if secret != "" {
		req.Header.Set(SignatureHeader, secret)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	dir := &fakeDirectory{}
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	engine := newTestRouter(t, dir, cfg)

	rec := deliver(engine, "", `{"eventKey": "user.signedUp"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if dir.listCalls != 0 {
		t.Error("unauthenticated delivery must not be processed")
	}

	rec = deliver(engine, "wrong", `{"eventKey": "user.signedUp"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookAcceptsJWTSignature(t *testing.T) {
	dir := &fakeDirectory{}
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	engine := newTestRouter(t, dir, cfg)

	rec := deliver(engine, signHMAC(t, "s3cret"), `{"eventKey": "user.somethingElse"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	engine := newTestRouter(t, &fakeDirectory{}, cfg)

	rec := deliver(engine, "s3cret", `{"eventKey":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestWebhookIgnoresNonActionable(t *testing.T) {
	dir := &fakeDirectory{}
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	engine := newTestRouter(t, dir, cfg)

	rec := deliver(engine, "s3cret", `{"eventKey": "user.deleted"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if dir.listCalls != 0 {
		t.Error("non-actionable delivery must not reach the platform")
	}
}

func TestWebhookAppliesSignup(t *testing.T) {
	dir := &fakeDirectory{
		tenants:   []transport.Tenant{{TenantID: "t-1", Name: "Acme"}},
		userCount: 1,
	}
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	engine := newTestRouter(t, dir, cfg)

	body := `{"eventKey": "user.signedUp", "user": {"id": "u-1", "email": "alice@acme.io"}}`
	rec := deliver(engine, "s3cret", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}
	if len(dir.attachCalls) != 1 {
		t.Errorf("attach calls = %v, want one", dir.attachCalls)
	}
}

func TestWebhookMissingEmailAcknowledged(t *testing.T) {
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	engine := newTestRouter(t, &fakeDirectory{}, cfg)

	rec := deliver(engine, "s3cret", `{"eventKey": "user.signedUp", "user": {"id": "u-1"}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestWebhookSurfacesUpstreamFailure(t *testing.T) {
	dir := &fakeDirectory{
		tenants:   []transport.Tenant{{TenantID: "t-1", Name: "Acme"}},
		userCount: 1,
		failOp:    "attach",
	}
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	engine := newTestRouter(t, dir, cfg)

	body := `{"eventKey": "user.signedUp", "user": {"id": "u-1", "email": "alice@acme.io"}}`
	rec := deliver(engine, "s3cret", body)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestWebhookDryRun(t *testing.T) {
	dir := &fakeDirectory{}
	cfg := testConfig()
	cfg.WebhookSecret = "s3cret"
	cfg.DryRun = true
	engine := newTestRouter(t, dir, cfg)

	body := `{"eventKey": "user.signedUp", "user": {"id": "u-1", "email": "alice@acme.io"}}`
	rec := deliver(engine, "s3cret", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if dir.listCalls != 0 {
		t.Error("dry run must not call the platform")
	}
}
