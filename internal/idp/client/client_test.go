package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"tenantsync/platform/apperr"
	"tenantsync/platform/config"
	"tenantsync/platform/logger"
)

// platformStub fakes the identity platform management API.
type platformStub struct {
	tokenHits      atomic.Int64
	attachStatus   int
	removeStatus   int
	assignStatus   int
	usersResponse  string
	tenantResponse string

	lastTenantHeader string
	lastAuthHeader   string
}

func (p *platformStub) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/vendor", func(w http.ResponseWriter, r *http.Request) {
		p.tokenHits.Add(1)
		var creds struct {
			ClientID string `json:"clientId"`
			Secret   string `json:"secret"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.ClientID == "" || creds.Secret == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "tok-123"})
	})
	mux.HandleFunc("GET /tenancy/resources/tenants/v1", func(w http.ResponseWriter, r *http.Request) {
		p.lastAuthHeader = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(p.tenantResponse))
	})
	mux.HandleFunc("POST /identity/resources/users/v1/{userID}/tenants", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(p.attachStatus)
	})
	mux.HandleFunc("PUT /applications/resources/applications/tenant-assignments/v1/{appID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(p.assignStatus)
	})
	mux.HandleFunc("DELETE /identity/resources/users/v1/{userID}", func(w http.ResponseWriter, r *http.Request) {
		p.lastTenantHeader = r.Header.Get("X-Tenant-Id")
		w.WriteHeader(p.removeStatus)
	})
	mux.HandleFunc("GET /identity/resources/users/v2", func(w http.ResponseWriter, r *http.Request) {
		p.lastTenantHeader = r.Header.Get("X-Tenant-Id")
		_, _ = w.Write([]byte(p.usersResponse))
	})
	return mux
}

func newStubClient(t *testing.T, stub *platformStub) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		VendorBaseURL:  srv.URL,
		VendorClientID: "client-1",
		VendorAPIKey:   "key-1",
		VendorTokenTTL: time.Hour,
	}
	return New(cfg, logger.New("development")), srv
}

func TestTokenExchangedOnceAcrossCalls(t *testing.T) {
	stub := &platformStub{tenantResponse: `{"items": []}`}
	c, _ := newStubClient(t, stub)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := c.ListTenants(ctx, "Acme", 1); err != nil {
			t.Fatalf("ListTenants: %v", err)
		}
	}

	if hits := stub.tokenHits.Load(); hits != 1 {
		t.Errorf("token exchanges = %d, want 1", hits)
	}
	if stub.lastAuthHeader != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want Bearer tok-123", stub.lastAuthHeader)
	}
}

func TestListTenantsAcceptsBareArray(t *testing.T) {
	stub := &platformStub{tenantResponse: `[{"tenantId": "t-1", "name": "Acme"}]`}
	c, _ := newStubClient(t, stub)

	tenants, err := c.ListTenants(context.Background(), "Acme", 1)
	if err != nil {
		t.Fatalf("ListTenants: %v", err)
	}
	if len(tenants) != 1 || tenants[0].TenantID != "t-1" {
		t.Errorf("tenants = %+v, want one with id t-1", tenants)
	}
}

func TestAttachUserConflictIsSuccess(t *testing.T) {
	stub := &platformStub{attachStatus: http.StatusConflict}
	c, _ := newStubClient(t, stub)

	if err := c.AttachUserToTenant(context.Background(), "u-1", "t-1"); err != nil {
		t.Fatalf("409 on attach should be success, got %v", err)
	}
}

func TestAssignApplicationConflictIsSuccess(t *testing.T) {
	stub := &platformStub{assignStatus: http.StatusConflict}
	c, _ := newStubClient(t, stub)

	if err := c.AssignApplication(context.Background(), "app-1", "t-1"); err != nil {
		t.Fatalf("409 on assign should be success, got %v", err)
	}
}

func TestRemoveUserNotFoundIsSuccess(t *testing.T) {
	stub := &platformStub{removeStatus: http.StatusNotFound}
	c, _ := newStubClient(t, stub)

	if err := c.RemoveUserFromTenant(context.Background(), "u-1", "t-hold"); err != nil {
		t.Fatalf("404 on remove should be success, got %v", err)
	}
	if stub.lastTenantHeader != "t-hold" {
		t.Errorf("X-Tenant-Id = %q, want t-hold", stub.lastTenantHeader)
	}
}

func TestRemoveUserServerErrorIsUpstream(t *testing.T) {
	stub := &platformStub{removeStatus: http.StatusBadGateway}
	c, _ := newStubClient(t, stub)

	err := c.RemoveUserFromTenant(context.Background(), "u-1", "t-hold")
	if !apperr.Is(err, apperr.KindUpstream) {
		t.Fatalf("err = %v, want KindUpstream", err)
	}
}

func TestCountTenantUsersPrefersMetadata(t *testing.T) {
	stub := &platformStub{usersResponse: `{"items": [{"id": "u-1"}, {"id": "u-2"}], "_metadata": {"totalItems": 7}}`}
	c, _ := newStubClient(t, stub)

	count, err := c.CountTenantUsers(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("CountTenantUsers: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7 from metadata", count)
	}
	if stub.lastTenantHeader != "t-1" {
		t.Errorf("X-Tenant-Id = %q, want t-1", stub.lastTenantHeader)
	}
}

func TestCountTenantUsersFallsBackToItems(t *testing.T) {
	stub := &platformStub{usersResponse: `[{"id": "u-1"}, {"id": "u-2"}]`}
	c, _ := newStubClient(t, stub)

	count, err := c.CountTenantUsers(context.Background(), "t-1")
	if err != nil {
		t.Fatalf("CountTenantUsers: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 from item list", count)
	}
}

func TestMissingBaseURLIsConfigError(t *testing.T) {
	c := New(&config.Config{VendorTokenTTL: time.Hour}, logger.New("development"))

	_, err := c.ListTenants(context.Background(), "Acme", 1)
	if !apperr.Is(err, apperr.KindConfig) {
		t.Fatalf("err = %v, want KindConfig", err)
	}
}

func TestRejectedCredentialsIsConfigError(t *testing.T) {
	stub := &platformStub{}
	srv := httptest.NewServer(stub.handler())
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		VendorBaseURL:  srv.URL,
		VendorClientID: "client-1",
		VendorTokenTTL: time.Hour,
		// API key missing
	}
	c := New(cfg, logger.New("development"))

	err := c.AttachUserToTenant(context.Background(), "u-1", "t-1")
	if !apperr.Is(err, apperr.KindConfig) {
		t.Fatalf("err = %v, want KindConfig", err)
	}
}
