package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"tenantsync/internal/idp/transport"
)

const (
	tenantsPath        = "/tenancy/resources/tenants/v1"
	appAssignmentsPath = "/applications/resources/applications/tenant-assignments/v1/"
	usersV2Path        = "/identity/resources/users/v2"
)

// ListTenants queries the tenant listing endpoint with a free-text filter.
// The filter is fuzzy, not an exact index: zero, one or many matches are all
// valid responses, capped here at limit.
func (c *Client) ListTenants(ctx context.Context, filter string, limit int) ([]transport.Tenant, error) {
	params := url.Values{}
	params.Set("_filter", filter)
	params.Set("_limit", strconv.Itoa(limit))

	var page transport.TenantPage
	if err := c.call(ctx, "list tenants", http.MethodGet, tenantsPath+"?"+params.Encode(), "", nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// CreateTenant creates a tenant with the exact given name.
func (c *Client) CreateTenant(ctx context.Context, name string) (transport.Tenant, error) {
	body := map[string]string{"name": name}

	var tenant transport.Tenant
	if err := c.call(ctx, "create tenant", http.MethodPost, tenantsPath, "", body, &tenant); err != nil {
		return transport.Tenant{}, err
	}
	return tenant, nil
}

// AssignApplication binds an application to a tenant. 409 means the
// application is already assigned, which is the desired end state.
func (c *Client) AssignApplication(ctx context.Context, appID, tenantID string) error {
	body := map[string]string{"tenantId": tenantID}
	path := appAssignmentsPath + url.PathEscape(appID)
	return c.call(ctx, "assign application", http.MethodPut, path, "", body, nil, http.StatusConflict)
}

// CountTenantUsers reports how many users the tenant has, requesting at most
// two records so the cost stays constant regardless of tenant size. The
// explicit total is preferred; without metadata the returned item count is
// the best available answer.
func (c *Client) CountTenantUsers(ctx context.Context, tenantID string) (int, error) {
	params := url.Values{}
	params.Set("_limit", "2")

	var page transport.UserPage
	if err := c.call(ctx, "count tenant users", http.MethodGet, usersV2Path+"?"+params.Encode(), tenantID, nil, &page); err != nil {
		return 0, err
	}
	if page.Total >= 0 {
		return page.Total, nil
	}
	return len(page.Items), nil
}
