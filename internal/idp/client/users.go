package client

import (
	"context"
	"net/http"
	"net/url"
)

const (
	usersV1Path     = "/identity/resources/users/v1/"
	bulkInvitePath  = "/identity/resources/users/bulk/v1/invite"
	disablePathPart = "/disable"
	tenantsPathPart = "/tenants"
)

// AttachUserToTenant adds an existing user to a tenant by identifier.
// 409 means the user is already a member, which is the desired end state.
func (c *Client) AttachUserToTenant(ctx context.Context, userID, tenantID string) error {
	body := map[string]string{"tenantId": tenantID}
	path := usersV1Path + url.PathEscape(userID) + tenantsPathPart
	return c.call(ctx, "attach user to tenant", http.MethodPost, path, "", body, nil, http.StatusConflict)
}

// BulkInviteUsers invites a user into the tenant by email, provisioning the
// account if it does not exist yet. Used only when no platform user
// identifier is known.
func (c *Client) BulkInviteUsers(ctx context.Context, tenantID, email, name string) error {
	user := map[string]string{"email": email}
	if name != "" {
		user["name"] = name
	}
	body := map[string]interface{}{
		"users": []map[string]string{user},
	}
	return c.call(ctx, "bulk invite user", http.MethodPost, bulkInvitePath, tenantID, body, nil)
}

// RemoveUserFromTenant deletes the user's membership in the tenant named by
// the tenant-context header. 404 means the user was not a member, which is
// the desired end state.
func (c *Client) RemoveUserFromTenant(ctx context.Context, userID, tenantID string) error {
	path := usersV1Path + url.PathEscape(userID)
	return c.call(ctx, "remove user from tenant", http.MethodDelete, path, tenantID, nil, nil, http.StatusNotFound)
}

// DisableUserInTenant disables the user within the tenant named by the
// tenant-context header. Requires a known user identifier.
func (c *Client) DisableUserInTenant(ctx context.Context, userID, tenantID string) error {
	path := usersV1Path + url.PathEscape(userID) + disablePathPart
	return c.call(ctx, "disable user in tenant", http.MethodPut, path, tenantID, nil, nil)
}
