// Package transport defines the wire types exchanged with the identity
// platform's management API.
package transport

import "encoding/json"

// Tenant is an isolated customer namespace in the identity platform.
type Tenant struct {
	TenantID string `json:"tenantId"`
	Name     string `json:"name"`
}

// User is a platform user as returned by the identity API.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// TenantPage is the response of the tenant listing endpoint. The platform
// has shipped both a bare-array shape and an items-wrapped shape; both
// decode into Items.
type TenantPage struct {
	Items []Tenant
}

// UnmarshalJSON accepts either `[...]` or `{"items": [...]}`.
func (p *TenantPage) UnmarshalJSON(data []byte) error {
	var bare []Tenant
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Items = bare
		return nil
	}

	var wrapped struct {
		Items []Tenant `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	p.Items = wrapped.Items
	return nil
}

// UserPage is the response of the paginated user listing endpoint.
// Total carries the explicit total count when the platform exposes one;
// it is -1 when the response had no metadata and callers must fall back
// to len(Items).
type UserPage struct {
	Items []User
	Total int
}

// UnmarshalJSON accepts either `[...]` or
// `{"items": [...], "_metadata": {"totalItems": N}}`.
func (p *UserPage) UnmarshalJSON(data []byte) error {
	p.Total = -1

	var bare []User
	if err := json.Unmarshal(data, &bare); err == nil {
		p.Items = bare
		return nil
	}

	var wrapped struct {
		Items    []User `json:"items"`
		Metadata *struct {
			TotalItems int `json:"totalItems"`
		} `json:"_metadata"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	p.Items = wrapped.Items
	if wrapped.Metadata != nil {
		p.Total = wrapped.Metadata.TotalItems
	}
	return nil
}
