package onboarding

import (
	"encoding/json"
	"strings"
	"unicode"
)

// Actionable lifecycle event kinds. The emitting platform prefixes keys with
// a vendor namespace in some payload generations; canonicalKind strips it.
const (
	KindSignedUp        = "user.signedUp"
	KindInvitedToTenant = "user.invitedToTenant"
)

// InboundEvent is the canonical record extracted from a webhook payload.
// Constructed once per request, immutable, discarded at end of request.
type InboundEvent struct {
	Kind               string
	UserID             string
	Email              string
	DisplayName        string
	DeclaredTenantName string
	SourceTenantID     string

	// declaredNameIsSource marks a declared name read from the same nested
	// tenant object as the source tenant id. Such a name describes the
	// tenant the event originated in, not a target.
	declaredNameIsSource bool
}

// Actionable reports whether this event kind drives reconciliation at all.
func (e InboundEvent) Actionable() bool {
	return e.Kind == KindSignedUp || e.Kind == KindInvitedToTenant
}

// TenantName returns the target tenant name: the declared name when the
// upstream pre-processing hook supplied one, otherwise the name derived
// from the email domain.
func (e InboundEvent) TenantName() string {
	if e.DeclaredTenantName != "" {
		return e.DeclaredTenantName
	}
	return DeriveTenantName(e.Email)
}

// ParseEvent decodes a raw webhook body into a canonical InboundEvent.
// The platform has shipped at least two payload generations (top-level
// eventKey + user/eventContext versus key + data.user/data.tenant), so every
// field is probed at an ordered list of candidate locations; the first
// non-empty match wins and absent fields resolve to empty.
func ParseEvent(raw []byte) (InboundEvent, error) {
	var tree map[string]interface{}
	if err := json.Unmarshal(raw, &tree); err != nil {
		return InboundEvent{}, err
	}

	probe := func(paths ...string) (value, matched string) {
		for _, path := range paths {
			if v := probePath(tree, path); v != "" {
				return v, path
			}
		}
		return "", ""
	}

	kind, _ := probe("eventKey", "key")
	userID, _ := probe("eventContext.userId", "user.id", "data.user.id")
	email, _ := probe("user.email", "data.user.email")
	displayName, _ := probe("user.name", "data.user.name")
	declared, declaredPath := probe("tenantName", "user.tenantName", "data.tenant.name")
	source, sourcePath := probe("eventContext.tenantId", "user.tenantId", "data.tenant.id")

	return InboundEvent{
		Kind:                 canonicalKind(kind),
		UserID:               userID,
		Email:                email,
		DisplayName:          displayName,
		DeclaredTenantName:   declared,
		SourceTenantID:       source,
		declaredNameIsSource: declaredPath == "data.tenant.name" && sourcePath == "data.tenant.id",
	}, nil
}

// probePath walks a dot-separated path through nested objects and returns
// the string value at the leaf, or empty for anything missing or non-string.
func probePath(tree map[string]interface{}, path string) string {
	parts := strings.Split(path, ".")
	current := tree
	for i, part := range parts {
		value, ok := current[part]
		if !ok {
			return ""
		}
		if i == len(parts)-1 {
			if text, ok := value.(string); ok {
				return text
			}
			return ""
		}
		next, ok := value.(map[string]interface{})
		if !ok {
			return ""
		}
		current = next
	}
	return ""
}

// canonicalKind strips an optional vendor prefix from the event key, e.g.
// "acme.user.signedUp" and "user.signedUp" both canonicalize to the latter.
// The prefix must end at a "." boundary so a key like "abuser.signedUp" is
// left alone.
func canonicalKind(raw string) string {
	if idx := strings.Index(raw, ".user."); idx >= 0 {
		return raw[idx+1:]
	}
	return raw
}

// DeriveTenantName derives a tenant name from an email address: the domain
// is lowercased, truncated at its first dot, and the first rune upper-cased.
// "alice@Acme.io" derives "Acme"; anything without a usable domain derives "".
func DeriveTenantName(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}

	domain := strings.ToLower(email[at+1:])
	if dot := strings.Index(domain, "."); dot >= 0 {
		domain = domain[:dot]
	}
	if domain == "" {
		return ""
	}

	runes := []rune(domain)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
