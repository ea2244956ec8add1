package onboarding

import "context"

// MembershipCounter is the slice of the platform client the oracle needs.
type MembershipCounter interface {
	CountTenantUsers(ctx context.Context, tenantID string) (int, error)
}

// PopulationOracle answers whether a tenant already has at least two members.
// It never fetches the membership list; the underlying count request is capped
// so the cost stays constant regardless of tenant size.
type PopulationOracle struct {
	counter MembershipCounter
}

// NewPopulationOracle creates an oracle over the given counter.
func NewPopulationOracle(counter MembershipCounter) *PopulationOracle {
	return &PopulationOracle{counter: counter}
}

// HasAtLeastTwoMembers reports whether the tenant has two or more members.
func (o *PopulationOracle) HasAtLeastTwoMembers(ctx context.Context, tenantID string) (bool, error) {
	total, err := o.counter.CountTenantUsers(ctx, tenantID)
	if err != nil {
		return false, err
	}
	return total >= 2, nil
}
