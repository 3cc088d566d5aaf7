package permission

import "authgate/internal/model"

// ForSeller returns the seller's explicit allowed_services when any are set,
// otherwise the defaults of its subscription plan.
func ForSeller(seller *model.Seller) Set {
	return ForSellerFields(seller.SubscriptionPlan, seller.AllowedServices)
}

// ForSellerFields is ForSeller over raw fields, used for legacy token claims.
func ForSellerFields(plan model.SubscriptionPlan, allowedServices []string) Set {
	explicit := NewSet(allowedServices...)
	if explicit.Len() > 0 {
		return explicit
	}
	return PlanDefaults(plan)
}

// ForAdmin unions the permissions of every held role. When domainID is non-empty
// only roles that are unrestricted or list domainID contribute.
// A role appearing more than once (assigned in several domains) counts once.
func ForAdmin(roles []model.AdminRole, domainID string) Set {
	out := make(Set)
	for _, role := range roles {
		if domainID != "" && !RoleCoversDomain(role, domainID) {
			continue
		}
		for _, p := range role.Permissions {
			if p == model.PermissionWildcard {
				return NewSet(model.PermissionWildcard)
			}
			out.Add(p)
		}
	}
	return out
}

// RoleCoversDomain reports whether role applies in domainID. Roles with no domains are unrestricted.
func RoleCoversDomain(role model.AdminRole, domainID string) bool {
	if len(role.Domains) == 0 {
		return true
	}
	for _, d := range role.Domains {
		if d == domainID {
			return true
		}
	}
	return false
}

// LoginRoles returns the distinct roles with can_login set.
func LoginRoles(roles []model.AdminRole) []model.AdminRole {
	seen := make(map[string]struct{}, len(roles))
	out := make([]model.AdminRole, 0, len(roles))
	for _, role := range roles {
		if !role.CanLogin {
			continue
		}
		key := role.ID.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, role)
	}
	return out
}

// CanLogin reports whether any held role enables interactive login.
func CanLogin(roles []model.AdminRole) bool {
	return len(LoginRoles(roles)) > 0
}
