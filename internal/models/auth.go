package models

// StaffLinkRef is one active staff grant carried on an AuthContext.
type StaffLinkRef struct {
	StoreID int64
	Role    StaffRole
}

// AuthContext is the resolved caller identity produced by the auth
// middleware and threaded explicitly to handlers. It carries everything the
// role and store-access gates need so they never touch the database again.
type AuthContext struct {
	UserID        int64
	Email         string
	Name          string
	Roles         []RoleCode
	OwnedStoreIDs []int64
	StaffLinks    []StaffLinkRef
}

// HasRole reports whether the caller holds any of the given roles.
func (a *AuthContext) HasRole(roles ...RoleCode) bool {
	for _, want := range roles {
		for _, have := range a.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// OwnsStore reports whether the caller is the owner of the store.
func (a *AuthContext) OwnsStore(storeID int64) bool {
	for _, id := range a.OwnedStoreIDs {
		if id == storeID {
			return true
		}
	}
	return false
}

// StaffRoleFor returns the caller's active staff role for the store, if any.
func (a *AuthContext) StaffRoleFor(storeID int64) (StaffRole, bool) {
	for _, link := range a.StaffLinks {
		if link.StoreID == storeID {
			return link.Role, true
		}
	}
	return "", false
}

// RoleStrings returns the role codes as plain strings for responses.
func (a *AuthContext) RoleStrings() []string {
	out := make([]string, len(a.Roles))
	for i, r := range a.Roles {
		out[i] = string(r)
	}
	return out
}
