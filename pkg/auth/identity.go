package auth

import "github.com/angelmondragon/storefront-backend/pkg/enums"

// Identity is the authenticated caller handed to services.
type Identity struct {
	UserID uint
	Email  string
	Roles  []enums.Role
	JTI    string
}

// HasRole reports whether the identity carries role. ROLE_ADMIN implies ROLE_USER.
func (i Identity) HasRole(role enums.Role) bool {
	for _, r := range i.Roles {
		if r == role {
			return true
		}
		if r == enums.RoleAdmin && role == enums.RoleUser {
			return true
		}
	}
	return false
}

func (i Identity) IsAdmin() bool {
	return i.HasRole(enums.RoleAdmin)
}

// RoleStrings returns the roles in their wire form.
func (i Identity) RoleStrings() []string {
	out := make([]string, 0, len(i.Roles))
	for _, r := range i.Roles {
		out = append(out, string(r))
	}
	return out
}

// IdentityFromClaims rebuilds the caller from a verified access token.
func IdentityFromClaims(claims *AccessTokenClaims) Identity {
	if claims == nil {
		return Identity{}
	}
	return Identity{
		UserID: claims.UserID,
		Email:  claims.Email,
		Roles:  append([]enums.Role(nil), claims.Roles...),
		JTI:    claims.ID,
	}
}
