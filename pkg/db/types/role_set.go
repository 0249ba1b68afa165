package dbtypes

import (
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

// RoleSet is stored as a Postgres text[] literal: {ROLE_USER,ROLE_ADMIN}.
type RoleSet []enums.Role

func (s *RoleSet) Scan(src any) error {
	if src == nil {
		*s = RoleSet{}
		return nil
	}

	switch v := src.(type) {
	case string:
		return s.parseFromString(v)
	case []byte:
		return s.parseFromString(string(v))
	default:
		return fmt.Errorf("RoleSet: unsupported Scan type %T", src)
	}
}

func (s RoleSet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}
	parts := make([]string, 0, len(s))
	for _, role := range s {
		parts = append(parts, role.String())
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// Has reports whether role is a member of the set.
func (s RoleSet) Has(role enums.Role) bool {
	for _, candidate := range s {
		if candidate == role {
			return true
		}
	}
	return false
}

// Strings returns the roles as plain strings.
func (s RoleSet) Strings() []string {
	out := make([]string, 0, len(s))
	for _, role := range s {
		out = append(out, role.String())
	}
	return out
}

// Normalize drops duplicates while preserving order.
func (s RoleSet) Normalize() RoleSet {
	out := make(RoleSet, 0, len(s))
	for _, role := range s {
		if !out.Has(role) {
			out = append(out, role)
		}
	}
	return out
}

func (s *RoleSet) parseFromString(raw string) error {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "{")
	raw = strings.TrimSuffix(raw, "}")
	if strings.TrimSpace(raw) == "" {
		*s = RoleSet{}
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make(RoleSet, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(p, `"`))
		role, err := enums.ParseRole(p)
		if err != nil {
			return fmt.Errorf("RoleSet: %w", err)
		}
		out = append(out, role)
	}
	*s = out
	return nil
}
