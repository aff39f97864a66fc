package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
	RoleGod        Role = "god"
)

func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleSuperAdmin, RoleGod:
		return r, true
	}
	return "", false
}

type Capability string

const (
	CapManageProducts   Capability = "manage_products"
	CapManageCategories Capability = "manage_categories"
	CapManageOrders     Capability = "manage_orders"
	CapManageUsers      Capability = "manage_users"
	CapViewReports      Capability = "view_reports"
	CapManageAdmins     Capability = "manage_admins"
)

var baseline = CapabilitySet{
	CapManageProducts,
	CapManageCategories,
	CapManageOrders,
	CapManageUsers,
	CapViewReports,
}

var roleCaps = map[Role]CapabilitySet{
	RoleAdmin:      baseline,
	RoleSuperAdmin: append(append(CapabilitySet{}, baseline...), CapManageAdmins),
	RoleGod:        append(append(CapabilitySet{}, baseline...), CapManageAdmins),
}

// Capabilities returns what the role may do. Unknown roles get nothing.
func (r Role) Capabilities() CapabilitySet {
	return append(CapabilitySet{}, roleCaps[r]...)
}

func (r Role) Can(c Capability) bool {
	return roleCaps[r].Has(c)
}

// DefaultPermissions is the permission list recorded on a newly registered admin.
func DefaultPermissions() CapabilitySet {
	return CapabilitySet{CapManageProducts, CapManageCategories}
}

// CapabilitySet is stored as a JSON array column.
type CapabilitySet []Capability

func (s CapabilitySet) Has(c Capability) bool {
	for _, x := range s {
		if x == c {
			return true
		}
	}
	return false
}

func (s CapabilitySet) Strings() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = string(c)
	}
	return out
}

func CapabilitiesFrom(names []string) CapabilitySet {
	out := make(CapabilitySet, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, Capability(n))
		}
	}
	return out
}

func (s CapabilitySet) Value() (driver.Value, error) {
	if s == nil {
		s = CapabilitySet{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *CapabilitySet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = CapabilitySet{}
		return nil
	case string:
		return s.decode([]byte(v))
	case []byte:
		return s.decode(v)
	}
	return fmt.Errorf("permissions: unsupported column type %T", src)
}

func (s *CapabilitySet) decode(raw []byte) error {
	if len(raw) == 0 {
		*s = CapabilitySet{}
		return nil
	}
	return json.Unmarshal(raw, s)
}
