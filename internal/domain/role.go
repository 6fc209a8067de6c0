package domain

import (
	"regexp"

	dErrors "nutricore/pkg/domain-errors"
)

// Role is the closed set of actor kinds the platform serves. Adding a role is
// a single-point change: extend the constants and the specs table; the
// exhaustiveness test fails until both agree.
type Role string

const (
	RoleUser             Role = "user"
	RoleAdmin            Role = "admin"
	RoleDietitian        Role = "dietitian"
	RoleOrganization     Role = "organization"
	RoleCorporatePartner Role = "corporate-partner"
)

// SecondaryFactor names the extra credential a role must present at login
// beyond email and password.
type SecondaryFactor int

const (
	FactorNone SecondaryFactor = iota
	FactorLicense
	FactorAdminKey
)

// Spec describes role-specific rules. One entry per role; services dispatch
// through this table instead of scattering switches.
type Spec struct {
	Role            Role
	Collection      string
	RequiresLicense bool
	LicensePrefix   string
	Secondary       SecondaryFactor
}

var licenseSuffix = regexp.MustCompile(`^[A-Za-z0-9]{4,10}$`)

var specs = map[Role]Spec{
	RoleUser: {
		Role:       RoleUser,
		Collection: "user_profiles",
		Secondary:  FactorNone,
	},
	RoleAdmin: {
		Role:       RoleAdmin,
		Collection: "admin_profiles",
		Secondary:  FactorAdminKey,
	},
	RoleDietitian: {
		Role:            RoleDietitian,
		Collection:      "dietitian_profiles",
		RequiresLicense: true,
		LicensePrefix:   "DT",
		Secondary:       FactorLicense,
	},
	RoleOrganization: {
		Role:            RoleOrganization,
		Collection:      "organization_profiles",
		RequiresLicense: true,
		LicensePrefix:   "OG",
		Secondary:       FactorLicense,
	},
	RoleCorporatePartner: {
		Role:            RoleCorporatePartner,
		Collection:      "corporate_partner_profiles",
		RequiresLicense: true,
		LicensePrefix:   "CP",
		Secondary:       FactorLicense,
	},
}

// Roles returns every known role. The slice is freshly allocated; callers may
// sort or mutate it.
func Roles() []Role {
	out := make([]Role, 0, len(specs))
	for role := range specs {
		out = append(out, role)
	}
	return out
}

// ParseRole validates a role string from a route parameter or request body.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if _, ok := specs[role]; !ok {
		return "", dErrors.New(dErrors.CodeInvalidRole, "unknown role: "+s)
	}
	return role, nil
}

// SpecFor returns the dispatch entry for a known role. Callers must have
// validated the role via ParseRole; an unknown role here is a programming
// error and yields the zero Spec.
func SpecFor(role Role) Spec {
	return specs[role]
}

// ValidateLicense checks a license number against the role's fixed-prefix
// alphanumeric pattern.
func (s Spec) ValidateLicense(license string) error {
	if !s.RequiresLicense {
		return nil
	}
	if license == "" {
		return dErrors.New(dErrors.CodeValidation, "licenseNumber is required for role "+string(s.Role))
	}
	if len(license) <= len(s.LicensePrefix) || license[:len(s.LicensePrefix)] != s.LicensePrefix {
		return dErrors.New(dErrors.CodeValidation, "licenseNumber must start with "+s.LicensePrefix)
	}
	if !licenseSuffix.MatchString(license[len(s.LicensePrefix):]) {
		return dErrors.New(dErrors.CodeValidation, "licenseNumber has an invalid format")
	}
	return nil
}
