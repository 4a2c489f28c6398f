package rbac

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Kind tags the variant of a Requirement.
type Kind uint8

// Requirement kinds. The zero value is invalid and always denies.
const (
	KindInvalid Kind = iota
	KindPermission
	KindAnyPermission
	KindAllPermissions
	KindRole
	KindAnyRole
	KindMinLevel
)

var kindNames = map[Kind]string{ //nolint:gochecknoglobals
	KindInvalid:        "invalid",
	KindPermission:     "permission",
	KindAnyPermission:  "any",
	KindAllPermissions: "all",
	KindRole:           "role",
	KindAnyRole:        "any-role",
	KindMinLevel:       "level",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "unknown"
}

// ErrInvalidRequirement is returned by ParseRequirement for input it can not read unambiguously.
var ErrInvalidRequirement = errors.New("invalid requirement")

// Requirement describes what a route demands of the caller.
// Build one with the constructors; requirements are immutable.
type Requirement struct {
	kind  Kind
	names []string
	level int
}

// Single requires the permission p.
func Single(p string) Requirement {
	return build(KindPermission, []string{p})
}

// AnyOf requires at least one of ps. Without names it denies everybody.
func AnyOf(ps ...string) Requirement {
	r := build(KindAnyPermission, ps)
	if r.kind == KindInvalid {
		// an empty alternative can never be satisfied
		return Requirement{kind: KindAnyPermission}
	}

	return r
}

// AllOf requires every one of ps. Without names the requirement is invalid.
func AllOf(ps ...string) Requirement {
	return build(KindAllPermissions, ps)
}

// Role requires the caller's role name to equal r.
func Role(r string) Requirement {
	return build(KindRole, []string{r})
}

// RoleAnyOf requires the caller's role name to be one of rs.
func RoleAnyOf(rs ...string) Requirement {
	return build(KindAnyRole, rs)
}

// MinLevel requires a role level of at least level.
func MinLevel(level int) Requirement {
	return Requirement{kind: KindMinLevel, level: level}
}

// build trims, drops empty and duplicate names. No names left makes the requirement invalid.
func build(kind Kind, names []string) Requirement {
	seen := make(map[string]struct{}, len(names))
	clean := make([]string, 0, len(names))

	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}

		if _, ok := seen[n]; ok {
			continue
		}

		seen[n] = struct{}{}
		clean = append(clean, n)
	}

	if len(clean) == 0 {
		return Requirement{}
	}

	return Requirement{kind: kind, names: clean}
}

// Kind returns the variant.
func (r Requirement) Kind() Kind { return r.kind }

// Names returns a copy of the permission or role names.
func (r Requirement) Names() []string {
	return append([]string(nil), r.names...)
}

// Level returns the minimum level of a KindMinLevel requirement.
func (r Requirement) Level() int { return r.level }

// Valid reports whether r has a known kind. Invalid requirements always deny.
func (r Requirement) Valid() bool {
	return r.kind != KindInvalid
}

func (r Requirement) String() string {
	switch r.kind {
	case KindMinLevel:
		return "level>=" + strconv.Itoa(r.level)
	case KindInvalid:
		return "invalid"
	default:
		return r.kind.String() + ":" + strings.Join(r.names, "|")
	}
}

// ParseRequirement reads a requirement from configuration.
// kind is one of permission, any, all, role, any-role or level; value holds
// pipe separated names or, for level, an integer. A single-name kind given
// several names is rejected instead of guessing.
func ParseRequirement(kind, value string) (Requirement, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Requirement{}, fmt.Errorf("%w: empty value", ErrInvalidRequirement)
	}

	names := strings.Split(value, "|")

	var r Requirement

	switch kind {
	case "permission", "single":
		if len(names) > 1 {
			return Requirement{}, fmt.Errorf("%w: %q names several permissions, use any or all", ErrInvalidRequirement, value)
		}

		r = Single(value)
	case "any":
		r = AnyOf(names...)
	case "all":
		r = AllOf(names...)
	case "role":
		if len(names) > 1 {
			return Requirement{}, fmt.Errorf("%w: %q names several roles, use any-role", ErrInvalidRequirement, value)
		}

		r = Role(value)
	case "any-role":
		r = RoleAnyOf(names...)
	case "level":
		level, err := strconv.Atoi(value)
		if err != nil {
			return Requirement{}, fmt.Errorf("%w: level %q is not a number", ErrInvalidRequirement, value)
		}

		r = MinLevel(level)
	default:
		return Requirement{}, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequirement, kind)
	}

	if !r.Valid() || (len(r.names) == 0 && r.kind != KindMinLevel) {
		return Requirement{}, fmt.Errorf("%w: no names in %q", ErrInvalidRequirement, value)
	}

	return r, nil
}
