package rbac

import "slices"

// Deny reasons reported to clients.
const (
	ReasonInsufficientPermissions = "Insufficient permissions"
	ReasonInsufficientRoleLevel   = "Insufficient role level"
	ReasonInvalidRequirement      = "Invalid requirement"
	ReasonUnauthenticated         = "User not authenticated"
	ReasonUnavailable             = "Authorization unavailable"
	ReasonBypass                  = "Granted by bypass role"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Granted bool   `json:"granted"`
	Reason  string `json:"reason,omitempty"`
}

func grant() Decision { return Decision{Granted: true} }

func deny(reason string) Decision { return Decision{Reason: reason} }

// Err returns nil for a grant and ErrPermissionDenied otherwise.
func (d Decision) Err() error {
	if d.Granted {
		return nil
	}

	if d.Reason == ReasonUnauthenticated {
		return ErrUnauthenticated
	}

	return ErrPermissionDenied
}

// Evaluate decides req for s. It has no side effects.
func Evaluate(s Subject, req Requirement) Decision {
	switch req.kind {
	case KindPermission:
		if s.Has(req.names[0]) {
			return grant()
		}

		return deny(ReasonInsufficientPermissions)
	case KindAnyPermission:
		if slices.ContainsFunc(req.names, s.Has) {
			return grant()
		}

		return deny(ReasonInsufficientPermissions)
	case KindAllPermissions:
		for _, p := range req.names {
			if !s.Has(p) {
				return deny(ReasonInsufficientPermissions)
			}
		}

		return grant()
	case KindRole, KindAnyRole:
		if s.Role != "" && slices.Contains(req.names, s.Role) {
			return grant()
		}

		return deny(ReasonInsufficientRoleLevel)
	case KindMinLevel:
		if s.Level >= req.level {
			return grant()
		}

		return deny(ReasonInsufficientRoleLevel)
	default:
		return deny(ReasonInvalidRequirement)
	}
}
