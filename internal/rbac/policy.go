package rbac

// Policy holds caller-side overrides applied before Evaluate.
type Policy struct {
	// BypassRole grants every requirement to holders of this role. Empty disables it.
	// The role must be active: an inactive role reports level 0 and is not honored.
	BypassRole string
}

// Bypasses reports whether s skips evaluation.
func (p Policy) Bypasses(s Subject) bool {
	return p.BypassRole != "" && s.Role == p.BypassRole && s.Level > 0
}
