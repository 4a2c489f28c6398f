package rbac

import (
	"encoding/json"
	"sort"
)

// Subject is the authorization view of one user: role name, role level and the
// effective permission set. Users without a role, or with an inactive one,
// have level 0 and no permissions.
type Subject struct {
	UserID uint64
	Role   string
	Level  int

	permissions map[string]struct{}
}

// NewSubject builds a Subject. Duplicate permissions are collapsed.
func NewSubject(userID uint64, role string, level int, permissions []string) Subject {
	set := make(map[string]struct{}, len(permissions))
	for _, p := range permissions {
		set[p] = struct{}{}
	}

	return Subject{UserID: userID, Role: role, Level: level, permissions: set}
}

// Has reports whether p is in the effective permission set.
func (s Subject) Has(p string) bool {
	_, ok := s.permissions[p]
	return ok
}

// Permissions returns the effective permission set sorted by name.
func (s Subject) Permissions() []string {
	out := make([]string, 0, len(s.permissions))
	for p := range s.permissions {
		out = append(out, p)
	}

	sort.Strings(out)

	return out
}

type subjectJSON struct {
	UserID      uint64   `json:"user_id"`
	Role        string   `json:"role"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
}

// MarshalJSON encodes the subject as stored in the decision cache.
func (s Subject) MarshalJSON() ([]byte, error) {
	return json.Marshal(subjectJSON{
		UserID:      s.UserID,
		Role:        s.Role,
		Level:       s.Level,
		Permissions: s.Permissions(),
	})
}

// UnmarshalJSON decodes a cached subject.
func (s *Subject) UnmarshalJSON(b []byte) error {
	var raw subjectJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err //nolint:wrapcheck
	}

	*s = NewSubject(raw.UserID, raw.Role, raw.Level, raw.Permissions)

	return nil
}
