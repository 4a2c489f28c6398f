// Package acl persists permissions, roles and user role bindings.
//
// Every write runs in a single transaction. Cache invalidation is not done
// here; callers notify the rbac.Authorizer once a write returned nil.
package acl

import (
	"errors"

	"gorm.io/gorm"
)

// ErrDBNil is returned when the store was built without a database.
var ErrDBNil = errors.New("database connection is nil")

// Store is the gorm backed ACL store. It implements rbac.Store.
type Store struct {
	db *gorm.DB
}

// New returns a Store on db.
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	return &Store{db: db}, nil
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}
