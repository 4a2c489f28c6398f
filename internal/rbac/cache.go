package rbac

import (
	"context"
	"strconv"
	"time"
)

// DefaultCacheTTL bounds how long a cached subject lives without invalidation.
const DefaultCacheTTL = 30 * time.Minute

const subjectKeyPrefix = "rbac:subject:"

// SubjectPattern matches every cached subject. Only '*' is used as wildcard.
const SubjectPattern = subjectKeyPrefix + "*"

// SubjectKey is the single cache key holding the subject of userID.
func SubjectKey(userID uint64) string {
	return subjectKeyPrefix + strconv.FormatUint(userID, 10)
}

// Cache stores encoded subjects. Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	// DeletePattern removes every key matching a glob pattern with '*' wildcards.
	DeletePattern(ctx context.Context, pattern string) error
}
