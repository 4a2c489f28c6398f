package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Store is the read side the Authorizer needs from persistence.
type Store interface {
	// LoadSubject reads binding, role and active permissions of an active user
	// in one consistent read. Unknown or inactive users yield ErrUserNotFound.
	LoadSubject(ctx context.Context, userID uint64) (Subject, error)
	// BoundUserIDs lists the users holding roleID.
	BoundUserIDs(ctx context.Context, roleID uint) ([]uint64, error)
	// UserIDsWithPermission lists the users whose role carries permissionID.
	UserIDsWithPermission(ctx context.Context, permissionID uint) ([]uint64, error)
}

// Options configures an Authorizer.
type Options struct {
	TTL    time.Duration // DefaultCacheTTL when zero
	Policy Policy
}

// Authorizer resolves subjects through the cache and evaluates requirements.
// It also owns cache invalidation, see the On* methods.
type Authorizer struct {
	store  Store
	cache  Cache
	ttl    time.Duration
	policy Policy

	flight singleflight.Group
	// epoch moves on every eviction; loads that started before it do not populate the cache.
	epoch atomic.Uint64
}

// NewAuthorizer returns an Authorizer reading from store and caching in cache.
func NewAuthorizer(store Store, cache Cache, opts Options) *Authorizer {
	if opts.TTL <= 0 {
		opts.TTL = DefaultCacheTTL
	}

	return &Authorizer{
		store:  store,
		cache:  cache,
		ttl:    opts.TTL,
		policy: opts.Policy,
	}
}

// Policy returns the configured bypass policy.
func (a *Authorizer) Policy() Policy {
	return a.policy
}

// Enforce decides req for userID.
//
// A zero or unknown user is denied with ErrUnauthenticated. When the subject
// can not be read from cache or storage the decision is a deny and the
// storage error is returned. Granted and denied decisions return a nil error.
func (a *Authorizer) Enforce(ctx context.Context, userID uint64, req Requirement) (Decision, error) {
	if userID == 0 {
		decisionsTotal.WithLabelValues("unauthenticated").Inc()
		return deny(ReasonUnauthenticated), ErrUnauthenticated
	}

	s, err := a.Subject(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			decisionsTotal.WithLabelValues("unauthenticated").Inc()
			return deny(ReasonUnauthenticated), ErrUnauthenticated
		}

		decisionsTotal.WithLabelValues("error").Inc()
		log.Error().Err(err).Uint64("user_id", userID).Str("requirement", req.String()).
			Msg("authorization failed closed")

		return deny(ReasonUnavailable), err
	}

	if a.policy.Bypasses(s) {
		decisionsTotal.WithLabelValues("bypass").Inc()
		log.Info().Uint64("user_id", userID).Str("role", s.Role).Str("requirement", req.String()).
			Msg("granted by bypass role")

		return Decision{Granted: true, Reason: ReasonBypass}, nil
	}

	d := Evaluate(s, req)
	if d.Granted {
		decisionsTotal.WithLabelValues("granted").Inc()
		log.Debug().Uint64("user_id", userID).Str("requirement", req.String()).Msg("granted")

		return d, nil
	}

	decisionsTotal.WithLabelValues("denied").Inc()
	log.Warn().Uint64("user_id", userID).Str("role", s.Role).Int("level", s.Level).
		Str("requirement", req.String()).Str("reason", d.Reason).Msg("denied")

	return d, nil
}

// Subject returns the subject of userID, from cache when possible.
// Cache failures fall back to storage; cache write failures are only logged.
func (a *Authorizer) Subject(ctx context.Context, userID uint64) (Subject, error) {
	key := SubjectKey(userID)

	raw, ok, err := a.cache.Get(ctx, key)

	switch {
	case err != nil:
		cacheLookupsTotal.WithLabelValues("error").Inc()
		log.Warn().Err(err).Str("key", key).Msg("subject cache read failed, using storage")
	case ok:
		var s Subject
		if err := json.Unmarshal(raw, &s); err == nil {
			cacheLookupsTotal.WithLabelValues("hit").Inc()
			return s, nil
		}

		cacheLookupsTotal.WithLabelValues("corrupt").Inc()
		log.Warn().Str("key", key).Msg("dropping undecodable subject cache entry")

		if err := a.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("subject cache delete failed")
		}
	default:
		cacheLookupsTotal.WithLabelValues("miss").Inc()
	}

	v, err, _ := a.flight.Do(key, func() (any, error) {
		return a.load(context.WithoutCancel(ctx), userID, key)
	})
	if err != nil {
		return Subject{}, err //nolint:wrapcheck
	}

	return v.(Subject), nil //nolint:forcetypeassert
}

func (a *Authorizer) load(ctx context.Context, userID uint64, key string) (Subject, error) {
	epoch := a.epoch.Load()

	s, err := a.store.LoadSubject(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return Subject{}, err
		}

		return Subject{}, fmt.Errorf("load subject %d: %w", userID, err)
	}

	if a.epoch.Load() != epoch {
		// an invalidation ran while we were reading
		return s, nil
	}

	b, err := json.Marshal(s)
	if err != nil {
		return s, nil //nolint:nilerr
	}

	if err := a.cache.Set(ctx, key, b, a.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("subject cache write failed")
		return s, nil
	}

	if a.epoch.Load() != epoch {
		// lost the race against an eviction, undo the write
		if err := a.cache.Delete(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("subject cache delete failed")
		}
	}

	return s, nil
}
