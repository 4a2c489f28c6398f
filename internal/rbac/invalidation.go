package rbac

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
)

// The On* hooks evict cached subjects after a committed write.
// They run before the response is sent; a returned error means stale
// entries may remain and must be surfaced to the caller.

// OnUserRoleBindingChanged evicts the subject of userID.
// Call it after a role assignment, removal, user update or deletion.
func (a *Authorizer) OnUserRoleBindingChanged(ctx context.Context, userID uint64) error {
	return a.evict(ctx, "user", []uint64{userID})
}

// OnRoleChanged evicts the subjects of every user bound to roleID.
// Call it after the role's name, level or active flag changed, or it was deleted.
func (a *Authorizer) OnRoleChanged(ctx context.Context, roleID uint) error {
	return a.evictRole(ctx, "role", roleID)
}

// OnPermissionSetChanged evicts the subjects of every user bound to roleID.
// Call it after permissions were assigned to or removed from the role.
func (a *Authorizer) OnPermissionSetChanged(ctx context.Context, roleID uint) error {
	return a.evictRole(ctx, "role_permissions", roleID)
}

// OnPermissionChanged evicts the subjects of every user whose role carries
// permissionID. Call it after a rename or an active flag toggle.
// When the affected users can not be listed every subject is evicted.
func (a *Authorizer) OnPermissionChanged(ctx context.Context, permissionID uint) error {
	ids, err := a.store.UserIDsWithPermission(ctx, permissionID)
	if err != nil {
		log.Warn().Err(err).Uint("permission_id", permissionID).
			Msg("can't list users of permission, evicting all subjects")

		return a.evictAll(ctx)
	}

	return a.evict(ctx, "permission", ids)
}

// OnPermissionDeleted evicts every cached subject.
// The join rows are gone by the time this runs, so the holders can't be listed.
func (a *Authorizer) OnPermissionDeleted(ctx context.Context, _ uint) error {
	return a.evictAll(ctx)
}

func (a *Authorizer) evictRole(ctx context.Context, scope string, roleID uint) error {
	ids, err := a.store.BoundUserIDs(ctx, roleID)
	if err != nil {
		log.Warn().Err(err).Uint("role_id", roleID).
			Msg("can't list users of role, evicting all subjects")

		return a.evictAll(ctx)
	}

	return a.evict(ctx, scope, ids)
}

func (a *Authorizer) evict(ctx context.Context, scope string, userIDs []uint64) error {
	a.epoch.Add(1)

	if len(userIDs) == 0 {
		return nil
	}

	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = SubjectKey(id)
		a.flight.Forget(keys[i])
	}

	if err := a.cache.Delete(ctx, keys...); err != nil {
		log.Error().Err(err).Str("scope", scope).Int("keys", len(keys)).Msg("subject cache eviction failed")
		return fmt.Errorf("evict %d subjects: %w", len(keys), err)
	}

	invalidationsTotal.WithLabelValues(scope).Inc()
	log.Debug().Str("scope", scope).Uints64("user_ids", userIDs).Msg("evicted subjects")

	return nil
}

func (a *Authorizer) evictAll(ctx context.Context) error {
	a.epoch.Add(1)

	if err := a.cache.DeletePattern(ctx, SubjectPattern); err != nil {
		log.Error().Err(err).Msg("subject cache flush failed")
		return fmt.Errorf("evict all subjects: %w", err)
	}

	invalidationsTotal.WithLabelValues("all").Inc()
	log.Debug().Msg("evicted all subjects")

	return nil
}
