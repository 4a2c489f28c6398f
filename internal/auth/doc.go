// Package auth glues authentication and authorization to the web layer.
//
// # Authentication
//
// LocalProvider checks a username or email and password against the users
// table. Passwords are stored as Argon2id hashes.
//
// # Authorization
//
// Decisions are made by rbac.Authorizer. This package adds Fiber middleware
// around it:
//   - Require: protect a route with any rbac.Requirement
//   - RequirePermission, RequireAnyPermission, RequireAllPermissions
//   - RequireRole, RequireAnyRole, RequireLevel
//
// Unauthenticated requests are answered with 401, denied ones with 403 and the
// engine's reason:
//
//	{"granted": false, "error": "Unauthorized", "message": "Insufficient permissions"}
//
// # ACL administration
//
// Service wraps the ACL store. Each mutation commits first and then evicts the
// cached subjects it affects, so the next request of an affected user sees the
// change. A failed eviction is returned as ErrCacheInvalidation.
//
// Example usage:
//
//	svc, err := auth.NewService(store, authorizer)
//
//	app.Get("/api/products",
//	    auth.RequirePermission(authorizer, auth.PermProductsView),
//	    handler,
//	)
package auth
