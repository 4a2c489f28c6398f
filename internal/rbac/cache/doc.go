// Package cache provides the subject cache backends used by rbac.Authorizer:
// an in-process expirable LRU, Redis for deployments with several instances,
// and a plain map for tests.
package cache
