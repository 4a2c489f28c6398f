// Package main provides the entry point of Catalog Admin, the JSON backend of
// a product catalog administration. It serves login, products and categories
// and the administration of users, roles and permissions. Every protected
// route is checked by the rbac package, which caches one authorization
// subject per user and evicts it whenever roles, permissions or role
// bindings change.
package main
