// Package rbac decides whether a user may perform an operation.
//
// A user holds at most one role. The role carries a name, a level and a set of
// permissions. Routes declare a Requirement; the Authorizer loads the user's
// Subject (through the decision cache), applies the bypass Policy and hands the
// pair to Evaluate, which is a pure function.
//
// Writers to roles, permissions and user bindings call the On* hooks of the
// Authorizer after their transaction committed so cached subjects never outlive
// the data they were computed from.
package rbac
