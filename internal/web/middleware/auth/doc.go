// Package auth provides the identity middleware for the web application.
//
// The middleware reads the session token from the session cookie or from an
// "Authorization: Bearer <token>" header and, for a live session, adds the
// user id to fiber.Locals. It never rejects a request: routes decide what
// they require through the enforcement middleware of the internal/auth package.
//
// Usage:
//
//	app.Use(authmiddleware.Middleware(sessions, cfg.Webserver.Session.CookieName))
package auth
