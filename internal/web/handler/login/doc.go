// Package login provides HTTP handlers for local authentication and self registration.
package login
