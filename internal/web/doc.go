// Package web assembles the fiber application: session resolution,
// the JSON API handlers, health check and metrics.
package web
