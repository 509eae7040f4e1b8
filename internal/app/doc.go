// Package app assembles the server: configuration, logging, metrics, the
// analytics service, the router and graceful lifecycle.
package app
