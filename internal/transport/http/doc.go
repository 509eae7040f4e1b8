// Package http contains the chi HTTP handlers for the analytics API: the
// aggregate tables, Pareto and volatility analyses, insights, CSV export,
// diagnostics, health and metrics endpoints.
package http
