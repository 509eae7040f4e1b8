// Package exporter renders pipeline results as CSV and JSON reports, either
// streamed to an HTTP response or written under the configured output
// directory.
package exporter
