// Package http holds the chi HTTP handlers for the dashboard API:
// chart rendering, dropdown options, rankings, exports, and health
// probes. Handlers depend on narrow service interfaces and respond
// with RFC 7807 problem details on failure.
package http
