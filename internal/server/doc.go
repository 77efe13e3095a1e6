// Package server exposes similarity scoring and catalog matching over HTTP.
//
// Endpoints:
//
//	GET  /v1/compare?a=..&b=..&metric=jaro|winkler
//	POST /v1/compare   {"a": "..", "b": "..", "metric": ".."}
//	GET  /v1/match?q=..&limit=N
//	GET  /healthz
//
// Every response is JSON and carries an X-Request-ID header. Inputs longer
// than the configured maximum (in runes) are rejected with 413.
package server
