// Package observability builds the zap logger and the Prometheus collectors
// shared by the HTTP layer, the login flow and the city importer.
package observability
