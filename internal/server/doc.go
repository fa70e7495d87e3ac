// Package server runs the HTTP side of cxkit: the fulfillment webhook the
// sample agent calls, the optional front end describing a restored agent,
// a health probe and Prometheus metrics.
//
// Routes:
//
//	POST /webhook   fulfillment webhook
//	GET  /          front end (only when configured)
//	GET  /health    liveness probe
//	GET  /metrics   Prometheus exposition
//
// Serve shuts the listener down gracefully when its context is cancelled,
// typically by SIGINT or SIGTERM.
package server
