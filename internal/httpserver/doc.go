// Package httpserver wraps net/http's server with address validation,
// fixed timeouts and graceful shutdown.
package httpserver
