// Package handler implements the HTTP API: the info, submission and health
// endpoints plus the request ID and request logging middleware.
package handler
