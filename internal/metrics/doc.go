// Package metrics provides request metrics for the HTTP server.
//
// Request handling code never touches Prometheus directly. It emits MetricEvent
// values with a non-blocking send into a buffered channel; a single collector
// goroutine consumes them and updates the collectors:
//   - http_requests_total by method, route and status code
//   - http_request_duration_seconds by method and route
//   - submissions_total by outcome
//
// http_requests_in_flight is the exception. RequestStarted and RequestFinished
// update it in the caller's goroutine so dropped events cannot skew it.
//
// Example usage:
//
//	collector := metrics.NewCollector(1024, logger)
//	collector.Start(ctx)
//
//	collector.Emit(metrics.MetricEvent{
//		Type:       metrics.EventResponseCompleted,
//		Method:     http.MethodGet,
//		Route:      "/healthz",
//		Duration:   2 * time.Millisecond,
//		StatusCode: http.StatusOK,
//	})
//
//	mux.Handle("/metrics", collector.Handler())
//
// When the context is cancelled the collector drains buffered events before
// closing Done.
package metrics
