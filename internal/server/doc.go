// Package server provides HTTP routing, middleware, page templates and the HTTP server for the web front end.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. Several methods can share
// one path pattern; unregistered methods answer 405.
//
// # Middleware
//
//   - [Recovery] : converts panics into 500 responses and logs the stack
//   - [RequestLogger] : logs method, path, status and duration; keeps [http.Flusher] reachable for streams
//   - [SecurityHeaders] : frame, sniffing, referrer and content security policy headers
//
// # Templates
//
// [TemplateManager] parses the embedded layout once and clones it per page, so every page shares the same chrome.
//
// # Serving
//
// [Server] wraps [http.Server] with h2c so browsers behind a TLS-terminating proxy and plain HTTP/1.1 clients are
// both served. There is deliberately no write timeout: a download stream lasts as long as the tool runs.
// [Server.Run] shuts down gracefully when its context is cancelled.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
