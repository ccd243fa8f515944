// Package requestid attaches a correlation id to every HTTP request.
//
// Middleware reads X-Request-ID, replacing missing or malformed values with a
// fresh UUID, and stores the id in the request context. LoggerExtractor plugs
// into logger.WithContextExtractors so every record logged with that context
// carries request_id.
package requestid
