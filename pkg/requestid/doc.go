// Package requestid tags each request with an id that shows up in the
// X-Request-ID response header and, through LogExtractor, in every log line.
package requestid
