// Package httpserver runs an http.Handler with sane timeouts and graceful
// shutdown on context cancellation or SIGINT/SIGTERM, and provides a JSON
// health endpoint over a set of dependency checks.
package httpserver
