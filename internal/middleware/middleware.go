// Package middleware stores the global middleware of the admin app and the
// stages of its error chain.
//
// These intercept requests to handle cross-cutting concerns such as
// security headers, CSRF protection, request logging, tracing, static
// assets, the one-shot alert cookie and panic recovery.
package middleware
