// Package errs define custom error types and utilities.
//
// Every failure that travels through the admin error chain is classified
// by a machine-friendly code (ERR_AUTHENTICATION, ERR_AUTHORIZATION,
// FETCH_ERROR, NOT_FOUND, ...) and an HTTP status. The error handlers use
// the code to decide between redirecting, rendering an error page or
// passing the error on.
package errs
