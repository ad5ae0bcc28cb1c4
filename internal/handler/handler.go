// Package handler holds the HTTP handlers of the docs server: the typed
// handler pipeline, the health endpoint and the documentation pages that
// exercise the admin app.
//
// Handlers bind and validate requests through the validation package and
// leave error responses to the admin app's error chain.
package handler
