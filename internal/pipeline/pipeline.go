// Package pipeline threads the immutable request context through a chain
// of steps and drives the error chain.
//
// A Step receives the current reqctx.Context and returns the next one, or
// an error that ends the request and enters the error chain. Error stages
// return an Outcome instead of raising: Continue hands the error to the
// next stage, Redirect and Render end the chain.
package pipeline

import (
	"github.com/labstack/echo/v4"

	"github.com/practio/adminx-os/internal/reqctx"
)

// Step derives a new request context from the current one.
type Step func(c echo.Context, rc reqctx.Context) (reqctx.Context, error)

// Steps composes steps into a single echo middleware. The steps run in
// order against the stored request context; the result is stored before
// next is called. The first error stops the chain.
func Steps(steps ...Step) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rc, err := Run(c, reqctx.From(c), steps...)
			if err != nil {
				return err
			}
			reqctx.Store(c, rc)
			return next(c)
		}
	}
}

// Run applies steps to rc by sequential application.
func Run(c echo.Context, rc reqctx.Context, steps ...Step) (reqctx.Context, error) {
	for _, step := range steps {
		var err error
		if rc, err = step(c, rc); err != nil {
			return rc, err
		}
	}
	return rc, nil
}
