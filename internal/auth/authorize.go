package auth

import (
	"slices"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/practio/adminx-os/internal/errs"
	"github.com/practio/adminx-os/internal/pipeline"
	"github.com/practio/adminx-os/internal/reqctx"
)

// Restriction is a group of alternative roles: a user satisfies it by
// holding any one of them.
type Restriction []string

// Any builds a Restriction from roles.
func Any(roles ...string) Restriction {
	return Restriction(roles)
}

// Satisfied reports whether roles satisfy every restriction. No
// restrictions are satisfied by any role set, including an empty one.
func Satisfied(roles []string, restrictions []Restriction) bool {
	for _, r := range restrictions {
		if !slices.ContainsFunc(r, func(role string) bool {
			return slices.Contains(roles, role)
		}) {
			return false
		}
	}
	return true
}

// Authorize guards a route: the request needs an authenticated user whose
// roles satisfy every restriction.
func Authorize(restrictions ...Restriction) echo.MiddlewareFunc {
	return pipeline.Steps(AuthorizeStep(restrictions...))
}

// AuthorizeStep is the pipeline form of Authorize.
func AuthorizeStep(restrictions ...Restriction) pipeline.Step {
	return func(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
		log := zerolog.Ctx(c.Request().Context())

		user := rc.User()
		if user == nil {
			log.Debug().Msg("authorize failed. user not found")
			return rc, errs.NewAuthorizationError("User Not Found")
		}

		if !Satisfied(user.Roles, restrictions) {
			log.Debug().
				Strs("roles", user.Roles).
				Interface("restrictions", restrictions).
				Msg("authorize failed. user not authorized")
			return rc, errs.NewAuthorizationError("User Not Authorized")
		}

		return rc, nil
	}
}
