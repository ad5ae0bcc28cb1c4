package pipeline

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/practio/adminx-os/internal/errs"
)

// ErrorStage inspects an error and decides what happens next.
type ErrorStage func(err error, c echo.Context) Outcome

// ErrorChain runs error stages in order and acts on the first Outcome that
// is not Continue. It is installed as the echo HTTPErrorHandler.
type ErrorChain struct {
	stages []ErrorStage
	logger func(c echo.Context) *zerolog.Logger
}

// NewErrorChain builds a chain. logger returns the request-scoped logger
// used to report every error that reaches the chain.
func NewErrorChain(logger func(c echo.Context) *zerolog.Logger, stages ...ErrorStage) *ErrorChain {
	return &ErrorChain{stages: stages, logger: logger}
}

// Handle is an echo.HTTPErrorHandler.
func (ec *ErrorChain) Handle(err error, c echo.Context) {
	log := ec.logger(c)
	status := errs.StatusOf(err)

	var event *zerolog.Event
	if status >= http.StatusInternalServerError {
		event = log.Error().Stack()
	} else {
		event = log.Warn()
	}
	event.Err(err).
		Int("status", status).
		Str("error_code", errs.CodeOf(err)).
		Str("error_id", errs.IDOf(err)).
		Msg("request failed")

	// Nothing can be sent once the headers are out.
	if c.Response().Committed {
		return
	}

	for _, stage := range ec.stages {
		outcome := stage(err, c)
		switch outcome.Kind() {
		case KindContinue:
			continue
		case KindRedirect:
			if rerr := c.Redirect(outcome.Status(), outcome.URL()); rerr != nil {
				log.Error().Err(rerr).Msg("failed to write error redirect")
			}
			return
		case KindRender:
			if rerr := c.Render(outcome.Status(), outcome.View(), outcome.Data()); rerr != nil {
				log.Error().Err(rerr).Str("view", outcome.View()).Msg("failed to render error view")
				ec.fallback(c, outcome.Status())
			}
			return
		}
	}

	ec.fallback(c, status)
}

func (ec *ErrorChain) fallback(c echo.Context, status int) {
	if c.Response().Committed {
		return
	}
	if err := c.String(status, http.StatusText(status)); err != nil {
		ec.logger(c).Error().Err(err).Msg("failed to write error response")
	}
}
