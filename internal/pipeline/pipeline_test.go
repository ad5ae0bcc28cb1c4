package pipeline

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/practio/adminx-os/internal/errs"
	"github.com/practio/adminx-os/internal/reqctx"
)

func newContext(e *echo.Echo) (echo.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec), rec
}

func TestStepsThreadContext(t *testing.T) {
	e := echo.New()
	c, _ := newContext(e)

	var seen []string
	mw := Steps(
		func(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
			seen = append(seen, "nonce")
			return rc.WithNonce("n1"), nil
		},
		func(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
			seen = append(seen, "csrf:"+rc.Nonce())
			return rc.WithCSRFToken("t1"), nil
		},
	)

	err := mw(func(c echo.Context) error {
		rc := reqctx.From(c)
		assert.Equal(t, "n1", rc.Nonce())
		assert.Equal(t, "t1", rc.CSRFToken())
		return nil
	})(c)

	require.NoError(t, err)
	assert.Equal(t, []string{"nonce", "csrf:n1"}, seen)
}

func TestStepsStopOnError(t *testing.T) {
	e := echo.New()
	c, _ := newContext(e)
	boom := errors.New("boom")

	mw := Steps(
		func(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
			return rc.WithNonce("n1"), boom
		},
		func(c echo.Context, rc reqctx.Context) (reqctx.Context, error) {
			t.Fatal("second step must not run")
			return rc, nil
		},
	)

	err := mw(func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	})(c)

	assert.Equal(t, boom, err)
	assert.Empty(t, reqctx.From(c).Nonce())
}

type stubRenderer struct {
	views []string
	err   error
}

func (r *stubRenderer) Render(w io.Writer, name string, data any, c echo.Context) error {
	r.views = append(r.views, name)
	if r.err != nil {
		return r.err
	}
	_, err := io.WriteString(w, "rendered "+name)
	return err
}

func nopLogger(echo.Context) *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func TestErrorChainFirstDecisionWins(t *testing.T) {
	e := echo.New()
	renderer := &stubRenderer{}
	e.Renderer = renderer
	c, rec := newContext(e)

	var calls []string
	chain := NewErrorChain(nopLogger,
		func(err error, c echo.Context) Outcome {
			calls = append(calls, "side-effect")
			return Continue()
		},
		func(err error, c echo.Context) Outcome {
			calls = append(calls, "redirect")
			return Redirect("https://login.example.com/")
		},
		func(err error, c echo.Context) Outcome {
			calls = append(calls, "render")
			return Render(http.StatusInternalServerError, "error", nil)
		},
	)

	chain.Handle(errs.NewAuthorizationError("User Not Found"), c)

	assert.Equal(t, []string{"side-effect", "redirect"}, calls)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://login.example.com/", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, renderer.views)
}

func TestErrorChainRender(t *testing.T) {
	e := echo.New()
	e.Renderer = &stubRenderer{}
	c, rec := newContext(e)

	chain := NewErrorChain(nopLogger, func(err error, c echo.Context) Outcome {
		return Render(errs.StatusOf(err), "error", map[string]any{})
	})
	chain.Handle(errs.NewNotFoundError("missing"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "rendered error", rec.Body.String())
}

func TestErrorChainFallbacks(t *testing.T) {
	t.Run("all stages continue", func(t *testing.T) {
		e := echo.New()
		c, rec := newContext(e)

		NewErrorChain(nopLogger).Handle(errors.New("boom"), c)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Internal Server Error", rec.Body.String())
	})

	t.Run("render fails", func(t *testing.T) {
		e := echo.New()
		e.Renderer = &stubRenderer{err: errors.New("no such view")}
		c, rec := newContext(e)

		NewErrorChain(nopLogger, func(err error, c echo.Context) Outcome {
			return Render(http.StatusBadRequest, "error", nil)
		}).Handle(errors.New("bad"), c)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Bad Request", rec.Body.String())
	})
}

func TestErrorChainSkipsCommittedResponse(t *testing.T) {
	e := echo.New()
	c, rec := newContext(e)
	require.NoError(t, c.String(http.StatusOK, "partial"))

	called := false
	NewErrorChain(nopLogger, func(err error, c echo.Context) Outcome {
		called = true
		return Continue()
	}).Handle(errors.New("late"), c)

	assert.False(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}
