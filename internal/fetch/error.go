package fetch

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/pkg/errors"

	"github.com/practio/adminx-os/internal/errs"
)

// Request describes the request that produced an *Error.
type Request struct {
	URL     *url.URL
	Options Options
}

// Response describes the upstream answer carried by an *Error.
type Response struct {
	Status int
	Body   any
}

// Error is returned for responses with a status of 300 or above. Its
// message is the parsed response body.
type Error struct {
	Request  Request
	Response Response

	message string
	stack   error
}

func newError(req Request, resp Response) *Error {
	msg := bodyMessage(resp.Body)
	return &Error{
		Request:  req,
		Response: resp,
		message:  msg,
		stack:    errors.New(msg),
	}
}

func (e *Error) Error() string { return e.message }

// ErrorCode makes the error classifiable by the error chain.
func (e *Error) ErrorCode() string { return errs.CodeFetch }

func (e *Error) Unwrap() error { return e.stack }

func bodyMessage(body any) string {
	switch b := body.(type) {
	case string:
		return b
	case nil:
		return ""
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return fmt.Sprint(b)
		}
		return string(raw)
	}
}
