// Package fetch is a small JSON client for upstream services.
//
// A Client merges its base Options with the Options of each call, sends
// JSON bodies and returns the parsed response body: decoded JSON when the
// body parses, the raw text otherwise. Responses with a status of 300 or
// above fail with *Error. There are no retries and no client-side timeout;
// cancellation comes from the caller's context.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Options configures a request. Zero fields inherit from the client's
// base Options; Headers are merged key by key, per-call values winning.
type Options struct {
	Method  string
	Headers map[string]string
	Body    any
}

// Client issues requests against one base URL.
type Client struct {
	baseURL    *url.URL
	base       Options
	httpClient *http.Client
	observe    func(status int)
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithObserver registers a callback invoked with the status of every
// response, or 0 when no response was received.
func WithObserver(fn func(status int)) Option {
	return func(c *Client) {
		c.observe = fn
	}
}

// New returns a Client resolving request paths against baseURL.
func New(baseURL string, base Options, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base url %q", baseURL)
	}

	c := &Client{
		baseURL:    u,
		base:       base,
		httpClient: http.DefaultClient,
		observe:    func(int) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Merge combines base and call options the way every request does.
func Merge(base, call Options) Options {
	merged := base
	if call.Method != "" {
		merged.Method = call.Method
	}
	if call.Body != nil {
		merged.Body = call.Body
	}

	merged.Headers = make(map[string]string, len(base.Headers)+len(call.Headers))
	for k, v := range base.Headers {
		merged.Headers[k] = v
	}
	for k, v := range call.Headers {
		merged.Headers[k] = v
	}

	if merged.Method == "" {
		merged.Method = http.MethodGet
	}
	return merged
}

// Do requests path, resolved against the base URL, and returns the parsed
// response body.
func (c *Client) Do(ctx context.Context, path string, opts Options) (any, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrapf(err, "parse request path %q", path)
	}
	target := c.baseURL.ResolveReference(ref)
	merged := Merge(c.base, opts)

	var body io.Reader
	if merged.Body != nil {
		payload, err := json.Marshal(merged.Body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, merged.Method, target.String(), body)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	for k, v := range merged.Headers {
		req.Header.Set(k, v)
	}

	log := zerolog.Ctx(ctx)
	log.Debug().Str("method", merged.Method).Str("url", target.String()).Msg("upstream request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(0)
		return nil, errors.Wrapf(err, "%s %s", merged.Method, target.Redacted())
	}
	defer resp.Body.Close()
	c.observe(resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}
	parsed := parseBody(raw)

	log.Debug().Int("status", resp.StatusCode).Str("url", target.String()).Msg("upstream response")

	if resp.StatusCode > 299 {
		return nil, newError(Request{URL: target, Options: merged}, Response{Status: resp.StatusCode, Body: parsed})
	}
	return parsed, nil
}

func parseBody(raw []byte) any {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return string(raw)
	}
	return parsed
}
