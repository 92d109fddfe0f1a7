// Package roboat provides a client for the Roblox web API.
// It takes care of authentication through the .ROBLOSECURITY cookie,
// x-csrf-token renewal and the classification of Roblox's error responses.
package roboat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/KarpelesLab/pjson"
)

var (
	// Debug enables verbose logging of requests and responses
	Debug = false
	// UserAgent is sent on endpoints that reject requests without a browser
	// user agent
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:101.0) Gecko/20100101 Firefox/101.0"
)

const (
	xcsrfHeader         = "x-csrf-token"
	roblosecurityCookie = ".ROBLOSECURITY"
	contentTypeJSON     = "application/json;charset=utf-8"
)

// request describes a single call to a Roblox endpoint.
type request struct {
	method string
	url    string
	param  any // marshalled to JSON when non nil
	body   io.Reader
	ctype  string

	auth      bool // send the .ROBLOSECURITY cookie, fail if unset
	withXcsrf bool // send the current x-csrf-token
	fussy     bool // send browser-like headers
}

// do builds and sends req, then runs the response through the validator. On
// success the returned response has status 200 and the caller must close its
// body.
func (c *Client) do(ctx context.Context, req *request) (*http.Response, error) {
	r, err := c.build(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &RequestError{Err: err}
		}
	}

	t := time.Now()
	resp, err := c.httpClient.Do(r)

	if Debug {
		d := time.Since(t)
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		slog.DebugContext(ctx, fmt.Sprintf("[roboat] %s %s => %d in %s", req.method, req.url, status, d), "event", "roboat:debug_query", "roboat:method", req.method, "roboat:request", req.url, "roboat:status", status, "roboat:duration", d)
	}

	return c.validate(ctx, resp, err)
}

func (c *Client) build(ctx context.Context, req *request) (*http.Request, error) {
	body := req.body
	ctype := req.ctype
	if req.param != nil {
		data, err := pjson.MarshalContext(ctx, req.param)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
		ctype = "application/json"
	}

	r, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return nil, err
	}
	if ctype != "" {
		r.Header.Set("Content-Type", ctype)
	}

	if req.auth {
		cookie, err := c.cookieString()
		if err != nil {
			return nil, err
		}
		r.Header.Set("Cookie", cookie)
	}
	if req.withXcsrf {
		r.Header.Set(xcsrfHeader, c.xcsrf())
	}
	if req.fussy {
		r.Header.Set("User-Agent", UserAgent)
		if ctype == "application/json" {
			r.Header.Set("Content-Type", contentTypeJSON)
		}
	}
	return r, nil
}

// discard drains and closes the body of a response whose content is not
// needed, so the connection can be reused.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()
}
