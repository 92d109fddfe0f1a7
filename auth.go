package roboat

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
)

const authBaseURL = "https://auth.roblox.com/"

// ForceRefreshXcsrf fetches a fresh x-csrf-token and stores it in the client.
// Endpoints refresh the token by themselves, so calling this is only useful
// to avoid the extra round trip on the first state changing request.
//
// The roblosecurity is sent if set but is not required.
func (c *Client) ForceRefreshXcsrf(ctx context.Context) error {
	req := &request{
		method:    http.MethodPost,
		url:       authBaseURL,
		withXcsrf: true,
	}

	resp, err := c.do(ctx, c.withOptionalAuth(req))
	if err == nil {
		// the current token is valid
		discard(resp)
		return nil
	}

	var xe *InvalidXcsrfError
	if !errors.As(err, &xe) {
		return err
	}
	if Debug {
		slog.DebugContext(ctx, "stored refreshed x-csrf-token", "event", "roboat:xcsrf_refresh")
	}
	c.setXcsrf(xe.Token)
	return nil
}

// withOptionalAuth marks req as authenticated only when a roblosecurity is
// available.
func (c *Client) withOptionalAuth(req *request) *request {
	if _, err := c.cookieString(); err == nil {
		req.auth = true
	}
	return req
}
