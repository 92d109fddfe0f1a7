package roboat

import (
	"context"
	"errors"
	"log/slog"
)

// withXcsrfRetry runs fn, and if it failed because the x-csrf-token was
// stale, stores the replacement token and runs fn exactly one more time. The
// result of the second attempt is returned as is, even if it is another
// stale token error.
func withXcsrfRetry[T any](ctx context.Context, c *Client, fn func(context.Context) (T, error)) (T, error) {
	res, err := fn(ctx)
	if err == nil {
		return res, nil
	}

	var xe *InvalidXcsrfError
	if !errors.As(err, &xe) {
		return res, err
	}

	if Debug {
		slog.DebugContext(ctx, "x-csrf-token is stale, retrying with new token", "event", "roboat:xcsrf_renew")
	}
	c.setXcsrf(xe.Token)

	return fn(ctx)
}

// withXcsrfRetryNoResult is withXcsrfRetry for calls that only return an error.
func withXcsrfRetryNoResult(ctx context.Context, c *Client, fn func(context.Context) error) error {
	_, err := withXcsrfRetry(ctx, c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
