package roboat

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/KarpelesLab/pjson"
)

// maxErrorBody caps how much of an error response is read for decoding.
const maxErrorBody = 1 << 20

// RobloxError is one entry of the error body Roblox sends with 4xx
// responses: {"errors":[{"code":0,"message":"..."}]}. Only the first entry
// is ever consulted.
type RobloxError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// robloxErrorResponse is the error body. Errors is a pointer so that a body
// without an errors list can be told apart from an empty list.
type robloxErrorResponse struct {
	Errors *[]RobloxError `json:"errors"`
}

// readErrorBody reads and closes the body of a failed response and returns
// its list of errors. ok is false if the body is not JSON or has no errors
// list, including {} and {"errors":null}.
func readErrorBody(ctx context.Context, resp *http.Response) ([]RobloxError, bool) {
	if resp.Body == nil {
		return nil, false
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return nil, false
	}
	var res robloxErrorResponse
	if err := pjson.UnmarshalContext(ctx, body, &res); err != nil {
		if Debug {
			slog.DebugContext(ctx, fmt.Sprintf("error body is not json: %s\n%s", err, body), "event", "roboat:error_not_json")
		}
		return nil, false
	}
	if res.Errors == nil {
		return nil, false
	}
	return *res.Errors, true
}

// parseTo decodes the body of a validated 200 response into a T. Any decoding
// failure is reported as ErrMalformedResponse.
func parseTo[T any](ctx context.Context, resp *http.Response) (T, error) {
	var target T
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return target, &RequestError{Err: err}
	}
	if err := pjson.UnmarshalContext(ctx, body, &target); err != nil {
		if Debug {
			slog.ErrorContext(ctx, fmt.Sprintf("failed to parse json: %s\n%s", err, body), "event", "roboat:not_json")
		}
		return target, ErrMalformedResponse
	}
	return target, nil
}

// readAll returns the raw body of a validated 200 response.
func readAll(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	return body, nil
}
