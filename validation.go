package roboat

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
)

// DefaultErrorCodes maps Roblox error body codes to errors, keyed by HTTP
// status. Every new Client starts from a copy; see WithErrorCode.
var DefaultErrorCodes = map[int]map[int]error{
	http.StatusBadRequest: {},
	http.StatusForbidden: {
		9: ErrUserDoesNotOwnAsset,
	},
}

// validate turns the outcome of a request into either a response with status
// 200 or a classified error. On error the response body is consumed and
// closed; on success the caller owns the body.
func (c *Client) validate(ctx context.Context, resp *http.Response, err error) (*http.Response, error) {
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusBadRequest:
		return nil, c.process400(ctx, resp)
	case http.StatusUnauthorized:
		discard(resp)
		return nil, ErrInvalidRoblosecurity
	case http.StatusForbidden:
		return nil, c.process403(ctx, resp)
	case http.StatusTooManyRequests:
		discard(resp)
		return nil, ErrTooManyRequests
	case http.StatusInternalServerError:
		discard(resp)
		return nil, ErrInternalServerError
	case http.StatusServiceUnavailable:
		discard(resp)
		return nil, ErrServiceUnavailable
	}

	discard(resp)
	res := &UnidentifiedStatusCodeError{Code: resp.StatusCode}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		if loc := resp.Header.Get("Location"); loc != "" {
			if u, err := url.Parse(loc); err == nil {
				res.Location = u
			}
		}
	}
	return nil, res
}

// process400 handles Bad Request. Most endpoints send a plain 400 but some
// encode a Roblox error code in the body.
func (c *Client) process400(ctx context.Context, resp *http.Response) error {
	errs, ok := readErrorBody(ctx, resp)
	if !ok || len(errs) == 0 {
		return ErrBadRequest
	}

	first := errs[0]
	if err := c.errorForCode(http.StatusBadRequest, first.Code); err != nil {
		return err
	}
	return &UnknownRobloxErrorCodeError{Code: first.Code, Message: first.Message}
}

// process403 handles Forbidden, which Roblox uses for a stale x-csrf-token,
// for business rule rejections and for challenges alike.
func (c *Client) process403(ctx context.Context, resp *http.Response) error {
	headers := resp.Header

	errs, ok := readErrorBody(ctx, resp)
	if !ok {
		return xcsrfFromHeader(headers)
	}
	if len(errs) == 0 {
		return ErrUnknownStatus403Format
	}

	first := errs[0]
	if first.Code == 0 {
		// a stale token sometimes comes back as code 0 with an empty message
		return xcsrfFromHeader(headers)
	}
	if err := c.errorForCode(http.StatusForbidden, first.Code); err != nil {
		return err
	}
	if first.Message == challengeRequiredMessage {
		info, ok := parseChallenge(ctx, headers)
		if !ok {
			if Debug {
				slog.DebugContext(ctx, "challenge required but metadata header is missing or invalid", "event", "roboat:bad_challenge", "roboat:challenge_id_header", headers.Get(challengeIDHeader))
			}
			return ErrUnknownStatus403Format
		}
		return &ChallengeRequiredError{Info: info}
	}
	return &UnknownRobloxErrorCodeError{Code: first.Code, Message: first.Message}
}

func xcsrfFromHeader(h http.Header) error {
	if token := h.Get(xcsrfHeader); token != "" {
		return &InvalidXcsrfError{Token: token}
	}
	return ErrXcsrfNotReturned
}
