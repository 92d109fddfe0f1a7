package roboat

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/KarpelesLab/webutil"
)

var (
	ErrTooManyRequests        = errors.New("too many requests")
	ErrInternalServerError    = errors.New("internal server error")
	ErrServiceUnavailable     = errors.New("service unavailable")
	ErrBadRequest             = errors.New("bad request")
	ErrInvalidRoblosecurity   = errors.New("invalid roblosecurity")
	ErrRoblosecurityNotSet    = errors.New("roblosecurity not set")
	ErrMalformedResponse      = errors.New("malformed response")
	ErrXcsrfNotReturned       = errors.New("x-csrf-token not returned")
	ErrUnknownStatus403Format = errors.New("unknown status code 403 format")
	ErrUserDoesNotOwnAsset    = errors.New("user does not own asset")
)

// InvalidXcsrfError is returned when the server rejected the x-csrf-token
// sent with a request and supplied a replacement in the response headers.
type InvalidXcsrfError struct {
	Token string
}

func (e *InvalidXcsrfError) Error() string {
	return "invalid x-csrf-token, new token contained in error"
}

// ChallengeRequiredError is returned when Roblox demands an out of band
// verification (two step, captcha) before allowing the request. The library
// does not solve challenges.
type ChallengeRequiredError struct {
	Info ChallengeInfo
}

func (e *ChallengeRequiredError) Error() string {
	return fmt.Sprintf("challenge required, complete challenge id %s", e.Info.ID)
}

// UnknownRobloxErrorCodeError carries the first entry of a Roblox error body
// that did not map to any known error.
type UnknownRobloxErrorCodeError struct {
	Code    int
	Message string
}

func (e *UnknownRobloxErrorCodeError) Error() string {
	return fmt.Sprintf("unknown roblox error code %d: %s", e.Code, e.Message)
}

// UnidentifiedStatusCodeError is returned for any HTTP status the validator has
// no mapping for.
//
// The default RoboatHttpClient follows redirects, so a 3xx only gets here
// when the http.Client given to WithHTTPClient stops on redirects (for
// example with a CheckRedirect returning http.ErrUseLastResponse). Location
// is then set and the error unwraps to a webutil redirect error.
type UnidentifiedStatusCodeError struct {
	Code     int
	Location *url.URL // set on redirects
}

func (e *UnidentifiedStatusCodeError) Error() string {
	return fmt.Sprintf("unidentified status code %d", e.Code)
}

func (e *UnidentifiedStatusCodeError) Unwrap() error {
	if e.Location == nil {
		return nil
	}
	return webutil.RedirectErrorCode(e.Location, e.Code)
}

// RequestError wraps a transport level failure (dns, tls, connection reset,
// context cancellation).
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request error: %s", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IOError wraps a local file system failure.
type IOError struct {
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("io error: %s", e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

type InvalidPathError struct {
	Path string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %s", e.Path)
}

// PurchaseTradableLimitedReason enumerates the ways a tradable limited
// purchase can be refused with a 200 response.
type PurchaseTradableLimitedReason int

const (
	PurchasePriceChanged PurchaseTradableLimitedReason = iota
	PurchasePendingTransaction
	PurchaseTradableUnknown
)

type PurchaseTradableLimitedError struct {
	Reason PurchaseTradableLimitedReason
	Price  int64  // current price, for PurchasePriceChanged
	Msg    string // raw roblox message, for PurchaseTradableUnknown
}

func (e *PurchaseTradableLimitedError) Error() string {
	switch e.Reason {
	case PurchasePriceChanged:
		return fmt.Sprintf("price changed, new price is %d", e.Price)
	case PurchasePendingTransaction:
		return "pending transaction"
	default:
		return fmt.Sprintf("unknown roblox purchase error message: %s", e.Msg)
	}
}

type PurchaseNonTradableLimitedReason int

const (
	PurchasePriceMismatch PurchaseNonTradableLimitedReason = iota
	PurchaseSoldOut
	PurchaseNonTradableUnknown
)

type PurchaseNonTradableLimitedError struct {
	Reason PurchaseNonTradableLimitedReason
	Msg    string
}

func (e *PurchaseNonTradableLimitedError) Error() string {
	switch e.Reason {
	case PurchasePriceMismatch:
		return "price mismatch"
	case PurchaseSoldOut:
		return "sold out"
	default:
		return fmt.Sprintf("unknown roblox purchase error message: %s", e.Msg)
	}
}

// ErrorKind identifies which member of the error taxonomy an error belongs
// to. Every error returned by a Client maps to exactly one kind.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindTooManyRequests
	KindInternalServerError
	KindServiceUnavailable
	KindBadRequest
	KindInvalidRoblosecurity
	KindRoblosecurityNotSet
	KindUnknownRobloxErrorCode
	KindInvalidXcsrf
	KindXcsrfNotReturned
	KindChallengeRequired
	KindUnknownStatus403Format
	KindMalformedResponse
	KindUserDoesNotOwnAsset
	KindPurchaseTradableLimited
	KindPurchaseNonTradableLimited
	KindRequest
	KindIO
	KindInvalidPath
	KindUnidentifiedStatusCode
	KindOther
)

var kindNames = map[ErrorKind]string{
	KindNone:                       "none",
	KindTooManyRequests:            "too_many_requests",
	KindInternalServerError:        "internal_server_error",
	KindServiceUnavailable:         "service_unavailable",
	KindBadRequest:                 "bad_request",
	KindInvalidRoblosecurity:       "invalid_roblosecurity",
	KindRoblosecurityNotSet:        "roblosecurity_not_set",
	KindUnknownRobloxErrorCode:     "unknown_roblox_error_code",
	KindInvalidXcsrf:               "invalid_xcsrf",
	KindXcsrfNotReturned:           "xcsrf_not_returned",
	KindChallengeRequired:          "challenge_required",
	KindUnknownStatus403Format:     "unknown_status_403_format",
	KindMalformedResponse:          "malformed_response",
	KindUserDoesNotOwnAsset:        "user_does_not_own_asset",
	KindPurchaseTradableLimited:    "purchase_tradable_limited",
	KindPurchaseNonTradableLimited: "purchase_non_tradable_limited",
	KindRequest:                    "request",
	KindIO:                         "io",
	KindInvalidPath:                "invalid_path",
	KindUnidentifiedStatusCode:     "unidentified_status_code",
	KindOther:                      "other",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

var sentinelKinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrTooManyRequests, KindTooManyRequests},
	{ErrInternalServerError, KindInternalServerError},
	{ErrServiceUnavailable, KindServiceUnavailable},
	{ErrBadRequest, KindBadRequest},
	{ErrInvalidRoblosecurity, KindInvalidRoblosecurity},
	{ErrRoblosecurityNotSet, KindRoblosecurityNotSet},
	{ErrMalformedResponse, KindMalformedResponse},
	{ErrXcsrfNotReturned, KindXcsrfNotReturned},
	{ErrUnknownStatus403Format, KindUnknownStatus403Format},
	{ErrUserDoesNotOwnAsset, KindUserDoesNotOwnAsset},
}

// KindOf returns the taxonomy kind of err. Typed errors are checked before
// sentinels so that a wrapping error reports its own kind and not the kind of
// whatever it wraps.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var (
		xcsrf      *InvalidXcsrfError
		challenge  *ChallengeRequiredError
		unknown    *UnknownRobloxErrorCodeError
		status     *UnidentifiedStatusCodeError
		reqErr     *RequestError
		ioErr      *IOError
		pathErr    *InvalidPathError
		tradable   *PurchaseTradableLimitedError
		nontrading *PurchaseNonTradableLimitedError
	)
	switch {
	case errors.As(err, &xcsrf):
		return KindInvalidXcsrf
	case errors.As(err, &challenge):
		return KindChallengeRequired
	case errors.As(err, &unknown):
		return KindUnknownRobloxErrorCode
	case errors.As(err, &status):
		return KindUnidentifiedStatusCode
	case errors.As(err, &reqErr):
		return KindRequest
	case errors.As(err, &ioErr):
		return KindIO
	case errors.As(err, &pathErr):
		return KindInvalidPath
	case errors.As(err, &tradable):
		return KindPurchaseTradableLimited
	case errors.As(err, &nontrading):
		return KindPurchaseNonTradableLimited
	}

	for _, s := range sentinelKinds {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindOther
}
