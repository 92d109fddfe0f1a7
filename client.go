package roboat

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

var RoboatHttpTransport = &http.Transport{
	Proxy:                 http.ProxyFromEnvironment,
	MaxIdleConns:          100,
	MaxIdleConnsPerHost:   50,
	MaxConnsPerHost:       200,
	IdleConnTimeout:       90 * time.Second,
	ResponseHeaderTimeout: 90 * time.Second,
	TLSHandshakeTimeout:   10 * time.Second,
	ExpectContinueTimeout: 5 * time.Second,
}

var RoboatHttpClient = &http.Client{
	Transport: RoboatHttpTransport,
	Timeout:   120 * time.Second,
}

// Client makes requests to the Roblox API. It holds the .ROBLOSECURITY
// cookie, the current x-csrf-token and a cache of the authenticated user's
// identity. A single Client is safe for concurrent use and is meant to be
// shared between many in-flight requests.
type Client struct {
	roblosecurity string
	hasCookie     bool

	// lk guards xcsrfToken and user
	lk         sync.RWMutex
	xcsrfToken string
	user       *ClientUser

	userFetch singleflight.Group

	httpClient *http.Client
	limiter    *rate.Limiter
	codes      map[int]map[int]error
}

// ClientUser is the identity of the account the Client is authenticated as.
type ClientUser struct {
	UserID      int64  `json:"id"`
	Username    string `json:"name"`
	DisplayName string `json:"displayName"`
}

// Option configures a Client.
type Option func(*Client)

// WithRoblosecurity sets the .ROBLOSECURITY cookie used for authenticated
// endpoints.
func WithRoblosecurity(roblosecurity string) Option {
	return func(c *Client) {
		c.roblosecurity = roblosecurity
		c.hasCookie = true
	}
}

// WithHTTPClient overrides the HTTP client, for example to route requests
// through a proxy.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithXcsrf seeds the x-csrf-token, saving one round trip when a valid
// token is already known.
func WithXcsrf(token string) Option {
	return func(c *Client) {
		c.xcsrfToken = token
	}
}

// WithRateLimit paces outgoing requests to rps requests per second with the
// given burst. Requests wait for a slot; they are never dropped.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithErrorCode maps a Roblox error body code returned with the given HTTP
// status to err. A nil err removes the mapping. Only error bodies of 400 and
// 403 responses are decoded; other statuses are ignored.
func WithErrorCode(status, code int, err error) Option {
	return func(c *Client) {
		if status != http.StatusBadRequest && status != http.StatusForbidden {
			return
		}
		m, ok := c.codes[status]
		if !ok {
			m = make(map[int]error)
			c.codes[status] = m
		}
		if err == nil {
			delete(m, code)
			return
		}
		m[code] = err
	}
}

// NewClient returns a Client configured with opts. Without
// WithRoblosecurity, only endpoints that do not need authentication work;
// the others fail with ErrRoblosecurityNotSet before any request is sent.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: RoboatHttpClient,
		codes:      make(map[int]map[int]error),
	}
	for status, m := range DefaultErrorCodes {
		cp := make(map[int]error, len(m))
		for code, err := range m {
			cp[code] = err
		}
		c.codes[status] = cp
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Xcsrf returns the x-csrf-token currently stored in the client.
func (c *Client) Xcsrf() string {
	return c.xcsrf()
}

func (c *Client) xcsrf() string {
	c.lk.RLock()
	defer c.lk.RUnlock()
	return c.xcsrfToken
}

func (c *Client) setXcsrf(token string) {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.xcsrfToken = token
}

func (c *Client) cachedUser() *ClientUser {
	c.lk.RLock()
	defer c.lk.RUnlock()
	return c.user
}

func (c *Client) setUser(u *ClientUser) {
	c.lk.Lock()
	defer c.lk.Unlock()
	c.user = u
}

// cookieString builds the Cookie header value, or fails without touching the
// network if no roblosecurity was configured.
func (c *Client) cookieString() (string, error) {
	if !c.hasCookie {
		return "", ErrRoblosecurityNotSet
	}
	return roblosecurityCookie + "=" + c.roblosecurity, nil
}

// errorForCode looks up the configured error for a Roblox error code returned
// with the given status, or nil. The table is only written during NewClient.
func (c *Client) errorForCode(status, code int) error {
	return c.codes[status][code]
}
