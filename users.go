package roboat

import (
	"context"
	"fmt"
	"net/http"
)

const (
	usersAuthenticatedURL = "https://users.roblox.com/v1/users/authenticated"
	userDetailsURL        = "https://users.roblox.com/v1/users/%d"
)

// UserDetails is the public profile of a Roblox user.
type UserDetails struct {
	ID                     int64  `json:"id"`
	Username               string `json:"name"`
	DisplayName            string `json:"displayName"`
	Description            string `json:"description"`
	Created                string `json:"created"`
	IsBanned               bool   `json:"isBanned"`
	HasVerifiedBadge       bool   `json:"hasVerifiedBadge"`
	ExternalAppDisplayName string `json:"externalAppDisplayName,omitempty"`
}

// UserID returns the id of the authenticated user. It is fetched from Roblox
// on first use and cached for the lifetime of the client.
//
// The user id is the only stable way to tell accounts apart, as username and
// display name can change.
func (c *Client) UserID(ctx context.Context) (int64, error) {
	u, err := c.clientUser(ctx)
	if err != nil {
		return 0, err
	}
	return u.UserID, nil
}

// Username returns the username of the authenticated user, cached after the
// first call. A rename is not picked up until a new client is built.
func (c *Client) Username(ctx context.Context) (string, error) {
	u, err := c.clientUser(ctx)
	if err != nil {
		return "", err
	}
	return u.Username, nil
}

// DisplayName returns the display name of the authenticated user, cached
// after the first call.
func (c *Client) DisplayName(ctx context.Context) (string, error) {
	u, err := c.clientUser(ctx)
	if err != nil {
		return "", err
	}
	return u.DisplayName, nil
}

// clientUser returns the cached identity, fetching it if needed. Concurrent
// callers share a single request, which is not cancelled by the caller that
// started it. Each caller stops waiting when its own ctx is done.
func (c *Client) clientUser(ctx context.Context) (ClientUser, error) {
	if u := c.cachedUser(); u != nil {
		return *u, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.userFetch.DoChan("authenticated", func() (any, error) {
		// another caller may have filled the cache while we were waiting
		if u := c.cachedUser(); u != nil {
			return u, nil
		}
		u, err := c.userInformation(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.setUser(u)
		return u, nil
	})

	select {
	case <-ctx.Done():
		return ClientUser{}, &RequestError{Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return ClientUser{}, res.Err
		}
		return *(res.Val.(*ClientUser)), nil
	}
}

func (c *Client) userInformation(ctx context.Context) (*ClientUser, error) {
	resp, err := c.do(ctx, &request{
		method: http.MethodGet,
		url:    usersAuthenticatedURL,
		auth:   true,
	})
	if err != nil {
		return nil, err
	}
	u, err := parseTo[ClientUser](ctx, resp)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UserDetails fetches the public profile of a user. No authentication is
// required.
func (c *Client) UserDetails(ctx context.Context, userID int64) (*UserDetails, error) {
	resp, err := c.do(ctx, c.withOptionalAuth(&request{
		method: http.MethodGet,
		url:    fmt.Sprintf(userDetailsURL, userID),
	}))
	if err != nil {
		return nil, err
	}
	res, err := parseTo[UserDetails](ctx, resp)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
