package roboat

import (
	"context"
	"fmt"
	"net/http"
)

const (
	acceptTradeURL  = "https://trades.roblox.com/v1/trades/%d/accept"
	declineTradeURL = "https://trades.roblox.com/v1/trades/%d/decline"
)

// AcceptTrade accepts the inbound trade tradeID.
func (c *Client) AcceptTrade(ctx context.Context, tradeID int64) error {
	return withXcsrfRetryNoResult(ctx, c, func(ctx context.Context) error {
		return c.tradeAction(ctx, fmt.Sprintf(acceptTradeURL, tradeID))
	})
}

// DeclineTrade declines the trade tradeID, inbound or outbound.
func (c *Client) DeclineTrade(ctx context.Context, tradeID int64) error {
	return withXcsrfRetryNoResult(ctx, c, func(ctx context.Context) error {
		return c.tradeAction(ctx, fmt.Sprintf(declineTradeURL, tradeID))
	})
}

func (c *Client) tradeAction(ctx context.Context, u string) error {
	resp, err := c.do(ctx, &request{
		method:    http.MethodPost,
		url:       u,
		auth:      true,
		withXcsrf: true,
	})
	if err != nil {
		return err
	}
	discard(resp)
	return nil
}
