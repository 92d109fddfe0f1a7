package roboat

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

const (
	robuxURL            = "https://economy.roblox.com/v1/users/%d/currency"
	purchaseProductURL  = "https://economy.roblox.com/v1/purchases/products/%d"
	currencyTypeRobux   = 1
	pendingTransactions = "pending"
)

type currencyResponse struct {
	Robux int64 `json:"robux"`
}

type purchaseProductRequest struct {
	ExpectedCurrency int   `json:"expectedCurrency"`
	ExpectedPrice    int64 `json:"expectedPrice"`
	ExpectedSellerID int64 `json:"expectedSellerId"`
	UserAssetID      int64 `json:"userAssetId"`
}

type purchaseProductResponse struct {
	Purchased bool   `json:"purchased"`
	Reason    string `json:"reason"`
	ProductID int64  `json:"productId"`
	Title     string `json:"title"`
	ErrorMsg  string `json:"errorMsg"`
	ShowDivID string `json:"showDivId"`
	Price     int64  `json:"price"`
}

// Robux returns the robux balance of the authenticated user.
func (c *Client) Robux(ctx context.Context) (int64, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return 0, err
	}

	resp, err := c.do(ctx, &request{
		method: http.MethodGet,
		url:    fmt.Sprintf(robuxURL, userID),
		auth:   true,
	})
	if err != nil {
		return 0, err
	}
	res, err := parseTo[currencyResponse](ctx, resp)
	if err != nil {
		return 0, err
	}
	return res.Robux, nil
}

// PurchaseTradableLimited buys the copy uaid of a tradable limited from
// sellerID for price robux. productID is the product id of the item, not its
// asset id.
//
// Refusals sent by Roblox with a 200 status are returned as
// *PurchaseTradableLimitedError. A stale x-csrf-token is renewed and the
// purchase retried once.
func (c *Client) PurchaseTradableLimited(ctx context.Context, productID, sellerID, uaid, price int64) error {
	return withXcsrfRetryNoResult(ctx, c, func(ctx context.Context) error {
		return c.purchaseTradableLimited(ctx, productID, sellerID, uaid, price)
	})
}

func (c *Client) purchaseTradableLimited(ctx context.Context, productID, sellerID, uaid, price int64) error {
	resp, err := c.do(ctx, &request{
		method: http.MethodPost,
		url:    fmt.Sprintf(purchaseProductURL, productID),
		param: &purchaseProductRequest{
			ExpectedCurrency: currencyTypeRobux,
			ExpectedPrice:    price,
			ExpectedSellerID: sellerID,
			UserAssetID:      uaid,
		},
		auth:      true,
		withXcsrf: true,
		fussy:     true,
	})
	if err != nil {
		return err
	}

	res, err := parseTo[purchaseProductResponse](ctx, resp)
	if err != nil {
		return err
	}
	if res.Purchased {
		return nil
	}

	msg := res.ErrorMsg
	if msg == "" {
		msg = res.Reason
	}
	switch {
	case res.Price != 0 && res.Price != price:
		return &PurchaseTradableLimitedError{Reason: PurchasePriceChanged, Price: res.Price, Msg: msg}
	case strings.Contains(strings.ToLower(msg), pendingTransactions):
		return &PurchaseTradableLimitedError{Reason: PurchasePendingTransaction, Msg: msg}
	default:
		return &PurchaseTradableLimitedError{Reason: PurchaseTradableUnknown, Msg: msg}
	}
}
