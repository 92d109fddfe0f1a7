package roboat

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const purchaseItemURL = "https://apis.roblox.com/marketplace-sales/v1/item/%s/purchase-item"

type purchaseItemRequest struct {
	CollectibleItemID     string `json:"collectibleItemId"`
	ExpectedCurrency      int    `json:"expectedCurrency"`
	ExpectedPrice         int64  `json:"expectedPrice"`
	ExpectedPurchaserID   int64  `json:"expectedPurchaserId"`
	ExpectedPurchaserType string `json:"expectedPurchaserType"`
	ExpectedSellerID      int64  `json:"expectedSellerId"`
	ExpectedSellerType    string `json:"expectedSellerType"`
	IdempotencyKey        string `json:"idempotencyKey"`
	CollectibleProductID  string `json:"collectibleProductId"`
}

type purchaseItemResponse struct {
	Purchased      bool    `json:"purchased"`
	PurchaseResult string  `json:"purchaseResult"`
	ErrorMessage   *string `json:"errorMessage"`
}

// PurchaseNonTradableLimited buys a non-tradable (UGC) limited from its
// creator. collectibleItemID and collectibleProductID are the string ids used
// by the marketplace APIs, sellerID is the user id of the seller.
//
// Refusals are returned as *PurchaseNonTradableLimitedError. A stale
// x-csrf-token is renewed and the purchase retried once, with the same
// idempotency key.
func (c *Client) PurchaseNonTradableLimited(ctx context.Context, collectibleItemID, collectibleProductID string, sellerID, price int64) error {
	key := uuid.New().String()
	return withXcsrfRetryNoResult(ctx, c, func(ctx context.Context) error {
		return c.purchaseNonTradableLimited(ctx, collectibleItemID, collectibleProductID, sellerID, price, key)
	})
}

func (c *Client) purchaseNonTradableLimited(ctx context.Context, itemID, productID string, sellerID, price int64, key string) error {
	purchaserID, err := c.UserID(ctx)
	if err != nil {
		return err
	}

	resp, err := c.do(ctx, &request{
		method: http.MethodPost,
		url:    fmt.Sprintf(purchaseItemURL, itemID),
		param: &purchaseItemRequest{
			CollectibleItemID:     itemID,
			ExpectedCurrency:      currencyTypeRobux,
			ExpectedPrice:         price,
			ExpectedPurchaserID:   purchaserID,
			ExpectedPurchaserType: "User",
			ExpectedSellerID:      sellerID,
			ExpectedSellerType:    "User",
			IdempotencyKey:        key,
			CollectibleProductID:  productID,
		},
		auth:      true,
		withXcsrf: true,
	})
	if err != nil {
		return err
	}

	res, err := parseTo[purchaseItemResponse](ctx, resp)
	if err != nil {
		return err
	}
	if res.Purchased {
		return nil
	}
	if res.ErrorMessage == nil {
		return ErrMalformedResponse
	}

	switch *res.ErrorMessage {
	case "PriceMismatch":
		return &PurchaseNonTradableLimitedError{Reason: PurchasePriceMismatch, Msg: *res.ErrorMessage}
	case "QuantityExhausted":
		return &PurchaseNonTradableLimitedError{Reason: PurchaseSoldOut, Msg: *res.ErrorMessage}
	default:
		return &PurchaseNonTradableLimitedError{Reason: PurchaseNonTradableUnknown, Msg: res.PurchaseResult}
	}
}
