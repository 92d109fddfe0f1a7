package roboat

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// economyHandler serves the authenticated user and answers purchases with
// purchaseBody, after first rejecting the x-csrf-token once.
func economyHandler(t *testing.T, purchaseBody string, purchases *atomic.Int32) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/users/authenticated", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, authenticatedBody)
	})
	mux.HandleFunc("/v1/users/156/currency", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "economy.roblox.com", r.Header.Get("X-Original-Host"))
		writeJSON(w, http.StatusOK, `{"robux":1337}`)
	})
	mux.HandleFunc("/v1/purchases/products/99", func(w http.ResponseWriter, r *http.Request) {
		purchases.Add(1)
		if r.Header.Get("x-csrf-token") != "fresh" {
			w.Header().Set("x-csrf-token", "fresh")
			w.WriteHeader(http.StatusForbidden)
			return
		}
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))

		var req map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 1, req["expectedCurrency"])
		assert.EqualValues(t, 100, req["expectedPrice"])
		assert.EqualValues(t, 5, req["expectedSellerId"])
		assert.EqualValues(t, 777, req["userAssetId"])

		writeJSON(w, http.StatusOK, purchaseBody)
	})
	return mux
}

func TestRobux(t *testing.T) {
	var purchases atomic.Int32
	c := newTestClient(t, economyHandler(t, "", &purchases), WithRoblosecurity("cookie"))

	robux, err := c.Robux(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1337, robux)
}

func TestPurchaseTradableLimited(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		reason PurchaseTradableLimitedReason
		ok     bool
	}{
		{name: "purchased", body: `{"purchased":true,"reason":"Success","productId":99,"price":100}`, ok: true},
		{name: "price changed", body: `{"purchased":false,"reason":"PriceChanged","productId":99,"price":120,"errorMsg":"The price of this item has changed"}`, reason: PurchasePriceChanged},
		{name: "pending", body: `{"purchased":false,"reason":"InsufficientFunds","productId":99,"price":100,"errorMsg":"You have a pending transaction. Please wait 1 minute and try again."}`, reason: PurchasePendingTransaction},
		{name: "unknown", body: `{"purchased":false,"reason":"NotForSale","productId":99,"price":100}`, reason: PurchaseTradableUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var purchases atomic.Int32
			c := newTestClient(t, economyHandler(t, tt.body, &purchases), WithRoblosecurity("cookie"))

			err := c.PurchaseTradableLimited(context.Background(), 99, 5, 777, 100)
			assert.EqualValues(t, 2, purchases.Load())
			assert.Equal(t, "fresh", c.Xcsrf())
			if tt.ok {
				require.NoError(t, err)
				return
			}

			var pe *PurchaseTradableLimitedError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.reason, pe.Reason)
			assert.Equal(t, KindPurchaseTradableLimited, KindOf(err))
			if tt.reason == PurchasePriceChanged {
				assert.EqualValues(t, 120, pe.Price)
			}
			if tt.reason == PurchaseTradableUnknown {
				assert.Equal(t, "NotForSale", pe.Msg)
			}
		})
	}
}
