package roboat

import (
	"context"
	"fmt"
	"net/http"
)

const assetDeliveryURL = "https://assetdelivery.roblox.com/v1/asset/?ID=%d"

// FetchAssetData downloads the raw content of an asset. The data may be
// gzip compressed depending on the asset type, it is returned untouched.
func (c *Client) FetchAssetData(ctx context.Context, assetID int64) ([]byte, error) {
	return withXcsrfRetry(ctx, c, func(ctx context.Context) ([]byte, error) {
		resp, err := c.do(ctx, &request{
			method:    http.MethodGet,
			url:       fmt.Sprintf(assetDeliveryURL, assetID),
			auth:      true,
			withXcsrf: true,
		})
		if err != nil {
			return nil, err
		}
		return readAll(resp)
	})
}
