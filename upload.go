package roboat

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/KarpelesLab/pjson"
)

const assetsURL = "https://apis.roblox.com/assets/user-auth/v1/assets"

// ClassicClothingType selects the kind of classic clothing being uploaded.
type ClassicClothingType int

const (
	ClassicShirt ClassicClothingType = iota
	ClassicPants
	ClassicTShirt
)

func (t ClassicClothingType) assetType() string {
	switch t {
	case ClassicPants:
		return "Pants"
	case ClassicTShirt:
		return "Tshirt"
	default:
		return "Shirt"
	}
}

// upload fee charged by Roblox
func (t ClassicClothingType) expectedPrice() int64 {
	if t == ClassicTShirt {
		return 0
	}
	return 10
}

type uploadAssetRequest struct {
	DisplayName     string                `json:"displayName"`
	Description     string                `json:"description"`
	AssetType       string                `json:"assetType"`
	CreationContext uploadCreationContext `json:"creationContext"`
}

type uploadCreationContext struct {
	Creator       uploadCreator `json:"creator"`
	ExpectedPrice int64         `json:"expectedPrice"`
}

type uploadCreator struct {
	GroupID int64 `json:"groupId"`
}

type uploadAssetResponse struct {
	Path        string `json:"path"`
	OperationID string `json:"operationId"`
	Done        bool   `json:"done"`
}

// UploadInfo describes an accepted asset upload. Roblox processes the asset
// asynchronously; OperationID identifies that processing.
type UploadInfo struct {
	Path        string
	OperationID string
	Done        bool
}

// UploadClassicClothingToGroup uploads the image at imagePath as a classic
// clothing asset owned by groupID. Shirts and pants cost 10 robux to upload.
//
// The file is read once; a stale x-csrf-token is renewed and the upload sent
// once more.
func (c *Client) UploadClassicClothingToGroup(ctx context.Context, groupID int64, name, description, imagePath string, kind ClassicClothingType) (*UploadInfo, error) {
	filename := filepath.Base(imagePath)
	if imagePath == "" || strings.HasSuffix(imagePath, string(os.PathSeparator)) || filename == "." || filename == ".." || filename == string(os.PathSeparator) {
		return nil, &InvalidPathError{Path: imagePath}
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, &IOError{Err: err}
	}

	meta, err := pjson.MarshalContext(ctx, &uploadAssetRequest{
		DisplayName: name,
		Description: description,
		AssetType:   kind.assetType(),
		CreationContext: uploadCreationContext{
			Creator:       uploadCreator{GroupID: groupID},
			ExpectedPrice: kind.expectedPrice(),
		},
	})
	if err != nil {
		return nil, err
	}

	return withXcsrfRetry(ctx, c, func(ctx context.Context) (*UploadInfo, error) {
		body, ctype, err := classicClothingForm(filename, data, meta)
		if err != nil {
			return nil, err
		}

		resp, err := c.do(ctx, &request{
			method:    http.MethodPost,
			url:       assetsURL,
			body:      body,
			ctype:     ctype,
			auth:      true,
			withXcsrf: true,
		})
		if err != nil {
			return nil, err
		}

		res, err := parseTo[uploadAssetResponse](ctx, resp)
		if err != nil {
			return nil, err
		}
		return &UploadInfo{Path: res.Path, OperationID: res.OperationID, Done: res.Done}, nil
	})
}

// classicClothingForm builds the multipart body expected by the assets API:
// the image as "fileContent" and the JSON metadata as "request".
func classicClothingForm(filename string, data, meta []byte) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	part, err := w.CreateFormFile("fileContent", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("request", string(meta)); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
