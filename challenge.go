package roboat

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/KarpelesLab/pjson"
)

const (
	challengeIDHeader       = "rblx-challenge-id"
	challengeMetadataHeader = "rblx-challenge-metadata"
	challengeTypeHeader     = "rblx-challenge-type"

	// message of the 403 error entry sent when a challenge must be completed
	challengeRequiredMessage = "Challenge is required to authorize the request"
)

type ChallengeType string

const (
	ChallengeTwoStep ChallengeType = "twostepverification"
)

// ChallengeInfo describes a challenge Roblox requires before it will accept
// a request.
type ChallengeInfo struct {
	// ID is the challenge id taken from the metadata header. The
	// rblx-challenge-id header is a different value.
	ID string
	// Metadata is the raw base64 encoded rblx-challenge-metadata header.
	Metadata string
	Type     ChallengeType
}

type challengeMetadata struct {
	UserID                           string `json:"userId"`
	ChallengeID                      string `json:"challengeId"`
	ShouldShowRememberDeviceCheckbox bool   `json:"shouldShowRememberDeviceCheckbox"`
	RememberDevice                   bool   `json:"rememberDevice"`
	SessionCookie                    string `json:"sessionCookie"`
	VerificationToken                string `json:"verificationToken"`
	ActionType                       string `json:"actionType"`
	RequestPath                      string `json:"requestPath"`
	RequestMethod                    string `json:"requestMethod"`
}

// parseChallenge extracts the challenge from the response headers. It
// returns false if the metadata header is absent or cannot be decoded.
func parseChallenge(ctx context.Context, h http.Header) (ChallengeInfo, bool) {
	encoded := strings.TrimSpace(h.Get(challengeMetadataHeader))
	if encoded == "" {
		return ChallengeInfo{}, false
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return ChallengeInfo{}, false
	}

	var meta challengeMetadata
	if err := pjson.UnmarshalContext(ctx, raw, &meta); err != nil {
		return ChallengeInfo{}, false
	}
	if meta.ChallengeID == "" {
		return ChallengeInfo{}, false
	}

	typ := ChallengeType(strings.ToLower(h.Get(challengeTypeHeader)))
	if typ == "" {
		typ = ChallengeTwoStep
	}

	return ChallengeInfo{
		ID:       meta.ChallengeID,
		Metadata: encoded,
		Type:     typ,
	}, true
}
