package iot

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"

	"github.com/hearthware/ovenlink/internal/domain/models"
)

// emptyPayloadHash is the SHA-256 of an empty body, required for presigning
// a GET with no payload.
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// signingService is the service name of the broker's websocket gateway.
const signingService = "iotdevicegateway"

// presignedURL builds the SigV4 query-signed websocket URL the broker expects.
// The temporary cloud credential is the signing principal; the URL is only
// valid while that credential is.
func presignedURL(ctx context.Context, endpoint, region string, creds models.TemporaryCloudCredential) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("https://%s/mqtt", endpoint), nil)
	if err != nil {
		return "", err
	}

	signer := v4.NewSigner()
	signed, _, err := signer.PresignHTTP(ctx, aws.Credentials{
		AccessKeyID:     creds.AccessKeyID,
		SecretAccessKey: creds.SecretKey,
		SessionToken:    creds.SessionToken,
	}, req, emptyPayloadHash, signingService, region, time.Now().UTC())
	if err != nil {
		return "", err
	}

	return strings.Replace(signed, "https://", "wss://", 1), nil
}
