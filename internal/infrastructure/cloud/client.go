// Package cloud implements the vendor cloud's HTTP surface: the OAuth token
// endpoint, the identity-federation endpoints, and the favourites fetch.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hearthware/ovenlink/internal/config"
	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// amzTarget identifies the GetCredentialsForIdentity operation on the
// credential-exchange endpoint.
const amzTarget = "AmazonCognitoIdentity.GetCredentialsForIdentity"

// Client talks to the vendor cloud. Safe for concurrent use.
type Client struct {
	cfg  *config.CloudConfig
	http *http.Client
	log  logger.Logger
}

var _ domainsvc.CloudGateway = (*Client)(nil)

// NewClient creates a cloud client with the fixed per-call timeout.
func NewClient(cfg *config.CloudConfig, log logger.Logger) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: constants.HTTPTimeout},
		log:  log,
	}
}

// tokenResponse is the OAuth token endpoint's success body.
type tokenResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	ExpiresIn    float64 `json:"expires_in"`
}

// TokenByPassword performs a password-grant exchange.
func (c *Client) TokenByPassword(ctx context.Context, brand, username, password string) (models.OAuthCredential, error) {
	form := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	return c.token(ctx, brand, form)
}

// TokenByRefresh performs a refresh-grant exchange.
func (c *Client) TokenByRefresh(ctx context.Context, brand, refreshToken string) (models.OAuthCredential, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	return c.token(ctx, brand, form)
}

func (c *Client) token(ctx context.Context, brand string, form url.Values) (models.OAuthCredential, error) {
	cred := c.cfg.BrandCredential(brand)
	form.Set("client_id", cred.ClientID)
	form.Set("client_secret", cred.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL(),
		strings.NewReader(form.Encode()))
	if err != nil {
		return models.OAuthCredential{}, errors.Wrap(err, errors.CodeAuthentication, "build token request")
	}
	c.applyHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return models.OAuthCredential{}, errors.Wrap(err, errors.CodeAuthentication, "token request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.OAuthCredential{}, errors.ErrAuthentication(
			fmt.Sprintf("token endpoint returned HTTP %d", resp.StatusCode))
	}

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.OAuthCredential{}, errors.Wrap(err, errors.CodeAuthentication, "malformed token response")
	}
	if body.AccessToken == "" {
		return models.OAuthCredential{}, errors.ErrAuthentication("token response missing access_token")
	}

	ttl := constants.OAuthFallbackTTL
	if body.ExpiresIn > 0 {
		ttl = time.Duration(body.ExpiresIn) * time.Second
	}
	return models.OAuthCredential{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresAt:    time.Now().Add(ttl),
	}, nil
}

// FederatedIdentity retrieves the identity id and federation token.
func (c *Client) FederatedIdentity(ctx context.Context, accessToken string) (models.FederatedIdentity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.IdentityURL(), nil)
	if err != nil {
		return models.FederatedIdentity{}, errors.Wrap(err, errors.CodeCredentialExchange, "build identity request")
	}
	c.applyHeaders(req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.FederatedIdentity{}, errors.Wrap(err, errors.CodeCredentialExchange, "identity request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.FederatedIdentity{}, errors.ErrCredentialExchange(
			fmt.Sprintf("identity endpoint returned HTTP %d", resp.StatusCode))
	}

	var body struct {
		IdentityID string `json:"identityId"`
		Token      string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.FederatedIdentity{}, errors.Wrap(err, errors.CodeCredentialExchange, "malformed identity response")
	}
	if body.IdentityID == "" || body.Token == "" {
		return models.FederatedIdentity{}, errors.ErrCredentialExchange("identity response missing identityId or token")
	}

	return models.NewFederatedIdentity(body.IdentityID, body.Token, time.Now()), nil
}

// ExchangeIdentity trades a federated identity for temporary signing
// credentials via the credential-exchange endpoint.
func (c *Client) ExchangeIdentity(ctx context.Context, identity models.FederatedIdentity) (models.TemporaryCloudCredential, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"IdentityId": identity.IdentityID,
		"Logins":     map[string]string{c.cfg.LoginProvider: identity.Token},
	})
	if err != nil {
		return models.TemporaryCloudCredential{}, errors.Wrap(err, errors.CodeCredentialExchange, "encode exchange request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CredentialExchangeURL(),
		bytes.NewReader(payload))
	if err != nil {
		return models.TemporaryCloudCredential{}, errors.Wrap(err, errors.CodeCredentialExchange, "build exchange request")
	}
	req.Header.Set("Content-Type", "application/x-amz-json-1.1")
	req.Header.Set("X-Amz-Target", amzTarget)

	resp, err := c.http.Do(req)
	if err != nil {
		return models.TemporaryCloudCredential{}, errors.Wrap(err, errors.CodeCredentialExchange, "exchange request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.TemporaryCloudCredential{}, errors.ErrCredentialExchange(
			fmt.Sprintf("exchange endpoint returned HTTP %d", resp.StatusCode))
	}

	var body struct {
		Credentials struct {
			AccessKeyID  string      `json:"AccessKeyId"`
			SecretKey    string      `json:"SecretKey"`
			SessionToken string      `json:"SessionToken"`
			Expiration   interface{} `json:"Expiration"`
		} `json:"Credentials"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.TemporaryCloudCredential{}, errors.Wrap(err, errors.CodeCredentialExchange, "malformed exchange response")
	}
	if body.Credentials.AccessKeyID == "" {
		return models.TemporaryCloudCredential{}, errors.ErrCredentialExchange("exchange response missing credentials")
	}

	return models.TemporaryCloudCredential{
		AccessKeyID:  body.Credentials.AccessKeyID,
		SecretKey:    body.Credentials.SecretKey,
		SessionToken: body.Credentials.SessionToken,
		ExpiresAt:    parseExpiration(body.Credentials.Expiration),
	}, nil
}

// parseExpiration accepts the two encodings the endpoint is known to emit:
// an epoch-seconds number and an ISO 8601 string.
func parseExpiration(v interface{}) time.Time {
	switch exp := v.(type) {
	case float64:
		return time.Unix(int64(exp), 0)
	case string:
		if t, err := time.Parse(time.RFC3339, exp); err == nil {
			return t
		}
	}
	return time.Time{}
}

// favouritesResponse mirrors the nested group structure of the endpoint.
type favouritesResponse struct {
	FavoritesList []struct {
		FavoriteCycles []struct {
			ID        string                 `json:"id"`
			Name      string                 `json:"name"`
			Cavity    string                 `json:"cavity"`
			CycleInfo map[string]interface{} `json:"cycleInfo"`
		} `json:"favoriteCycles"`
	} `json:"favoritesList"`
}

// Favourites fetches and flattens the saved presets for one appliance.
func (c *Client) Favourites(ctx context.Context, accessToken, said string) ([]models.Favourite, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.FavouritesURL(said), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "build favourites request")
	}
	c.applyHeaders(req)
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "favourites request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil, errors.New(errors.CodeInternal, "favourites endpoint returned HTTP %d", resp.StatusCode)
	}

	var body favouritesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "malformed favourites response")
	}

	favourites := make([]models.Favourite, 0)
	for _, group := range body.FavoritesList {
		for _, cycle := range group.FavoriteCycles {
			fav := models.Favourite{
				ID:        cycle.ID,
				Name:      cycle.Name,
				Cavity:    cycle.Cavity,
				CycleInfo: cycle.CycleInfo,
			}
			if fav.Name == "" {
				fav.Name = "Unnamed"
			}
			if fav.Cavity == "" {
				fav.Cavity = constants.AddresseePrimaryCavity
			}
			favourites = append(favourites, fav)
		}
	}
	return favourites, nil
}

func (c *Client) applyHeaders(req *http.Request) {
	for key, value := range c.cfg.AppHeaders {
		req.Header.Set(key, value)
	}
}
