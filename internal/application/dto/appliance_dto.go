// Package dto provides data transfer objects for the host-facing API.
package dto

import (
	"time"

	"github.com/hearthware/ovenlink/internal/domain/models"
)

// PairRequest is the body of POST /api/v1/appliances. The host supplies
// either a stored OAuth credential, account login details, or both.
type PairRequest struct {
	SAID         string `json:"said" binding:"required"`
	Model        string `json:"model" binding:"required"`
	Brand        string `json:"brand" binding:"required"`
	Username     string `json:"username,omitempty"`
	Password     string `json:"password,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
	TokenExpires int64  `json:"tokenExpires,omitempty"` // unix seconds
}

// HasCredentials reports whether the request carries anything the credential
// chain could bootstrap from.
func (r *PairRequest) HasCredentials() bool {
	return r.AccessToken != "" || r.RefreshToken != "" || r.Username != ""
}

// StoredCredential converts the request's token fields into the domain model.
func (r *PairRequest) StoredCredential() models.OAuthCredential {
	var expires time.Time
	if r.TokenExpires > 0 {
		expires = time.Unix(r.TokenExpires, 0)
	}
	return models.OAuthCredential{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    expires,
	}
}

// ApplianceResponse describes one paired appliance.
type ApplianceResponse struct {
	SAID  string `json:"said"`
	Model string `json:"model"`
	Brand string `json:"brand"`
}

// NewApplianceResponse maps a domain identity onto the wire shape.
func NewApplianceResponse(identity models.ApplianceIdentity) ApplianceResponse {
	return ApplianceResponse{
		SAID:  identity.SAID,
		Model: identity.Model,
		Brand: identity.Brand,
	}
}

// FavouriteResponse describes one saved preset.
type FavouriteResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Cavity string `json:"cavity"`
}

// NewFavouriteResponses maps the flattened favourites list.
func NewFavouriteResponses(favourites []models.Favourite) []FavouriteResponse {
	out := make([]FavouriteResponse, 0, len(favourites))
	for _, f := range favourites {
		out = append(out, FavouriteResponse{ID: f.ID, Name: f.Name, Cavity: f.Cavity})
	}
	return out
}

// SetFieldRequest is the body of POST /api/v1/appliances/:said/set.
type SetFieldRequest struct {
	Name  string      `json:"name" binding:"required"`
	Value interface{} `json:"value"`
}
